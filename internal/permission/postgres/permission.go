package permission

import (
	"context"
	"errors"
	"time"

	permissionDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserRole(ctx context.Context, userID int64) (string, bool, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Select("id", "role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.Role, true, nil
}

func (r *Repository) ListPages(ctx context.Context) ([]permissionDatamodel.Page, error) {
	var pages []permissionDatamodel.Page
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *Repository) GetPageByID(ctx context.Context, id int64) (*permissionDatamodel.Page, error) {
	var page permissionDatamodel.Page
	err := r.db.WithContext(ctx).First(&page, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Repository) GetPageByKey(ctx context.Context, key string) (*permissionDatamodel.Page, error) {
	var page permissionDatamodel.Page
	err := r.db.WithContext(ctx).Where("page_key = ?", key).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Repository) CreatePage(ctx context.Context, page *permissionDatamodel.Page) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *Repository) UpdatePage(ctx context.Context, page *permissionDatamodel.Page) error {
	return r.db.WithContext(ctx).Model(page).Select("page_key", "display_name", "path", "description", "is_active").Updates(page).Error
}

// DeletePage removes the page together with its matrix rows.
func (r *Repository) DeletePage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&permissionDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&permissionDatamodel.Page{}, id).Error
	})
}

// EnsurePage inserts page unless its key already exists and returns the
// stored row either way.
func (r *Repository) EnsurePage(ctx context.Context, page *permissionDatamodel.Page) (*permissionDatamodel.Page, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "page_key"}}, DoNothing: true}).
		Create(page).Error
	if err != nil {
		return nil, err
	}
	return r.GetPageByKey(ctx, page.PageKey)
}

func (r *Repository) GetRolePermission(ctx context.Context, role string, pageID int64) (*permissionDatamodel.RolePermission, error) {
	var rp permissionDatamodel.RolePermission
	err := r.db.WithContext(ctx).Where("role = ? AND page_id = ?", role, pageID).First(&rp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

// ListRolePermissions returns the rows for role, or every row when role is empty.
func (r *Repository) ListRolePermissions(ctx context.Context, role string) ([]permissionDatamodel.RolePermission, error) {
	var rows []permissionDatamodel.RolePermission
	q := r.db.WithContext(ctx).Order("role ASC, page_id ASC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) UpsertRolePermission(ctx context.Context, rp *permissionDatamodel.RolePermission) error {
	rp.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}, {Name: "page_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"can_view", "can_edit", "can_delete", "updated_at"}),
	}).Create(rp).Error
}

func (r *Repository) CreateRolePermissionIfMissing(ctx context.Context, rp *permissionDatamodel.RolePermission) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "role"}, {Name: "page_id"}}, DoNothing: true}).
		Create(rp)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListMenuPermissions(ctx context.Context, userID int64) ([]permissionDatamodel.UserMenuPermission, error) {
	var rows []permissionDatamodel.UserMenuPermission
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("menu_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ReplaceMenuPermissions(ctx context.Context, userID int64, perms []permissionDatamodel.UserMenuPermission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&permissionDatamodel.UserMenuPermission{}).Error; err != nil {
			return err
		}
		if len(perms) == 0 {
			return nil
		}
		for i := range perms {
			perms[i].ID = 0
			perms[i].UserID = userID
		}
		return tx.Create(&perms).Error
	})
}
