package permission

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	permissionDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
)

type ServiceAPI interface {
	ListPages(ctx context.Context) ([]permissionDatamodel.Page, error)
	CreatePage(ctx context.Context, dto PageDTO) (*permissionDatamodel.Page, error)
	UpdatePage(ctx context.Context, id int64, dto PageDTO) (*permissionDatamodel.Page, error)
	DeletePage(ctx context.Context, id int64) error

	ListRolePermissions(ctx context.Context, role string) ([]RolePermissionView, error)
	UpdateRolePermissions(ctx context.Context, dto BulkRolePermissionDTO) ([]RolePermissionView, error)
	ResetDefaults(ctx context.Context) (SeedResult, error)

	Check(ctx context.Context, principal *internal.CurrentUser, pageKey, action string) (*CheckResponse, error)

	GetMenuPermissions(ctx context.Context, userID int64) (*MenuPermissionsResponse, error)
	UpdateMenuPermissions(ctx context.Context, userID int64, dto MenuPermissionsDTO) (*MenuPermissionsResponse, error)
}

type Service struct {
	repo    Repository
	checker *Checker
	logger  *slog.Logger
}

func NewService(repo Repository, checker *Checker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, checker: checker, logger: logger}
}

func (s *Service) ListPages(ctx context.Context) ([]permissionDatamodel.Page, error) {
	pages, err := s.repo.ListPages(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pages", err)
	}
	return pages, nil
}

func (s *Service) CreatePage(ctx context.Context, dto PageDTO) (*permissionDatamodel.Page, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPageByKey(ctx, dto.PageKey)
	if err != nil {
		return nil, internal.NewInternalError("failed to load page", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("page key already exists", internal.ErrCodeDuplicate)
	}

	page := &permissionDatamodel.Page{
		PageKey:     dto.PageKey,
		DisplayName: dto.DisplayName,
		Path:        dto.Path,
		Description: dto.Description,
		IsActive:    dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.repo.CreatePage(ctx, page); err != nil {
		return nil, internal.NewInternalError("failed to create page", err)
	}

	s.logger.InfoContext(ctx, "page created", "page_key", page.PageKey, "page_id", page.ID)
	return page, nil
}

func (s *Service) UpdatePage(ctx context.Context, id int64, dto PageDTO) (*permissionDatamodel.Page, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	page, err := s.getPage(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.PageKey != page.PageKey {
		clash, err := s.repo.GetPageByKey(ctx, dto.PageKey)
		if err != nil {
			return nil, internal.NewInternalError("failed to load page", err)
		}
		if clash != nil {
			return nil, internal.NewConflictError("page key already exists", internal.ErrCodeDuplicate)
		}
	}

	page.PageKey = dto.PageKey
	page.DisplayName = dto.DisplayName
	page.Path = dto.Path
	page.Description = dto.Description
	if dto.IsActive != nil {
		page.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdatePage(ctx, page); err != nil {
		return nil, internal.NewInternalError("failed to update page", err)
	}
	return page, nil
}

func (s *Service) DeletePage(ctx context.Context, id int64) error {
	if _, err := s.getPage(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeletePage(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete page", err)
	}
	s.logger.InfoContext(ctx, "page deleted", "page_id", id)
	return nil
}

func (s *Service) getPage(ctx context.Context, id int64) (*permissionDatamodel.Page, error) {
	page, err := s.repo.GetPageByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load page", err)
	}
	if page == nil {
		return nil, internal.NewNotFoundError("page not found", internal.ErrCodePageNotFound)
	}
	return page, nil
}

func (s *Service) ListRolePermissions(ctx context.Context, role string) ([]RolePermissionView, error) {
	if role != "" && !internal.IsValidRole(role) {
		return nil, internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeInvalidRole)
	}

	rows, err := s.repo.ListRolePermissions(ctx, role)
	if err != nil {
		return nil, internal.NewInternalError("failed to list role permissions", err)
	}
	pages, err := s.repo.ListPages(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pages", err)
	}
	keys := make(map[int64]string, len(pages))
	for _, p := range pages {
		keys[p.ID] = p.PageKey
	}

	views := make([]RolePermissionView, 0, len(rows))
	for _, rp := range rows {
		views = append(views, RolePermissionView{
			ID:        rp.ID,
			Role:      rp.Role,
			PageID:    rp.PageID,
			PageKey:   keys[rp.PageID],
			CanView:   rp.CanView,
			CanEdit:   rp.CanEdit,
			CanDelete: rp.CanDelete,
		})
	}
	return views, nil
}

// UpdateRolePermissions upserts every entry for the role. Unknown pages fail
// the whole request before anything is written.
func (s *Service) UpdateRolePermissions(ctx context.Context, dto BulkRolePermissionDTO) ([]RolePermissionView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rows := make([]*permissionDatamodel.RolePermission, 0, len(dto.Permissions))
	for _, entry := range dto.Permissions {
		var (
			page *permissionDatamodel.Page
			err  error
		)
		if entry.PageID != 0 {
			page, err = s.repo.GetPageByID(ctx, entry.PageID)
		} else {
			page, err = s.repo.GetPageByKey(ctx, entry.PageKey)
		}
		if err != nil {
			return nil, internal.NewInternalError("failed to load page", err)
		}
		if page == nil {
			return nil, internal.NewValidationError("unknown page in permissions", internal.ErrCodePageNotFound)
		}
		rows = append(rows, &permissionDatamodel.RolePermission{
			Role:      dto.Role,
			PageID:    page.ID,
			CanView:   entry.CanView,
			CanEdit:   entry.CanEdit,
			CanDelete: entry.CanDelete,
		})
	}

	for _, rp := range rows {
		if err := s.repo.UpsertRolePermission(ctx, rp); err != nil {
			return nil, internal.NewInternalError("failed to save role permission", err)
		}
	}

	s.logger.InfoContext(ctx, "role permissions updated", "role", dto.Role, "count", len(rows))
	return s.ListRolePermissions(ctx, dto.Role)
}

func (s *Service) ResetDefaults(ctx context.Context) (SeedResult, error) {
	res, err := SeedDefaults(ctx, s.repo, true)
	if err != nil {
		return res, internal.NewInternalError("failed to reset permissions", err)
	}
	s.logger.InfoContext(ctx, "role permissions reset to defaults", "rows", res.Permissions)
	return res, nil
}

// Seed applies the defaults without touching existing rows.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	return SeedDefaults(ctx, s.repo, false)
}

func (s *Service) Check(ctx context.Context, principal *internal.CurrentUser, pageKey, action string) (*CheckResponse, error) {
	if principal == nil {
		return nil, internal.ErrMissingToken
	}
	v := validation.NewValidator()
	v.Field("page", pageKey).Required()
	v.Field("action", action).Required()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	resp := &CheckResponse{Page: pageKey, Action: strings.ToLower(action)}
	act, ok := ParseAction(action)
	if !ok && !principal.IsSuperAdmin() {
		return resp, nil
	}

	allowed, err := s.checker.Check(ctx, principal.ID, pageKey, act)
	if err != nil {
		return nil, internal.NewInternalError("permission check failed", err)
	}
	resp.Allowed = allowed
	return resp, nil
}

// PageAccessForRole maps every active page to the role's flags. Super admins
// get full access on all active pages.
func (s *Service) PageAccessForRole(ctx context.Context, role string) (map[string]PageAccess, error) {
	pages, err := s.repo.ListPages(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list pages", err)
	}

	out := make(map[string]PageAccess, len(pages))
	if role == internal.RoleSuperAdmin {
		for _, p := range pages {
			if p.IsActive {
				out[p.PageKey] = full
			}
		}
		return out, nil
	}

	rows, err := s.repo.ListRolePermissions(ctx, role)
	if err != nil {
		return nil, internal.NewInternalError("failed to list role permissions", err)
	}
	byPage := make(map[int64]PageAccess, len(rows))
	for i := range rows {
		byPage[rows[i].PageID] = accessOf(&rows[i])
	}
	for _, p := range pages {
		if !p.IsActive {
			continue
		}
		out[p.PageKey] = byPage[p.ID]
	}
	return out, nil
}

func (s *Service) MenuAccessForUser(ctx context.Context, userID int64) (map[string]bool, error) {
	rows, err := s.repo.ListMenuPermissions(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list menu permissions", err)
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.MenuKey] = row.CanAccess
	}
	return out, nil
}

func (s *Service) GetMenuPermissions(ctx context.Context, userID int64) (*MenuPermissionsResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	perms, err := s.MenuAccessForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MenuPermissionsResponse{UserID: userID, Permissions: perms}, nil
}

// UpdateMenuPermissions replaces the user's whole menu set.
func (s *Service) UpdateMenuPermissions(ctx context.Context, userID int64, dto MenuPermissionsDTO) (*MenuPermissionsResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	rows := make([]permissionDatamodel.UserMenuPermission, 0, len(dto.Permissions))
	for key, allowed := range dto.Permissions {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, internal.NewValidationFieldError("permissions", "menu key must not be empty", internal.ErrCodeValidationFailed)
		}
		rows = append(rows, permissionDatamodel.UserMenuPermission{UserID: userID, MenuKey: key, CanAccess: allowed})
	}

	if err := s.repo.ReplaceMenuPermissions(ctx, userID, rows); err != nil {
		return nil, internal.NewInternalError("failed to save menu permissions", err)
	}
	return s.GetMenuPermissions(ctx, userID)
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	_, found, err := s.repo.GetUserRole(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if !found {
		return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return nil
}
