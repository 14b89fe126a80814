package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/client"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) client.RepositoryAPI {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) List(ctx context.Context, filter client.ListFilter) ([]*agencyDatamodel.Client, error) {
	var clients []*agencyDatamodel.Client
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("client_name LIKE ? OR company LIKE ? OR email LIKE ?", like, like, like)
	}
	err := q.Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*agencyDatamodel.Client, error) {
	var c agencyDatamodel.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *agencyDatamodel.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientRepository) Update(ctx context.Context, c *agencyDatamodel.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete detaches ad accounts, campaigns and projects before removing the client.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&agencyDatamodel.AdAccount{}, &agencyDatamodel.Campaign{}, &financeDatamodel.Project{}} {
			if err := tx.Model(model).Where("client_id = ?", id).Update("client_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&agencyDatamodel.Client{}, id).Error
	})
}

func (r *ClientRepository) SyncSequence(ctx context.Context) error {
	return database.ResetSequence(ctx, r.db, agencyDatamodel.Client{}.TableName())
}
