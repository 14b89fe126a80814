package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/adaccount"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"gorm.io/gorm"
)

type AdAccountRepository struct {
	db *gorm.DB
}

func NewAdAccountRepository(db *gorm.DB) adaccount.RepositoryAPI {
	return &AdAccountRepository{db: db}
}

func (r *AdAccountRepository) List(ctx context.Context, filter adaccount.ListFilter) ([]*agencyDatamodel.AdAccount, error) {
	var accounts []*agencyDatamodel.AdAccount
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	err := q.Find(&accounts).Error
	return accounts, err
}

func (r *AdAccountRepository) GetByID(ctx context.Context, id int64) (*agencyDatamodel.AdAccount, error) {
	var a agencyDatamodel.AdAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AdAccountRepository) Create(ctx context.Context, a *agencyDatamodel.AdAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AdAccountRepository) Update(ctx context.Context, a *agencyDatamodel.AdAccount) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AdAccountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&agencyDatamodel.Campaign{}).Where("ad_account_id = ?", id).Update("ad_account_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&agencyDatamodel.AdAccount{}, id).Error
	})
}

func (r *AdAccountRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &agencyDatamodel.Client{}, id)
}
