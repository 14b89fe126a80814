package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/adcopy"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"gorm.io/gorm"
)

type AdCopyRepository struct {
	db *gorm.DB
}

func NewAdCopyRepository(db *gorm.DB) adcopy.RepositoryAPI {
	return &AdCopyRepository{db: db}
}

func (r *AdCopyRepository) List(ctx context.Context, filter adcopy.ListFilter) ([]*agencyDatamodel.AdCopySet, error) {
	var sets []*agencyDatamodel.AdCopySet
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.CampaignID != nil {
		q = q.Where("campaign_id = ?", *filter.CampaignID)
	}
	err := q.Find(&sets).Error
	return sets, err
}

func (r *AdCopyRepository) GetByID(ctx context.Context, id int64) (*agencyDatamodel.AdCopySet, error) {
	var set agencyDatamodel.AdCopySet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

func (r *AdCopyRepository) Create(ctx context.Context, set *agencyDatamodel.AdCopySet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

func (r *AdCopyRepository) Update(ctx context.Context, set *agencyDatamodel.AdCopySet) error {
	return r.db.WithContext(ctx).Save(set).Error
}

func (r *AdCopyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&agencyDatamodel.AdCopySet{}, id).Error
}

func (r *AdCopyRepository) CampaignExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &agencyDatamodel.Campaign{}, id)
}
