package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/campaign"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) campaign.RepositoryAPI {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) List(ctx context.Context, filter campaign.ListFilter) ([]*agencyDatamodel.Campaign, error) {
	var campaigns []*agencyDatamodel.Campaign
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	err := q.Find(&campaigns).Error
	return campaigns, err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*agencyDatamodel.Campaign, error) {
	var c agencyDatamodel.Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) Create(ctx context.Context, c *agencyDatamodel.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CampaignRepository) Update(ctx context.Context, c *agencyDatamodel.Campaign) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes the campaign with its spend history and detaches its ad copy sets.
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).Delete(&agencyDatamodel.CampaignDailySpend{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&agencyDatamodel.AdCopySet{}).Where("campaign_id = ?", id).Update("campaign_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&agencyDatamodel.Campaign{}, id).Error
	})
}

func (r *CampaignRepository) SyncSequence(ctx context.Context) error {
	return database.ResetSequence(ctx, r.db, agencyDatamodel.Campaign{}.TableName())
}

func (r *CampaignRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &agencyDatamodel.Client{}, id)
}

func (r *CampaignRepository) AdAccountExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &agencyDatamodel.AdAccount{}, id)
}

func (r *CampaignRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &userDatamodel.User{}, id)
}

func (r *CampaignRepository) ListDailySpend(ctx context.Context, campaignID int64) ([]*agencyDatamodel.CampaignDailySpend, error) {
	var spends []*agencyDatamodel.CampaignDailySpend
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("spend_date ASC").
		Find(&spends).Error
	return spends, err
}

// UpsertDailySpend keeps one row per campaign and day; a second write for
// the same day replaces amount and notes.
func (r *CampaignRepository) UpsertDailySpend(ctx context.Context, spend *agencyDatamodel.CampaignDailySpend) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "spend_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "notes"}),
	}).Create(spend).Error
	if err != nil {
		return err
	}
	return db.Where("campaign_id = ? AND spend_date = ?", spend.CampaignID, spend.SpendDate).First(spend).Error
}

func (r *CampaignRepository) GetDailySpend(ctx context.Context, campaignID, spendID int64) (*agencyDatamodel.CampaignDailySpend, error) {
	var s agencyDatamodel.CampaignDailySpend
	err := r.db.WithContext(ctx).Where("id = ? AND campaign_id = ?", spendID, campaignID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *CampaignRepository) DeleteDailySpend(ctx context.Context, spendID int64) error {
	return r.db.WithContext(ctx).Delete(&agencyDatamodel.CampaignDailySpend{}, spendID).Error
}
