package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/frahmantamala/agency-ops/internal/workreport"
	"gorm.io/gorm"
)

type WorkReportRepository struct {
	db *gorm.DB
}

func NewWorkReportRepository(db *gorm.DB) workreport.RepositoryAPI {
	return &WorkReportRepository{db: db}
}

func (r *WorkReportRepository) List(ctx context.Context, filter workreport.ListFilter) ([]*agencyDatamodel.WorkReport, error) {
	var reports []*agencyDatamodel.WorkReport
	q := r.db.WithContext(ctx).Order("report_date DESC, id DESC")
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		q = q.Where("report_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("report_date <= ?", *filter.To)
	}
	err := q.Find(&reports).Error
	return reports, err
}

func (r *WorkReportRepository) GetByID(ctx context.Context, id int64) (*agencyDatamodel.WorkReport, error) {
	var report agencyDatamodel.WorkReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *WorkReportRepository) Create(ctx context.Context, report *agencyDatamodel.WorkReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *WorkReportRepository) Update(ctx context.Context, report *agencyDatamodel.WorkReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *WorkReportRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&agencyDatamodel.WorkReport{}, id).Error
}

func (r *WorkReportRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &userDatamodel.User{}, id)
}
