package postgres

import (
	"context"

	"github.com/frahmantamala/agency-ops/internal/dataport"
	"gorm.io/gorm"
)

type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) dataport.ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) ExportAll(ctx context.Context) (*dataport.ExportData, error) {
	db := r.db.WithContext(ctx)
	data := &dataport.ExportData{}

	targets := []interface{}{
		&data.Users,
		&data.Pages,
		&data.Clients,
		&data.AdAccounts,
		&data.Campaigns,
		&data.AdCopySets,
		&data.WorkReports,
		&data.FinanceProjects,
		&data.FinancePayments,
		&data.FinanceExpenses,
		&data.Tags,
		&data.Employees,
	}
	for _, dest := range targets {
		if err := db.Order("id ASC").Find(dest).Error; err != nil {
			return nil, err
		}
	}
	return data, nil
}
