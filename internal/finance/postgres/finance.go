package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	"github.com/frahmantamala/agency-ops/internal/finance"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinanceRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) finance.RepositoryAPI {
	return &FinanceRepository{db: db}
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *FinanceRepository) ListProjects(ctx context.Context) ([]*financeDatamodel.Project, error) {
	var projects []*financeDatamodel.Project
	err := r.db.WithContext(ctx).Order("id ASC").Find(&projects).Error
	return projects, err
}

func (r *FinanceRepository) GetProject(ctx context.Context, id int64) (*financeDatamodel.Project, error) {
	return first[financeDatamodel.Project](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *FinanceRepository) CreateProject(ctx context.Context, p *financeDatamodel.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *FinanceRepository) UpdateProject(ctx context.Context, p *financeDatamodel.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *FinanceRepository) DeleteProject(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&financeDatamodel.Payment{}, &financeDatamodel.Expense{}} {
			if err := tx.Model(model).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&financeDatamodel.Project{}, id).Error
	})
}

func (r *FinanceRepository) ProjectExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &financeDatamodel.Project{}, id)
}

func (r *FinanceRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	return database.Exists(ctx, r.db, &agencyDatamodel.Client{}, id)
}

func (r *FinanceRepository) ListPayments(ctx context.Context, filter finance.PaymentFilter) ([]*financeDatamodel.Payment, error) {
	var payments []*financeDatamodel.Payment
	q := r.db.WithContext(ctx).Order("payment_date DESC, id DESC")
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	err := q.Find(&payments).Error
	return payments, err
}

func (r *FinanceRepository) GetPayment(ctx context.Context, id int64) (*financeDatamodel.Payment, error) {
	return first[financeDatamodel.Payment](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *FinanceRepository) CreatePayment(ctx context.Context, p *financeDatamodel.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *FinanceRepository) UpdatePayment(ctx context.Context, p *financeDatamodel.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *FinanceRepository) DeletePayment(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&financeDatamodel.Payment{}, id).Error
}

func (r *FinanceRepository) ListExpenses(ctx context.Context, filter finance.ExpenseFilter) ([]*financeDatamodel.Expense, error) {
	var expenses []*financeDatamodel.Expense
	q := r.db.WithContext(ctx).Order("expense_date DESC, id DESC")
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		q = q.Where("expense_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("expense_date <= ?", *filter.To)
	}
	err := q.Find(&expenses).Error
	return expenses, err
}

func (r *FinanceRepository) GetExpense(ctx context.Context, id int64) (*financeDatamodel.Expense, error) {
	return first[financeDatamodel.Expense](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *FinanceRepository) CreateExpense(ctx context.Context, e *financeDatamodel.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *FinanceRepository) UpdateExpense(ctx context.Context, e *financeDatamodel.Expense) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *FinanceRepository) DeleteExpense(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&financeDatamodel.Expense{}, id).Error
}

func (r *FinanceRepository) ApplyExpenseImport(ctx context.Context, inserts, updates []*financeDatamodel.Expense) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		explicitIDs := false
		for _, e := range inserts {
			if e.ID != 0 {
				explicitIDs = true
			}
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		for _, e := range updates {
			if err := tx.Save(e).Error; err != nil {
				return err
			}
		}
		if explicitIDs {
			return database.ResetSequence(ctx, tx, financeDatamodel.Expense{}.TableName())
		}
		return nil
	})
}

func (r *FinanceRepository) ListSettings(ctx context.Context) ([]*financeDatamodel.Setting, error) {
	var settings []*financeDatamodel.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *FinanceRepository) GetSetting(ctx context.Context, key string) (*financeDatamodel.Setting, error) {
	return first[financeDatamodel.Setting](r.db.WithContext(ctx).Where("key = ?", key))
}

func (r *FinanceRepository) UpsertSetting(ctx context.Context, s *financeDatamodel.Setting) error {
	db := r.db.WithContext(ctx)
	if s.ID != 0 {
		return db.Save(s).Error
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return err
	}
	return db.Where("key = ?", s.Key).First(s).Error
}

func (r *FinanceRepository) CreateSettingIfMissing(ctx context.Context, s *financeDatamodel.Setting) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(s)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
