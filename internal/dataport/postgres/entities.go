package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frahmantamala/agency-ops/internal/core/database"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	employeeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/employee"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	permissionDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
	tagDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/frahmantamala/agency-ops/internal/dataport"
	"gorm.io/gorm"
)

// entity upserts one datamodel type. id exposes the model's primary key,
// match overrides the default lookup by id, and check runs referential
// checks before anything is written.
type entity[T any] struct {
	db    *gorm.DB
	name  string
	deps  []string
	table string
	id    func(*T) *int64
	match func(q *gorm.DB, m *T) *gorm.DB
	check func(ctx context.Context, db *gorm.DB, m *T) error
}

func (e *entity[T]) Name() string           { return e.name }
func (e *entity[T]) Dependencies() []string { return e.deps }

func (e *entity[T]) Upsert(ctx context.Context, record json.RawMessage) (dataport.Outcome, error) {
	normalized, err := dataport.NormalizeDates(record)
	if err != nil {
		return 0, fmt.Errorf("invalid record: %w", err)
	}
	var m T
	if err := json.Unmarshal(normalized, &m); err != nil {
		return 0, fmt.Errorf("invalid record: %w", err)
	}

	db := e.db.WithContext(ctx)
	if e.check != nil {
		if err := e.check(ctx, db, &m); err != nil {
			return 0, err
		}
	}

	id := e.id(&m)
	var q *gorm.DB
	switch {
	case e.match != nil:
		q = e.match(db, &m)
	case *id > 0:
		q = db.Where("id = ?", *id)
	}

	if q != nil {
		var existing T
		err := q.Take(&existing).Error
		switch {
		case err == nil:
			*id = *e.id(&existing)
			if err := db.Omit("created_at").Save(&m).Error; err != nil {
				return 0, fmt.Errorf("id %d: update failed: %w", *id, err)
			}
			return dataport.OutcomeUpdated, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return 0, err
		}
	}

	if err := db.Create(&m).Error; err != nil {
		return 0, fmt.Errorf("id %d: insert failed: %w", *id, err)
	}
	return dataport.OutcomeImported, nil
}

func (e *entity[T]) AfterImport(ctx context.Context) error {
	return database.ResetSequence(ctx, e.db, e.table)
}

func mustExist(ctx context.Context, db *gorm.DB, model interface{}, field string, id *int64) error {
	if id == nil || *id == 0 {
		return nil
	}
	ok, err := database.Exists(ctx, db, model, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %d does not exist", field, *id)
	}
	return nil
}

// keepPassword fills a missing password from the stored row. A new user
// without one cannot log in and is rejected.
func keepPassword(ctx context.Context, db *gorm.DB, m *userDatamodel.User) error {
	if m.Password != "" {
		return nil
	}
	if m.ID > 0 {
		var existing userDatamodel.User
		err := db.Select("password").Where("id = ?", m.ID).Take(&existing).Error
		if err == nil {
			m.Password = existing.Password
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return fmt.Errorf("user %q: password is required", m.Username)
}

// Handlers returns the import handlers in registration order.
func Handlers(db *gorm.DB) []dataport.EntityHandler {
	return []dataport.EntityHandler{
		&entity[userDatamodel.User]{
			db: db, name: dataport.EntityUsers, table: "users",
			id:    func(m *userDatamodel.User) *int64 { return &m.ID },
			check: keepPassword,
		},
		&entity[permissionDatamodel.Page]{
			db: db, name: dataport.EntityPages, table: "pages",
			id: func(m *permissionDatamodel.Page) *int64 { return &m.ID },
			match: func(q *gorm.DB, m *permissionDatamodel.Page) *gorm.DB {
				return q.Where("page_key = ?", m.PageKey)
			},
		},
		&entity[agencyDatamodel.Client]{
			db: db, name: dataport.EntityClients, table: "clients",
			id: func(m *agencyDatamodel.Client) *int64 { return &m.ID },
		},
		&entity[agencyDatamodel.AdAccount]{
			db: db, name: dataport.EntityAdAccounts, table: "ad_accounts",
			deps: []string{dataport.EntityClients},
			id:   func(m *agencyDatamodel.AdAccount) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *agencyDatamodel.AdAccount) error {
				return mustExist(ctx, db, &agencyDatamodel.Client{}, "clientId", m.ClientID)
			},
		},
		&entity[agencyDatamodel.Campaign]{
			db: db, name: dataport.EntityCampaigns, table: "campaigns",
			deps: []string{dataport.EntityClients, dataport.EntityAdAccounts, dataport.EntityUsers},
			id:   func(m *agencyDatamodel.Campaign) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *agencyDatamodel.Campaign) error {
				if err := mustExist(ctx, db, &agencyDatamodel.Client{}, "clientId", m.ClientID); err != nil {
					return err
				}
				if err := mustExist(ctx, db, &agencyDatamodel.AdAccount{}, "adAccountId", m.AdAccountID); err != nil {
					return err
				}
				return mustExist(ctx, db, &userDatamodel.User{}, "userId", m.UserID)
			},
		},
		&entity[agencyDatamodel.AdCopySet]{
			db: db, name: dataport.EntityAdCopySets, table: "ad_copy_sets",
			deps: []string{dataport.EntityCampaigns},
			id:   func(m *agencyDatamodel.AdCopySet) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *agencyDatamodel.AdCopySet) error {
				return mustExist(ctx, db, &agencyDatamodel.Campaign{}, "campaignId", m.CampaignID)
			},
		},
		&entity[agencyDatamodel.WorkReport]{
			db: db, name: dataport.EntityWorkReports, table: "work_reports",
			deps: []string{dataport.EntityUsers},
			id:   func(m *agencyDatamodel.WorkReport) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *agencyDatamodel.WorkReport) error {
				if m.UserID == 0 {
					return errors.New("userId is required")
				}
				return mustExist(ctx, db, &userDatamodel.User{}, "userId", &m.UserID)
			},
		},
		&entity[financeDatamodel.Project]{
			db: db, name: dataport.EntityFinanceProjects, table: "finance_projects",
			deps: []string{dataport.EntityClients},
			id:   func(m *financeDatamodel.Project) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *financeDatamodel.Project) error {
				return mustExist(ctx, db, &agencyDatamodel.Client{}, "clientId", m.ClientID)
			},
		},
		&entity[financeDatamodel.Payment]{
			db: db, name: dataport.EntityFinancePayments, table: "finance_payments",
			deps: []string{dataport.EntityFinanceProjects},
			id:   func(m *financeDatamodel.Payment) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *financeDatamodel.Payment) error {
				return mustExist(ctx, db, &financeDatamodel.Project{}, "projectId", m.ProjectID)
			},
		},
		&entity[financeDatamodel.Expense]{
			db: db, name: dataport.EntityFinanceExpenses, table: "finance_expenses",
			deps: []string{dataport.EntityFinanceProjects},
			id:   func(m *financeDatamodel.Expense) *int64 { return &m.ID },
			check: func(ctx context.Context, db *gorm.DB, m *financeDatamodel.Expense) error {
				return mustExist(ctx, db, &financeDatamodel.Project{}, "projectId", m.ProjectID)
			},
		},
		&entity[tagDatamodel.Tag]{
			db: db, name: dataport.EntityTags, table: "tags",
			id: func(m *tagDatamodel.Tag) *int64 { return &m.ID },
		},
		&entity[employeeDatamodel.Employee]{
			db: db, name: dataport.EntityEmployees, table: "employees",
			id: func(m *employeeDatamodel.Employee) *int64 { return &m.ID },
		},
	}
}
