package datamodel

import (
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/employee"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/notification"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
	"github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
)

// Models returns every table model in foreign-key dependency order. It drives
// AutoMigrate for SQLite databases; Postgres uses the goose migrations.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Session{},
		&permission.Page{},
		&permission.RolePermission{},
		&permission.UserMenuPermission{},
		&agency.Client{},
		&agency.AdAccount{},
		&agency.Campaign{},
		&agency.CampaignDailySpend{},
		&agency.AdCopySet{},
		&agency.WorkReport{},
		&finance.Project{},
		&finance.Payment{},
		&finance.Expense{},
		&finance.Setting{},
		&tag.Tag{},
		&employee.Employee{},
		&employee.Salary{},
		&notification.TelegramConfig{},
		&notification.TelegramChatID{},
		&notification.EmailConfig{},
	}
}
