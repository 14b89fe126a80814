package finance

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type Project struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	ClientID    *int64        `gorm:"column:client_id;index" json:"clientId"`
	Description string        `gorm:"column:description" json:"description"`
	Budget      types.Decimal `gorm:"column:budget;type:numeric(14,2)" json:"budget"`
	Currency    string        `gorm:"column:currency;not null" json:"currency"`
	Status      string        `gorm:"column:status;not null" json:"status"`
	StartDate   *time.Time    `gorm:"column:start_date;type:date" json:"startDate"`
	EndDate     *time.Time    `gorm:"column:end_date;type:date" json:"endDate"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Project) TableName() string { return "finance_projects" }

type Payment struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	ProjectID   *int64        `gorm:"column:project_id;index" json:"projectId"`
	Amount      types.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Currency    string        `gorm:"column:currency;not null" json:"currency"`
	PaymentDate time.Time     `gorm:"column:payment_date;type:date;not null" json:"paymentDate"`
	Method      string        `gorm:"column:method" json:"method"`
	Reference   string        `gorm:"column:reference" json:"reference"`
	Status      string        `gorm:"column:status;not null" json:"status"`
	Notes       string        `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Payment) TableName() string { return "finance_payments" }

type Expense struct {
	ID          int64         `gorm:"primaryKey" json:"id"`
	ProjectID   *int64        `gorm:"column:project_id;index" json:"projectId"`
	Category    string        `gorm:"column:category" json:"category"`
	Description string        `gorm:"column:description;not null" json:"description"`
	Amount      types.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Currency    string        `gorm:"column:currency;not null" json:"currency"`
	ExpenseDate time.Time     `gorm:"column:expense_date;type:date;not null" json:"expenseDate"`
	Vendor      string        `gorm:"column:vendor" json:"vendor"`
	Notes       string        `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Expense) TableName() string { return "finance_expenses" }

type Setting struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"column:key;uniqueIndex;not null" json:"key"`
	Value       string    `gorm:"column:value" json:"value"`
	Description string    `gorm:"column:description" json:"description"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Setting) TableName() string { return "finance_settings" }
