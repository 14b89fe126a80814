package finance

import (
	"strings"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"

	PaymentStatusPending  = "pending"
	PaymentStatusReceived = "received"

	DefaultCurrency = "IDR"
)

// Setting keys seeded on first start.
const (
	SettingDefaultCurrency = "default_currency"
	SettingCompanyName     = "company_name"
	SettingFiscalYearStart = "fiscal_year_start_month"
)

// DefaultSettings are inserted by the seed command when missing.
var DefaultSettings = []financeDatamodel.Setting{
	{Key: SettingDefaultCurrency, Value: DefaultCurrency, Description: "Currency applied when a record omits one"},
	{Key: SettingCompanyName, Value: "", Description: "Name printed on exported reports"},
	{Key: SettingFiscalYearStart, Value: "1", Description: "Month number the fiscal year starts in"},
}

var ExpenseCSVColumns = []string{"id", "projectId", "category", "description", "amount", "currency", "expenseDate", "vendor", "notes"}

// ExpenseRequiredColumns must be present in an expense import header.
var ExpenseRequiredColumns = []string{"description", "amount", "expenseDate"}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

type ProjectDTO struct {
	Name        string        `json:"name"`
	ClientID    *int64        `json:"clientId"`
	Description string        `json:"description"`
	Budget      types.Decimal `json:"budget"`
	Currency    string        `json:"currency"`
	Status      string        `json:"status"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
}

func (d *ProjectDTO) Normalize() {
	if d.Status == "" {
		d.Status = ProjectStatusActive
	}
	if d.Budget == "" {
		d.Budget = "0"
	}
	d.Currency = normalizeCurrency(d.Currency)
}

func (d ProjectDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("budget", d.Budget).Decimal(true)
	v.Field("currency", d.Currency).MaxLength(3)
	v.Field("status", d.Status).OneOf(ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled)
	v.Field("startDate", d.StartDate).Date()
	v.Field("endDate", d.EndDate).Date()
	return v.Validate()
}

type PaymentDTO struct {
	ProjectID   *int64        `json:"projectId"`
	Amount      types.Decimal `json:"amount"`
	Currency    string        `json:"currency"`
	PaymentDate string        `json:"paymentDate"`
	Method      string        `json:"method"`
	Reference   string        `json:"reference"`
	Status      string        `json:"status"`
	Notes       string        `json:"notes"`
}

func (d *PaymentDTO) Normalize() {
	if d.Status == "" {
		d.Status = PaymentStatusPending
	}
	d.Currency = normalizeCurrency(d.Currency)
}

func (d PaymentDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("amount", string(d.Amount)).Required().Decimal(true)
	v.Field("currency", d.Currency).MaxLength(3)
	v.Field("paymentDate", d.PaymentDate).Required().Date()
	v.Field("status", d.Status).OneOf(PaymentStatusPending, PaymentStatusReceived)
	return v.Validate()
}

type ExpenseDTO struct {
	ProjectID   *int64        `json:"projectId"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Amount      types.Decimal `json:"amount"`
	Currency    string        `json:"currency"`
	ExpenseDate string        `json:"expenseDate"`
	Vendor      string        `json:"vendor"`
	Notes       string        `json:"notes"`
}

func (d *ExpenseDTO) Normalize() {
	d.Currency = normalizeCurrency(d.Currency)
	d.Category = strings.TrimSpace(d.Category)
}

func (d ExpenseDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("description", d.Description).Required().MaxLength(500)
	v.Field("amount", string(d.Amount)).Required().Decimal(true)
	v.Field("currency", d.Currency).MaxLength(3)
	v.Field("expenseDate", d.ExpenseDate).Required().Date()
	v.Field("category", d.Category).MaxLength(100)
	return v.Validate()
}

type SettingDTO struct {
	Value       string  `json:"value"`
	Description *string `json:"description"`
}

type PaymentFilter struct {
	ProjectID *int64
}

type ExpenseFilter struct {
	ProjectID *int64
	Category  string
	From      *time.Time
	To        *time.Time
}

// DateRange bounds dashboard aggregates; nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type ProjectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ClientID    *int64    `json:"clientId"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProjectResponse(p *financeDatamodel.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		ClientID:    p.ClientID,
		Description: p.Description,
		Budget:      p.Budget.Float64(),
		Currency:    p.Currency,
		Status:      p.Status,
		StartDate:   dateString(p.StartDate),
		EndDate:     dateString(p.EndDate),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type PaymentResponse struct {
	ID          int64     `json:"id"`
	ProjectID   *int64    `json:"projectId"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PaymentDate string    `json:"paymentDate"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toPaymentResponse(p *financeDatamodel.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		ProjectID:   p.ProjectID,
		Amount:      p.Amount.Float64(),
		Currency:    p.Currency,
		PaymentDate: p.PaymentDate.Format(validation.DateLayout),
		Method:      p.Method,
		Reference:   p.Reference,
		Status:      p.Status,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type ExpenseResponse struct {
	ID          int64     `json:"id"`
	ProjectID   *int64    `json:"projectId"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	ExpenseDate string    `json:"expenseDate"`
	Vendor      string    `json:"vendor"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toExpenseResponse(e *financeDatamodel.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount.Float64(),
		Currency:    e.Currency,
		ExpenseDate: e.ExpenseDate.Format(validation.DateLayout),
		Vendor:      e.Vendor,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Dashboard is the finance overview for a date range.
type Dashboard struct {
	From           *string          `json:"from"`
	To             *string          `json:"to"`
	TotalReceived  float64          `json:"totalReceived"`
	TotalPending   float64          `json:"totalPending"`
	TotalExpenses  float64          `json:"totalExpenses"`
	Net            float64          `json:"net"`
	ActiveProjects int64            `json:"activeProjects"`
	Projects       []ProjectSummary `json:"projects"`
	Monthly        []MonthlyPoint   `json:"monthly"`
}

type ProjectSummary struct {
	ProjectID int64   `db:"project_id" json:"projectId"`
	Name      string  `db:"name" json:"name"`
	Status    string  `db:"status" json:"status"`
	Budget    float64 `db:"budget" json:"budget"`
	Received  float64 `db:"received" json:"received"`
	Expenses  float64 `db:"expenses" json:"expenses"`
	Net       float64 `db:"-" json:"net"`
}

type MonthlyPoint struct {
	Month    string  `json:"month"`
	Received float64 `json:"received"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// Totals is the raw aggregate row behind the dashboard header.
type Totals struct {
	Received       float64 `db:"received"`
	Pending        float64 `db:"pending"`
	Expenses       float64 `db:"expenses"`
	ActiveProjects int64   `db:"active_projects"`
}

// MonthAmount is one (month, sum) row from a grouped query.
type MonthAmount struct {
	Month  string  `db:"month"`
	Amount float64 `db:"amount"`
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := validation.FormatDate(t)
	return &s
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
