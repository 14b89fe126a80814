package employee

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/employee"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

const (
	SalaryStatusPending = "pending"
	SalaryStatusPaid    = "paid"
)

type EmployeeDTO struct {
	Name       string        `json:"name"`
	Position   string        `json:"position"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	BaseSalary types.Decimal `json:"baseSalary"`
	HireDate   string        `json:"hireDate"`
	IsActive   *bool         `json:"isActive"`
	Notes      string        `json:"notes"`
}

func (d EmployeeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("email", d.Email).Email()
	v.Field("baseSalary", d.BaseSalary).Decimal(true)
	v.Field("hireDate", d.HireDate).Date()
	return v.Validate()
}

type EmployeeResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	BaseSalary float64   `json:"baseSalary"`
	HireDate   *string   `json:"hireDate"`
	IsActive   bool      `json:"isActive"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toEmployeeResponse(e *employeeDatamodel.Employee) EmployeeResponse {
	var hire *string
	if e.HireDate != nil {
		s := validation.FormatDate(e.HireDate)
		hire = &s
	}
	return EmployeeResponse{
		ID:         e.ID,
		Name:       e.Name,
		Position:   e.Position,
		Email:      e.Email,
		Phone:      e.Phone,
		BaseSalary: e.BaseSalary.Float64(),
		HireDate:   hire,
		IsActive:   e.IsActive,
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// SalaryDTO describes one payroll line. An empty baseAmount falls back to the
// employee's base salary.
type SalaryDTO struct {
	EmployeeID int64         `json:"employeeId"`
	Period     string        `json:"period"`
	BaseAmount types.Decimal `json:"baseAmount"`
	Bonus      types.Decimal `json:"bonus"`
	Deductions types.Decimal `json:"deductions"`
	Status     string        `json:"status"`
	Notes      string        `json:"notes"`
}

func (d *SalaryDTO) Normalize() {
	if d.Status == "" {
		d.Status = SalaryStatusPending
	}
	if d.Bonus == "" {
		d.Bonus = "0"
	}
	if d.Deductions == "" {
		d.Deductions = "0"
	}
}

func (d SalaryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("employeeId", d.EmployeeID).Required()
	v.Field("period", d.Period).Required().Period()
	v.Field("baseAmount", d.BaseAmount).Decimal(true)
	v.Field("bonus", d.Bonus).Decimal(true)
	v.Field("deductions", d.Deductions).Decimal(true)
	v.Field("status", d.Status).OneOf(SalaryStatusPending, SalaryStatusPaid)
	return v.Validate()
}

type SalaryFilter struct {
	EmployeeID *int64
	Period     string
	Status     string
}

type SalaryResponse struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employeeId"`
	Period     string     `json:"period"`
	BaseAmount float64    `json:"baseAmount"`
	Bonus      float64    `json:"bonus"`
	Deductions float64    `json:"deductions"`
	NetAmount  float64    `json:"netAmount"`
	Status     string     `json:"status"`
	PaidAt     *time.Time `json:"paidAt"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func toSalaryResponse(s *employeeDatamodel.Salary) SalaryResponse {
	return SalaryResponse{
		ID:         s.ID,
		EmployeeID: s.EmployeeID,
		Period:     s.Period,
		BaseAmount: s.BaseAmount.Float64(),
		Bonus:      s.Bonus.Float64(),
		Deductions: s.Deductions.Float64(),
		NetAmount:  s.NetAmount.Float64(),
		Status:     s.Status,
		PaidAt:     s.PaidAt,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// NetAmount is base + bonus - deductions rounded to cents.
func NetAmount(base, bonus, deductions types.Decimal) types.Decimal {
	return types.NewDecimal(base.Float64() + bonus.Float64() - deductions.Float64())
}

// SalaryStats summarises payroll, optionally for one period.
type SalaryStats struct {
	Period        string           `json:"period,omitempty"`
	EmployeeCount int64            `json:"employeeCount"`
	TotalNet      float64          `json:"totalNet"`
	PaidTotal     float64          `json:"paidTotal"`
	PendingTotal  float64          `json:"pendingTotal"`
	CountByStatus map[string]int64 `json:"countByStatus"`
}

// StatusTotal is one grouped row behind SalaryStats.
type StatusTotal struct {
	Status string  `db:"status"`
	Count  int64   `db:"count"`
	Total  float64 `db:"total"`
}
