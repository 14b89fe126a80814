package employee

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type Employee struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	Name       string        `gorm:"column:name;not null" json:"name"`
	Position   string        `gorm:"column:position" json:"position"`
	Email      string        `gorm:"column:email" json:"email"`
	Phone      string        `gorm:"column:phone" json:"phone"`
	BaseSalary types.Decimal `gorm:"column:base_salary;type:numeric(14,2)" json:"baseSalary"`
	HireDate   *time.Time    `gorm:"column:hire_date;type:date" json:"hireDate"`
	IsActive   bool          `gorm:"column:is_active" json:"isActive"`
	Notes      string        `gorm:"column:notes" json:"notes"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Employee) TableName() string { return "employees" }

type Salary struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	EmployeeID int64         `gorm:"column:employee_id;not null;uniqueIndex:idx_employee_period" json:"employeeId"`
	Period     string        `gorm:"column:period;not null;uniqueIndex:idx_employee_period" json:"period"`
	BaseAmount types.Decimal `gorm:"column:base_amount;type:numeric(14,2);not null" json:"baseAmount"`
	Bonus      types.Decimal `gorm:"column:bonus;type:numeric(14,2)" json:"bonus"`
	Deductions types.Decimal `gorm:"column:deductions;type:numeric(14,2)" json:"deductions"`
	NetAmount  types.Decimal `gorm:"column:net_amount;type:numeric(14,2);not null" json:"netAmount"`
	Status     string        `gorm:"column:status;not null" json:"status"`
	PaidAt     *time.Time    `gorm:"column:paid_at" json:"paidAt"`
	Notes      string        `gorm:"column:notes" json:"notes"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Salary) TableName() string { return "salaries" }
