package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/employee"
	"github.com/frahmantamala/agency-ops/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) ListEmployees(ctx context.Context, activeOnly bool) ([]*employeeDatamodel.Employee, error) {
	var out []*employeeDatamodel.Employee
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EmployeeRepository) GetEmployee(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) CreateEmployee(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&employeeDatamodel.Salary{}).Error; err != nil {
			return err
		}
		return tx.Delete(&employeeDatamodel.Employee{}, id).Error
	})
}

func (r *EmployeeRepository) ListSalaries(ctx context.Context, filter employee.SalaryFilter) ([]*employeeDatamodel.Salary, error) {
	var out []*employeeDatamodel.Salary
	q := r.db.WithContext(ctx).Order("period DESC").Order("employee_id ASC")
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Period != "" {
		q = q.Where("period = ?", filter.Period)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EmployeeRepository) GetSalary(ctx context.Context, id int64) (*employeeDatamodel.Salary, error) {
	var s employeeDatamodel.Salary
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *EmployeeRepository) FindSalary(ctx context.Context, employeeID int64, period string) (*employeeDatamodel.Salary, error) {
	var s employeeDatamodel.Salary
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND period = ?", employeeID, period).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *EmployeeRepository) CreateSalary(ctx context.Context, s *employeeDatamodel.Salary) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *EmployeeRepository) UpdateSalary(ctx context.Context, s *employeeDatamodel.Salary) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *EmployeeRepository) DeleteSalary(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&employeeDatamodel.Salary{}, id).Error
}
