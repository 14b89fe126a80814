package employee

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/employee"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type RepositoryAPI interface {
	ListEmployees(ctx context.Context, activeOnly bool) ([]*employeeDatamodel.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	CreateEmployee(ctx context.Context, e *employeeDatamodel.Employee) error
	UpdateEmployee(ctx context.Context, e *employeeDatamodel.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error

	ListSalaries(ctx context.Context, filter SalaryFilter) ([]*employeeDatamodel.Salary, error)
	GetSalary(ctx context.Context, id int64) (*employeeDatamodel.Salary, error)
	FindSalary(ctx context.Context, employeeID int64, period string) (*employeeDatamodel.Salary, error)
	CreateSalary(ctx context.Context, s *employeeDatamodel.Salary) error
	UpdateSalary(ctx context.Context, s *employeeDatamodel.Salary) error
	DeleteSalary(ctx context.Context, id int64) error
}

// StatsReader runs the payroll aggregate queries.
type StatsReader interface {
	ActiveEmployeeCount(ctx context.Context) (int64, error)
	SalaryTotalsByStatus(ctx context.Context, period string) ([]StatusTotal, error)
}

type ServiceAPI interface {
	ListEmployees(ctx context.Context, activeOnly bool) ([]EmployeeResponse, error)
	GetEmployee(ctx context.Context, id int64) (*EmployeeResponse, error)
	CreateEmployee(ctx context.Context, dto EmployeeDTO) (*EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, id int64, dto EmployeeDTO) (*EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id int64) error

	ListSalaries(ctx context.Context, filter SalaryFilter) ([]SalaryResponse, error)
	GetSalary(ctx context.Context, id int64) (*SalaryResponse, error)
	CreateSalary(ctx context.Context, dto SalaryDTO) (*SalaryResponse, error)
	UpdateSalary(ctx context.Context, id int64, dto SalaryDTO) (*SalaryResponse, error)
	PaySalary(ctx context.Context, id int64) (*SalaryResponse, error)
	DeleteSalary(ctx context.Context, id int64) error
	Stats(ctx context.Context, period string) (*SalaryStats, error)
}

type Service struct {
	repo   RepositoryAPI
	stats  StatsReader
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, stats StatsReader, logger *slog.Logger) *Service {
	return &Service{repo: repo, stats: stats, logger: logger, now: time.Now}
}

func (s *Service) ListEmployees(ctx context.Context, activeOnly bool) ([]EmployeeResponse, error) {
	employees, err := s.repo.ListEmployees(ctx, activeOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	out := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	return out, nil
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*EmployeeResponse, error) {
	e, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(e)
	return &resp, nil
}

func (s *Service) CreateEmployee(ctx context.Context, dto EmployeeDTO) (*EmployeeResponse, error) {
	e := &employeeDatamodel.Employee{IsActive: true}
	if err := applyEmployee(e, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEmployee(ctx, e); err != nil {
		return nil, internal.NewInternalError("failed to create employee", err)
	}
	s.logger.InfoContext(ctx, "employee created", "employee_id", e.ID)
	resp := toEmployeeResponse(e)
	return &resp, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, dto EmployeeDTO) (*EmployeeResponse, error) {
	e, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyEmployee(e, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEmployee(ctx, e); err != nil {
		return nil, internal.NewInternalError("failed to update employee", err)
	}
	resp := toEmployeeResponse(e)
	return &resp, nil
}

// DeleteEmployee also removes the employee's salary rows.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	if _, err := s.loadEmployee(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete employee", err)
	}
	s.logger.InfoContext(ctx, "employee deleted", "employee_id", id)
	return nil
}

func (s *Service) loadEmployee(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	if e == nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeNotFound)
	}
	return e, nil
}

func applyEmployee(e *employeeDatamodel.Employee, dto EmployeeDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	hire, _ := validation.ParseOptionalDate(dto.HireDate)
	base, _ := types.ParseDecimal(string(dto.BaseSalary))

	e.Name = dto.Name
	e.Position = dto.Position
	e.Email = dto.Email
	e.Phone = dto.Phone
	e.BaseSalary = base
	e.HireDate = hire
	e.Notes = dto.Notes
	if dto.IsActive != nil {
		e.IsActive = *dto.IsActive
	}
	return nil
}

// ----------------- SALARIES -----------------

func (s *Service) ListSalaries(ctx context.Context, filter SalaryFilter) ([]SalaryResponse, error) {
	salaries, err := s.repo.ListSalaries(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list salaries", err)
	}
	out := make([]SalaryResponse, 0, len(salaries))
	for _, sal := range salaries {
		out = append(out, toSalaryResponse(sal))
	}
	return out, nil
}

func (s *Service) GetSalary(ctx context.Context, id int64) (*SalaryResponse, error) {
	sal, err := s.loadSalary(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSalaryResponse(sal)
	return &resp, nil
}

func (s *Service) CreateSalary(ctx context.Context, dto SalaryDTO) (*SalaryResponse, error) {
	sal := &employeeDatamodel.Salary{}
	if err := s.applySalary(ctx, sal, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSalary(ctx, sal); err != nil {
		return nil, internal.NewInternalError("failed to create salary", err)
	}
	s.logger.InfoContext(ctx, "salary created", "salary_id", sal.ID, "employee_id", sal.EmployeeID, "period", sal.Period)
	resp := toSalaryResponse(sal)
	return &resp, nil
}

func (s *Service) UpdateSalary(ctx context.Context, id int64, dto SalaryDTO) (*SalaryResponse, error) {
	sal, err := s.loadSalary(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applySalary(ctx, sal, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSalary(ctx, sal); err != nil {
		return nil, internal.NewInternalError("failed to update salary", err)
	}
	resp := toSalaryResponse(sal)
	return &resp, nil
}

// PaySalary marks the salary paid. Paying an already paid salary keeps the
// original paidAt.
func (s *Service) PaySalary(ctx context.Context, id int64) (*SalaryResponse, error) {
	sal, err := s.loadSalary(ctx, id)
	if err != nil {
		return nil, err
	}
	if sal.Status != SalaryStatusPaid || sal.PaidAt == nil {
		now := s.now().UTC()
		sal.Status = SalaryStatusPaid
		sal.PaidAt = &now
		if err := s.repo.UpdateSalary(ctx, sal); err != nil {
			return nil, internal.NewInternalError("failed to mark salary paid", err)
		}
		s.logger.InfoContext(ctx, "salary paid", "salary_id", sal.ID, "net_amount", sal.NetAmount.String())
	}
	resp := toSalaryResponse(sal)
	return &resp, nil
}

func (s *Service) DeleteSalary(ctx context.Context, id int64) error {
	if _, err := s.loadSalary(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteSalary(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete salary", err)
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, period string) (*SalaryStats, error) {
	if period != "" {
		v := validation.NewValidator()
		v.Field("period", period).Period()
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	count, err := s.stats.ActiveEmployeeCount(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count employees", err)
	}
	rows, err := s.stats.SalaryTotalsByStatus(ctx, period)
	if err != nil {
		return nil, internal.NewInternalError("failed to load salary totals", err)
	}

	stats := &SalaryStats{
		Period:        period,
		EmployeeCount: count,
		CountByStatus: map[string]int64{SalaryStatusPending: 0, SalaryStatusPaid: 0},
	}
	for _, row := range rows {
		stats.CountByStatus[row.Status] = row.Count
		stats.TotalNet += row.Total
		switch row.Status {
		case SalaryStatusPaid:
			stats.PaidTotal += row.Total
		case SalaryStatusPending:
			stats.PendingTotal += row.Total
		}
	}
	return stats, nil
}

func (s *Service) loadSalary(ctx context.Context, id int64) (*employeeDatamodel.Salary, error) {
	sal, err := s.repo.GetSalary(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load salary", err)
	}
	if sal == nil {
		return nil, internal.NewNotFoundError("salary not found", internal.ErrCodeNotFound)
	}
	return sal, nil
}

func (s *Service) applySalary(ctx context.Context, sal *employeeDatamodel.Salary, dto SalaryDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}

	emp, err := s.repo.GetEmployee(ctx, dto.EmployeeID)
	if err != nil {
		return internal.NewInternalError("failed to load employee", err)
	}
	if emp == nil {
		return internal.NewValidationFieldError("employeeId", fmt.Sprintf("employee %d does not exist", dto.EmployeeID), internal.ErrCodeInvalidReference)
	}

	dup, err := s.repo.FindSalary(ctx, dto.EmployeeID, dto.Period)
	if err != nil {
		return internal.NewInternalError("failed to check salary period", err)
	}
	if dup != nil && dup.ID != sal.ID {
		return internal.NewConflictError(fmt.Sprintf("salary for employee %d in %s already exists", dto.EmployeeID, dto.Period), internal.ErrCodeDuplicate)
	}

	base := emp.BaseSalary
	if dto.BaseAmount != "" {
		base, _ = types.ParseDecimal(string(dto.BaseAmount))
	}
	bonus, _ := types.ParseDecimal(string(dto.Bonus))
	deductions, _ := types.ParseDecimal(string(dto.Deductions))

	sal.EmployeeID = dto.EmployeeID
	sal.Period = dto.Period
	sal.BaseAmount = base
	sal.Bonus = bonus
	sal.Deductions = deductions
	sal.NetAmount = NetAmount(base, bonus, deductions)
	sal.Notes = dto.Notes

	switch {
	case dto.Status == SalaryStatusPaid && sal.PaidAt == nil:
		now := s.now().UTC()
		sal.PaidAt = &now
	case dto.Status == SalaryStatusPending:
		sal.PaidAt = nil
	}
	sal.Status = dto.Status
	return nil
}
