package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/csvutil"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	financeDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/finance"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type RepositoryAPI interface {
	ListProjects(ctx context.Context) ([]*financeDatamodel.Project, error)
	GetProject(ctx context.Context, id int64) (*financeDatamodel.Project, error)
	CreateProject(ctx context.Context, p *financeDatamodel.Project) error
	UpdateProject(ctx context.Context, p *financeDatamodel.Project) error
	DeleteProject(ctx context.Context, id int64) error
	ProjectExists(ctx context.Context, id int64) (bool, error)
	ClientExists(ctx context.Context, id int64) (bool, error)

	ListPayments(ctx context.Context, filter PaymentFilter) ([]*financeDatamodel.Payment, error)
	GetPayment(ctx context.Context, id int64) (*financeDatamodel.Payment, error)
	CreatePayment(ctx context.Context, p *financeDatamodel.Payment) error
	UpdatePayment(ctx context.Context, p *financeDatamodel.Payment) error
	DeletePayment(ctx context.Context, id int64) error

	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*financeDatamodel.Expense, error)
	GetExpense(ctx context.Context, id int64) (*financeDatamodel.Expense, error)
	CreateExpense(ctx context.Context, e *financeDatamodel.Expense) error
	UpdateExpense(ctx context.Context, e *financeDatamodel.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	// ApplyExpenseImport writes a confirmed import in one transaction.
	ApplyExpenseImport(ctx context.Context, inserts, updates []*financeDatamodel.Expense) error

	ListSettings(ctx context.Context) ([]*financeDatamodel.Setting, error)
	GetSetting(ctx context.Context, key string) (*financeDatamodel.Setting, error)
	UpsertSetting(ctx context.Context, s *financeDatamodel.Setting) error
	CreateSettingIfMissing(ctx context.Context, s *financeDatamodel.Setting) (bool, error)
}

// DashboardReader runs the aggregate queries behind the dashboard.
type DashboardReader interface {
	Totals(ctx context.Context, r DateRange) (Totals, error)
	ProjectSummaries(ctx context.Context, r DateRange) ([]ProjectSummary, error)
	MonthlyReceived(ctx context.Context, r DateRange) ([]MonthAmount, error)
	MonthlyExpenses(ctx context.Context, r DateRange) ([]MonthAmount, error)
}

// EventPublisher is satisfied by *events.EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceAPI interface {
	ListProjects(ctx context.Context) ([]ProjectResponse, error)
	GetProject(ctx context.Context, id int64) (*ProjectResponse, error)
	CreateProject(ctx context.Context, dto ProjectDTO) (*ProjectResponse, error)
	UpdateProject(ctx context.Context, id int64, dto ProjectDTO) (*ProjectResponse, error)
	DeleteProject(ctx context.Context, id int64) error

	ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, error)
	GetPayment(ctx context.Context, id int64) (*PaymentResponse, error)
	CreatePayment(ctx context.Context, dto PaymentDTO) (*PaymentResponse, error)
	UpdatePayment(ctx context.Context, id int64, dto PaymentDTO) (*PaymentResponse, error)
	DeletePayment(ctx context.Context, id int64) error

	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]ExpenseResponse, error)
	GetExpense(ctx context.Context, id int64) (*ExpenseResponse, error)
	CreateExpense(ctx context.Context, actor *internal.CurrentUser, dto ExpenseDTO) (*ExpenseResponse, error)
	UpdateExpense(ctx context.Context, id int64, dto ExpenseDTO) (*ExpenseResponse, error)
	DeleteExpense(ctx context.Context, id int64) error
	ExportExpensesCSV(ctx context.Context) ([]byte, error)
	PreviewExpenseImport(ctx context.Context, data []byte) (*ExpenseImportPreview, error)
	ConfirmExpenseImport(ctx context.Context, req ConfirmExpenseImportDTO) (*csvutil.ImportResult, error)

	ListSettings(ctx context.Context) ([]*financeDatamodel.Setting, error)
	PutSetting(ctx context.Context, key string, dto SettingDTO) (*financeDatamodel.Setting, error)
	SeedSettings(ctx context.Context) (int, error)

	Dashboard(ctx context.Context, r DateRange) (*Dashboard, error)
}

type Service struct {
	repo      RepositoryAPI
	dashboard DashboardReader
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, dashboard DashboardReader, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		dashboard: dashboard,
		publisher: publisher,
		logger:    logger,
	}
}

// ----------------- PROJECTS -----------------

func (s *Service) ListProjects(ctx context.Context) ([]ProjectResponse, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list projects", err)
	}
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out, nil
}

func (s *Service) GetProject(ctx context.Context, id int64) (*ProjectResponse, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProjectResponse(p)
	return &resp, nil
}

func (s *Service) CreateProject(ctx context.Context, dto ProjectDTO) (*ProjectResponse, error) {
	p := &financeDatamodel.Project{}
	if err := s.applyProject(ctx, p, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to create project", err)
	}
	s.logger.InfoContext(ctx, "project created", "project_id", p.ID)
	resp := toProjectResponse(p)
	return &resp, nil
}

func (s *Service) UpdateProject(ctx context.Context, id int64, dto ProjectDTO) (*ProjectResponse, error) {
	p, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyProject(ctx, p, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to update project", err)
	}
	resp := toProjectResponse(p)
	return &resp, nil
}

// DeleteProject keeps the project's payments and expenses, detached.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	if _, err := s.loadProject(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete project", err)
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}

func (s *Service) loadProject(ctx context.Context, id int64) (*financeDatamodel.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load project", err)
	}
	if p == nil {
		return nil, internal.NewNotFoundError("project not found", internal.ErrCodeProjectNotFound)
	}
	return p, nil
}

func (s *Service) applyProject(ctx context.Context, p *financeDatamodel.Project, dto ProjectDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}
	if dto.ClientID != nil {
		ok, err := s.repo.ClientExists(ctx, *dto.ClientID)
		if err != nil {
			return internal.NewInternalError("failed to check client", err)
		}
		if !ok {
			return internal.NewValidationFieldError("clientId", fmt.Sprintf("client %d does not exist", *dto.ClientID), internal.ErrCodeInvalidReference)
		}
	}
	start, _ := validation.ParseOptionalDate(dto.StartDate)
	end, _ := validation.ParseOptionalDate(dto.EndDate)
	budget, _ := types.ParseDecimal(string(dto.Budget))

	p.Name = dto.Name
	p.ClientID = dto.ClientID
	p.Description = dto.Description
	p.Budget = budget
	p.Currency = dto.Currency
	p.Status = dto.Status
	p.StartDate = start
	p.EndDate = end
	return nil
}

// checkProject returns a 400 when projectID is set but unknown.
func (s *Service) checkProject(ctx context.Context, projectID *int64) error {
	if projectID == nil {
		return nil
	}
	ok, err := s.repo.ProjectExists(ctx, *projectID)
	if err != nil {
		return internal.NewInternalError("failed to check project", err)
	}
	if !ok {
		return internal.NewValidationFieldError("projectId", fmt.Sprintf("project %d does not exist", *projectID), internal.ErrCodeInvalidReference)
	}
	return nil
}

// ----------------- PAYMENTS -----------------

func (s *Service) ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, error) {
	payments, err := s.repo.ListPayments(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list payments", err)
	}
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*PaymentResponse, error) {
	p, err := s.loadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPaymentResponse(p)
	return &resp, nil
}

func (s *Service) CreatePayment(ctx context.Context, dto PaymentDTO) (*PaymentResponse, error) {
	p := &financeDatamodel.Payment{}
	if err := s.applyPayment(ctx, p, dto); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to create payment", err)
	}
	s.logger.InfoContext(ctx, "payment recorded", "payment_id", p.ID, "amount", p.Amount.String(), "status", p.Status)
	resp := toPaymentResponse(p)
	return &resp, nil
}

func (s *Service) UpdatePayment(ctx context.Context, id int64, dto PaymentDTO) (*PaymentResponse, error) {
	p, err := s.loadPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyPayment(ctx, p, dto); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to update payment", err)
	}
	resp := toPaymentResponse(p)
	return &resp, nil
}

func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	if _, err := s.loadPayment(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete payment", err)
	}
	return nil
}

func (s *Service) loadPayment(ctx context.Context, id int64) (*financeDatamodel.Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load payment", err)
	}
	if p == nil {
		return nil, internal.NewNotFoundError("payment not found", internal.ErrCodeNotFound)
	}
	return p, nil
}

func (s *Service) applyPayment(ctx context.Context, p *financeDatamodel.Payment, dto PaymentDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}
	if err := s.checkProject(ctx, dto.ProjectID); err != nil {
		return err
	}
	day, _ := validation.ParseDate(dto.PaymentDate)
	amount, _ := types.ParseDecimal(string(dto.Amount))

	p.ProjectID = dto.ProjectID
	p.Amount = amount
	p.Currency = dto.Currency
	p.PaymentDate = midnightUTC(day)
	p.Method = dto.Method
	p.Reference = dto.Reference
	p.Status = dto.Status
	p.Notes = dto.Notes
	return nil
}

// ----------------- SETTINGS -----------------

func (s *Service) ListSettings(ctx context.Context) ([]*financeDatamodel.Setting, error) {
	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list settings", err)
	}
	return settings, nil
}

// PutSetting creates or replaces the value stored under key.
func (s *Service) PutSetting(ctx context.Context, key string, dto SettingDTO) (*financeDatamodel.Setting, error) {
	key = strings.TrimSpace(key)
	v := validation.NewValidator()
	v.Field("key", key).Required().MaxLength(100)
	v.Field("value", dto.Value).MaxLength(2000)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return nil, internal.NewInternalError("failed to load setting", err)
	}
	if setting == nil {
		setting = &financeDatamodel.Setting{Key: key}
	}
	setting.Value = dto.Value
	if dto.Description != nil {
		setting.Description = *dto.Description
	}
	if err := s.repo.UpsertSetting(ctx, setting); err != nil {
		return nil, internal.NewInternalError("failed to save setting", err)
	}
	s.logger.InfoContext(ctx, "finance setting updated", "key", key)
	return setting, nil
}

// SeedSettings inserts DefaultSettings that do not exist yet.
func (s *Service) SeedSettings(ctx context.Context) (int, error) {
	created := 0
	for _, def := range DefaultSettings {
		setting := def
		ok, err := s.repo.CreateSettingIfMissing(ctx, &setting)
		if err != nil {
			return created, internal.NewInternalError("failed to seed settings", err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
