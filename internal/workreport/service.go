package workreport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"github.com/frahmantamala/agency-ops/internal/core/events"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.WorkReport, error)
	GetByID(ctx context.Context, id int64) (*agencyDatamodel.WorkReport, error)
	Create(ctx context.Context, report *agencyDatamodel.WorkReport) error
	Update(ctx context.Context, report *agencyDatamodel.WorkReport) error
	Delete(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
}

// EventPublisher is satisfied by *events.EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.CurrentUser, filter ListFilter) ([]WorkReportResponse, error)
	Get(ctx context.Context, actor *internal.CurrentUser, id int64) (*WorkReportResponse, error)
	Create(ctx context.Context, actor *internal.CurrentUser, dto WorkReportDTO) (*WorkReportResponse, error)
	Update(ctx context.Context, actor *internal.CurrentUser, id int64, dto WorkReportDTO) (*WorkReportResponse, error)
	Submit(ctx context.Context, actor *internal.CurrentUser, id int64) (*WorkReportResponse, error)
	Delete(ctx context.Context, actor *internal.CurrentUser, id int64) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// List pins the owner filter to the caller unless they are a manager.
func (s *Service) List(ctx context.Context, actor *internal.CurrentUser, filter ListFilter) ([]WorkReportResponse, error) {
	if !actor.IsManager() {
		uid := actorID(actor)
		filter.UserID = &uid
	}
	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list work reports", err)
	}
	out := make([]WorkReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, ToResponse(r))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *internal.CurrentUser, id int64) (*WorkReportResponse, error) {
	report, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(report)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.CurrentUser, dto WorkReportDTO) (*WorkReportResponse, error) {
	ownerID := actorID(actor)
	if dto.UserID != nil && *dto.UserID != ownerID {
		if !actor.IsManager() {
			return nil, internal.ErrPermissionDenied
		}
		ownerID = *dto.UserID
	}

	report := &agencyDatamodel.WorkReport{UserID: ownerID}
	if err := s.apply(ctx, actor, report, dto); err != nil {
		return nil, err
	}
	if ok, err := s.repo.UserExists(ctx, report.UserID); err != nil {
		return nil, internal.NewInternalError("failed to check user", err)
	} else if !ok {
		return nil, internal.NewValidationFieldError("userId", fmt.Sprintf("userId %d does not exist", report.UserID), internal.ErrCodeInvalidReference)
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, internal.NewInternalError("failed to create work report", err)
	}
	s.logger.InfoContext(ctx, "work report created", "report_id", report.ID, "user_id", report.UserID, "status", report.Status)

	if report.Status == StatusSubmitted {
		s.publishSubmitted(ctx, report)
	}
	resp := ToResponse(report)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, actor *internal.CurrentUser, id int64, dto WorkReportDTO) (*WorkReportResponse, error) {
	report, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := report.Status
	if err := s.apply(ctx, actor, report, dto); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, internal.NewInternalError("failed to update work report", err)
	}
	if previous != StatusSubmitted && report.Status == StatusSubmitted {
		s.publishSubmitted(ctx, report)
	}
	resp := ToResponse(report)
	return &resp, nil
}

// Submit moves a draft to submitted. Submitting twice is a no-op.
func (s *Service) Submit(ctx context.Context, actor *internal.CurrentUser, id int64) (*WorkReportResponse, error) {
	report, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch report.Status {
	case StatusSubmitted:
	case StatusReviewed:
		return nil, internal.NewValidationFieldError("status", "reviewed reports cannot be resubmitted", internal.ErrCodeInvalidStatus)
	default:
		report.Status = StatusSubmitted
		if err := s.repo.Update(ctx, report); err != nil {
			return nil, internal.NewInternalError("failed to submit work report", err)
		}
		s.publishSubmitted(ctx, report)
	}
	resp := ToResponse(report)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, actor *internal.CurrentUser, id int64) error {
	if _, err := s.loadVisible(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete work report", err)
	}
	return nil
}

// loadVisible hides other users' reports from non-managers behind a 404.
func (s *Service) loadVisible(ctx context.Context, actor *internal.CurrentUser, id int64) (*agencyDatamodel.WorkReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load work report", err)
	}
	if report == nil || (!actor.IsManager() && report.UserID != actorID(actor)) {
		return nil, internal.NewNotFoundError("work report not found", internal.ErrCodeNotFound)
	}
	return report, nil
}

func (s *Service) apply(ctx context.Context, actor *internal.CurrentUser, report *agencyDatamodel.WorkReport, dto WorkReportDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}
	if dto.Status == StatusReviewed && report.Status != StatusReviewed && !actor.IsManager() {
		return internal.ErrPermissionDenied
	}
	day, _ := validation.ParseDate(dto.ReportDate)
	hours, _ := types.ParseDecimal(string(dto.HoursWorked))

	report.ReportDate = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	report.Title = dto.Title
	report.Description = dto.Description
	report.HoursWorked = hours
	report.Status = dto.Status
	return nil
}

func (s *Service) publishSubmitted(ctx context.Context, report *agencyDatamodel.WorkReport) {
	if s.publisher == nil {
		return
	}
	event := events.NewWorkReportSubmittedEvent(report.ID, report.UserID, report.Title, report.ReportDate)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish work report event", "report_id", report.ID, "error", err)
	}
}

func actorID(actor *internal.CurrentUser) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
