package workreport

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
)

type WorkReportDTO struct {
	UserID      *int64        `json:"userId"`
	ReportDate  string        `json:"reportDate"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	HoursWorked types.Decimal `json:"hoursWorked"`
	Status      string        `json:"status"`
}

func (d *WorkReportDTO) Normalize() {
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if d.HoursWorked == "" {
		d.HoursWorked = "0"
	}
}

func (d WorkReportDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("reportDate", d.ReportDate).Required().Date()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("status", d.Status).OneOf(StatusDraft, StatusSubmitted, StatusReviewed)
	v.Field("hoursWorked", d.HoursWorked).Decimal(true).Custom(func(interface{}) *internal.AppError {
		if h, err := types.ParseDecimal(string(d.HoursWorked)); err == nil && h.Float64() > 24 {
			return internal.NewValidationFieldError("hoursWorked", "hoursWorked cannot exceed 24", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	return v.Validate()
}

// ListFilter bounds reports by owner and an inclusive report date range.
type ListFilter struct {
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type WorkReportResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	ReportDate  string    `json:"reportDate"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HoursWorked float64   `json:"hoursWorked"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToResponse(r *agencyDatamodel.WorkReport) WorkReportResponse {
	return WorkReportResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		ReportDate:  r.ReportDate.Format(validation.DateLayout),
		Title:       r.Title,
		Description: r.Description,
		HoursWorked: r.HoursWorked.Float64(),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
