package campaign

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// CSVColumns is the column order of the campaign export.
var CSVColumns = []string{"id", "name", "clientId", "adAccountId", "platform", "objective", "status", "budget", "startDate", "endDate", "notes"}

type CampaignDTO struct {
	Name        string        `json:"name"`
	ClientID    *int64        `json:"clientId"`
	AdAccountID *int64        `json:"adAccountId"`
	UserID      *int64        `json:"userId"`
	Platform    string        `json:"platform"`
	Objective   string        `json:"objective"`
	Status      string        `json:"status"`
	Budget      types.Decimal `json:"budget"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Notes       string        `json:"notes"`
}

func (d *CampaignDTO) Normalize() {
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if d.Budget == "" {
		d.Budget = "0"
	}
}

func (d CampaignDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("status", d.Status).OneOf(StatusDraft, StatusActive, StatusPaused, StatusCompleted)
	v.Field("budget", d.Budget).Decimal(true)
	v.Field("startDate", d.StartDate).Date()
	v.Field("endDate", d.EndDate).Date().Custom(func(interface{}) *internal.AppError {
		start, err1 := validation.ParseOptionalDate(d.StartDate)
		end, err2 := validation.ParseOptionalDate(d.EndDate)
		if err1 == nil && err2 == nil && start != nil && end != nil && end.Before(*start) {
			return internal.NewValidationFieldError("endDate", "endDate must not be before startDate", internal.ErrCodeInvalidDate)
		}
		return nil
	})
	return v.Validate()
}

type ListFilter struct {
	Status   string
	ClientID *int64
	UserID   *int64
}

type CampaignResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ClientID    *int64    `json:"clientId"`
	AdAccountID *int64    `json:"adAccountId"`
	UserID      *int64    `json:"userId"`
	Platform    string    `json:"platform"`
	Objective   string    `json:"objective"`
	Status      string    `json:"status"`
	Budget      float64   `json:"budget"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToResponse(c *agencyDatamodel.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		ClientID:    c.ClientID,
		AdAccountID: c.AdAccountID,
		UserID:      c.UserID,
		Platform:    c.Platform,
		Objective:   c.Objective,
		Status:      c.Status,
		Budget:      c.Budget.Float64(),
		StartDate:   dateString(c.StartDate),
		EndDate:     dateString(c.EndDate),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := validation.FormatDate(t)
	return &s
}

type DailySpendDTO struct {
	SpendDate string        `json:"spendDate"`
	Amount    types.Decimal `json:"amount"`
	Notes     string        `json:"notes"`
}

func (d DailySpendDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("spendDate", d.SpendDate).Required().Date()
	v.Field("amount", string(d.Amount)).Required().Decimal(true)
	return v.Validate()
}

type DailySpendResponse struct {
	ID         int64     `json:"id"`
	CampaignID int64     `json:"campaignId"`
	SpendDate  string    `json:"spendDate"`
	Amount     float64   `json:"amount"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

type DailySpendList struct {
	CampaignID int64                `json:"campaignId"`
	Total      float64              `json:"total"`
	Entries    []DailySpendResponse `json:"entries"`
}

func toSpendResponse(s *agencyDatamodel.CampaignDailySpend) DailySpendResponse {
	return DailySpendResponse{
		ID:         s.ID,
		CampaignID: s.CampaignID,
		SpendDate:  s.SpendDate.Format(validation.DateLayout),
		Amount:     s.Amount.Float64(),
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
	}
}
