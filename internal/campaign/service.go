package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/csvutil"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
	"github.com/frahmantamala/agency-ops/internal/core/types"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.Campaign, error)
	GetByID(ctx context.Context, id int64) (*agencyDatamodel.Campaign, error)
	Create(ctx context.Context, c *agencyDatamodel.Campaign) error
	Update(ctx context.Context, c *agencyDatamodel.Campaign) error
	Delete(ctx context.Context, id int64) error
	SyncSequence(ctx context.Context) error

	ClientExists(ctx context.Context, id int64) (bool, error)
	AdAccountExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)

	ListDailySpend(ctx context.Context, campaignID int64) ([]*agencyDatamodel.CampaignDailySpend, error)
	UpsertDailySpend(ctx context.Context, spend *agencyDatamodel.CampaignDailySpend) error
	GetDailySpend(ctx context.Context, campaignID, spendID int64) (*agencyDatamodel.CampaignDailySpend, error)
	DeleteDailySpend(ctx context.Context, spendID int64) error
}

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]CampaignResponse, error)
	Get(ctx context.Context, id int64) (*CampaignResponse, error)
	Create(ctx context.Context, actor *internal.CurrentUser, dto CampaignDTO) (*CampaignResponse, error)
	Update(ctx context.Context, id int64, dto CampaignDTO) (*CampaignResponse, error)
	Delete(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context) ([]byte, error)
	ImportCSV(ctx context.Context, data []byte) (*csvutil.ImportResult, error)
	ListDailySpend(ctx context.Context, campaignID int64) (*DailySpendList, error)
	RecordDailySpend(ctx context.Context, campaignID int64, dto DailySpendDTO) (*DailySpendResponse, error)
	DeleteDailySpend(ctx context.Context, campaignID, spendID int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]CampaignResponse, error) {
	campaigns, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list campaigns", err)
	}
	out := make([]CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, ToResponse(c))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*CampaignResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(c)
	return &resp, nil
}

// Create defaults the owner to the calling user.
func (s *Service) Create(ctx context.Context, actor *internal.CurrentUser, dto CampaignDTO) (*CampaignResponse, error) {
	if dto.UserID == nil && actor != nil {
		uid := actor.ID
		dto.UserID = &uid
	}
	c := &agencyDatamodel.Campaign{}
	if err := s.prepare(ctx, c, dto); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, internal.NewInternalError("failed to create campaign", err)
	}
	s.logger.InfoContext(ctx, "campaign created", "campaign_id", c.ID, "status", c.Status)
	resp := ToResponse(c)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto CampaignDTO) (*CampaignResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, c, dto); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, internal.NewInternalError("failed to update campaign", err)
	}
	resp := ToResponse(c)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete campaign", err)
	}
	s.logger.InfoContext(ctx, "campaign deleted", "campaign_id", id)
	return nil
}

func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	campaigns, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, internal.NewInternalError("failed to list campaigns", err)
	}
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name,
			optionalID(c.ClientID),
			optionalID(c.AdAccountID),
			c.Platform,
			c.Objective,
			c.Status,
			c.Budget.String(),
			validation.FormatDate(c.StartDate),
			validation.FormatDate(c.EndDate),
			c.Notes,
		})
	}
	data, err := csvutil.Write(CSVColumns, rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to render CSV", err)
	}
	return data, nil
}

// ImportCSV upserts campaigns by id. Rows referencing a client or ad account
// that does not exist are skipped.
func (s *Service) ImportCSV(ctx context.Context, data []byte) (*csvutil.ImportResult, error) {
	records, err := csvutil.Parse(data, "name")
	if err != nil {
		return nil, err
	}

	result := csvutil.NewImportResult()
	explicitIDs := false
	for _, rec := range records {
		id, err := rec.OptionalInt64("id")
		if err != nil {
			result.Skip(rec.Line, "%v", err)
			continue
		}
		clientID, err := rec.OptionalInt64("clientId")
		if err != nil {
			result.Skip(rec.Line, "%v", err)
			continue
		}
		adAccountID, err := rec.OptionalInt64("adAccountId")
		if err != nil {
			result.Skip(rec.Line, "%v", err)
			continue
		}
		dto := CampaignDTO{
			Name:        rec.Get("name"),
			ClientID:    clientID,
			AdAccountID: adAccountID,
			Platform:    rec.Get("platform"),
			Objective:   rec.Get("objective"),
			Status:      rec.Get("status"),
			Budget:      types.Decimal(rec.Get("budget")),
			StartDate:   rec.Get("startDate"),
			EndDate:     rec.Get("endDate"),
			Notes:       rec.Get("notes"),
		}

		var existing *agencyDatamodel.Campaign
		if id != nil {
			if existing, err = s.repo.GetByID(ctx, *id); err != nil {
				return nil, internal.NewInternalError("failed to load campaign", err)
			}
		}

		target := existing
		if target == nil {
			target = &agencyDatamodel.Campaign{}
		} else {
			dto.UserID = target.UserID
		}
		if err := s.prepare(ctx, target, dto); err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				result.Skip(rec.Line, "%s", appErr.GetDetailedMessage())
				continue
			}
			return nil, err
		}

		if existing != nil {
			if err := s.repo.Update(ctx, target); err != nil {
				result.Skip(rec.Line, "update failed: %v", err)
				continue
			}
			result.Updated++
			continue
		}

		if id != nil {
			target.ID = *id
			explicitIDs = true
		}
		if err := s.repo.Create(ctx, target); err != nil {
			result.Skip(rec.Line, "insert failed: %v", err)
			continue
		}
		result.Imported++
	}

	if explicitIDs {
		if err := s.repo.SyncSequence(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to sync campaigns sequence", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "campaigns imported", "imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func (s *Service) ListDailySpend(ctx context.Context, campaignID int64) (*DailySpendList, error) {
	if _, err := s.load(ctx, campaignID); err != nil {
		return nil, err
	}
	spends, err := s.repo.ListDailySpend(ctx, campaignID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list daily spend", err)
	}
	out := &DailySpendList{CampaignID: campaignID, Entries: make([]DailySpendResponse, 0, len(spends))}
	for _, sp := range spends {
		out.Entries = append(out.Entries, toSpendResponse(sp))
		out.Total += sp.Amount.Float64()
	}
	return out, nil
}

// RecordDailySpend inserts the day's figure or replaces it if one exists.
func (s *Service) RecordDailySpend(ctx context.Context, campaignID int64, dto DailySpendDTO) (*DailySpendResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, campaignID); err != nil {
		return nil, err
	}
	day, _ := validation.ParseDate(dto.SpendDate)
	amount, _ := types.ParseDecimal(string(dto.Amount))

	spend := &agencyDatamodel.CampaignDailySpend{
		CampaignID: campaignID,
		SpendDate:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		Amount:     amount,
		Notes:      dto.Notes,
	}
	if err := s.repo.UpsertDailySpend(ctx, spend); err != nil {
		return nil, internal.NewInternalError("failed to save daily spend", err)
	}
	resp := toSpendResponse(spend)
	return &resp, nil
}

func (s *Service) DeleteDailySpend(ctx context.Context, campaignID, spendID int64) error {
	spend, err := s.repo.GetDailySpend(ctx, campaignID, spendID)
	if err != nil {
		return internal.NewInternalError("failed to load daily spend", err)
	}
	if spend == nil {
		return internal.NewNotFoundError("daily spend entry not found", internal.ErrCodeNotFound)
	}
	if err := s.repo.DeleteDailySpend(ctx, spendID); err != nil {
		return internal.NewInternalError("failed to delete daily spend", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*agencyDatamodel.Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load campaign", err)
	}
	if c == nil {
		return nil, internal.NewNotFoundError("campaign not found", internal.ErrCodeNotFound)
	}
	return c, nil
}

// prepare validates dto, checks its references and copies it onto c.
func (s *Service) prepare(ctx context.Context, c *agencyDatamodel.Campaign, dto CampaignDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}

	refs := []struct {
		field  string
		id     *int64
		exists func(context.Context, int64) (bool, error)
	}{
		{"clientId", dto.ClientID, s.repo.ClientExists},
		{"adAccountId", dto.AdAccountID, s.repo.AdAccountExists},
		{"userId", dto.UserID, s.repo.UserExists},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := ref.exists(ctx, *ref.id)
		if err != nil {
			return internal.NewInternalError(fmt.Sprintf("failed to check %s", ref.field), err)
		}
		if !ok {
			return internal.NewValidationFieldError(ref.field, fmt.Sprintf("%s %d does not exist", ref.field, *ref.id), internal.ErrCodeInvalidReference)
		}
	}

	start, _ := validation.ParseOptionalDate(dto.StartDate)
	end, _ := validation.ParseOptionalDate(dto.EndDate)
	budget, _ := types.ParseDecimal(string(dto.Budget))

	c.Name = dto.Name
	c.ClientID = dto.ClientID
	c.AdAccountID = dto.AdAccountID
	c.UserID = dto.UserID
	c.Platform = dto.Platform
	c.Objective = dto.Objective
	c.Status = dto.Status
	c.Budget = budget
	c.StartDate = start
	c.EndDate = end
	c.Notes = dto.Notes
	return nil
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
