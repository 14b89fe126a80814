package client

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/csvutil"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.Client, error)
	GetByID(ctx context.Context, id int64) (*agencyDatamodel.Client, error)
	Create(ctx context.Context, c *agencyDatamodel.Client) error
	Update(ctx context.Context, c *agencyDatamodel.Client) error
	Delete(ctx context.Context, id int64) error
	SyncSequence(ctx context.Context) error
}

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.Client, error)
	Get(ctx context.Context, id int64) (*agencyDatamodel.Client, error)
	Create(ctx context.Context, dto ClientDTO) (*agencyDatamodel.Client, error)
	Update(ctx context.Context, id int64, dto ClientDTO) (*agencyDatamodel.Client, error)
	Delete(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context) ([]byte, error)
	ImportCSV(ctx context.Context, data []byte) (*csvutil.ImportResult, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.Client, error) {
	clients, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list clients", err)
	}
	return clients, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*agencyDatamodel.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load client", err)
	}
	if c == nil {
		return nil, internal.NewNotFoundError("client not found", internal.ErrCodeNotFound)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, dto ClientDTO) (*agencyDatamodel.Client, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	c := &agencyDatamodel.Client{}
	apply(c, dto)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, internal.NewInternalError("failed to create client", err)
	}
	s.logger.InfoContext(ctx, "client created", "client_id", c.ID)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto ClientDTO) (*agencyDatamodel.Client, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, dto)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, internal.NewInternalError("failed to update client", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete client", err)
	}
	s.logger.InfoContext(ctx, "client deleted", "client_id", id)
	return nil
}

func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	clients, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, internal.NewInternalError("failed to list clients", err)
	}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10), c.ClientName, c.Email, c.Phone, c.Company, c.Address, c.Status, c.Notes,
		})
	}
	data, err := csvutil.Write(CSVColumns, rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to render CSV", err)
	}
	return data, nil
}

// ImportCSV upserts every valid row. Rows with an id that exists are updated,
// the rest are inserted keeping any id they carry.
func (s *Service) ImportCSV(ctx context.Context, data []byte) (*csvutil.ImportResult, error) {
	records, err := csvutil.Parse(data, "clientName")
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
		dto := ClientDTO{
			ClientName: rec.Get("clientName"),
			Email:      rec.Get("email"),
			Phone:      rec.Get("phone"),
			Company:    rec.Get("company"),
			Address:    rec.Get("address"),
			Status:     rec.Get("status"),
			Notes:      rec.Get("notes"),
		}
		dto.Normalize()
		if verr := dto.Validate(); verr != nil {
			result.Skip(rec.Line, "%s", verr.GetDetailedMessage())
			continue
		}

		var existing *agencyDatamodel.Client
		if id != nil {
			if existing, err = s.repo.GetByID(ctx, *id); err != nil {
				return nil, internal.NewInternalError("failed to load client", err)
			}
		}
		if existing != nil {
			apply(existing, dto)
			if err := s.repo.Update(ctx, existing); err != nil {
				result.Skip(rec.Line, "update failed: %v", err)
				continue
			}
			result.Updated++
			continue
		}

		c := &agencyDatamodel.Client{}
		if id != nil {
			c.ID = *id
			explicitIDs = true
		}
		apply(c, dto)
		if err := s.repo.Create(ctx, c); err != nil {
			result.Skip(rec.Line, "insert failed: %v", err)
			continue
		}
		result.Imported++
	}

	if explicitIDs {
		if err := s.repo.SyncSequence(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to sync clients sequence", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "clients imported", "imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func apply(c *agencyDatamodel.Client, dto ClientDTO) {
	c.ClientName = dto.ClientName
	c.Email = dto.Email
	c.Phone = dto.Phone
	c.Company = dto.Company
	c.Address = dto.Address
	c.Status = dto.Status
	c.Notes = dto.Notes
}
