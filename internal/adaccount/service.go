package adaccount

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/agency-ops/internal"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.AdAccount, error)
	GetByID(ctx context.Context, id int64) (*agencyDatamodel.AdAccount, error)
	Create(ctx context.Context, a *agencyDatamodel.AdAccount) error
	Update(ctx context.Context, a *agencyDatamodel.AdAccount) error
	Delete(ctx context.Context, id int64) error
	ClientExists(ctx context.Context, id int64) (bool, error)
}

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.AdAccount, error)
	Get(ctx context.Context, id int64) (*agencyDatamodel.AdAccount, error)
	Create(ctx context.Context, dto AdAccountDTO) (*agencyDatamodel.AdAccount, error)
	Update(ctx context.Context, id int64, dto AdAccountDTO) (*agencyDatamodel.AdAccount, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.AdAccount, error) {
	accounts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list ad accounts", err)
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*agencyDatamodel.AdAccount, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load ad account", err)
	}
	if a == nil {
		return nil, internal.NewNotFoundError("ad account not found", internal.ErrCodeNotFound)
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, dto AdAccountDTO) (*agencyDatamodel.AdAccount, error) {
	if err := s.validate(ctx, &dto); err != nil {
		return nil, err
	}
	a := &agencyDatamodel.AdAccount{}
	apply(a, dto)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to create ad account", err)
	}
	s.logger.InfoContext(ctx, "ad account created", "ad_account_id", a.ID, "platform", a.Platform)
	return a, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto AdAccountDTO) (*agencyDatamodel.AdAccount, error) {
	if err := s.validate(ctx, &dto); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(a, dto)
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, internal.NewInternalError("failed to update ad account", err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete ad account", err)
	}
	return nil
}

func (s *Service) validate(ctx context.Context, dto *AdAccountDTO) error {
	if dto.Status == "" {
		dto.Status = StatusActive
	}
	if err := dto.Validate(); err != nil {
		return err
	}
	if dto.ClientID != nil {
		ok, err := s.repo.ClientExists(ctx, *dto.ClientID)
		if err != nil {
			return internal.NewInternalError("failed to check client", err)
		}
		if !ok {
			return internal.NewValidationFieldError("clientId", "client does not exist", internal.ErrCodeInvalidReference)
		}
	}
	return nil
}

func apply(a *agencyDatamodel.AdAccount, dto AdAccountDTO) {
	a.ClientID = dto.ClientID
	a.Platform = dto.Platform
	a.AccountName = dto.AccountName
	a.AccountID = dto.AccountID
	a.Status = dto.Status
	a.Notes = dto.Notes
}
