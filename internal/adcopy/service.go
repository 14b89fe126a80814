package adcopy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/agency-ops/internal"
	agencyDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/agency"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.AdCopySet, error)
	GetByID(ctx context.Context, id int64) (*agencyDatamodel.AdCopySet, error)
	Create(ctx context.Context, set *agencyDatamodel.AdCopySet) error
	Update(ctx context.Context, set *agencyDatamodel.AdCopySet) error
	Delete(ctx context.Context, id int64) error
	CampaignExists(ctx context.Context, id int64) (bool, error)
}

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.AdCopySet, error)
	Get(ctx context.Context, id int64) (*agencyDatamodel.AdCopySet, error)
	Create(ctx context.Context, dto AdCopySetDTO) (*agencyDatamodel.AdCopySet, error)
	Update(ctx context.Context, id int64, dto AdCopySetDTO) (*agencyDatamodel.AdCopySet, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*agencyDatamodel.AdCopySet, error) {
	sets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list ad copy sets", err)
	}
	return sets, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*agencyDatamodel.AdCopySet, error) {
	set, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load ad copy set", err)
	}
	if set == nil {
		return nil, internal.NewNotFoundError("ad copy set not found", internal.ErrCodeNotFound)
	}
	return set, nil
}

func (s *Service) Create(ctx context.Context, dto AdCopySetDTO) (*agencyDatamodel.AdCopySet, error) {
	set := &agencyDatamodel.AdCopySet{IsActive: true}
	if err := s.apply(ctx, set, dto); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, set); err != nil {
		return nil, internal.NewInternalError("failed to create ad copy set", err)
	}
	s.logger.InfoContext(ctx, "ad copy set created", "ad_copy_set_id", set.ID)
	return set, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto AdCopySetDTO) (*agencyDatamodel.AdCopySet, error) {
	set, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, set, dto); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, set); err != nil {
		return nil, internal.NewInternalError("failed to update ad copy set", err)
	}
	return set, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete ad copy set", err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, set *agencyDatamodel.AdCopySet, dto AdCopySetDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if dto.CampaignID != nil {
		ok, err := s.repo.CampaignExists(ctx, *dto.CampaignID)
		if err != nil {
			return internal.NewInternalError("failed to check campaign", err)
		}
		if !ok {
			return internal.NewValidationFieldError("campaignId", fmt.Sprintf("campaign %d does not exist", *dto.CampaignID), internal.ErrCodeInvalidReference)
		}
	}
	set.CampaignID = dto.CampaignID
	set.Name = dto.Name
	set.Headline = dto.Headline
	set.PrimaryText = dto.PrimaryText
	set.Description = dto.Description
	set.CallToAction = dto.CallToAction
	if dto.IsActive != nil {
		set.IsActive = *dto.IsActive
	}
	return nil
}
