package tag

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/agency-ops/internal"
	tagDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context, includeInactive bool) ([]*tagDatamodel.Tag, error)
	GetByID(ctx context.Context, id int64) (*tagDatamodel.Tag, error)
	GetByName(ctx context.Context, name string) (*tagDatamodel.Tag, error)
	Create(ctx context.Context, t *tagDatamodel.Tag) error
	Update(ctx context.Context, t *tagDatamodel.Tag) error
	Delete(ctx context.Context, id int64) error
}

type ServiceAPI interface {
	List(ctx context.Context, includeInactive bool) ([]*Tag, error)
	Get(ctx context.Context, id int64) (*Tag, error)
	Create(ctx context.Context, dto TagDTO) (*Tag, error)
	Update(ctx context.Context, id int64, dto TagDTO) (*Tag, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List hides deactivated tags unless includeInactive is set.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*Tag, error) {
	dataTags, err := s.repo.GetAll(ctx, includeInactive)
	if err != nil {
		return nil, internal.NewInternalError("failed to list tags", err)
	}
	tags := make([]*Tag, 0, len(dataTags))
	for _, t := range dataTags {
		tags = append(tags, FromDataModel(t))
	}
	return tags, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Tag, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load tag", err)
	}
	if t == nil {
		return nil, internal.NewNotFoundError("tag not found", internal.ErrCodeNotFound)
	}
	return FromDataModel(t), nil
}

func (s *Service) Create(ctx context.Context, dto TagDTO) (*Tag, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, dto.Name, 0); err != nil {
		return nil, err
	}

	t := &Tag{Name: dto.Name, Color: dto.Color, Description: dto.Description}
	t.Activate()
	if dto.IsActive != nil && !*dto.IsActive {
		t.Deactivate()
	}

	data := ToDataModel(t)
	if err := s.repo.Create(ctx, data); err != nil {
		return nil, internal.NewInternalError("failed to create tag", err)
	}
	s.logger.InfoContext(ctx, "tag created", "tag_id", data.ID, "name", data.Name)
	return FromDataModel(data), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto TagDTO) (*Tag, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, dto.Name, id); err != nil {
		return nil, err
	}

	t.Name = dto.Name
	t.Color = dto.Color
	t.Description = dto.Description
	if dto.IsActive != nil {
		if *dto.IsActive {
			t.Activate()
		} else {
			t.Deactivate()
		}
	}

	data := ToDataModel(t)
	if err := s.repo.Update(ctx, data); err != nil {
		return nil, internal.NewInternalError("failed to update tag", err)
	}
	return FromDataModel(data), nil
}

// Delete deactivates the tag; the row is kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete tag", err)
	}
	s.logger.InfoContext(ctx, "tag deactivated", "tag_id", id)
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return internal.NewInternalError("failed to check tag name", err)
	}
	if existing != nil && existing.ID != selfID {
		return internal.NewConflictError("tag name already exists", internal.ErrCodeDuplicate)
	}
	return nil
}
