package postgres

import (
	"context"
	"errors"

	tagDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
	"github.com/frahmantamala/agency-ops/internal/tag"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) tag.RepositoryAPI {
	return &TagRepository{db: db}
}

func (r *TagRepository) GetAll(ctx context.Context, includeInactive bool) ([]*tagDatamodel.Tag, error) {
	var tags []*tagDatamodel.Tag
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&tags).Error
	return tags, err
}

func (r *TagRepository) GetByName(ctx context.Context, name string) (*tagDatamodel.Tag, error) {
	var t tagDatamodel.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*tagDatamodel.Tag, error) {
	var t tagDatamodel.Tag
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepository) Create(ctx context.Context, t *tagDatamodel.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TagRepository) Update(ctx context.Context, t *tagDatamodel.Tag) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&tagDatamodel.Tag{}).Where("id = ?", id).Update("is_active", false).Error
}
