package tag

import (
	"regexp"
	"strings"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	tagDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/tag"
)

const DefaultColor = "#6B7280"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Tag) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

func (t *Tag) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

func ToDataModel(t *Tag) *tagDatamodel.Tag {
	return &tagDatamodel.Tag{
		ID:          t.ID,
		Name:        t.Name,
		Color:       t.Color,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *tagDatamodel.Tag) *Tag {
	return &Tag{
		ID:          t.ID,
		Name:        t.Name,
		Color:       t.Color,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type TagDTO struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (d *TagDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	if d.Color == "" {
		d.Color = DefaultColor
	}
}

func (d TagDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(50)
	v.Field("color", d.Color).Custom(func(value interface{}) *internal.AppError {
		if !colorPattern.MatchString(d.Color) {
			return internal.NewValidationFieldError("color", "color must be a hex value like #1A2B3C", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	return v.Validate()
}
