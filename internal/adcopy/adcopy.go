package adcopy

import (
	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
)

type AdCopySetDTO struct {
	CampaignID   *int64 `json:"campaignId"`
	Name         string `json:"name"`
	Headline     string `json:"headline"`
	PrimaryText  string `json:"primaryText"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
	IsActive     *bool  `json:"isActive"`
}

func (d AdCopySetDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("headline", d.Headline).MaxLength(255)
	v.Field("callToAction", d.CallToAction).MaxLength(100)
	return v.Validate()
}

type ListFilter struct {
	CampaignID *int64
}
