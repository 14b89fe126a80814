package adaccount

import (
	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type AdAccountDTO struct {
	ClientID    *int64 `json:"clientId"`
	Platform    string `json:"platform"`
	AccountName string `json:"accountName"`
	AccountID   string `json:"accountId"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

func (d AdAccountDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("platform", d.Platform).Required().MaxLength(64)
	v.Field("accountName", d.AccountName).Required().MaxLength(255)
	v.Field("status", d.Status).OneOf(StatusActive, StatusInactive)
	return v.Validate()
}

type ListFilter struct {
	ClientID *int64
	Platform string
}
