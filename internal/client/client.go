package client

import (
	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// CSVColumns is the column order of the client export.
var CSVColumns = []string{"id", "clientName", "email", "phone", "company", "address", "status", "notes"}

type ClientDTO struct {
	ClientName string `json:"clientName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func (d *ClientDTO) Normalize() {
	if d.Status == "" {
		d.Status = StatusActive
	}
}

func (d ClientDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("clientName", d.ClientName).Required().MaxLength(255)
	v.Field("email", d.Email).Email()
	v.Field("status", d.Status).OneOf(StatusActive, StatusInactive)
	return v.Validate()
}

type ListFilter struct {
	Status string
	Search string
}
