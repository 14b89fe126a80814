package user

import (
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
)

const minPasswordLength = 6

type CreateUserDTO struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

func (d CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(128)
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(64)
	v.Field("password", d.Password).Required().MinLength(minPasswordLength)
	v.Field("role", d.Role).Required().OneOf(internal.Roles...)
	return v.Validate()
}

type UpdateUserDTO struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

func (d UpdateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(128)
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(64)
	v.Field("role", d.Role).Required().OneOf(internal.Roles...)
	return v.Validate()
}

type ChangePasswordDTO struct {
	Password string `json:"password"`
}

func (d ChangePasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("password", d.Password).Required().MinLength(minPasswordLength)
	return v.Validate()
}

// UserResponse never carries the password.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToResponse(u *userDatamodel.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
