package permission

import (
	"fmt"
	"regexp"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
)

var pageKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type PageDTO struct {
	PageKey     string `json:"pageKey"`
	DisplayName string `json:"displayName"`
	Path        string `json:"path"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (d PageDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("pageKey", d.PageKey).Required().MaxLength(64).Custom(func(value interface{}) *internal.AppError {
		if s, _ := value.(string); s != "" && !pageKeyPattern.MatchString(s) {
			return internal.NewValidationFieldError("pageKey", "pageKey must be lowercase letters, digits or underscores", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("displayName", d.DisplayName).Required().MaxLength(128)
	return v.Validate()
}

type RolePermissionView struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	PageID    int64  `json:"pageId"`
	PageKey   string `json:"pageKey"`
	CanView   bool   `json:"canView"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

// RolePermissionEntry addresses a page by id or key.
type RolePermissionEntry struct {
	PageID    int64  `json:"pageId"`
	PageKey   string `json:"pageKey"`
	CanView   bool   `json:"canView"`
	CanEdit   bool   `json:"canEdit"`
	CanDelete bool   `json:"canDelete"`
}

type BulkRolePermissionDTO struct {
	Role        string                `json:"role"`
	Permissions []RolePermissionEntry `json:"permissions"`
}

func (d BulkRolePermissionDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required().OneOf(internal.RoleUser, internal.RoleManager, internal.RoleAdmin)
	for i, p := range d.Permissions {
		if p.PageID == 0 && p.PageKey == "" {
			field := fmt.Sprintf("permissions[%d]", i)
			v.Field(field, p.PageKey).Custom(func(interface{}) *internal.AppError {
				return internal.NewValidationFieldError(field, "pageId or pageKey is required", internal.ErrCodeValidationFailed)
			})
		}
	}
	return v.Validate()
}

type CheckResponse struct {
	Page    string `json:"page"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}

type MenuPermissionsDTO struct {
	Permissions map[string]bool `json:"permissions"`
}

type MenuPermissionsResponse struct {
	UserID      int64           `json:"userId"`
	Permissions map[string]bool `json:"permissions"`
}
