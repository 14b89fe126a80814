package permission

import (
	"context"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	permissionDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
)

type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ParseAction normalises an action name. ok is false for unknown actions.
func ParseAction(s string) (Action, bool) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionView, ActionEdit, ActionDelete:
		return a, true
	default:
		return a, false
	}
}

// PageAccess is the flag triple a role holds on one page.
type PageAccess struct {
	CanView   bool `json:"canView"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

func (a PageAccess) Allows(action Action) bool {
	switch action {
	case ActionView:
		return a.CanView
	case ActionEdit:
		return a.CanEdit
	case ActionDelete:
		return a.CanDelete
	default:
		return false
	}
}

// Repository is the permission storage. Lookups return nil, nil when the
// row does not exist.
type Repository interface {
	GetUserRole(ctx context.Context, userID int64) (role string, found bool, err error)

	ListPages(ctx context.Context) ([]permissionDatamodel.Page, error)
	GetPageByID(ctx context.Context, id int64) (*permissionDatamodel.Page, error)
	GetPageByKey(ctx context.Context, key string) (*permissionDatamodel.Page, error)
	CreatePage(ctx context.Context, page *permissionDatamodel.Page) error
	UpdatePage(ctx context.Context, page *permissionDatamodel.Page) error
	DeletePage(ctx context.Context, id int64) error
	EnsurePage(ctx context.Context, page *permissionDatamodel.Page) (*permissionDatamodel.Page, error)

	GetRolePermission(ctx context.Context, role string, pageID int64) (*permissionDatamodel.RolePermission, error)
	ListRolePermissions(ctx context.Context, role string) ([]permissionDatamodel.RolePermission, error)
	UpsertRolePermission(ctx context.Context, rp *permissionDatamodel.RolePermission) error
	CreateRolePermissionIfMissing(ctx context.Context, rp *permissionDatamodel.RolePermission) (bool, error)

	ListMenuPermissions(ctx context.Context, userID int64) ([]permissionDatamodel.UserMenuPermission, error)
	ReplaceMenuPermissions(ctx context.Context, userID int64, perms []permissionDatamodel.UserMenuPermission) error
}

// Checker answers "may this user perform action on page".
type Checker struct {
	repo Repository
}

func NewChecker(repo Repository) *Checker {
	return &Checker{repo: repo}
}

// Check resolves the user's role and consults the role matrix. Super admins
// pass every check, including pages that do not exist.
func (c *Checker) Check(ctx context.Context, userID int64, pageKey string, action Action) (bool, error) {
	role, found, err := c.repo.GetUserRole(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return c.CheckRole(ctx, role, pageKey, action)
}

// CheckRole is Check for a role that is already known.
func (c *Checker) CheckRole(ctx context.Context, role, pageKey string, action Action) (bool, error) {
	if role == internal.RoleSuperAdmin {
		return true, nil
	}

	page, err := c.repo.GetPageByKey(ctx, pageKey)
	if err != nil {
		return false, err
	}
	if page == nil || !page.IsActive {
		return false, nil
	}

	rp, err := c.repo.GetRolePermission(ctx, role, page.ID)
	if err != nil {
		return false, err
	}
	if rp == nil {
		return false, nil
	}

	return accessOf(rp).Allows(action), nil
}

func accessOf(rp *permissionDatamodel.RolePermission) PageAccess {
	return PageAccess{CanView: rp.CanView, CanEdit: rp.CanEdit, CanDelete: rp.CanDelete}
}
