package permission

import (
	"context"

	"github.com/frahmantamala/agency-ops/internal"
)

// Policy decides whether a principal may proceed.
type Policy interface {
	Authorize(ctx context.Context, principal *internal.CurrentUser) (bool, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, principal *internal.CurrentUser) (bool, error)

func (f PolicyFunc) Authorize(ctx context.Context, principal *internal.CurrentUser) (bool, error) {
	return f(ctx, principal)
}

// PagePolicy requires Action on PageKey according to the role matrix.
type PagePolicy struct {
	Checker *Checker
	PageKey string
	Action  Action
}

func (p PagePolicy) Authorize(ctx context.Context, principal *internal.CurrentUser) (bool, error) {
	if principal == nil {
		return false, nil
	}
	return p.Checker.Check(ctx, principal.ID, p.PageKey, p.Action)
}

// Page builds a PagePolicy bound to c.
func (c *Checker) Page(pageKey string, action Action) PagePolicy {
	return PagePolicy{Checker: c, PageKey: pageKey, Action: action}
}

type superAdminBypass struct {
	next Policy
}

// SuperAdminBypass lets super admins through without consulting next.
func SuperAdminBypass(next Policy) Policy {
	return superAdminBypass{next: next}
}

func (s superAdminBypass) Authorize(ctx context.Context, principal *internal.CurrentUser) (bool, error) {
	if principal.IsSuperAdmin() {
		return true, nil
	}
	if s.next == nil {
		return false, nil
	}
	return s.next.Authorize(ctx, principal)
}

// RolePolicy allows only the listed roles.
type RolePolicy struct {
	Roles []string
}

func (p RolePolicy) Authorize(_ context.Context, principal *internal.CurrentUser) (bool, error) {
	if principal == nil {
		return false, nil
	}
	for _, r := range p.Roles {
		if principal.Role == r {
			return true, nil
		}
	}
	return false, nil
}

// AnyOf passes when at least one policy passes. Errors short-circuit.
func AnyOf(policies ...Policy) Policy {
	return PolicyFunc(func(ctx context.Context, principal *internal.CurrentUser) (bool, error) {
		for _, p := range policies {
			ok, err := p.Authorize(ctx, principal)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	})
}
