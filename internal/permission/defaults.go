package permission

import (
	"context"
	"fmt"

	"github.com/frahmantamala/agency-ops/internal"
	permissionDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/permission"
)

// Page keys used to guard routes.
const (
	PageDashboard   = "dashboard"
	PageCampaigns   = "campaigns"
	PageClients     = "clients"
	PageAdAccounts  = "ad_accounts"
	PageAdCopySets  = "ad_copy_sets"
	PageWorkReports = "work_reports"
	PageFinance     = "finance"
	PageEmployees   = "employees"
	PageSalaries    = "salaries"
	PageTags        = "tags"
	PageUsers       = "users"
	PageAdmin       = "admin"
	PageBackup      = "backup"
	PageTelegram    = "telegram"
)

type pageDef struct {
	Key         string
	DisplayName string
	Path        string
}

var defaultPages = []pageDef{
	{PageDashboard, "Dashboard", "/dashboard"},
	{PageCampaigns, "Campaigns", "/campaigns"},
	{PageClients, "Clients", "/clients"},
	{PageAdAccounts, "Ad Accounts", "/ad-accounts"},
	{PageAdCopySets, "Ad Copy Sets", "/ad-copy-sets"},
	{PageWorkReports, "Work Reports", "/work-reports"},
	{PageFinance, "Finance", "/finance"},
	{PageEmployees, "Employees", "/employees"},
	{PageSalaries, "Salaries", "/salaries"},
	{PageTags, "Tags", "/tags"},
	{PageUsers, "Users", "/users"},
	{PageAdmin, "Administration", "/admin"},
	{PageBackup, "Backup", "/backup"},
	{PageTelegram, "Notifications", "/telegram"},
}

var (
	viewOnly = PageAccess{CanView: true}
	viewEdit = PageAccess{CanView: true, CanEdit: true}
	full     = PageAccess{CanView: true, CanEdit: true, CanDelete: true}
)

// defaultMatrix holds the seeded access per role. Pages a role does not list
// get no row and are therefore denied. Super admins bypass the matrix.
var defaultMatrix = map[string]map[string]PageAccess{
	internal.RoleUser: {
		PageDashboard:   viewOnly,
		PageCampaigns:   viewEdit,
		PageClients:     viewOnly,
		PageAdAccounts:  viewOnly,
		PageAdCopySets:  viewEdit,
		PageWorkReports: viewEdit,
		PageTags:        viewOnly,
	},
	internal.RoleManager: {
		PageDashboard:   viewOnly,
		PageCampaigns:   full,
		PageClients:     viewEdit,
		PageAdAccounts:  viewEdit,
		PageAdCopySets:  full,
		PageWorkReports: full,
		PageFinance:     viewEdit,
		PageEmployees:   viewOnly,
		PageSalaries:    viewOnly,
		PageTags:        full,
	},
	internal.RoleAdmin: {
		PageDashboard:   viewOnly,
		PageCampaigns:   full,
		PageClients:     full,
		PageAdAccounts:  full,
		PageAdCopySets:  full,
		PageWorkReports: full,
		PageFinance:     full,
		PageEmployees:   full,
		PageSalaries:    full,
		PageTags:        full,
		PageUsers:       full,
		PageAdmin:       viewEdit,
		PageTelegram:    full,
	},
}

// DefaultAccess returns the seeded access for role on pageKey.
func DefaultAccess(role, pageKey string) (PageAccess, bool) {
	a, ok := defaultMatrix[role][pageKey]
	return a, ok
}

// SeedResult counts what a seeding pass wrote.
type SeedResult struct {
	Pages       int `json:"pages"`
	Permissions int `json:"permissions"`
}

// SeedDefaults creates missing pages and matrix rows. With overwrite false
// existing rows are left untouched; with overwrite true every default row is
// reapplied.
func SeedDefaults(ctx context.Context, repo Repository, overwrite bool) (SeedResult, error) {
	var res SeedResult
	pageIDs := make(map[string]int64, len(defaultPages))

	for _, def := range defaultPages {
		existing, err := repo.GetPageByKey(ctx, def.Key)
		if err != nil {
			return res, fmt.Errorf("lookup page %s: %w", def.Key, err)
		}
		if existing == nil {
			res.Pages++
		}
		page, err := repo.EnsurePage(ctx, &permissionDatamodel.Page{
			PageKey:     def.Key,
			DisplayName: def.DisplayName,
			Path:        def.Path,
			IsActive:    true,
		})
		if err != nil {
			return res, fmt.Errorf("seed page %s: %w", def.Key, err)
		}
		pageIDs[def.Key] = page.ID
	}

	for _, role := range []string{internal.RoleUser, internal.RoleManager, internal.RoleAdmin} {
		for _, def := range defaultPages {
			access, ok := defaultMatrix[role][def.Key]
			if !ok {
				if !overwrite {
					continue
				}
				// a reset also revokes grants added outside the defaults
				existing, err := repo.GetRolePermission(ctx, role, pageIDs[def.Key])
				if err != nil {
					return res, fmt.Errorf("lookup %s/%s: %w", role, def.Key, err)
				}
				if existing == nil {
					continue
				}
			}
			rp := &permissionDatamodel.RolePermission{
				Role:      role,
				PageID:    pageIDs[def.Key],
				CanView:   access.CanView,
				CanEdit:   access.CanEdit,
				CanDelete: access.CanDelete,
			}
			if overwrite {
				if err := repo.UpsertRolePermission(ctx, rp); err != nil {
					return res, fmt.Errorf("reset %s/%s: %w", role, def.Key, err)
				}
				res.Permissions++
				continue
			}
			created, err := repo.CreateRolePermissionIfMissing(ctx, rp)
			if err != nil {
				return res, fmt.Errorf("seed %s/%s: %w", role, def.Key, err)
			}
			if created {
				res.Permissions++
			}
		}
	}

	return res, nil
}
