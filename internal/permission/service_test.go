package permission_test

import (
	"context"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/permission"
	permissionRepo "github.com/frahmantamala/agency-ops/internal/permission/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		service *permission.Service
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.NewInMemory()
		Expect(err).ToNot(HaveOccurred())
		repo := permissionRepo.NewRepository(db.Gorm)
		service = permission.NewService(repo, permission.NewChecker(repo), nil)

		createUser(db, 1, "uma", internal.RoleUser)
		_, err = service.Seed(ctx)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("rejects a duplicate page key with a conflict", func() {
		_, err := service.CreatePage(ctx, permission.PageDTO{PageKey: permission.PageTags, DisplayName: "Tags again"})

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(409))
	})

	It("bulk-updates a role by page key", func() {
		views, err := service.UpdateRolePermissions(ctx, permission.BulkRolePermissionDTO{
			Role: internal.RoleUser,
			Permissions: []permission.RolePermissionEntry{
				{PageKey: permission.PageFinance, CanView: true},
			},
		})
		Expect(err).ToNot(HaveOccurred())

		var found bool
		for _, v := range views {
			if v.PageKey == permission.PageFinance {
				found = true
				Expect(v.CanView).To(BeTrue())
				Expect(v.CanEdit).To(BeFalse())
			}
		}
		Expect(found).To(BeTrue())
	})

	It("refuses matrix rows for super admins", func() {
		_, err := service.UpdateRolePermissions(ctx, permission.BulkRolePermissionDTO{
			Role:        internal.RoleSuperAdmin,
			Permissions: []permission.RolePermissionEntry{{PageKey: permission.PageAdmin, CanView: true}},
		})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(400))
	})

	It("reports full access on every active page for super admins", func() {
		access, err := service.PageAccessForRole(ctx, internal.RoleSuperAdmin)
		Expect(err).ToNot(HaveOccurred())
		Expect(access).To(HaveLen(14))
		Expect(access[permission.PageBackup].CanDelete).To(BeTrue())
	})

	It("answers the check endpoint for the current user", func() {
		resp, err := service.Check(ctx, &internal.CurrentUser{ID: 1, Role: internal.RoleUser}, permission.PageAdmin, "edit")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Allowed).To(BeFalse())

		resp, err = service.Check(ctx, &internal.CurrentUser{ID: 1, Role: internal.RoleUser}, permission.PageCampaigns, "view")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Allowed).To(BeTrue())
	})

	It("replaces menu permissions and 404s unknown users", func() {
		resp, err := service.UpdateMenuPermissions(ctx, 1, permission.MenuPermissionsDTO{
			Permissions: map[string]bool{"reports": true, "finance": false},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Permissions).To(Equal(map[string]bool{"reports": true, "finance": false}))

		resp, err = service.UpdateMenuPermissions(ctx, 1, permission.MenuPermissionsDTO{
			Permissions: map[string]bool{"reports": false},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Permissions).To(Equal(map[string]bool{"reports": false}))

		_, err = service.GetMenuPermissions(ctx, 77)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(404))
	})
})
