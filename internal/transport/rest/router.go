package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/agency-ops/internal/adaccount"
	"github.com/frahmantamala/agency-ops/internal/adcopy"
	"github.com/frahmantamala/agency-ops/internal/auth"
	"github.com/frahmantamala/agency-ops/internal/backup"
	"github.com/frahmantamala/agency-ops/internal/campaign"
	"github.com/frahmantamala/agency-ops/internal/client"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/dataport"
	"github.com/frahmantamala/agency-ops/internal/employee"
	"github.com/frahmantamala/agency-ops/internal/finance"
	"github.com/frahmantamala/agency-ops/internal/notification"
	"github.com/frahmantamala/agency-ops/internal/permission"
	"github.com/frahmantamala/agency-ops/internal/tag"
	"github.com/frahmantamala/agency-ops/internal/transport/middleware"
	"github.com/frahmantamala/agency-ops/internal/transport/swagger"
	"github.com/frahmantamala/agency-ops/internal/user"
	"github.com/frahmantamala/agency-ops/internal/workreport"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// APIPrefix is where every JSON endpoint is mounted.
const APIPrefix = "/api/v1"

// Handlers groups the HTTP handlers served under APIPrefix. A nil handler
// leaves its routes unregistered.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Permission   *permission.Handler
	Client       *client.Handler
	AdAccount    *adaccount.Handler
	Campaign     *campaign.Handler
	AdCopy       *adcopy.Handler
	WorkReport   *workreport.Handler
	Finance      *finance.Handler
	Tag          *tag.Handler
	Employee     *employee.Handler
	Notification *notification.Handler
	Backup       *backup.Handler
	DataPort     *dataport.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
	// Validator rejects requests that do not match the OpenAPI document.
	Validator *middleware.RequestValidator
}

type routes struct {
	guard   *middleware.Guard
	checker *permission.Checker
}

// page guards a route group on pageKey, mapping GET to view, DELETE to
// delete and every other method to edit.
func (rt routes) page(pageKey string) func(http.Handler) http.Handler {
	return rt.pageWith(pageKey, false)
}

// adminPage is page with the super admin bypass applied.
func (rt routes) adminPage(pageKey string) func(http.Handler) http.Handler {
	return rt.pageWith(pageKey, true)
}

func (rt routes) pageWith(pageKey string, bypass bool) func(http.Handler) http.Handler {
	policy := func(action permission.Action) func(http.Handler) http.Handler {
		var p permission.Policy = rt.checker.Page(pageKey, action)
		if bypass {
			p = permission.SuperAdminBypass(p)
		}
		return rt.guard.Require(p)
	}
	view, edit, del := policy(permission.ActionView), policy(permission.ActionEdit), policy(permission.ActionDelete)

	return func(next http.Handler) http.Handler {
		viewH, editH, delH := view(next), edit(next), del(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				viewH.ServeHTTP(w, r)
			case http.MethodDelete:
				delH.ServeHTTP(w, r)
			default:
				editH.ServeHTTP(w, r)
			}
		})
	}
}

func RegisterAllRoutes(router chi.Router, db *database.DB, checker *permission.Checker, h Handlers, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rt := routes{guard: middleware.NewGuard(logger), checker: checker}

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	// Bodies are validated after authentication so an anonymous request gets
	// 401 before any schema error.
	validate := func(next http.Handler) http.Handler { return next }
	if opts.Validator != nil {
		validate = opts.Validator.Middleware
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.With(validate).Post("/auth/login", h.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(validate)

			pr.Post("/auth/logout", h.Auth.Logout)
			pr.Get("/auth/me", h.Auth.Me)

			if h.Permission != nil {
				registerPermissionRoutes(pr, rt, h.Permission)
			}
			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Use(rt.adminPage(permission.PageUsers))
					ur.Get("/", h.User.ListUsers)
					ur.Post("/", h.User.CreateUser)
					ur.Get("/{id}", h.User.GetUser)
					ur.Put("/{id}", h.User.UpdateUser)
					ur.Delete("/{id}", h.User.DeleteUser)
					ur.Put("/{id}/password", h.User.ChangePassword)
				})
			}
			if h.Client != nil {
				pr.Route("/clients", func(cr chi.Router) {
					cr.Use(rt.page(permission.PageClients))
					cr.Get("/", h.Client.ListClients)
					cr.Post("/", h.Client.CreateClient)
					cr.Get("/export", h.Client.ExportClients)
					cr.Post("/import", h.Client.ImportClients)
					cr.Get("/{id}", h.Client.GetClient)
					cr.Put("/{id}", h.Client.UpdateClient)
					cr.Delete("/{id}", h.Client.DeleteClient)
				})
			}
			if h.AdAccount != nil {
				pr.Route("/ad-accounts", func(ar chi.Router) {
					ar.Use(rt.page(permission.PageAdAccounts))
					ar.Get("/", h.AdAccount.ListAdAccounts)
					ar.Post("/", h.AdAccount.CreateAdAccount)
					ar.Get("/{id}", h.AdAccount.GetAdAccount)
					ar.Put("/{id}", h.AdAccount.UpdateAdAccount)
					ar.Delete("/{id}", h.AdAccount.DeleteAdAccount)
				})
			}
			if h.Campaign != nil {
				pr.Route("/campaigns", func(cr chi.Router) {
					cr.Use(rt.page(permission.PageCampaigns))
					cr.Get("/", h.Campaign.ListCampaigns)
					cr.Post("/", h.Campaign.CreateCampaign)
					cr.Get("/export", h.Campaign.ExportCampaigns)
					cr.Post("/import", h.Campaign.ImportCampaigns)
					cr.Get("/{id}", h.Campaign.GetCampaign)
					cr.Put("/{id}", h.Campaign.UpdateCampaign)
					cr.Delete("/{id}", h.Campaign.DeleteCampaign)
					cr.Get("/{id}/daily-spend", h.Campaign.ListDailySpend)
					cr.Post("/{id}/daily-spend", h.Campaign.RecordDailySpend)
					cr.Delete("/{id}/daily-spend/{spendId}", h.Campaign.DeleteDailySpend)
				})
			}
			if h.AdCopy != nil {
				pr.Route("/ad-copy-sets", func(ar chi.Router) {
					ar.Use(rt.page(permission.PageAdCopySets))
					ar.Get("/", h.AdCopy.ListAdCopySets)
					ar.Post("/", h.AdCopy.CreateAdCopySet)
					ar.Get("/{id}", h.AdCopy.GetAdCopySet)
					ar.Put("/{id}", h.AdCopy.UpdateAdCopySet)
					ar.Delete("/{id}", h.AdCopy.DeleteAdCopySet)
				})
			}
			if h.WorkReport != nil {
				pr.Route("/work-reports", func(wr chi.Router) {
					wr.Use(rt.page(permission.PageWorkReports))
					wr.Get("/", h.WorkReport.ListWorkReports)
					wr.Post("/", h.WorkReport.CreateWorkReport)
					wr.Get("/{id}", h.WorkReport.GetWorkReport)
					wr.Put("/{id}", h.WorkReport.UpdateWorkReport)
					wr.Post("/{id}/submit", h.WorkReport.SubmitWorkReport)
					wr.Delete("/{id}", h.WorkReport.DeleteWorkReport)
				})
			}
			if h.Finance != nil {
				registerFinanceRoutes(pr, rt, h.Finance)
			}
			if h.Tag != nil {
				pr.Route("/tags", func(tr chi.Router) {
					tr.Use(rt.page(permission.PageTags))
					tr.Get("/", h.Tag.ListTags)
					tr.Post("/", h.Tag.CreateTag)
					tr.Get("/{id}", h.Tag.GetTag)
					tr.Put("/{id}", h.Tag.UpdateTag)
					tr.Delete("/{id}", h.Tag.DeleteTag)
				})
			}
			if h.Employee != nil {
				registerEmployeeRoutes(pr, rt, h.Employee)
			}
			if h.Notification != nil {
				registerNotificationRoutes(pr, rt, h.Notification)
			}
			if h.Backup != nil {
				pr.Route("/backup", func(br chi.Router) {
					br.Use(rt.adminPage(permission.PageBackup))
					br.Get("/full", h.Backup.FullBackup)
					br.Get("/tables", h.Backup.ListTables)
					br.Get("/tables/{table}", h.Backup.TableBackup)
					br.Post("/snapshots", h.Backup.CreateSnapshot)
				})
			}
			if h.DataPort != nil {
				pr.Route("/data", func(dr chi.Router) {
					dr.Use(rt.adminPage(permission.PageAdmin))
					dr.Get("/export", h.DataPort.ExportData)
					dr.Post("/import", h.DataPort.ImportData)
				})
			}
		})
	})
}

func registerPermissionRoutes(r chi.Router, rt routes, h *permission.Handler) {
	r.Get("/permissions/check", h.Check)
	r.Get("/user-menu-permissions/me", h.GetMyMenuPermissions)

	r.Group(func(ar chi.Router) {
		ar.Use(rt.adminPage(permission.PageAdmin))

		ar.Get("/pages", h.ListPages)
		ar.Post("/pages", h.CreatePage)
		ar.Put("/pages/{id}", h.UpdatePage)
		ar.Delete("/pages/{id}", h.DeletePage)

		ar.Get("/role-permissions", h.ListRolePermissions)
		ar.Put("/role-permissions", h.UpdateRolePermissions)
		ar.Post("/role-permissions/reset", h.ResetRolePermissions)

		ar.Get("/user-menu-permissions/{userId}", h.GetMenuPermissions)
		ar.Put("/user-menu-permissions/{userId}", h.UpdateMenuPermissions)
	})
}

func registerFinanceRoutes(r chi.Router, rt routes, h *finance.Handler) {
	r.Route("/finance", func(fr chi.Router) {
		fr.Use(rt.page(permission.PageFinance))

		fr.Get("/dashboard", h.GetDashboard)

		fr.Get("/projects", h.ListProjects)
		fr.Post("/projects", h.CreateProject)
		fr.Get("/projects/{id}", h.GetProject)
		fr.Put("/projects/{id}", h.UpdateProject)
		fr.Delete("/projects/{id}", h.DeleteProject)

		fr.Get("/payments", h.ListPayments)
		fr.Post("/payments", h.CreatePayment)
		fr.Get("/payments/{id}", h.GetPayment)
		fr.Put("/payments/{id}", h.UpdatePayment)
		fr.Delete("/payments/{id}", h.DeletePayment)

		fr.Get("/expenses", h.ListExpenses)
		fr.Post("/expenses", h.CreateExpense)
		fr.Get("/expenses/export", h.ExportExpenses)
		fr.Post("/expenses/import/preview", h.PreviewExpenseImport)
		fr.Post("/expenses/import/confirm", h.ConfirmExpenseImport)
		fr.Get("/expenses/{id}", h.GetExpense)
		fr.Put("/expenses/{id}", h.UpdateExpense)
		fr.Delete("/expenses/{id}", h.DeleteExpense)

		fr.Get("/settings", h.ListSettings)
		fr.Put("/settings/{key}", h.PutSetting)
	})
}

func registerEmployeeRoutes(r chi.Router, rt routes, h *employee.Handler) {
	r.Route("/employees", func(er chi.Router) {
		er.Use(rt.page(permission.PageEmployees))
		er.Get("/", h.ListEmployees)
		er.Post("/", h.CreateEmployee)
		er.Get("/{id}", h.GetEmployee)
		er.Put("/{id}", h.UpdateEmployee)
		er.Delete("/{id}", h.DeleteEmployee)
	})
	r.Route("/salaries", func(sr chi.Router) {
		sr.Use(rt.page(permission.PageSalaries))
		sr.Get("/", h.ListSalaries)
		sr.Post("/", h.CreateSalary)
		sr.Get("/stats", h.SalaryStats)
		sr.Get("/{id}", h.GetSalary)
		sr.Put("/{id}", h.UpdateSalary)
		sr.Put("/{id}/pay", h.PaySalary)
		sr.Delete("/{id}", h.DeleteSalary)
	})
}

func registerNotificationRoutes(r chi.Router, rt routes, h *notification.Handler) {
	r.Route("/telegram", func(tr chi.Router) {
		tr.Use(rt.adminPage(permission.PageTelegram))
		tr.Get("/config", h.GetTelegramConfig)
		tr.Put("/config", h.UpdateTelegramConfig)
		tr.Get("/chat-ids", h.ListChatIDs)
		tr.Post("/chat-ids", h.AddChatID)
		tr.Delete("/chat-ids/{id}", h.DeleteChatID)
		tr.Post("/test-message", h.SendTelegramTestMessage)
	})
	r.Route("/email", func(er chi.Router) {
		er.Use(rt.adminPage(permission.PageTelegram))
		er.Get("/config", h.GetEmailConfig)
		er.Put("/config", h.UpdateEmailConfig)
		er.Post("/test-message", h.SendEmailTestMessage)
	})
}
