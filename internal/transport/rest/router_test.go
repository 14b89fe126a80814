package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/auth"
	authPostgres "github.com/frahmantamala/agency-ops/internal/auth/postgres"
	"github.com/frahmantamala/agency-ops/internal/backup"
	backupPostgres "github.com/frahmantamala/agency-ops/internal/backup/postgres"
	"github.com/frahmantamala/agency-ops/internal/client"
	clientPostgres "github.com/frahmantamala/agency-ops/internal/client/postgres"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	userDatamodel "github.com/frahmantamala/agency-ops/internal/core/datamodel/user"
	"github.com/frahmantamala/agency-ops/internal/permission"
	permissionPostgres "github.com/frahmantamala/agency-ops/internal/permission/postgres"
	"github.com/frahmantamala/agency-ops/internal/storage"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/frahmantamala/agency-ops/internal/transport/middleware"
	"github.com/frahmantamala/agency-ops/internal/transport/rest"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

const clientsDocument = `
openapi: 3.0.3
info:
  title: clients
  version: "1"
paths:
  /clients:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [clientName]
              properties:
                clientName: { type: string, minLength: 1 }
      responses:
        "201": { description: created }
`

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Router Suite")
}

var _ = Describe("Router", func() {
	var (
		db     *database.DB
		router *chi.Mux
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		var err error
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())

		permRepo := permissionPostgres.NewRepository(db.Gorm)
		_, err = permission.SeedDefaults(ctx, permRepo, false)
		Expect(err).NotTo(HaveOccurred())

		hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		for _, u := range []*userDatamodel.User{
			{Username: "root", Name: "Root", Password: string(hash), Role: internal.RoleSuperAdmin, IsActive: true},
			{Username: "uma", Name: "Uma", Password: string(hash), Role: internal.RoleUser, IsActive: true},
		} {
			Expect(db.Gorm.Create(u).Error).To(Succeed())
		}

		checker := permission.NewChecker(permRepo)
		permService := permission.NewService(permRepo, checker, slogger)
		authRepo := authPostgres.NewRepository(db.Gorm)
		authService := auth.NewService(authRepo, authRepo, auth.NewJWTTokenIssuer("0123456789abcdef0123456789abcdef"),
			auth.NewPasswordHasher(bcrypt.MinCost), auth.DefaultSessionTTL, slogger)

		store, err := storage.NewLocalStorage(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		base := &transport.BaseHandler{Logger: slogger}
		handlers := rest.Handlers{
			Auth:       auth.NewHandler(authService, permService),
			Permission: permission.NewHandler(base, permService),
			Client:     client.NewHandler(base, client.NewService(clientPostgres.NewClientRepository(db.Gorm), slogger)),
			Backup:     backup.NewHandler(base, backup.NewService(backupPostgres.NewBackupRepository(db), store, slogger)),
		}

		doc, err := openapi3.NewLoader().LoadFromData([]byte(clientsDocument))
		Expect(err).NotTo(HaveOccurred())
		validator, err := middleware.NewRequestValidator(ctx, doc, rest.APIPrefix, slogger)
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, db, checker, handlers, rest.RouterOptions{AllowedOrigins: "*", Validator: validator}, slogger)
	})

	AfterEach(func() {
		_ = db.Close()
	})

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	login := func(username string) string {
		w := do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": "secret-pass"})
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp auth.LoginResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ExpiresAt).To(BeTemporally("~", time.Now().Add(24*time.Hour), time.Minute))
		return resp.Token
	}

	It("serves health without a session", func() {
		w := do(http.MethodGet, "/api/v1/health", "", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})

	It("rejects protected routes without a token", func() {
		Expect(do(http.MethodGet, "/api/v1/clients", "", nil).Code).To(Equal(http.StatusUnauthorized))
	})

	It("maps methods to page actions", func() {
		token := login("uma")
		Expect(do(http.MethodGet, "/api/v1/clients", token, nil).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodPost, "/api/v1/clients", token, map[string]string{"clientName": "Acme"}).Code).To(Equal(http.StatusForbidden))
	})

	It("authenticates before validating the body", func() {
		Expect(do(http.MethodPost, "/api/v1/clients", "", map[string]string{}).Code).To(Equal(http.StatusUnauthorized))
		Expect(do(http.MethodPost, "/api/v1/clients", login("root"), map[string]string{}).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPost, "/api/v1/clients", login("root"), map[string]string{"clientName": "Acme"}).Code).To(Equal(http.StatusCreated))
	})

	It("keeps backups to privileged roles", func() {
		Expect(do(http.MethodGet, "/api/v1/backup/tables", login("uma"), nil).Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodGet, "/api/v1/backup/tables", login("root"), nil).Code).To(Equal(http.StatusOK))
	})

	It("lets any signed in user check a permission", func() {
		w := do(http.MethodGet, "/api/v1/permissions/check?page=clients&action=view", login("uma"), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp permission.CheckResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Allowed).To(BeTrue())
	})

	It("ends the session on logout", func() {
		token := login("root")
		Expect(do(http.MethodPost, "/api/v1/auth/logout", token, nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/api/v1/auth/me", token, nil).Code).To(Equal(http.StatusUnauthorized))
	})
})
