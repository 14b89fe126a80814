package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/auth"
	"github.com/frahmantamala/agency-ops/internal/core/database"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/frahmantamala/agency-ops/internal/user"
	userPostgres "github.com/frahmantamala/agency-ops/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		db      *database.DB
		repo    *userPostgres.UserRepository
		service *user.Service
		admin   *internal.CurrentUser
		root    *internal.CurrentUser
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.NewInMemory()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = userPostgres.NewUserRepository(db.Gorm)
		service = user.NewService(repo, auth.NewPasswordHasher(bcrypt.MinCost), slogger)

		admin = &internal.CurrentUser{ID: 100, Role: internal.RoleAdmin}
		root = &internal.CurrentUser{ID: 101, Role: internal.RoleSuperAdmin}
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("hashes the password and never returns it", func() {
		created, err := service.Create(ctx, admin, user.CreateUserDTO{
			Name: "Uma", Username: "uma", Password: "secret1", Role: internal.RoleUser,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.IsActive).To(BeTrue())

		stored, err := repo.GetByID(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(auth.IsHashed(stored.Password)).To(BeTrue())

		raw, err := json.Marshal(created)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("password"))
	})

	It("rejects a duplicate username with 409", func() {
		_, err := service.Create(ctx, admin, user.CreateUserDTO{Name: "Uma", Username: "uma", Password: "secret1", Role: internal.RoleUser})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Create(ctx, admin, user.CreateUserDTO{Name: "Uma 2", Username: "uma", Password: "secret2", Role: internal.RoleUser})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
	})

	It("rejects unknown roles", func() {
		_, err := service.Create(ctx, admin, user.CreateUserDTO{Name: "X", Username: "xyz", Password: "secret1", Role: "owner"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("lets only super admins grant the super admin role", func() {
		_, err := service.Create(ctx, admin, user.CreateUserDTO{Name: "S", Username: "sup", Password: "secret1", Role: internal.RoleSuperAdmin})
		Expect(err).To(Equal(internal.ErrPermissionDenied))

		_, err = service.Create(ctx, root, user.CreateUserDTO{Name: "S", Username: "sup", Password: "secret1", Role: internal.RoleSuperAdmin})
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses to delete the caller's own account", func() {
		created, err := service.Create(ctx, admin, user.CreateUserDTO{Name: "Uma", Username: "uma", Password: "secret1", Role: internal.RoleUser})
		Expect(err).NotTo(HaveOccurred())

		err = service.Delete(ctx, &internal.CurrentUser{ID: created.ID, Role: internal.RoleUser}, created.ID)
		Expect(err).To(HaveOccurred())

		Expect(service.Delete(ctx, admin, created.ID)).To(Succeed())
		_, err = service.Get(ctx, created.ID)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})

	Describe("Handler", func() {
		var router *chi.Mux

		BeforeEach(func() {
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			handler := user.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), admin)))
				})
			})
			router.Post("/users", handler.CreateUser)
			router.Get("/users/{id}", handler.GetUser)
			router.Put("/users/{id}/password", handler.ChangePassword)
		})

		It("creates a user and changes its password over HTTP", func() {
			body, _ := json.Marshal(map[string]interface{}{
				"name": "Dee", "username": "dee", "password": "secret1", "role": "manager",
			})
			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusCreated))

			var created user.UserResponse
			Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
			Expect(created.Role).To(Equal(internal.RoleManager))

			body, _ = json.Marshal(map[string]string{"password": "newsecret"})
			req = httptest.NewRequest(http.MethodPut, "/users/"+jsonID(created.ID)+"/password", bytes.NewReader(body))
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})

		It("returns 400 for a malformed id", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/abc", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
