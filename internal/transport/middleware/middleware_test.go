package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/permission"
	"github.com/frahmantamala/agency-ops/internal/transport/middleware"
	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func decodeError(w *httptest.ResponseRecorder) map[string]interface{} {
	var body struct {
		Error map[string]interface{} `json:"error"`
	}
	Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
	return body.Error
}

var _ = Describe("Guard", func() {
	var guard *middleware.Guard

	BeforeEach(func() {
		guard = middleware.NewGuard(slogger)
	})

	serve := func(policy permission.Policy, user *internal.CurrentUser) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if user != nil {
			req = req.WithContext(internal.ContextWithUser(req.Context(), user))
		}
		w := httptest.NewRecorder()
		guard.Require(policy)(ok).ServeHTTP(w, req)
		return w
	}

	deny := permission.PolicyFunc(func(context.Context, *internal.CurrentUser) (bool, error) { return false, nil })

	It("returns 401 without a principal", func() {
		Expect(serve(deny, nil).Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 403 when the policy denies", func() {
		Expect(serve(deny, &internal.CurrentUser{ID: 2, Role: internal.RoleUser}).Code).To(Equal(http.StatusForbidden))
	})

	It("returns 500 when the policy fails", func() {
		broken := permission.PolicyFunc(func(context.Context, *internal.CurrentUser) (bool, error) {
			return false, errors.New("db down")
		})
		w := serve(broken, &internal.CurrentUser{ID: 2, Role: internal.RoleUser})
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("db down"))
	})

	It("lets super admins through a bypassed policy", func() {
		w := serve(permission.SuperAdminBypass(deny), &internal.CurrentUser{ID: 1, Role: internal.RoleSuperAdmin})
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("applies role policies", func() {
		managers := permission.RolePolicy{Roles: []string{internal.RoleManager}}
		Expect(serve(managers, &internal.CurrentUser{ID: 3, Role: internal.RoleManager}).Code).To(Equal(http.StatusNoContent))
		Expect(serve(managers, &internal.CurrentUser{ID: 4, Role: internal.RoleUser}).Code).To(Equal(http.StatusForbidden))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a JSON 500", func() {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		w := httptest.NewRecorder()
		middleware.RecoveryMiddleware(slogger)(boom).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(decodeError(w)).To(HaveKey("message"))
	})
})

var _ = Describe("RequestID", func() {
	It("keeps an incoming trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceIDHeader, "trace-123")
		w := httptest.NewRecorder()
		middleware.RequestID(ok).ServeHTTP(w, req)
		Expect(w.Header().Get(middleware.TraceIDHeader)).To(Equal("trace-123"))
	})

	It("mints one when absent", func() {
		w := httptest.NewRecorder()
		middleware.RequestID(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Header().Get(middleware.TraceIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("CORS", func() {
	It("answers preflight requests for allowed origins", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/clients", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		middleware.CORS("https://app.example.com")(ok).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example.com"))
	})

	It("does not echo unknown origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		middleware.CORS("https://app.example.com")(ok).ServeHTTP(w, req)
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

const testDocument = `
openapi: 3.0.3
info:
  title: test
  version: "1"
paths:
  /tags:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                  minLength: 1
      responses:
        "201":
          description: created
`

var _ = Describe("RequestValidator", func() {
	var handler http.Handler

	BeforeEach(func() {
		doc, err := openapi3.NewLoader().LoadFromData([]byte(testDocument))
		Expect(err).NotTo(HaveOccurred())
		validator, err := middleware.NewRequestValidator(context.Background(), doc, "/api/v1", slogger)
		Expect(err).NotTo(HaveOccurred())
		handler = validator.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusTeapot)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}))
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	It("rejects a body missing a required property", func() {
		w := post("/api/v1/tags", `{}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w)).To(HaveKey("details"))
	})

	It("passes a valid body through intact", func() {
		Expect(post("/api/v1/tags", `{"name":"vip"}`).Code).To(Equal(http.StatusCreated))
	})

	It("ignores undocumented routes", func() {
		Expect(post("/api/v1/unknown", `{}`).Code).To(Equal(http.StatusCreated))
	})
})
