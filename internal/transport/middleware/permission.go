package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/permission"
	"github.com/frahmantamala/agency-ops/pkg/logger"
)

// Guard turns permission policies into route middleware.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(lg *slog.Logger) *Guard {
	if lg == nil {
		lg = slog.Default()
	}
	return &Guard{logger: lg}
}

// Require rejects the request unless policy authorizes the current user.
func (g *Guard) Require(policy permission.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrMissingToken)
				return
			}

			allowed, err := policy.Authorize(r.Context(), user)
			if err != nil {
				logger.From(r.Context()).Error("permission check failed",
					"user_id", user.ID,
					"path", r.URL.Path,
					"error", err)
				writeAppError(w, internal.NewInternalError("Internal server error", err))
				return
			}

			if !allowed {
				g.logger.Warn("access denied",
					"user_id", user.ID,
					"role", user.Role,
					"method", r.Method,
					"path", r.URL.Path)
				writeAppError(w, internal.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Page is shorthand for Require on a page/action pair.
func (g *Guard) Page(checker *permission.Checker, pageKey string, action permission.Action) func(http.Handler) http.Handler {
	return g.Require(checker.Page(pageKey, action))
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
