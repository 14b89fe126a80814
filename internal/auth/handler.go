package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/permission"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/frahmantamala/agency-ops/pkg/logger"
)

// AccessProvider supplies the permission view returned by /auth/me.
type AccessProvider interface {
	PageAccessForRole(ctx context.Context, role string) (map[string]permission.PageAccess, error)
	MenuAccessForUser(ctx context.Context, userID int64) (map[string]bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Access  AccessProvider
}

func NewHandler(svc ServiceAPI, access AccessProvider) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Access:      access,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("login failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context(), h.ExtractTokenFromHeader(r)); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrMissingToken)
		return
	}

	user, err := h.Service.GetUser(r.Context(), current.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := MeResponse{
		User:            NewUserView(user),
		PagePermissions: map[string]permission.PageAccess{},
		MenuPermissions: map[string]bool{},
	}
	if h.Access != nil {
		if resp.PagePermissions, err = h.Access.PageAccessForRole(r.Context(), user.Role); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		if resp.MenuPermissions, err = h.Access.MenuAccessForUser(r.Context(), user.ID); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware resolves the bearer token to a session and puts the
// principal on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, r, internal.ErrMissingToken)
			return
		}

		user, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			logger.From(r.Context()).Debug("auth middleware: token rejected", "error", err)
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
