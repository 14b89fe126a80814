package permission

import (
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.Service.ListPages(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, pages)
}

func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var dto PageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	page, err := h.Service.CreatePage(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, page)
}

func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto PageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	page, err := h.Service.UpdatePage(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := h.Service.DeletePage(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ListRolePermissions(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) UpdateRolePermissions(w http.ResponseWriter, r *http.Request) {
	var dto BulkRolePermissionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	views, err := h.Service.UpdateRolePermissions(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) ResetRolePermissions(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.ResetDefaults(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	principal, _ := internal.UserFromContext(r.Context())
	q := r.URL.Query()
	resp, err := h.Service.Check(r.Context(), principal, q.Get("page"), q.Get("action"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetMyMenuPermissions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.GetMenuPermissions(r.Context(), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetMenuPermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "userId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	resp, err := h.Service.GetMenuPermissions(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateMenuPermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "userId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto MenuPermissionsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	resp, err := h.Service.UpdateMenuPermissions(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
