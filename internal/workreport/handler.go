package workreport

import (
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/core/common/validation"
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

func (h *Handler) ListWorkReports(w http.ResponseWriter, r *http.Request) {
	userID, err := h.QueryInt64(r, "userId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	from, err := validation.ParseOptionalDate(r.URL.Query().Get("from"))
	if err != nil {
		h.HandleServiceError(w, r, internal.NewValidationFieldError("from", "from must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate))
		return
	}
	to, err := validation.ParseOptionalDate(r.URL.Query().Get("to"))
	if err != nil {
		h.HandleServiceError(w, r, internal.NewValidationFieldError("to", "to must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate))
		return
	}

	actor, _ := internal.UserFromContext(r.Context())
	reports, err := h.Service.List(r.Context(), actor, ListFilter{UserID: userID, From: from, To: to})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) GetWorkReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	actor, _ := internal.UserFromContext(r.Context())
	report, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) CreateWorkReport(w http.ResponseWriter, r *http.Request) {
	var dto WorkReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	actor, _ := internal.UserFromContext(r.Context())
	report, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) UpdateWorkReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto WorkReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	actor, _ := internal.UserFromContext(r.Context())
	report, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) SubmitWorkReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	actor, _ := internal.UserFromContext(r.Context())
	report, err := h.Service.Submit(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) DeleteWorkReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	actor, _ := internal.UserFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
