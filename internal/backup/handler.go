package backup

import (
	"fmt"
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/transport"
	"github.com/go-chi/chi"
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

func (h *Handler) FullBackup(w http.ResponseWriter, r *http.Request) {
	full, err := h.Service.Full(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "backup-"+full.CreatedAt.Format("20060102-150405")+".json"))
	h.WriteJSON(w, http.StatusOK, full)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Service.Tables(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tables)
}

func (h *Handler) TableBackup(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	switch format := r.URL.Query().Get("format"); format {
	case "", FormatJSON:
		dump, err := h.Service.Table(r.Context(), table)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, dump)
	case FormatCSV:
		data, err := h.Service.TableCSV(r.Context(), table)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		h.WriteCSV(w, table+".csv", data)
	default:
		h.HandleServiceError(w, r, internal.NewValidationFieldError("format", "format must be json or csv", internal.ErrCodeValidationFailed))
	}
}

func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Snapshot(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}
