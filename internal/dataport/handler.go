package dataport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/frahmantamala/agency-ops/internal/transport"
)

// maxImportBytes matches the largest snapshot the service accepts.
const maxImportBytes = 64 << 20

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

func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Export(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "agency-export-"+doc.ExportedAt.Format("20060102-150405")+".json"))
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		h.HandleServiceError(w, r, internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.HandleServiceError(w, r, internal.NewValidationError("failed to read request body", internal.ErrCodeValidationFailed))
		return
	}

	actor, _ := internal.UserFromContext(r.Context())
	result, err := h.Service.Import(r.Context(), body, actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}
