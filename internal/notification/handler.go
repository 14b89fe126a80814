package notification

import (
	"net/http"

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

func (h *Handler) GetTelegramConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.GetTelegramConfig(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateTelegramConfig(w http.ResponseWriter, r *http.Request) {
	var dto TelegramConfigDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	cfg, err := h.Service.UpdateTelegramConfig(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) ListChatIDs(w http.ResponseWriter, r *http.Request) {
	chats, err := h.Service.ListChatIDs(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, chats)
}

func (h *Handler) AddChatID(w http.ResponseWriter, r *http.Request) {
	var dto ChatIDDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	chat, err := h.Service.AddChatID(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, chat)
}

func (h *Handler) DeleteChatID(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := h.Service.DeleteChatID(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendTelegramTestMessage(w http.ResponseWriter, r *http.Request) {
	var dto TestMessageDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
	}
	result, err := h.Service.SendTelegramTest(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetEmailConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.GetEmailConfig(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateEmailConfig(w http.ResponseWriter, r *http.Request) {
	var dto EmailConfigDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	cfg, err := h.Service.UpdateEmailConfig(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) SendEmailTestMessage(w http.ResponseWriter, r *http.Request) {
	var dto TestMessageDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
	}
	result, err := h.Service.SendEmailTest(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}
