package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Azizo-B/microservices/pkg/authclient"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/service"
)

// SenderHandler handles HTTP requests for sender endpoints.
type SenderHandler struct {
	service *service.SenderService
	logger  *slog.Logger
}

// NewSenderHandler creates a new sender HTTP handler.
func NewSenderHandler(svc *service.SenderService, logger *slog.Logger) *SenderHandler {
	return &SenderHandler{service: svc, logger: logger}
}

// Create handles POST /api/senders
func (h *SenderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSenderInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sender, err := h.service.CreateSender(r.Context(), authclient.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sender})
}

// List handles GET /api/senders. "all=true" lists every sender, subject to
// the list-any permission.
func (h *SenderHandler) List(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"

	senders, err := h.service.ListSenders(r.Context(), authclient.UserIDFromContext(r.Context()), all, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Sender]{Items: senders}})
}

// Get handles GET /api/senders/{id}
func (h *SenderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	sender, err := h.service.GetSender(r.Context(), authclient.UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sender})
}

// Update handles PATCH /api/senders/{id}
func (h *SenderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdateSenderInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sender, err := h.service.UpdateSender(r.Context(), authclient.UserIDFromContext(r.Context()), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sender})
}

// Delete handles DELETE /api/senders/{id}
func (h *SenderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteSender(r.Context(), authclient.UserIDFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
