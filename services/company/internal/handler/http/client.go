package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
	"github.com/Azizo-B/microservices/services/company/internal/service"
)

// ClientHandler handles HTTP requests for client endpoints.
type ClientHandler struct {
	service *service.ClientService
	logger  *slog.Logger
}

// NewClientHandler creates a new client HTTP handler.
func NewClientHandler(svc *service.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{service: svc, logger: logger}
}

// Create handles POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateClientInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	client, err := h.service.CreateClient(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: client})
}

// List handles GET /api/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ClientFilter{
		CompanyID: q.Get("companyId"),
		Name:      q.Get("name"),
		SortDesc:  q.Get("sort") == "desc",
	}

	for param, dst := range map[string]**time.Time{
		"startDate": &filter.CreatedAfter,
		"endDate":   &filter.CreatedBefore,
	} {
		if raw := q.Get(param); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				httputil.WriteError(w, r, apperrors.ValidationFailed(param+" must be an RFC 3339 timestamp"), h.logger)
				return
			}
			*dst = &t
		}
	}

	clients, err := h.service.ListClients(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Client]{Items: clients}})
}

// Get handles GET /api/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	client, err := h.service.GetClient(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: client})
}

// Update handles PATCH /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdateClientInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	client, err := h.service.UpdateClient(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: client})
}

// Delete handles DELETE /api/clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteClient(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
