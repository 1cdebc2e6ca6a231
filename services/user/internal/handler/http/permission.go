package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

// PermissionHandler handles HTTP requests for permission endpoints.
type PermissionHandler struct {
	service *service.PermissionService
	logger  *slog.Logger
}

// NewPermissionHandler creates a new permission HTTP handler.
func NewPermissionHandler(svc *service.PermissionService, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{service: svc, logger: logger}
}

// Query handles GET /api/permissions?userId=&name=. This is the endpoint peer
// services call for their authorization decisions: it returns the matching
// permission names the user holds, and callers grant when the requested name
// is among them.
func (h *PermissionHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if userID := q.Get("userId"); userID != "" {
		id, ok := httputil.ParseUUID(w, userID)
		if !ok {
			return
		}

		names, err := h.service.Query(r.Context(), id.String(), q.Get("name"))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		items := make([]domain.Permission, 0, len(names))
		for _, name := range names {
			items = append(items, domain.Permission{Name: name})
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Permission]{Items: items}})
		return
	}

	permissions, err := h.service.ListPermissions(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Permission]{Items: permissions}})
}

// Create handles POST /api/permissions
func (h *PermissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePermissionInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	permission, err := h.service.CreatePermission(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: permission})
}

// Get handles GET /api/permissions/{id}
func (h *PermissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	permission, err := h.service.GetPermission(r.Context(), id.String())
	if err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			httputil.WriteError(w, r, apperrors.NotFound("Permission not found"), h.logger)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: permission})
}

// Update handles PATCH /api/permissions/{id}
func (h *PermissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdatePermissionInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	permission, err := h.service.UpdatePermission(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: permission})
}

// Delete handles DELETE /api/permissions/{id}
func (h *PermissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeletePermission(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
