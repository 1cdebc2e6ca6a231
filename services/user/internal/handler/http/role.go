package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

// RoleHandler handles HTTP requests for role management endpoints.
type RoleHandler struct {
	service *service.RoleService
	logger  *slog.Logger
}

// NewRoleHandler creates a new role HTTP handler.
func NewRoleHandler(svc *service.RoleService, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{service: svc, logger: logger}
}

// Create handles POST /api/roles
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRoleInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	role, err := h.service.CreateRole(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: role})
}

// List handles GET /api/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Role]{Items: roles}})
}

// Get handles GET /api/roles/{id}
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	role, err := h.service.GetRole(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: role})
}

// Update handles PATCH /api/roles/{id}
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdateRoleInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	role, err := h.service.UpdateRole(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: role})
}

// Delete handles DELETE /api/roles/{id}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteRole(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignPermission handles POST /api/roles/{roleId}/permissions/{permissionId}
func (h *RoleHandler) AssignPermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParseUUID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}
	permissionID, ok := httputil.ParseUUID(w, chi.URLParam(r, "permissionId"))
	if !ok {
		return
	}

	if err := h.service.AssignPermissionToRole(r.Context(), roleID.String(), permissionID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemovePermission handles DELETE /api/roles/{roleId}/permissions/{permissionId}
func (h *RoleHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParseUUID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}
	permissionID, ok := httputil.ParseUUID(w, chi.URLParam(r, "permissionId"))
	if !ok {
		return
	}

	if err := h.service.RemovePermissionFromRole(r.Context(), roleID.String(), permissionID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignToUser handles POST /api/users/{userId}/roles/{roleId}
func (h *RoleHandler) AssignToUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	roleID, ok := httputil.ParseUUID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}

	if err := h.service.AssignRoleToUser(r.Context(), userID.String(), roleID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveFromUser handles DELETE /api/users/{userId}/roles/{roleId}
func (h *RoleHandler) RemoveFromUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	roleID, ok := httputil.ParseUUID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}

	if err := h.service.RemoveRoleFromUser(r.Context(), userID.String(), roleID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
