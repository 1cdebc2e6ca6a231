package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Azizo-B/microservices/pkg/authclient"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
	"github.com/Azizo-B/microservices/services/company/internal/service"
)

// EmployeeHandler handles HTTP requests for employee endpoints.
type EmployeeHandler struct {
	service *service.EmployeeService
	logger  *slog.Logger
}

// NewEmployeeHandler creates a new employee HTTP handler.
func NewEmployeeHandler(svc *service.EmployeeService, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{service: svc, logger: logger}
}

// Create handles POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEmployeeInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	employee, err := h.service.CreateEmployee(r.Context(), authclient.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: employee})
}

// List handles GET /api/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EmployeeFilter{
		CompanyID: q.Get("companyId"),
		Email:     q.Get("email"),
		Role:      q.Get("role"),
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

	employees, err := h.service.ListEmployees(r.Context(), authclient.UserIDFromContext(r.Context()), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Employee]{Items: employees}})
}

// Get handles GET /api/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	employee, err := h.service.GetEmployee(r.Context(), authclient.UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: employee})
}

// Update handles PATCH /api/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdateEmployeeInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	employee, err := h.service.UpdateEmployee(r.Context(), authclient.UserIDFromContext(r.Context()), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: employee})
}

// Delete handles DELETE /api/employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteEmployee(r.Context(), authclient.UserIDFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
