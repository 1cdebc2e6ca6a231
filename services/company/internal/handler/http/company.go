package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Azizo-B/microservices/pkg/authclient"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
	"github.com/Azizo-B/microservices/services/company/internal/service"
)

// CompanyHandler handles HTTP requests for company endpoints.
type CompanyHandler struct {
	service *service.CompanyService
	logger  *slog.Logger
}

// NewCompanyHandler creates a new company HTTP handler.
func NewCompanyHandler(svc *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{service: svc, logger: logger}
}

// Create handles POST /api/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCompanyInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	company, err := h.service.CreateCompany(r.Context(), authclient.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: company})
}

// List handles GET /api/companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Company]{Items: companies}})
}

// Get handles GET /api/companies/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	company, err := h.service.GetCompany(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: company})
}

// Update handles PATCH /api/companies/{id}
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdateCompanyInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	company, err := h.service.UpdateCompany(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: company})
}

// Delete handles DELETE /api/companies/{id}
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCompany(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
