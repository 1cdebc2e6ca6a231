package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

// UserHandler handles HTTP requests for account endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// Signup handles POST /api/users
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: user})
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.UserFilter{
		Email:    q.Get("email"),
		Status:   domain.UserStatus(q.Get("status")),
		SortDesc: q.Get("sort") == "desc",
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		httputil.WriteError(w, r, apperrors.ValidationFailed("unknown user status: "+string(filter.Status)), h.logger)
		return
	}

	for param, dst := range map[string]**time.Time{
		"createdAfter":  &filter.CreatedAfter,
		"createdBefore": &filter.CreatedBefore,
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

	users, err := h.service.ListUsers(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.User]{Items: users}})
}

// Get handles GET /api/users/{id}. "me" resolves to the authenticated user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolveID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// Update handles PATCH /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolveID(w, r)
	if !ok {
		return
	}

	var req service.UpdateUserInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// GetProfile handles GET /api/users/{id}/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolveID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: profile})
}

// UpdateProfileRequest is the JSON request body for replacing a profile.
type UpdateProfileRequest struct {
	Profile json.RawMessage `json:"profile" validate:"required"`
}

// UpdateProfile handles PATCH /api/users/{id}/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolveID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), UserIDFromContext(r.Context()), id, req.Profile)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: profile})
}

// VerifyEmail handles POST /api/users/verify-email
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyEmailInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "verified"}})
}

// ResetPassword handles POST /api/users/reset-password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "password reset"}})
}

// resolveID reads the {id} URL parameter, mapping "me" to the authenticated
// user and rejecting anything that is neither "me" nor a UUID.
func (h *UserHandler) resolveID(w http.ResponseWriter, r *http.Request) (string, bool) {
	param := chi.URLParam(r, "id")
	if param == "me" {
		return UserIDFromContext(r.Context()), true
	}

	id, err := uuid.Parse(param)
	if err != nil {
		httputil.WriteError(w, r, apperrors.ValidationFailed("invalid user id: "+param), h.logger)
		return "", false
	}
	return id.String(), true
}
