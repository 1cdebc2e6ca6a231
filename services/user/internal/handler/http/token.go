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

// TokenHandler handles HTTP requests for token lifecycle endpoints.
type TokenHandler struct {
	service *service.TokenService
	logger  *slog.Logger
}

// NewTokenHandler creates a new token HTTP handler.
func NewTokenHandler(svc *service.TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{service: svc, logger: logger}
}

// Login handles POST /api/tokens/sessions
func (h *TokenHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: token})
}

// Create handles POST /api/tokens
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTokenInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	token, err := h.service.CreateToken(r.Context(), UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: token})
}

// List handles GET /api/tokens
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TokenFilter{
		UserID:   q.Get("userId"),
		AppID:    q.Get("appId"),
		DeviceID: q.Get("deviceId"),
		Type:     domain.TokenType(q.Get("type")),
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		httputil.WriteError(w, r, apperrors.ValidationFailed("unknown token type: "+string(filter.Type)), h.logger)
		return
	}

	tokens, err := h.service.ListTokens(r.Context(), UserIDFromContext(r.Context()), filter, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Token]{Items: tokens}})
}

// Introspect handles GET /api/tokens/introspect. It is the unauthenticated
// validation endpoint peer services call; a valid credential yields an empty
// 204 and an invalid one the standard 401 body.
func (h *TokenHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	credential := r.URL.Query().Get("token")
	if credential == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized(service.MsgInvalidToken), h.logger)
		return
	}

	if _, err := h.service.CheckToken(r.Context(), credential); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/tokens/{id}
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	token, err := h.service.GetTokenByID(r.Context(), UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: token})
}

// Delete handles DELETE /api/tokens/{id}
func (h *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteToken(r.Context(), UserIDFromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
