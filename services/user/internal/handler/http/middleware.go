package http

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/logger"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the authenticated user id, or "" when the
// request did not pass RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUserID returns a context carrying the authenticated user id.
// Exposed for handler tests.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequireAuth authenticates the bearer credential against the token store and
// stores the subject on the request context. Verification goes through the
// full lifecycle check, so revoked tokens fail here even before expiry.
func RequireAuth(tokens *service.TokenService, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, err := bearerCredential(r)
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}

			userID, err := tokens.CheckToken(r.Context(), credential)
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}

			ctx := ContextWithUserID(r.Context(), userID)
			ctx = logger.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects authenticated requests whose user lacks the named
// permission. Unlike the owner-or-permission entity checks this is a plain
// capability gate, so a negative result is an explicit 403.
func RequirePermission(checker service.PermissionChecker, permission string, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized(service.MsgSignInRequired), l)
				return
			}

			allowed, err := checker.HasPermission(r.Context(), userID, permission)
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}
			if !allowed {
				httputil.WriteError(w, r,
					apperrors.Forbidden("You do not have the required permissions. Required: "+permission), l)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthDelay sleeps a uniform random duration up to max before handling the
// request. Applied to credential-processing endpoints so response timing does
// not reveal where a login or reset attempt failed.
func AuthDelay(max time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max > 0 {
				select {
				case <-time.After(rand.N(max)):
				case <-r.Context().Done():
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerCredential(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthorized(service.MsgSignInRequired)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.Unauthorized(service.MsgInvalidToken)
	}

	return parts[1], nil
}
