package authclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/pkg/logger"
)

type contextKey string

const userIDKey contextKey = "auth_user_id"

// UserIDFromContext returns the authenticated user's id set by RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUserID stores the authenticated user id. Exposed for tests.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequireAuth authenticates a request by confirming its bearer credential
// with the user-service. On success the subject is stored on the request
// context and in the logging context.
func RequireAuth(client *Client, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, err := bearerCredential(r)
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}

			userID, _, err := Subject(credential)
			if err != nil {
				httputil.WriteError(w, r, err, l)
				return
			}

			if err := client.Introspect(r.Context(), credential); err != nil {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) || appErr.Status >= 500 {
					l.ErrorContext(r.Context(), "token introspection failed",
						slog.String("error", err.Error()),
					)
				}
				httputil.WriteError(w, r, err, l)
				return
			}

			ctx := ContextWithUserID(r.Context(), userID)
			ctx = logger.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission authorizes the authenticated user against a named
// permission via the user-service permission query. Mount after RequireAuth.
func RequirePermission(client *Client, permission string, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("You need to be signed in."), l)
				return
			}

			allowed, err := client.HasPermission(r.Context(), userID, permission)
			if err != nil {
				l.ErrorContext(r.Context(), "permission check failed",
					slog.String("permission", permission),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, err, l)
				return
			}
			if !allowed {
				httputil.WriteError(w, r, apperrors.Forbidden(
					"You do not have the required permissions. Required: "+permission), l)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerCredential extracts the bearer token from the Authorization header.
func bearerCredential(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.Unauthorized("You need to be signed in.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", apperrors.Unauthorized("Invalid authentication token.")
	}
	return parts[1], nil
}
