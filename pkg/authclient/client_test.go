package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10})
	return New(Config{BaseURL: srv.URL}, hc)
}

// ---------------------------------------------------------------------------
// Subject
// ---------------------------------------------------------------------------

func signedCredential(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return signed
}

func TestSubject(t *testing.T) {
	credential := signedCredential(t, jwt.MapClaims{"sub": "user-1", "jti": "token-1"})

	userID, tokenID, err := Subject(credential)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "token-1", tokenID)
}

func TestSubject_MissingClaims(t *testing.T) {
	for name, claims := range map[string]jwt.MapClaims{
		"no sub": {"jti": "token-1"},
		"no jti": {"sub": "user-1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Subject(signedCredential(t, claims))
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func TestSubject_Garbage(t *testing.T) {
	_, _, err := Subject("not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// ---------------------------------------------------------------------------
// Introspect
// ---------------------------------------------------------------------------

func TestClient_Introspect_Live(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tokens/introspect", r.URL.Path)
		assert.Equal(t, "some-credential", r.URL.Query().Get("token"))
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.Introspect(context.Background(), "some-credential"))
}

func TestClient_Introspect_RejectedMessagePreserved(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "Token has been revoked."},
		})
	}))

	err := client.Introspect(context.Background(), "revoked-credential")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "Token has been revoked.", appErr.Message)
}

func TestClient_Introspect_UnstructuredRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Introspect(context.Background(), "bad-credential")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid authentication token.", appErr.Message)
}

// ---------------------------------------------------------------------------
// HasPermission
// ---------------------------------------------------------------------------

func permissionResponse(names ...string) map[string]any {
	items := make([]map[string]string, 0, len(names))
	for _, n := range names {
		items = append(items, map[string]string{"name": n})
	}
	return map[string]any{"data": map[string]any{"items": items}}
}

func TestClient_HasPermission_Granted(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/permissions", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("userId"))
		assert.Equal(t, "companyservice:view:any:employee", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(permissionResponse("companyservice:view:any:employee"))
	}))

	allowed, err := client.HasPermission(context.Background(), "user-1", "companyservice:view:any:employee")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestClient_HasPermission_EmptyResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(permissionResponse())
	}))

	allowed, err := client.HasPermission(context.Background(), "user-1", "companyservice:view:any:employee")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestClient_HasPermission_NameMismatch(t *testing.T) {
	// Granted iff the exact requested name is present, not merely any result.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(permissionResponse("companyservice:view:any:employee"))
	}))

	allowed, err := client.HasPermission(context.Background(), "user-1", "companyservice:delete:any:employee")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestClient_HasPermission_Unreachable(t *testing.T) {
	hc := httpclient.New(httpclient.Config{Timeout: time.Second, MaxConnsPerHost: 1})
	client := New(Config{BaseURL: "http://127.0.0.1:1"}, hc)

	_, err := client.HasPermission(context.Background(), "user-1", "anything")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}
