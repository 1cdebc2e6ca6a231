package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/auth"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/event"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

// fakeTokenRepo serves token records out of a map.
type fakeTokenRepo struct {
	tokens map[string]*domain.Token
}

func (f *fakeTokenRepo) Create(ctx context.Context, t *domain.Token) error {
	f.tokens[t.ID] = t
	return nil
}

func (f *fakeTokenRepo) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	t, ok := f.tokens[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenRepo) List(ctx context.Context, filter domain.TokenFilter, page pagination.Params) ([]domain.Token, error) {
	return nil, nil
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	if t, ok := f.tokens[id]; ok && t.RevokedAt == nil {
		t.RevokedAt = &at
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllOfType(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) error {
	return nil
}

func (f *fakeTokenRepo) LinkDevice(ctx context.Context, tokenID, deviceID string) error {
	return nil
}

// fakeUserRepo only needs Exists for these tests.
type fakeUserRepo struct{}

func (fakeUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }
func (fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, apperrors.ErrNotFound
}
func (fakeUserRepo) GetByEmail(ctx context.Context, appID, email string) (*domain.User, error) {
	return nil, apperrors.ErrNotFound
}
func (fakeUserRepo) List(ctx context.Context, filter domain.UserFilter, page pagination.Params) ([]domain.User, error) {
	return nil, nil
}
func (fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }
func (fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	return true, nil
}

type staticChecker struct {
	allowed bool
}

func (c staticChecker) HasPermission(ctx context.Context, userID, name string) (bool, error) {
	return c.allowed, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newAuthFixture(t *testing.T) (*service.TokenService, *fakeTokenRepo, *auth.Signer) {
	t.Helper()
	logger := testLogger()
	signer := auth.NewSigner("test-secret-key-for-testing", "user.service", "user.service", time.Hour)
	producer := event.NewProducer(
		pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger),
		"test", logger,
	)
	repo := &fakeTokenRepo{tokens: map[string]*domain.Token{}}
	svc := service.NewTokenService(repo, fakeUserRepo{}, signer, auth.NewPasswordHasher(),
		staticChecker{}, producer, logger)
	return svc, repo, signer
}

func issueCredential(t *testing.T, repo *fakeTokenRepo, signer *auth.Signer, userID string) string {
	t.Helper()
	now := time.Now().UTC()
	credential, err := signer.Sign(userID, "tok-1")
	require.NoError(t, err)
	repo.tokens["tok-1"] = &domain.Token{
		ID:        "tok-1",
		UserID:    userID,
		Type:      domain.TokenTypeSession,
		Token:     credential,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	return credential
}

func TestRequireAuth_Success(t *testing.T) {
	svc, repo, signer := newAuthFixture(t)
	credential := issueCredential(t, repo, signer, "user-1")

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+credential)
	rec := httptest.NewRecorder()

	RequireAuth(svc, testLogger())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()

	RequireAuth(svc, testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler should not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgSignInRequired)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		RequireAuth(svc, testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatalf("next handler should not run for header %q", header)
		})).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuth_RevokedToken(t *testing.T) {
	svc, repo, signer := newAuthFixture(t)
	credential := issueCredential(t, repo, signer, "user-1")
	revokedAt := time.Now().UTC()
	repo.tokens["tok-1"].RevokedAt = &revokedAt

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+credential)
	rec := httptest.NewRecorder()

	RequireAuth(svc, testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler should not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgTokenRevoked)
}

func TestRequirePermission_Forbidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()

	RequirePermission(staticChecker{allowed: false}, service.PermListAnyUser, testLogger())(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler should not run")
		})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), service.PermListAnyUser)
}

func TestRequirePermission_Allowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()

	called := false
	RequirePermission(staticChecker{allowed: true}, service.PermListAnyUser, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	RequirePermission(staticChecker{allowed: true}, service.PermListAnyUser, testLogger())(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler should not run")
		})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), service.MsgSignInRequired)
}

func TestAuthDelay_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/tokens/sessions", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	AuthDelay(time.Hour)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler should not run after cancellation")
	})).ServeHTTP(rec, req)
}

func TestAuthDelay_ZeroMax(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tokens/sessions", nil)
	rec := httptest.NewRecorder()

	called := false
	AuthDelay(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	assert.True(t, called)
}
