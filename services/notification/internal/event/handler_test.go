package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azizo-B/microservices/pkg/authclient"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httpclient"
	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/pkg/validator"
	"github.com/Azizo-B/microservices/services/notification/internal/crypto"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/sender"
	"github.com/Azizo-B/microservices/services/notification/internal/service"
)

const (
	testUserID   = "11111111-2222-4333-8444-555555555555"
	testSenderID = "99999999-8888-4777-a666-555555555555"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- In-memory repositories ---

type memNotificationRepo struct {
	mu      sync.Mutex
	created []*domain.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *memNotificationRepo) GetByID(context.Context, string) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *memNotificationRepo) List(context.Context, domain.NotificationFilter, pagination.Params) ([]domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *memNotificationRepo) SetStatus(_ context.Context, id string, status domain.NotificationStatus, sentAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.ID == id {
			n.Status = status
			n.SentAt = sentAt
		}
	}
	return nil
}

func (r *memNotificationRepo) Delete(context.Context, string) error {
	return fmt.Errorf("not implemented")
}

func (r *memNotificationRepo) all() []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Notification(nil), r.created...)
}

type memSenderRepo struct {
	senders map[string]*domain.Sender
}

func (r *memSenderRepo) Create(context.Context, *domain.Sender) error { return nil }

func (r *memSenderRepo) GetByID(_ context.Context, id string) (*domain.Sender, error) {
	if s, ok := r.senders[id]; ok {
		return s, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *memSenderRepo) List(context.Context, string, pagination.Params) ([]domain.Sender, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *memSenderRepo) Update(context.Context, *domain.Sender) error { return nil }
func (r *memSenderRepo) Delete(context.Context, string) error         { return nil }

type denyAllChecker struct{}

func (denyAllChecker) HasPermission(context.Context, string, string) (bool, error) {
	return false, nil
}

// --- User service stub ---

// newUserServiceStub serves the two endpoints the event path touches: the
// service login and the user lookup.
func newUserServiceStub(t *testing.T, rejectFirstToken bool) (*httptest.Server, *int) {
	t.Helper()

	logins := 0
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/tokens/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AppID    string `json:"appId" validate:"required,uuid4"`
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "VALIDATION_FAILED", "message": err.Error()},
			})
			return
		}

		logins++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"token": fmt.Sprintf("service-token-%d", logins)},
		})
	})

	mux.HandleFunc("GET /api/users/", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if rejectFirstToken && token == "service-token-1" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "UNAUTHORIZED", "message": "Invalid authentication token."},
			})
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/users/")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{
				"id":       id,
				"email":    "person@example.test",
				"username": "person",
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logins
}

func newHandlerFixture(t *testing.T, rejectFirstToken bool) (*Handler, *memNotificationRepo, *int) {
	t.Helper()

	srv, logins := newUserServiceStub(t, rejectFirstToken)

	enc, err := crypto.New("test-encryption-secret")
	require.NoError(t, err)
	raw, err := json.Marshal(domain.EmailCredentials{
		SMTPHost: "smtp.example.test",
		SMTPPort: 587,
		Email:    "noreply@example.test",
		Password: "smtp-password",
	})
	require.NoError(t, err)
	encrypted, err := enc.Encrypt(string(raw))
	require.NoError(t, err)

	senderRepo := &memSenderRepo{senders: map[string]*domain.Sender{
		testSenderID: {
			ID:                   testSenderID,
			UserID:               "platform",
			Name:                 "default",
			Type:                 domain.NotificationTypeEmail,
			EncryptedCredentials: encrypted,
			CreatedAt:            time.Now().UTC(),
		},
	}}
	notificationRepo := &memNotificationRepo{}

	logger := newTestLogger()
	registry := sender.NewRegistry()
	registry.Register(domain.NotificationTypeEmail, sender.NewLogDispatcher(logger))

	senders := service.NewSenderService(senderRepo, enc, denyAllChecker{}, logger)
	notifications := service.NewNotificationService(notificationRepo, senders, registry, denyAllChecker{}, logger)

	hc := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10})
	tokens := authclient.NewTokenSource(authclient.Config{
		BaseURL:         srv.URL,
		ServiceAppID:    "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee",
		ServiceEmail:    "notification-service@example.test",
		ServicePassword: "service-password",
	}, hc)
	users := NewUserClient(srv.URL, hc, tokens)

	return NewHandler(notifications, users, testSenderID, logger), notificationRepo, logins
}

func newEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	ev, err := pkgkafka.NewEvent(eventType, testUserID, "user", "user-service", data)
	require.NoError(t, err)
	return ev
}

// ---------------------------------------------------------------------------
// Handle
// ---------------------------------------------------------------------------

func TestHandler_UserCreated(t *testing.T) {
	h, repo, _ := newHandlerFixture(t, false)

	ev := newEvent(t, EventUserCreated, map[string]string{"userId": testUserID})
	require.NoError(t, h.Handle(context.Background(), ev))

	created := repo.all()
	require.Len(t, created, 1)
	n := created[0]
	assert.Equal(t, testUserID, n.UserID)
	assert.Equal(t, "person@example.test", n.Recipient)
	assert.Equal(t, "Welcome!", n.Subject)
	assert.Contains(t, n.Body, "person")
	assert.Equal(t, domain.NotificationStatusSent, n.Status)
}

func TestHandler_VerificationTokenCreated(t *testing.T) {
	h, repo, _ := newHandlerFixture(t, false)

	ev := newEvent(t, EventVerificationTokenCreated, map[string]string{
		"userId":  testUserID,
		"tokenId": "verify-code-123",
	})
	require.NoError(t, h.Handle(context.Background(), ev))

	created := repo.all()
	require.Len(t, created, 1)
	assert.Equal(t, "Verify your email address", created[0].Subject)
	assert.Contains(t, created[0].Body, "verify-code-123")
}

func TestHandler_ResetTokenCreated(t *testing.T) {
	h, repo, _ := newHandlerFixture(t, false)

	ev := newEvent(t, EventResetTokenCreated, map[string]string{
		"userId":  testUserID,
		"tokenId": "reset-code-456",
	})
	require.NoError(t, h.Handle(context.Background(), ev))

	created := repo.all()
	require.Len(t, created, 1)
	assert.Equal(t, "Reset your password", created[0].Subject)
	assert.Contains(t, created[0].Body, "reset-code-456")
}

func TestHandler_UnknownEventType(t *testing.T) {
	h, repo, logins := newHandlerFixture(t, false)

	ev := newEvent(t, "user.deleted", map[string]string{"userId": testUserID})
	require.NoError(t, h.Handle(context.Background(), ev))

	assert.Empty(t, repo.all())
	assert.Zero(t, *logins)
}

func TestHandler_RetriesAfterRejectedServiceToken(t *testing.T) {
	h, repo, logins := newHandlerFixture(t, true)

	ev := newEvent(t, EventUserCreated, map[string]string{"userId": testUserID})
	require.NoError(t, h.Handle(context.Background(), ev))

	// The first credential is rejected, invalidated, and a fresh login made.
	assert.Equal(t, 2, *logins)
	require.Len(t, repo.all(), 1)
}

func TestHandler_DuplicateEventSkipped(t *testing.T) {
	h, repo, _ := newHandlerFixture(t, false)

	store := pkgkafka.NewMemoryIdempotencyStore(time.Hour)
	wrapped := pkgkafka.IdempotentHandler(store, h.Handle, newTestLogger())

	ev := newEvent(t, EventUserCreated, map[string]string{"userId": testUserID})
	require.NoError(t, wrapped(context.Background(), ev))
	require.NoError(t, wrapped(context.Background(), ev))

	assert.Len(t, repo.all(), 1)
}
