package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/notification/internal/crypto"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
)

// --- Mock Notification Repository ---

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *mockNotificationRepository) List(ctx context.Context, filter domain.NotificationFilter, page pagination.Params) ([]domain.Notification, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *mockNotificationRepository) SetStatus(ctx context.Context, id string, status domain.NotificationStatus, sentAt *time.Time) error {
	args := m.Called(ctx, id, status, sentAt)
	return args.Error(0)
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Sender Repository ---

type mockSenderRepository struct {
	mock.Mock
}

func (m *mockSenderRepository) Create(ctx context.Context, sender *domain.Sender) error {
	args := m.Called(ctx, sender)
	return args.Error(0)
}

func (m *mockSenderRepository) GetByID(ctx context.Context, id string) (*domain.Sender, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sender), args.Error(1)
}

func (m *mockSenderRepository) List(ctx context.Context, userID string, page pagination.Params) ([]domain.Sender, error) {
	args := m.Called(ctx, userID, page)
	return args.Get(0).([]domain.Sender), args.Error(1)
}

func (m *mockSenderRepository) Update(ctx context.Context, sender *domain.Sender) error {
	args := m.Called(ctx, sender)
	return args.Error(0)
}

func (m *mockSenderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Permission Checker ---

type mockPermissionChecker struct {
	mock.Mock
}

func (m *mockPermissionChecker) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	args := m.Called(ctx, userID, permission)
	return args.Bool(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	enc, err := crypto.New("test-encryption-secret")
	require.NoError(t, err)
	return enc
}
