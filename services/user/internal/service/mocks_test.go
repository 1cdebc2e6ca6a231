package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/auth"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/event"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, appID, email string) (*domain.User, error) {
	args := m.Called(ctx, appID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, filter domain.UserFilter, page pagination.Params) ([]domain.User, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// --- Mock Token Repository ---

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

func (m *mockTokenRepository) List(ctx context.Context, filter domain.TokenFilter, page pagination.Params) ([]domain.Token, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]domain.Token), args.Error(1)
}

func (m *mockTokenRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockTokenRepository) RevokeAllOfType(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) error {
	args := m.Called(ctx, userID, tokenType, at)
	return args.Error(0)
}

func (m *mockTokenRepository) LinkDevice(ctx context.Context, tokenID, deviceID string) error {
	args := m.Called(ctx, tokenID, deviceID)
	return args.Error(0)
}

// --- Mock Permission Repository ---

type mockPermissionRepository struct {
	mock.Mock
}

func (m *mockPermissionRepository) Create(ctx context.Context, permission *domain.Permission) error {
	args := m.Called(ctx, permission)
	return args.Error(0)
}

func (m *mockPermissionRepository) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Permission), args.Error(1)
}

func (m *mockPermissionRepository) List(ctx context.Context, page pagination.Params) ([]domain.Permission, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]domain.Permission), args.Error(1)
}

func (m *mockPermissionRepository) Update(ctx context.Context, permission *domain.Permission) error {
	args := m.Called(ctx, permission)
	return args.Error(0)
}

func (m *mockPermissionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPermissionRepository) NamesForUser(ctx context.Context, userID, name string) ([]string, error) {
	args := m.Called(ctx, userID, name)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPermissionRepository) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock Application Repository ---

type mockApplicationRepository struct {
	mock.Mock
}

func (m *mockApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) List(ctx context.Context, page pagination.Params) ([]domain.Application, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Device Repository ---

type mockDeviceRepository struct {
	mock.Mock
}

func (m *mockDeviceRepository) Create(ctx context.Context, device *domain.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *mockDeviceRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Device), args.Error(1)
}

func (m *mockDeviceRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Device), args.Error(1)
}

// --- Mock Permission Checker ---

type mockPermissionChecker struct {
	mock.Mock
}

func (m *mockPermissionChecker) HasPermission(ctx context.Context, userID, name string) (bool, error) {
	args := m.Called(ctx, userID, name)
	return args.Bool(0), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSigner() *auth.Signer {
	return auth.NewSigner("test-secret-key-for-testing", "user.service", "user.service", time.Hour)
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), "test", logger)
}

func newTestTokenService(tokenRepo *mockTokenRepository, userRepo *mockUserRepository, checker *mockPermissionChecker) *TokenService {
	return NewTokenService(
		tokenRepo,
		userRepo,
		newTestSigner(),
		auth.NewPasswordHasher(),
		checker,
		newTestEventProducer(),
		newTestLogger(),
	)
}
