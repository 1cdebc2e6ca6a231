package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/sender"
)

type failingDispatcher struct{}

func (failingDispatcher) Send(context.Context, *domain.Notification, domain.EmailCredentials) error {
	return errors.New("smtp connection refused")
}

type notificationFixture struct {
	svc              *NotificationService
	senders          *SenderService
	notificationRepo *mockNotificationRepository
	senderRepo       *mockSenderRepository
	checker          *mockPermissionChecker
}

func newNotificationFixture(t *testing.T, dispatcher sender.Dispatcher) *notificationFixture {
	t.Helper()

	notificationRepo := new(mockNotificationRepository)
	senderRepo := new(mockSenderRepository)
	checker := new(mockPermissionChecker)

	registry := sender.NewRegistry()
	if dispatcher == nil {
		dispatcher = sender.NewLogDispatcher(newTestLogger())
	}
	registry.Register(domain.NotificationTypeEmail, dispatcher)

	senders := NewSenderService(senderRepo, newTestEncryptor(t), checker, newTestLogger())
	svc := NewNotificationService(notificationRepo, senders, registry, checker, newTestLogger())

	return &notificationFixture{
		svc:              svc,
		senders:          senders,
		notificationRepo: notificationRepo,
		senderRepo:       senderRepo,
		checker:          checker,
	}
}

func createInput(senderID string) CreateNotificationInput {
	return CreateNotificationInput{
		UserID:    "11111111-2222-4333-8444-555555555555",
		SenderID:  senderID,
		Type:      domain.NotificationTypeEmail,
		Recipient: "someone@example.test",
		Subject:   "Hello",
		Body:      "Hello there",
	}
}

// ---------------------------------------------------------------------------
// CreateNotification
// ---------------------------------------------------------------------------

func TestNotificationService_CreateNotification_Sent(t *testing.T) {
	f := newNotificationFixture(t, nil)

	snd := storedSender(t, f.senders, "user-1")
	f.senderRepo.On("GetByID", mock.Anything, snd.ID).Return(snd, nil)
	f.notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	f.notificationRepo.On("SetStatus", mock.Anything, mock.Anything, domain.NotificationStatusSent, mock.Anything).Return(nil)

	notification, err := f.svc.CreateNotification(context.Background(), "user-1", createInput(snd.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.NotificationStatusSent, notification.Status)
	require.NotNil(t, notification.SentAt)
	f.notificationRepo.AssertExpectations(t)
}

func TestNotificationService_CreateNotification_DispatchFailure(t *testing.T) {
	f := newNotificationFixture(t, failingDispatcher{})

	snd := storedSender(t, f.senders, "user-1")
	f.senderRepo.On("GetByID", mock.Anything, snd.ID).Return(snd, nil)
	f.notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	f.notificationRepo.On("SetStatus", mock.Anything, mock.Anything, domain.NotificationStatusFailed, (*time.Time)(nil)).Return(nil)

	// A delivery failure is recorded, not surfaced as a request error.
	notification, err := f.svc.CreateNotification(context.Background(), "user-1", createInput(snd.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.NotificationStatusFailed, notification.Status)
	assert.Nil(t, notification.SentAt)
	f.notificationRepo.AssertExpectations(t)
}

func TestNotificationService_CreateNotification_ForeignSenderMasked(t *testing.T) {
	f := newNotificationFixture(t, nil)

	snd := storedSender(t, f.senders, "owner")
	f.senderRepo.On("GetByID", mock.Anything, snd.ID).Return(snd, nil)
	f.checker.On("HasPermission", mock.Anything, "stranger", PermUseAnySender).Return(false, nil)

	_, err := f.svc.CreateNotification(context.Background(), "stranger", createInput(snd.ID))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgSenderNotFound, appErr.Message)
	f.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_CreateNotification_ForeignSenderWithPermission(t *testing.T) {
	f := newNotificationFixture(t, nil)

	snd := storedSender(t, f.senders, "owner")
	f.senderRepo.On("GetByID", mock.Anything, snd.ID).Return(snd, nil)
	f.checker.On("HasPermission", mock.Anything, "operator", PermUseAnySender).Return(true, nil)
	f.notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	f.notificationRepo.On("SetStatus", mock.Anything, mock.Anything, domain.NotificationStatusSent, mock.Anything).Return(nil)

	_, err := f.svc.CreateNotification(context.Background(), "operator", createInput(snd.ID))
	require.NoError(t, err)
}

func TestNotificationService_CreateNotification_TypeMismatch(t *testing.T) {
	f := newNotificationFixture(t, nil)

	snd := storedSender(t, f.senders, "user-1")
	snd.Type = "sms"
	f.senderRepo.On("GetByID", mock.Anything, snd.ID).Return(snd, nil)

	_, err := f.svc.CreateNotification(context.Background(), "user-1", createInput(snd.ID))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	f.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ---------------------------------------------------------------------------
// CreateSystemNotification
// ---------------------------------------------------------------------------

func TestNotificationService_CreateSystemNotification_NoActorCheck(t *testing.T) {
	f := newNotificationFixture(t, nil)

	snd := storedSender(t, f.senders, "some-owner")
	f.senderRepo.On("GetByID", mock.Anything, snd.ID).Return(snd, nil)
	f.notificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	f.notificationRepo.On("SetStatus", mock.Anything, mock.Anything, domain.NotificationStatusSent, mock.Anything).Return(nil)

	notification, err := f.svc.CreateSystemNotification(context.Background(), createInput(snd.ID))
	require.NoError(t, err)

	assert.Equal(t, domain.NotificationStatusSent, notification.Status)
	f.checker.AssertNotCalled(t, "HasPermission", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_CreateSystemNotification_UnknownSender(t *testing.T) {
	f := newNotificationFixture(t, nil)

	f.senderRepo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.CreateSystemNotification(context.Background(), createInput("missing"))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgSenderNotFound, appErr.Message)
}

// ---------------------------------------------------------------------------
// ListNotifications / GetNotification / DeleteNotification
// ---------------------------------------------------------------------------

func TestNotificationService_ListNotifications_ForcedToOwnScope(t *testing.T) {
	f := newNotificationFixture(t, nil)

	f.checker.On("HasPermission", mock.Anything, "user-1", PermListAnyNotifications).Return(false, nil)
	f.notificationRepo.On("List", mock.Anything, domain.NotificationFilter{UserID: "user-1"}, mock.Anything).
		Return([]domain.Notification{}, nil)

	_, err := f.svc.ListNotifications(context.Background(), "user-1",
		domain.NotificationFilter{UserID: "someone-else"}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	f.notificationRepo.AssertExpectations(t)
}

func TestNotificationService_ListNotifications_AnyScopeWithPermission(t *testing.T) {
	f := newNotificationFixture(t, nil)

	f.checker.On("HasPermission", mock.Anything, "operator", PermListAnyNotifications).Return(true, nil)
	f.notificationRepo.On("List", mock.Anything, domain.NotificationFilter{}, mock.Anything).
		Return([]domain.Notification{}, nil)

	_, err := f.svc.ListNotifications(context.Background(), "operator",
		domain.NotificationFilter{}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	f.notificationRepo.AssertExpectations(t)
}

func TestNotificationService_GetNotification_StrangerMasked(t *testing.T) {
	f := newNotificationFixture(t, nil)

	notification := &domain.Notification{ID: "n-1234", UserID: "owner"}
	f.notificationRepo.On("GetByID", mock.Anything, notification.ID).Return(notification, nil)
	f.checker.On("HasPermission", mock.Anything, "stranger", PermReadAnyNotification).Return(false, nil)

	_, err := f.svc.GetNotification(context.Background(), "stranger", notification.ID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgNotificationNotFound, appErr.Message)
	assert.NotErrorIs(t, err, apperrors.ErrForbidden)
}

func TestNotificationService_DeleteNotification_Owner(t *testing.T) {
	f := newNotificationFixture(t, nil)

	notification := &domain.Notification{ID: "n-1234", UserID: "user-1"}
	f.notificationRepo.On("GetByID", mock.Anything, notification.ID).Return(notification, nil)
	f.notificationRepo.On("Delete", mock.Anything, notification.ID).Return(nil)

	err := f.svc.DeleteNotification(context.Background(), "user-1", notification.ID)
	require.NoError(t, err)
	f.notificationRepo.AssertExpectations(t)
}
