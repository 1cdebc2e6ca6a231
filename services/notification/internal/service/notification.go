package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/repository"
	"github.com/Azizo-B/microservices/services/notification/internal/sender"
)

const (
	PermListAnyNotifications  = "notificationservice:list:any:notification"
	PermReadAnyNotification   = "notificationservice:read:any:notification"
	PermDeleteAnyNotification = "notificationservice:delete:any:notification"
)

// MsgNotificationNotFound masks missing notifications and notifications owned
// by someone else.
const MsgNotificationNotFound = "Notification not found."

// NotificationService creates and dispatches notifications. A notification is
// recorded as pending before dispatch, then marked sent or failed. Using a
// sender you do not own requires the use-any permission, masked as NotFound.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	senders          *SenderService
	dispatchers      *sender.Registry
	checker          PermissionChecker
	logger           *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	senders *SenderService,
	dispatchers *sender.Registry,
	checker PermissionChecker,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		senders:          senders,
		dispatchers:      dispatchers,
		checker:          checker,
		logger:           logger,
	}
}

// CreateNotificationInput holds the parameters for sending a notification.
type CreateNotificationInput struct {
	UserID    string                  `json:"userId" validate:"required,uuid4"`
	SenderID  string                  `json:"senderId" validate:"required,uuid4"`
	Type      domain.NotificationType `json:"type" validate:"required"`
	Recipient string                  `json:"recipient" validate:"required"`
	Subject   string                  `json:"subject" validate:"required"`
	Body      string                  `json:"body" validate:"required"`
}

// CreateNotification records and dispatches a notification on behalf of the
// acting user. The sender must be owned by the actor or unlocked by the
// use-any permission.
func (s *NotificationService) CreateNotification(ctx context.Context, actorID string, input CreateNotificationInput) (*domain.Notification, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("invalid notification type: %s", input.Type))
	}

	snd, err := s.authorizeSender(ctx, actorID, input.SenderID)
	if err != nil {
		return nil, err
	}
	if snd.Type != input.Type {
		return nil, apperrors.ValidationFailed("sender does not support this notification type")
	}

	notification := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		SenderID:  snd.ID,
		Type:      input.Type,
		Recipient: input.Recipient,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    domain.NotificationStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.dispatch(ctx, notification, snd)

	return notification, nil
}

// dispatch delivers the notification and records the outcome. Delivery
// failures mark the record failed rather than erroring the request.
func (s *NotificationService) dispatch(ctx context.Context, n *domain.Notification, snd *domain.Sender) {
	err := s.deliver(ctx, n, snd)
	if err != nil {
		s.logger.ErrorContext(ctx, "notification dispatch failed",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
		n.Status = domain.NotificationStatusFailed
		n.SentAt = nil
	} else {
		now := time.Now().UTC()
		n.Status = domain.NotificationStatusSent
		n.SentAt = &now
	}

	if err := s.notificationRepo.SetStatus(ctx, n.ID, n.Status, n.SentAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to record notification status",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *NotificationService) deliver(ctx context.Context, n *domain.Notification, snd *domain.Sender) error {
	dispatcher, err := s.dispatchers.For(n.Type)
	if err != nil {
		return err
	}

	creds, err := s.senders.credentialsOf(snd)
	if err != nil {
		return err
	}

	return dispatcher.Send(ctx, n, creds)
}

// CreateSystemNotification records and dispatches a notification on behalf of
// the service itself, for event-driven deliveries. No actor authorization is
// applied; the sender is trusted configuration.
func (s *NotificationService) CreateSystemNotification(ctx context.Context, input CreateNotificationInput) (*domain.Notification, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("invalid notification type: %s", input.Type))
	}

	snd, err := s.senders.senderRepo.GetByID(ctx, input.SenderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgSenderNotFound)
		}
		return nil, err
	}
	if snd.Type != input.Type {
		return nil, apperrors.ValidationFailed("sender does not support this notification type")
	}

	notification := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		SenderID:  snd.ID,
		Type:      input.Type,
		Recipient: input.Recipient,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    domain.NotificationStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.dispatch(ctx, notification, snd)

	return notification, nil
}

// ListNotifications returns notifications. Without the list-any permission the
// filter is forced to the actor's own notifications.
func (s *NotificationService) ListNotifications(ctx context.Context, actorID string, filter domain.NotificationFilter, page pagination.Params) ([]domain.Notification, error) {
	if filter.UserID == "" || filter.UserID != actorID {
		allowed, err := s.checker.HasPermission(ctx, actorID, PermListAnyNotifications)
		if err != nil {
			return nil, err
		}
		if !allowed {
			filter.UserID = actorID
		}
	}

	return s.notificationRepo.List(ctx, filter, page)
}

// GetNotification retrieves a notification, subject to the
// owner-or-permission check.
func (s *NotificationService) GetNotification(ctx context.Context, actorID, id string) (*domain.Notification, error) {
	return s.getAndAuthorize(ctx, actorID, id, PermReadAnyNotification)
}

// DeleteNotification removes a notification, subject to the
// owner-or-permission check.
func (s *NotificationService) DeleteNotification(ctx context.Context, actorID, id string) error {
	if _, err := s.getAndAuthorize(ctx, actorID, id, PermDeleteAnyNotification); err != nil {
		return err
	}

	return s.notificationRepo.Delete(ctx, id)
}

// authorizeSender loads a sender for use in a dispatch. Senders owned by
// someone else require the use-any permission and otherwise surface the same
// NotFound a missing sender would.
func (s *NotificationService) authorizeSender(ctx context.Context, actorID, senderID string) (*domain.Sender, error) {
	snd, err := s.senders.senderRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgSenderNotFound)
		}
		return nil, err
	}

	if snd.UserID == actorID {
		return snd, nil
	}

	allowed, err := s.checker.HasPermission(ctx, actorID, PermUseAnySender)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NotFound(MsgSenderNotFound)
	}

	return snd, nil
}

// getAndAuthorize loads a notification and applies the owner-or-permission
// rule.
func (s *NotificationService) getAndAuthorize(ctx context.Context, actorID, id, permission string) (*domain.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgNotificationNotFound)
		}
		return nil, err
	}

	if notification.UserID == actorID {
		return notification, nil
	}

	allowed, err := s.checker.HasPermission(ctx, actorID, permission)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NotFound(MsgNotificationNotFound)
	}

	return notification, nil
}
