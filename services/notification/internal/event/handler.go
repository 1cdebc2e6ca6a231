// Package event consumes user-service events and turns them into
// notifications.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/service"
)

// Consumed event types, as published by the user-service.
const (
	EventUserCreated              = "user.created"
	EventVerificationTokenCreated = "verification-token.created"
	EventResetTokenCreated        = "reset-token.created"
)

// userCreatedData mirrors the user.created payload.
type userCreatedData struct {
	UserID string `json:"userId"`
}

// tokenCreatedData mirrors the verification-token.created and
// reset-token.created payloads.
type tokenCreatedData struct {
	UserID  string `json:"userId"`
	TokenID string `json:"tokenId"`
}

// Handler turns user-service events into email notifications. Each event
// resolves the affected user through the user-service, then records and
// dispatches a notification from the configured default sender.
type Handler struct {
	notifications   *service.NotificationService
	users           *UserClient
	defaultSenderID string
	logger          *slog.Logger
}

// NewHandler creates an event handler.
func NewHandler(
	notifications *service.NotificationService,
	users *UserClient,
	defaultSenderID string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		notifications:   notifications,
		users:           users,
		defaultSenderID: defaultSenderID,
		logger:          logger,
	}
}

// Handle dispatches an event to its handler. Unknown event types are logged
// and skipped.
func (h *Handler) Handle(ctx context.Context, ev *pkgkafka.Event) error {
	switch ev.EventType {
	case EventUserCreated:
		return h.handleUserCreated(ctx, ev)
	case EventVerificationTokenCreated:
		return h.handleVerificationTokenCreated(ctx, ev)
	case EventResetTokenCreated:
		return h.handleResetTokenCreated(ctx, ev)
	default:
		h.logger.WarnContext(ctx, "skipping unknown event type",
			slog.String("event_type", ev.EventType),
			slog.String("event_id", ev.EventID),
		)
		return nil
	}
}

func (h *Handler) handleUserCreated(ctx context.Context, ev *pkgkafka.Event) error {
	var data userCreatedData
	if err := ev.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode user.created payload: %w", err)
	}

	user, err := h.users.FetchUser(ctx, data.UserID)
	if err != nil {
		return fmt.Errorf("fetch user %s: %w", data.UserID, err)
	}

	name := user.Username
	if name == "" {
		name = user.Email
	}

	return h.notify(ctx, user,
		"Welcome!",
		fmt.Sprintf("Hi %s,\n\nYour account has been created. Welcome aboard!", name),
	)
}

func (h *Handler) handleVerificationTokenCreated(ctx context.Context, ev *pkgkafka.Event) error {
	var data tokenCreatedData
	if err := ev.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode verification-token.created payload: %w", err)
	}

	user, err := h.users.FetchUser(ctx, data.UserID)
	if err != nil {
		return fmt.Errorf("fetch user %s: %w", data.UserID, err)
	}

	return h.notify(ctx, user,
		"Verify your email address",
		fmt.Sprintf("Hi,\n\nPlease verify your email address using this code:\n\n%s", data.TokenID),
	)
}

func (h *Handler) handleResetTokenCreated(ctx context.Context, ev *pkgkafka.Event) error {
	var data tokenCreatedData
	if err := ev.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode reset-token.created payload: %w", err)
	}

	user, err := h.users.FetchUser(ctx, data.UserID)
	if err != nil {
		return fmt.Errorf("fetch user %s: %w", data.UserID, err)
	}

	return h.notify(ctx, user,
		"Reset your password",
		fmt.Sprintf("Hi,\n\nA password reset was requested for your account. Use this code to continue:\n\n%s\n\nIf you did not request this, you can ignore this email.", data.TokenID),
	)
}

func (h *Handler) notify(ctx context.Context, user *UserDetails, subject, body string) error {
	notification, err := h.notifications.CreateSystemNotification(ctx, service.CreateNotificationInput{
		UserID:    user.ID,
		SenderID:  h.defaultSenderID,
		Type:      domain.NotificationTypeEmail,
		Recipient: user.Email,
		Subject:   subject,
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	h.logger.InfoContext(ctx, "event notification created",
		slog.String("notification_id", notification.ID),
		slog.String("user_id", user.ID),
		slog.String("status", string(notification.Status)),
	)

	return nil
}
