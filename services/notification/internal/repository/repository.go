package repository

import (
	"context"
	"time"

	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
)

// NotificationRepository defines the interface for notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context, filter domain.NotificationFilter, page pagination.Params) ([]domain.Notification, error)

	// SetStatus records the delivery outcome. sentAt is nil for failures.
	SetStatus(ctx context.Context, id string, status domain.NotificationStatus, sentAt *time.Time) error

	Delete(ctx context.Context, id string) error
}

// SenderRepository defines the interface for sender persistence.
type SenderRepository interface {
	Create(ctx context.Context, sender *domain.Sender) error
	GetByID(ctx context.Context, id string) (*domain.Sender, error)
	List(ctx context.Context, userID string, page pagination.Params) ([]domain.Sender, error)
	Update(ctx context.Context, sender *domain.Sender) error
	Delete(ctx context.Context, id string) error
}
