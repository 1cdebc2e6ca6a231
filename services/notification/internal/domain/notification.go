package domain

import "time"

// NotificationType enumerates the supported delivery channels.
type NotificationType string

const (
	NotificationTypeEmail NotificationType = "email"
)

// IsValid reports whether the type has a registered dispatcher.
func (t NotificationType) IsValid() bool {
	return t == NotificationTypeEmail
}

// NotificationStatus tracks delivery progress.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is a single dispatched (or pending) message. UserID is the
// account the notification concerns and the owner for authorization.
type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	SenderID  string             `json:"senderId"`
	Type      NotificationType   `json:"type"`
	Recipient string             `json:"recipient"`
	Subject   string             `json:"subject"`
	Body      string             `json:"body"`
	Status    NotificationStatus `json:"status"`
	SentAt    *time.Time         `json:"sentAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NotificationFilter narrows notification list queries.
type NotificationFilter struct {
	UserID string
	Status NotificationStatus
}
