package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Azizo-B/microservices/pkg/database"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
)

const notificationColumns = "id, user_id, sender_id, type, recipient, subject, body, status, sent_at, created_at"

// NotificationRepository implements repository.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	db database.DB
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(db database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification record.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, sender_id, type, recipient, subject, body, status, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		n.ID, n.UserID, n.SenderID, n.Type, n.Recipient, n.Subject, n.Body, n.Status, n.SentAt, n.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown sender")
		}
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by its ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n domain.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.SenderID, &n.Type, &n.Recipient, &n.Subject, &n.Body, &n.Status, &n.SentAt, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}

	return &n, nil
}

// List returns notifications matching the filter, newest first, paginated.
func (r *NotificationRepository) List(ctx context.Context, filter domain.NotificationFilter, page pagination.Params) ([]domain.Notification, error) {
	conds := []string{}
	args := []any{}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}

	if filter.UserID != "" {
		add("user_id =", filter.UserID)
	}
	if filter.Status != "" {
		add("status =", filter.Status)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.SenderID, &n.Type, &n.Recipient, &n.Subject, &n.Body, &n.Status, &n.SentAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

// SetStatus records the delivery outcome of a notification.
func (r *NotificationRepository) SetStatus(ctx context.Context, id string, status domain.NotificationStatus, sentAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET status = $1, sent_at = $2 WHERE id = $3`, status, sentAt, id)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Notification not found.")
	}

	return nil
}

// Delete removes a notification record.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Notification not found.")
	}

	return nil
}
