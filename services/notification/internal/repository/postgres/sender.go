package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Azizo-B/microservices/pkg/database"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
)

const senderColumns = "id, user_id, name, type, encrypted_credentials, created_at"

// SenderRepository implements repository.SenderRepository using PostgreSQL.
type SenderRepository struct {
	db database.DB
}

// NewSenderRepository creates a new PostgreSQL-backed sender repository.
func NewSenderRepository(db database.DB) *SenderRepository {
	return &SenderRepository{db: db}
}

// Create inserts a new sender record.
func (r *SenderRepository) Create(ctx context.Context, s *domain.Sender) error {
	query := `
		INSERT INTO senders (id, user_id, name, type, encrypted_credentials, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query, s.ID, s.UserID, s.Name, s.Type, s.EncryptedCredentials, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a sender with this name already exists")
		}
		return fmt.Errorf("insert sender: %w", err)
	}

	return nil
}

// GetByID retrieves a sender by its ID.
func (r *SenderRepository) GetByID(ctx context.Context, id string) (*domain.Sender, error) {
	query := `SELECT ` + senderColumns + ` FROM senders WHERE id = $1`

	var s domain.Sender
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Name, &s.Type, &s.EncryptedCredentials, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan sender: %w", err)
	}

	return &s, nil
}

// List returns senders, optionally scoped to a user, paginated.
func (r *SenderRepository) List(ctx context.Context, userID string, page pagination.Params) ([]domain.Sender, error) {
	query := `SELECT ` + senderColumns + ` FROM senders`
	args := []any{}

	if userID != "" {
		args = append(args, userID)
		query += " WHERE user_id = $1"
	}

	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list senders: %w", err)
	}
	defer rows.Close()

	senders := []domain.Sender{}
	for rows.Next() {
		var s domain.Sender
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.Type, &s.EncryptedCredentials, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sender row: %w", err)
		}
		senders = append(senders, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sender rows: %w", err)
	}

	return senders, nil
}

// Update modifies a sender's name and credentials.
func (r *SenderRepository) Update(ctx context.Context, s *domain.Sender) error {
	query := `UPDATE senders SET name = $1, encrypted_credentials = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, s.Name, s.EncryptedCredentials, s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a sender with this name already exists")
		}
		return fmt.Errorf("update sender: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Sender not found.")
	}

	return nil
}

// Delete removes a sender record.
func (r *SenderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM senders WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("sender is referenced by existing notifications")
		}
		return fmt.Errorf("delete sender: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Sender not found.")
	}

	return nil
}
