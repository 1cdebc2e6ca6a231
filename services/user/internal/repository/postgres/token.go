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
	"github.com/Azizo-B/microservices/services/user/internal/domain"
)

const tokenColumns = "id, user_id, app_id, device_id, type, token, expires_at, created_at, revoked_at"

// TokenRepository implements repository.TokenRepository using PostgreSQL.
type TokenRepository struct {
	db database.DB
}

// NewTokenRepository creates a new PostgreSQL-backed token repository.
func NewTokenRepository(db database.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a fully signed token record.
func (r *TokenRepository) Create(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (id, user_id, app_id, device_id, type, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.AppID,
		t.DeviceID,
		t.Type,
		t.Token,
		t.ExpiresAt,
		t.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown user, application, or device")
		}
		return fmt.Errorf("insert token: %w", err)
	}

	return nil
}

// GetByID retrieves a token by its ID.
func (r *TokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	var t domain.Token
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.AppID,
		&t.DeviceID,
		&t.Type,
		&t.Token,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}

	return &t, nil
}

// List returns tokens matching the filter, paginated, newest first.
func (r *TokenRepository) List(ctx context.Context, filter domain.TokenFilter, page pagination.Params) ([]domain.Token, error) {
	var (
		conds []string
		args  []any
	)

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, "user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.AppID != "" {
		args = append(args, filter.AppID)
		conds = append(conds, "app_id = $"+strconv.Itoa(len(args)))
	}
	if filter.DeviceID != "" {
		args = append(args, filter.DeviceID)
		conds = append(conds, "device_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, "type = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + tokenColumns + ` FROM tokens`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	tokens := []domain.Token{}
	for rows.Next() {
		var t domain.Token
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.AppID,
			&t.DeviceID,
			&t.Type,
			&t.Token,
			&t.ExpiresAt,
			&t.CreatedAt,
			&t.RevokedAt,
		); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}

// Revoke soft-revokes a token. A second revocation is a no-op, so the first
// revocation time is preserved.
func (r *TokenRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`

	if _, err := r.db.Exec(ctx, query, at, id); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

// RevokeAllOfType revokes every live token of the given type for a user.
func (r *TokenRepository) RevokeAllOfType(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) error {
	query := `UPDATE tokens SET revoked_at = $1 WHERE user_id = $2 AND type = $3 AND revoked_at IS NULL`

	if _, err := r.db.Exec(ctx, query, at, userID, tokenType); err != nil {
		return fmt.Errorf("revoke tokens of type %s: %w", tokenType, err)
	}

	return nil
}

// LinkDevice attaches a device reference to an existing token.
func (r *TokenRepository) LinkDevice(ctx context.Context, tokenID, deviceID string) error {
	query := `UPDATE tokens SET device_id = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, deviceID, tokenID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown device")
		}
		return fmt.Errorf("link token to device: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Token not found.")
	}

	return nil
}
