package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Azizo-B/microservices/pkg/database"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
)

const deviceColumns = "id, user_id, user_agent, os, browser, city, country, created_at"

// DeviceRepository implements repository.DeviceRepository using PostgreSQL.
type DeviceRepository struct {
	db database.DB
}

// NewDeviceRepository creates a new PostgreSQL-backed device repository.
func NewDeviceRepository(db database.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Create inserts a new device record.
func (r *DeviceRepository) Create(ctx context.Context, d *domain.Device) error {
	query := `
		INSERT INTO devices (id, user_id, user_agent, os, browser, city, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.UserID,
		d.UserAgent,
		d.OS,
		d.Browser,
		d.City,
		d.Country,
		d.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown user")
		}
		return fmt.Errorf("insert device: %w", err)
	}

	return nil
}

// GetByID retrieves a device by its ID.
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`

	var d domain.Device
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.UserID,
		&d.UserAgent,
		&d.OS,
		&d.Browser,
		&d.City,
		&d.Country,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan device: %w", err)
	}

	return &d, nil
}

// ListByUserID returns all devices for the given user, newest first.
func (r *DeviceRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	devices := []domain.Device{}
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.UserAgent,
			&d.OS,
			&d.Browser,
			&d.City,
			&d.Country,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan device row: %w", err)
		}
		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate device rows: %w", err)
	}

	return devices, nil
}
