package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Azizo-B/microservices/pkg/database"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
)

// ApplicationRepository implements repository.ApplicationRepository using PostgreSQL.
type ApplicationRepository struct {
	db database.DB
}

// NewApplicationRepository creates a new PostgreSQL-backed application repository.
func NewApplicationRepository(db database.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `INSERT INTO applications (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, app.ID, app.Name, app.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("an application with this name already exists")
		}
		return fmt.Errorf("insert application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by its ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `SELECT id, name, created_at FROM applications WHERE id = $1`

	var app domain.Application
	err := r.db.QueryRow(ctx, query, id).Scan(&app.ID, &app.Name, &app.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Application not found")
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	return &app, nil
}

// List returns applications, paginated.
func (r *ApplicationRepository) List(ctx context.Context, page pagination.Params) ([]domain.Application, error) {
	query := `SELECT id, name, created_at FROM applications ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(&app.ID, &app.Name, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application rows: %w", err)
	}

	return apps, nil
}

// Update modifies an existing application.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	query := `UPDATE applications SET name = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, app.Name, app.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("an application with this name already exists")
		}
		return fmt.Errorf("update application: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Application not found")
	}

	return nil
}

// Delete removes an application. Fails with Conflict while users or tokens
// still reference it.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM applications WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("application still has users or tokens")
		}
		return fmt.Errorf("delete application: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Application not found")
	}

	return nil
}
