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

// PermissionRepository implements repository.PermissionRepository using PostgreSQL.
type PermissionRepository struct {
	db database.DB
}

// NewPermissionRepository creates a new PostgreSQL-backed permission repository.
func NewPermissionRepository(db database.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Create inserts a new permission.
func (r *PermissionRepository) Create(ctx context.Context, p *domain.Permission) error {
	query := `INSERT INTO permissions (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Description, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a permission with this name already exists")
		}
		return fmt.Errorf("insert permission: %w", err)
	}

	return nil
}

// GetByID retrieves a permission by its ID.
func (r *PermissionRepository) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	query := `SELECT id, name, description, created_at FROM permissions WHERE id = $1`

	var p domain.Permission
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Permission not found")
		}
		return nil, fmt.Errorf("scan permission: %w", err)
	}

	return &p, nil
}

// List returns permissions, paginated.
func (r *PermissionRepository) List(ctx context.Context, page pagination.Params) ([]domain.Permission, error) {
	query := `SELECT id, name, description, created_at FROM permissions ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	permissions := []domain.Permission{}
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission row: %w", err)
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permission rows: %w", err)
	}

	return permissions, nil
}

// Update modifies an existing permission.
func (r *PermissionRepository) Update(ctx context.Context, p *domain.Permission) error {
	query := `UPDATE permissions SET name = $1, description = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, p.Name, p.Description, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a permission with this name already exists")
		}
		return fmt.Errorf("update permission: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Permission not found")
	}

	return nil
}

// Delete removes a permission. Fails with Conflict while the permission is
// still linked to roles.
func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM permissions WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("permission is still assigned to roles")
		}
		return fmt.Errorf("delete permission: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Permission not found")
	}

	return nil
}

// NamesForUser returns the de-duplicated permission names a user holds
// through role membership, optionally filtered to a single name. The walk is
// a single join: users -> user_roles -> role_permissions -> permissions.
func (r *PermissionRepository) NamesForUser(ctx context.Context, userID, name string) ([]string, error) {
	query := `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1`
	args := []any{userID}

	if name != "" {
		query += " AND p.name = $2"
		args = append(args, name)
	}
	query += " ORDER BY p.name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve user permissions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan permission name: %w", err)
		}
		names = append(names, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permission names: %w", err)
	}

	return names, nil
}

// RoleNamesForUser returns the names of the roles a user belongs to.
func (r *PermissionRepository) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT ro.name
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ro.name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user roles: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}
		names = append(names, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role names: %w", err)
	}

	return names, nil
}
