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

// RoleRepository implements repository.RoleRepository using PostgreSQL.
type RoleRepository struct {
	db database.DB
}

// NewRoleRepository creates a new PostgreSQL-backed role repository.
func NewRoleRepository(db database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `INSERT INTO roles (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, role.ID, role.Name, role.Description, role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a role with this name already exists")
		}
		return fmt.Errorf("insert role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by its ID.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	query := `SELECT id, name, description, created_at FROM roles WHERE id = $1`

	var role domain.Role
	err := r.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Role not found")
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	return &role, nil
}

// List returns roles, paginated.
func (r *RoleRepository) List(ctx context.Context, page pagination.Params) ([]domain.Role, error) {
	query := `SELECT id, name, description, created_at FROM roles ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role rows: %w", err)
	}

	return roles, nil
}

// Update modifies an existing role.
func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `UPDATE roles SET name = $1, description = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, role.Name, role.Description, role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a role with this name already exists")
		}
		return fmt.Errorf("update role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Role not found")
	}

	return nil
}

// Delete removes a role. Fails with Conflict while the role is still linked
// to users or permissions.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM roles WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("role is still assigned to users or permissions")
		}
		return fmt.Errorf("delete role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Role not found")
	}

	return nil
}

// PermissionNames returns the names of the permissions the role grants.
func (r *RoleRepository) PermissionNames(ctx context.Context, roleID string) ([]string, error) {
	query := `
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name`

	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan permission name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permission names: %w", err)
	}

	return names, nil
}

// AssignPermission links a permission to a role. Idempotent.
func (r *RoleRepository) AssignPermission(ctx context.Context, roleID, permissionID string) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, roleID, permissionID); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("Role or permission not found")
		}
		return fmt.Errorf("assign permission to role: %w", err)
	}

	return nil
}

// RemovePermission unlinks a permission from a role. Idempotent.
func (r *RoleRepository) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`

	if _, err := r.db.Exec(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("remove permission from role: %w", err)
	}

	return nil
}

// AssignToUser grants a role to a user. Idempotent.
func (r *RoleRepository) AssignToUser(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID, roleID); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("User or role not found")
		}
		return fmt.Errorf("assign role to user: %w", err)
	}

	return nil
}

// RemoveFromUser revokes a role from a user. Idempotent.
func (r *RoleRepository) RemoveFromUser(ctx context.Context, userID, roleID string) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`

	if _, err := r.db.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("remove role from user: %w", err)
	}

	return nil
}
