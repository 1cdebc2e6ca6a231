package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Azizo-B/microservices/pkg/database"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
)

const userColumns = "id, app_id, email, username, password_hash, is_verified, status, profile, created_at"

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DB
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, app_id, email, username, password_hash, is_verified, status, profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.AppID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.IsVerified,
		u.Status,
		u.Profile,
		u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a user with this email already exists for this application")
		}
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown application")
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by email within an application.
func (r *UserRepository) GetByEmail(ctx context.Context, appID, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE app_id = $1 AND email = $2`
	return r.scanUser(ctx, query, appID, email)
}

// List returns users matching the filter, paginated.
func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter, page pagination.Params) ([]domain.User, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		conds = append(conds, "created_at <= $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY created_at %s LIMIT $%d OFFSET $%d", order, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.AppID,
			&u.Email,
			&u.Username,
			&u.PasswordHash,
			&u.IsVerified,
			&u.Status,
			&u.Profile,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

// Update modifies an existing user in the database.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, is_verified = $4, status = $5, profile = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.IsVerified,
		u.Status,
		u.Profile,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a user with this email already exists for this application")
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("User not found")
	}

	return nil
}

// Exists reports whether a user with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// scanUser executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.AppID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.IsVerified,
		&u.Status,
		&u.Profile,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}
