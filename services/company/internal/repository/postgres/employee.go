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
	"github.com/Azizo-B/microservices/services/company/internal/domain"
)

const employeeColumns = "id, company_id, user_id, email, role, status, created_at"

// EmployeeRepository implements repository.EmployeeRepository using PostgreSQL.
type EmployeeRepository struct {
	db database.DB
}

// NewEmployeeRepository creates a new PostgreSQL-backed employee repository.
func NewEmployeeRepository(db database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (id, company_id, user_id, email, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query, e.ID, e.CompanyID, e.UserID, e.Email, e.Role, e.Status, e.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown company")
		}
		if isUniqueViolation(err) {
			return apperrors.Conflict("an employee with this email already exists in this company")
		}
		return fmt.Errorf("insert employee: %w", err)
	}

	return nil
}

// GetByID retrieves an employee by its ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	var e domain.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.Email, &e.Role, &e.Status, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}

	return &e, nil
}

// List returns employees matching the filter, paginated.
func (r *EmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter, page pagination.Params) ([]domain.Employee, error) {
	conds := []string{}
	args := []any{}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}

	if filter.CompanyID != "" {
		add("company_id =", filter.CompanyID)
	}
	if filter.Email != "" {
		add("email ILIKE", "%"+filter.Email+"%")
	}
	if filter.Role != "" {
		add("role =", filter.Role)
	}
	if filter.CreatedAfter != nil {
		add("created_at >=", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		add("created_at <=", *filter.CreatedBefore)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees`
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
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.UserID, &e.Email, &e.Role, &e.Status, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan employee row: %w", err)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employee rows: %w", err)
	}

	return employees, nil
}

// Update modifies an employee's role and status.
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	query := `UPDATE employees SET role = $1, status = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, e.Role, e.Status, e.ID)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Employee not found.")
	}

	return nil
}

// Delete removes an employee record.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Employee not found.")
	}

	return nil
}

// IsMember reports whether the user has an employee record in the company.
func (r *EmployeeRepository) IsMember(ctx context.Context, userID, companyID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE user_id = $1 AND company_id = $2)`,
		userID, companyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check company membership: %w", err)
	}

	return exists, nil
}
