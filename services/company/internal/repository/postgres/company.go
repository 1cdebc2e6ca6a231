package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Azizo-B/microservices/pkg/database"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
)

const companyColumns = "id, name, domain, created_at"

// CompanyRepository implements repository.CompanyRepository using PostgreSQL.
type CompanyRepository struct {
	db database.DB
}

// NewCompanyRepository creates a new PostgreSQL-backed company repository.
func NewCompanyRepository(db database.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company.
func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	query := `INSERT INTO companies (id, name, domain, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Domain, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a company with this name already exists")
		}
		return fmt.Errorf("insert company: %w", err)
	}

	return nil
}

// GetByID retrieves a company by its ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	var c domain.Company
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Domain, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}

	return &c, nil
}

// List returns companies, paginated.
func (r *CompanyRepository) List(ctx context.Context, page pagination.Params) ([]domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	return companies, nil
}

// Update modifies a company's name and domain.
func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	query := `UPDATE companies SET name = $1, domain = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, c.Name, c.Domain, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a company with this name already exists")
		}
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Company not found.")
	}

	return nil
}

// Delete removes a company. Fails with Conflict while employees or clients
// still reference it.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Conflict("company still has employees or clients")
		}
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Company not found.")
	}

	return nil
}
