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

const clientColumns = "id, company_id, name, type, contact, created_at"

// ClientRepository implements repository.ClientRepository using PostgreSQL.
type ClientRepository struct {
	db database.DB
}

// NewClientRepository creates a new PostgreSQL-backed client repository.
func NewClientRepository(db database.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a new client record.
func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `
		INSERT INTO clients (id, company_id, name, type, contact, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query, c.ID, c.CompanyID, c.Name, c.Type, c.Contact, c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.ValidationFailed("unknown company")
		}
		return fmt.Errorf("insert client: %w", err)
	}

	return nil
}

// GetByID retrieves a client by its ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	var c domain.Client
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.Contact, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}

	return &c, nil
}

// List returns clients matching the filter, paginated.
func (r *ClientRepository) List(ctx context.Context, filter domain.ClientFilter, page pagination.Params) ([]domain.Client, error) {
	conds := []string{}
	args := []any{}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}

	if filter.CompanyID != "" {
		add("company_id =", filter.CompanyID)
	}
	if filter.Name != "" {
		add("name ILIKE", "%"+filter.Name+"%")
	}
	if filter.CreatedAfter != nil {
		add("created_at >=", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		add("created_at <=", *filter.CreatedBefore)
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
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
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Type, &c.Contact, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}

	return clients, nil
}

// Update modifies a client's name and contact.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = $1, contact = $2 WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, c.Name, c.Contact, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Client not found.")
	}

	return nil
}

// Delete removes a client record.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Client not found.")
	}

	return nil
}
