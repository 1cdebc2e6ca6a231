package repository

import (
	"context"

	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
)

// CompanyRepository defines the interface for company persistence.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context, page pagination.Params) ([]domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
}

// EmployeeRepository defines the interface for employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, filter domain.EmployeeFilter, page pagination.Params) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id string) error

	// IsMember reports whether the user has an employee record in the company.
	IsMember(ctx context.Context, userID, companyID string) (bool, error)
}

// ClientRepository defines the interface for client persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, filter domain.ClientFilter, page pagination.Params) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
}
