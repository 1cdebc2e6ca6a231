package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
	"github.com/Azizo-B/microservices/services/company/internal/repository"
)

// PermissionChecker resolves whether a user holds a named permission. The
// production implementation queries the user service.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, name string) (bool, error)
}

// CompanyService manages companies. Creating a company also enrolls the
// creator as its admin employee, which is what makes them a member for every
// later membership check.
type CompanyService struct {
	companyRepo  repository.CompanyRepository
	employeeRepo repository.EmployeeRepository
	logger       *slog.Logger
}

// NewCompanyService creates a new company service.
func NewCompanyService(
	companyRepo repository.CompanyRepository,
	employeeRepo repository.EmployeeRepository,
	logger *slog.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		logger:       logger,
	}
}

// CreateCompanyInput holds the parameters for registering a company together
// with its first (admin) employee.
type CreateCompanyInput struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateCompanyInput holds the parameters for updating a company.
type UpdateCompanyInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2"`
	Domain *string `json:"domain"`
}

// CreateCompany registers a company and enrolls the creating user as its
// admin employee.
func (s *CompanyService) CreateCompany(ctx context.Context, userID string, input CreateCompanyInput) (*domain.Company, error) {
	company := &domain.Company{
		ID:        uuid.New().String(),
		Name:      input.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		ID:        uuid.New().String(),
		CompanyID: company.ID,
		UserID:    &userID,
		Email:     input.Email,
		Role:      "admin",
		Status:    "added",
		CreatedAt: time.Now().UTC(),
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "company created",
		slog.String("company_id", company.ID),
		slog.String("user_id", userID),
	)

	return company, nil
}

// GetCompany retrieves a company by id.
func (s *CompanyService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Company not found.")
		}
		return nil, err
	}
	return company, nil
}

// ListCompanies returns companies, paginated.
func (s *CompanyService) ListCompanies(ctx context.Context, page pagination.Params) ([]domain.Company, error) {
	return s.companyRepo.List(ctx, page)
}

// UpdateCompany modifies a company's name or domain.
func (s *CompanyService) UpdateCompany(ctx context.Context, id string, input UpdateCompanyInput) (*domain.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.Domain != nil {
		company.Domain = *input.Domain
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}

	return company, nil
}

// DeleteCompany removes a company.
func (s *CompanyService) DeleteCompany(ctx context.Context, id string) error {
	return s.companyRepo.Delete(ctx, id)
}
