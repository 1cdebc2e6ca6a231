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

// Permission names follow "<service>:<verb>:any:<resource>".
const (
	PermListAnyEmployees  = "companyservice:list:any:employees"
	PermViewAnyEmployee   = "companyservice:view:any:employee"
	PermUpdateAnyEmployee = "companyservice:update:any:employee"
	PermDeleteAnyEmployee = "companyservice:delete:any:employee"
)

// MsgEmployeeNotFound masks missing employees and employees of companies the
// requester is not a member of.
const MsgEmployeeNotFound = "Employee not found."

// MsgCompanyNotFound masks companies the requester is not a member of.
const MsgCompanyNotFound = "Company not found."

// EmployeeService manages employees. Authorization is membership based: an
// actor may act on an employee when they have an employee record in the same
// company, or hold the matching any-permission. Negative results surface as
// the same NotFound a missing record would.
type EmployeeService struct {
	employeeRepo repository.EmployeeRepository
	checker      PermissionChecker
	logger       *slog.Logger
}

// NewEmployeeService creates a new employee service.
func NewEmployeeService(
	employeeRepo repository.EmployeeRepository,
	checker PermissionChecker,
	logger *slog.Logger,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		checker:      checker,
		logger:       logger,
	}
}

// CreateEmployeeInput holds the parameters for enrolling an employee.
type CreateEmployeeInput struct {
	CompanyID string `json:"companyId" validate:"required,uuid4"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// UpdateEmployeeInput holds the parameters for updating an employee.
type UpdateEmployeeInput struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// CreateEmployee enrolls an employee into a company, linked to the creating
// user's account.
func (s *EmployeeService) CreateEmployee(ctx context.Context, userID string, input CreateEmployeeInput) (*domain.Employee, error) {
	employee := &domain.Employee{
		ID:        uuid.New().String(),
		CompanyID: input.CompanyID,
		UserID:    &userID,
		Email:     input.Email,
		Role:      input.Role,
		Status:    input.Status,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee created",
		slog.String("employee_id", employee.ID),
		slog.String("company_id", employee.CompanyID),
	)

	return employee, nil
}

// ListEmployees returns employees matching the filter. Listing across all
// companies requires the list-any permission; listing within one company
// requires membership, with a masked NotFound otherwise.
func (s *EmployeeService) ListEmployees(ctx context.Context, userID string, filter domain.EmployeeFilter, page pagination.Params) ([]domain.Employee, error) {
	if filter.CompanyID == "" {
		allowed, err := s.checker.HasPermission(ctx, userID, PermListAnyEmployees)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperrors.ValidationFailed("Company ID is required.")
		}
	} else {
		member, err := s.employeeRepo.IsMember(ctx, userID, filter.CompanyID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperrors.NotFound(MsgCompanyNotFound)
		}
	}

	return s.employeeRepo.List(ctx, filter, page)
}

// GetEmployee retrieves an employee, subject to the membership-or-permission
// check.
func (s *EmployeeService) GetEmployee(ctx context.Context, userID, id string) (*domain.Employee, error) {
	return s.getAndAuthorize(ctx, userID, id, PermViewAnyEmployee)
}

// UpdateEmployee modifies an employee's role or status, subject to the
// membership-or-permission check.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, userID, id string, input UpdateEmployeeInput) (*domain.Employee, error) {
	employee, err := s.getAndAuthorize(ctx, userID, id, PermUpdateAnyEmployee)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		employee.Role = *input.Role
	}
	if input.Status != nil {
		employee.Status = *input.Status
	}

	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}

	return employee, nil
}

// DeleteEmployee removes an employee record, subject to the
// membership-or-permission check.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, userID, id string) error {
	if _, err := s.getAndAuthorize(ctx, userID, id, PermDeleteAnyEmployee); err != nil {
		return err
	}

	return s.employeeRepo.Delete(ctx, id)
}

// getAndAuthorize loads an employee and applies the membership-or-permission
// rule. Unrelated actors without the permission get the same NotFound as a
// missing record.
func (s *EmployeeService) getAndAuthorize(ctx context.Context, userID, id, permission string) (*domain.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgEmployeeNotFound)
		}
		return nil, err
	}

	member, err := s.employeeRepo.IsMember(ctx, userID, employee.CompanyID)
	if err != nil {
		return nil, err
	}
	if member {
		return employee, nil
	}

	allowed, err := s.checker.HasPermission(ctx, userID, permission)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NotFound(MsgEmployeeNotFound)
	}

	return employee, nil
}
