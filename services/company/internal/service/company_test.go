package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
)

func TestCompanyService_CreateCompany_EnrollsAdmin(t *testing.T) {
	companyRepo := new(mockCompanyRepository)
	employeeRepo := new(mockEmployeeRepository)
	svc := NewCompanyService(companyRepo, employeeRepo, newTestLogger())

	companyRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Company")).Return(nil)

	var enrolled *domain.Employee
	employeeRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Employee")).
		Run(func(args mock.Arguments) { enrolled = args.Get(1).(*domain.Employee) }).
		Return(nil)

	company, err := svc.CreateCompany(context.Background(), "user-1", CreateCompanyInput{
		Name:  "Acme",
		Email: "founder@acme.test",
	})
	require.NoError(t, err)

	require.NotNil(t, enrolled)
	assert.Equal(t, company.ID, enrolled.CompanyID)
	require.NotNil(t, enrolled.UserID)
	assert.Equal(t, "user-1", *enrolled.UserID)
	assert.Equal(t, "admin", enrolled.Role)
	assert.Equal(t, "added", enrolled.Status)
	assert.Equal(t, "founder@acme.test", enrolled.Email)
}

func TestCompanyService_CreateCompany_DuplicateName(t *testing.T) {
	companyRepo := new(mockCompanyRepository)
	employeeRepo := new(mockEmployeeRepository)
	svc := NewCompanyService(companyRepo, employeeRepo, newTestLogger())

	companyRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Company")).
		Return(apperrors.Conflict("a company with this name already exists"))

	_, err := svc.CreateCompany(context.Background(), "user-1", CreateCompanyInput{
		Name:  "Acme",
		Email: "founder@acme.test",
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	employeeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCompanyService_GetCompany_NotFound(t *testing.T) {
	companyRepo := new(mockCompanyRepository)
	svc := NewCompanyService(companyRepo, new(mockEmployeeRepository), newTestLogger())

	companyRepo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetCompany(context.Background(), "missing")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Company not found.", appErr.Message)
}
