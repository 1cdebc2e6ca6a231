package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/company/internal/domain"
)

func sampleEmployee() *domain.Employee {
	linked := "owner-user"
	return &domain.Employee{
		ID:        "e-1234",
		CompanyID: "c-1234",
		UserID:    &linked,
		Email:     "worker@acme.test",
		Role:      "member",
		Status:    "added",
		CreatedAt: time.Now().UTC(),
	}
}

func newEmployeeFixture() (*EmployeeService, *mockEmployeeRepository, *mockPermissionChecker) {
	repo := new(mockEmployeeRepository)
	checker := new(mockPermissionChecker)
	return NewEmployeeService(repo, checker, newTestLogger()), repo, checker
}

// ---------------------------------------------------------------------------
// ListEmployees
// ---------------------------------------------------------------------------

func TestEmployeeService_ListEmployees_NoCompanyWithoutPermission(t *testing.T) {
	svc, repo, checker := newEmployeeFixture()

	checker.On("HasPermission", mock.Anything, "user-1", PermListAnyEmployees).Return(false, nil)

	_, err := svc.ListEmployees(context.Background(), "user-1", domain.EmployeeFilter{}, pagination.Params{Page: 1, Limit: 20})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Company ID is required.", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmployeeService_ListEmployees_NoCompanyWithPermission(t *testing.T) {
	svc, repo, checker := newEmployeeFixture()

	checker.On("HasPermission", mock.Anything, "operator", PermListAnyEmployees).Return(true, nil)
	repo.On("List", mock.Anything, domain.EmployeeFilter{}, mock.Anything).Return([]domain.Employee{}, nil)

	_, err := svc.ListEmployees(context.Background(), "operator", domain.EmployeeFilter{}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestEmployeeService_ListEmployees_MemberOfCompany(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	filter := domain.EmployeeFilter{CompanyID: "c-1234"}
	repo.On("IsMember", mock.Anything, "user-1", "c-1234").Return(true, nil)
	repo.On("List", mock.Anything, filter, mock.Anything).Return([]domain.Employee{*sampleEmployee()}, nil)

	employees, err := svc.ListEmployees(context.Background(), "user-1", filter, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestEmployeeService_ListEmployees_NonMemberMasked(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	repo.On("IsMember", mock.Anything, "outsider", "c-1234").Return(false, nil)

	_, err := svc.ListEmployees(context.Background(), "outsider",
		domain.EmployeeFilter{CompanyID: "c-1234"}, pagination.Params{Page: 1, Limit: 20})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgCompanyNotFound, appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// GetEmployee
// ---------------------------------------------------------------------------

func TestEmployeeService_GetEmployee_Member(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	employee := sampleEmployee()
	repo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil)
	repo.On("IsMember", mock.Anything, "colleague", employee.CompanyID).Return(true, nil)

	got, err := svc.GetEmployee(context.Background(), "colleague", employee.ID)
	require.NoError(t, err)
	assert.Equal(t, employee, got)
}

func TestEmployeeService_GetEmployee_StrangerMasked(t *testing.T) {
	svc, repo, checker := newEmployeeFixture()

	employee := sampleEmployee()
	repo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil)
	repo.On("IsMember", mock.Anything, "outsider", employee.CompanyID).Return(false, nil)
	checker.On("HasPermission", mock.Anything, "outsider", PermViewAnyEmployee).Return(false, nil)

	_, err := svc.GetEmployee(context.Background(), "outsider", employee.ID)

	// Indistinguishable from a genuinely missing employee.
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgEmployeeNotFound, appErr.Message)
	assert.NotErrorIs(t, err, apperrors.ErrForbidden)
}

func TestEmployeeService_GetEmployee_StrangerWithPermission(t *testing.T) {
	svc, repo, checker := newEmployeeFixture()

	employee := sampleEmployee()
	repo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil)
	repo.On("IsMember", mock.Anything, "operator", employee.CompanyID).Return(false, nil)
	checker.On("HasPermission", mock.Anything, "operator", PermViewAnyEmployee).Return(true, nil)

	got, err := svc.GetEmployee(context.Background(), "operator", employee.ID)
	require.NoError(t, err)
	assert.Equal(t, employee, got)
}

func TestEmployeeService_GetEmployee_Missing(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetEmployee(context.Background(), "anyone", "missing")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgEmployeeNotFound, appErr.Message)
}

// ---------------------------------------------------------------------------
// UpdateEmployee / DeleteEmployee
// ---------------------------------------------------------------------------

func TestEmployeeService_UpdateEmployee_Member(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	employee := sampleEmployee()
	repo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil)
	repo.On("IsMember", mock.Anything, "colleague", employee.CompanyID).Return(true, nil)

	role := "admin"
	repo.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Employee) bool {
		return e.Role == "admin"
	})).Return(nil)

	got, err := svc.UpdateEmployee(context.Background(), "colleague", employee.ID, UpdateEmployeeInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Role)
	repo.AssertExpectations(t)
}

func TestEmployeeService_DeleteEmployee_StrangerMasked(t *testing.T) {
	svc, repo, checker := newEmployeeFixture()

	employee := sampleEmployee()
	repo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil)
	repo.On("IsMember", mock.Anything, "outsider", employee.CompanyID).Return(false, nil)
	checker.On("HasPermission", mock.Anything, "outsider", PermDeleteAnyEmployee).Return(false, nil)

	err := svc.DeleteEmployee(context.Background(), "outsider", employee.ID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, MsgEmployeeNotFound, appErr.Message)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
