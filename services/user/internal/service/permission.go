package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/repository"
)

// Permission names follow "<service>:<verb>:any:<resource>".
const (
	PermListAnyToken   = "userservice:list:any:token"
	PermReadAnyToken   = "userservice:read:any:token"
	PermDeleteAnyToken = "userservice:delete:any:token"

	PermListAnyUser   = "userservice:list:any:user"
	PermReadAnyUser   = "userservice:read:any:user"
	PermUpdateAnyUser = "userservice:update:any:user"

	PermReadAnyProfile   = "userservice:read:any:profile"
	PermUpdateAnyProfile = "userservice:update:any:profile"

	PermAssignAnyRole = "userservice:assign:any:role"
	PermRemoveAnyRole = "userservice:remove:any:role"
	PermCreateAnyRole = "userservice:create:any:role"
	PermUpdateAnyRole = "userservice:update:any:role"
	PermDeleteAnyRole = "userservice:delete:any:role"

	PermAssignAnyPermission = "userservice:assign:any:permission"
	PermRemoveAnyPermission = "userservice:remove:any:permission"
	PermCreateAnyPermission = "userservice:create:any:permission"
	PermUpdateAnyPermission = "userservice:update:any:permission"
	PermDeleteAnyPermission = "userservice:delete:any:permission"

	PermCreateAnyApplication = "userservice:create:any:application"
	PermUpdateAnyApplication = "userservice:update:any:application"
	PermDeleteAnyApplication = "userservice:delete:any:application"

	PermListAnyDevice = "userservice:list:any:device"
	PermReadAnyDevice = "userservice:read:any:device"
)

// PermissionChecker is the narrow resolver surface other services in this
// package depend on.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, name string) (bool, error)
}

// PermissionService resolves the role->permission graph and manages
// permission entities.
type PermissionService struct {
	permissionRepo repository.PermissionRepository
	userRepo       repository.UserRepository
	logger         *slog.Logger
}

// NewPermissionService creates a new permission service.
func NewPermissionService(
	permissionRepo repository.PermissionRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *PermissionService {
	return &PermissionService{
		permissionRepo: permissionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// HasPermission reports whether the user holds the named permission through
// any of their roles. The grant model is purely additive; there are no deny
// rules. Fails NotFound if the user does not exist, which is acceptable here
// because permission checks only run post-authentication.
func (s *PermissionService) HasPermission(ctx context.Context, userID, name string) (bool, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return false, apperrors.NotFound("User not found")
	}

	names, err := s.permissionRepo.NamesForUser(ctx, userID, name)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// RolesAndPermissionsOf returns the unioned, de-duplicated role and
// permission name lists for a user. A missing user yields empty lists rather
// than an error.
func (s *PermissionService) RolesAndPermissionsOf(ctx context.Context, userID string) (*domain.RolesAndPermissions, error) {
	roles, err := s.permissionRepo.RoleNamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	permissions, err := s.permissionRepo.NamesForUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	return &domain.RolesAndPermissions{Roles: roles, Permissions: permissions}, nil
}

// Query is the public permission query used by peer services for their
// authorization decisions. It returns the names matching the filter that the
// user actually holds; callers grant iff the requested name is present.
func (s *PermissionService) Query(ctx context.Context, userID, name string) ([]string, error) {
	return s.permissionRepo.NamesForUser(ctx, userID, name)
}

// CreatePermissionInput holds the parameters for creating a permission.
type CreatePermissionInput struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
}

// UpdatePermissionInput holds the parameters for updating a permission.
type UpdatePermissionInput struct {
	Name        *string `json:"name" validate:"omitempty,min=3"`
	Description *string `json:"description"`
}

// CreatePermission registers a new named permission.
func (s *PermissionService) CreatePermission(ctx context.Context, input CreatePermissionInput) (*domain.Permission, error) {
	p := &domain.Permission{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.permissionRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "permission created",
		slog.String("permission_id", p.ID),
		slog.String("name", p.Name),
	)

	return p, nil
}

// GetPermission retrieves a permission by id.
func (s *PermissionService) GetPermission(ctx context.Context, id string) (*domain.Permission, error) {
	return s.permissionRepo.GetByID(ctx, id)
}

// ListPermissions returns permissions, paginated.
func (s *PermissionService) ListPermissions(ctx context.Context, page pagination.Params) ([]domain.Permission, error) {
	return s.permissionRepo.List(ctx, page)
}

// UpdatePermission modifies a permission's name or description.
func (s *PermissionService) UpdatePermission(ctx context.Context, id string, input UpdatePermissionInput) (*domain.Permission, error) {
	p, err := s.permissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}

	if err := s.permissionRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// DeletePermission removes a permission.
func (s *PermissionService) DeletePermission(ctx context.Context, id string) error {
	return s.permissionRepo.Delete(ctx, id)
}
