package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/repository"
)

// RoleService manages roles, their permission links and user membership.
type RoleService struct {
	roleRepo repository.RoleRepository
	logger   *slog.Logger
}

// NewRoleService creates a new role service.
func NewRoleService(roleRepo repository.RoleRepository, logger *slog.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, logger: logger}
}

// CreateRoleInput holds the parameters for creating a role.
type CreateRoleInput struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
}

// UpdateRoleInput holds the parameters for updating a role.
type UpdateRoleInput struct {
	Name        *string `json:"name" validate:"omitempty,min=3"`
	Description *string `json:"description"`
}

// CreateRole registers a new role.
func (s *RoleService) CreateRole(ctx context.Context, input CreateRoleInput) (*domain.Role, error) {
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role created",
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
	)

	return role, nil
}

// GetRole returns a role together with the names of its permissions.
func (s *RoleService) GetRole(ctx context.Context, id string) (*domain.RoleDetail, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Role not found")
		}
		return nil, err
	}

	permissions, err := s.roleRepo.PermissionNames(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.RoleDetail{Role: *role, Permissions: permissions}, nil
}

// ListRoles returns roles, paginated.
func (s *RoleService) ListRoles(ctx context.Context, page pagination.Params) ([]domain.Role, error) {
	return s.roleRepo.List(ctx, page)
}

// UpdateRole modifies a role's name or description.
func (s *RoleService) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*domain.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Role not found")
		}
		return nil, err
	}

	if input.Name != nil {
		role.Name = *input.Name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// DeleteRole removes a role. Deletion fails with Conflict while the role is
// still assigned to users or linked to permissions.
func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	return s.roleRepo.Delete(ctx, id)
}

// AssignPermissionToRole links a permission to a role. Assigning an already
// linked pair is a no-op.
func (s *RoleService) AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	if err := s.roleRepo.AssignPermission(ctx, roleID, permissionID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "permission assigned to role",
		slog.String("role_id", roleID),
		slog.String("permission_id", permissionID),
	)

	return nil
}

// RemovePermissionFromRole unlinks a permission from a role. Idempotent.
func (s *RoleService) RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	return s.roleRepo.RemovePermission(ctx, roleID, permissionID)
}

// AssignRoleToUser grants a role to a user. Idempotent.
func (s *RoleService) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	if err := s.roleRepo.AssignToUser(ctx, userID, roleID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "role assigned to user",
		slog.String("user_id", userID),
		slog.String("role_id", roleID),
	)

	return nil
}

// RemoveRoleFromUser revokes a role from a user. Idempotent.
func (s *RoleService) RemoveRoleFromUser(ctx context.Context, userID, roleID string) error {
	return s.roleRepo.RemoveFromUser(ctx, userID, roleID)
}
