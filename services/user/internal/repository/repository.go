package repository

import (
	"context"
	"time"

	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email within an application.
	GetByEmail(ctx context.Context, appID, email string) (*domain.User, error)

	// List returns users matching the filter, paginated.
	List(ctx context.Context, filter domain.UserFilter, page pagination.Params) ([]domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Exists reports whether a user with the given id exists.
	Exists(ctx context.Context, id string) (bool, error)
}

// TokenRepository defines the interface for token persistence operations.
// Tokens are never physically deleted; revocation is a soft state.
type TokenRepository interface {
	// Create inserts a fully signed token record.
	Create(ctx context.Context, token *domain.Token) error

	// GetByID retrieves a token by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Token, error)

	// List returns tokens matching the filter, paginated.
	List(ctx context.Context, filter domain.TokenFilter, page pagination.Params) ([]domain.Token, error)

	// Revoke soft-revokes a token. Revoking an already revoked token is a
	// no-op that preserves the original revocation time.
	Revoke(ctx context.Context, id string, at time.Time) error

	// RevokeAllOfType revokes every live token of the given type for a user.
	RevokeAllOfType(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) error

	// LinkDevice attaches a device reference to an existing token.
	LinkDevice(ctx context.Context, tokenID, deviceID string) error
}

// RoleRepository defines the interface for role persistence operations.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	List(ctx context.Context, page pagination.Params) ([]domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error

	// PermissionNames returns the names of the permissions the role grants.
	PermissionNames(ctx context.Context, roleID string) ([]string, error)

	// AssignPermission links a permission to a role. Idempotent.
	AssignPermission(ctx context.Context, roleID, permissionID string) error

	// RemovePermission unlinks a permission from a role. Idempotent.
	RemovePermission(ctx context.Context, roleID, permissionID string) error

	// AssignToUser grants a role to a user. Idempotent.
	AssignToUser(ctx context.Context, userID, roleID string) error

	// RemoveFromUser revokes a role from a user. Idempotent.
	RemoveFromUser(ctx context.Context, userID, roleID string) error
}

// PermissionRepository defines the interface for permission persistence and
// the role->permission graph walk.
type PermissionRepository interface {
	Create(ctx context.Context, permission *domain.Permission) error
	GetByID(ctx context.Context, id string) (*domain.Permission, error)
	List(ctx context.Context, page pagination.Params) ([]domain.Permission, error)
	Update(ctx context.Context, permission *domain.Permission) error
	Delete(ctx context.Context, id string) error

	// NamesForUser returns the de-duplicated permission names a user holds
	// through role membership, optionally filtered to a single name.
	NamesForUser(ctx context.Context, userID, name string) ([]string, error)

	// RoleNamesForUser returns the names of the roles a user belongs to.
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)
}

// ApplicationRepository defines the interface for application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	List(ctx context.Context, page pagination.Params) ([]domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
	Delete(ctx context.Context, id string) error
}

// DeviceRepository defines the interface for device persistence.
type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Device, error)
}
