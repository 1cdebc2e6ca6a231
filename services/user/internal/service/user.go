package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/auth"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/event"
	"github.com/Azizo-B/microservices/services/user/internal/repository"
)

// MsgUserNotFound is the masked response for missing users and for users the
// requester may not see.
const MsgUserNotFound = "User not found"

// UserService implements account management: signup, reads enriched with the
// authorization graph, profile access, email verification and password reset.
type UserService struct {
	userRepo    repository.UserRepository
	appRepo     repository.ApplicationRepository
	deviceRepo  repository.DeviceRepository
	permissions *PermissionService
	tokens      *TokenService
	hasher      *auth.PasswordHasher
	producer    *event.Producer
	logger      *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	appRepo repository.ApplicationRepository,
	deviceRepo repository.DeviceRepository,
	permissions *PermissionService,
	tokens *TokenService,
	hasher *auth.PasswordHasher,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		appRepo:     appRepo,
		deviceRepo:  deviceRepo,
		permissions: permissions,
		tokens:      tokens,
		hasher:      hasher,
		producer:    producer,
		logger:      logger,
	}
}

// SignupInput holds the parameters for registering a user.
type SignupInput struct {
	AppID    string          `json:"appId" validate:"required,uuid4"`
	Email    string          `json:"email" validate:"required,email"`
	Username string          `json:"username" validate:"required,min=3,max=64"`
	Password string          `json:"password" validate:"required,min=8"`
	Profile  json.RawMessage `json:"profile"`
}

// UpdateUserInput holds the administrative mutation parameters.
type UpdateUserInput struct {
	Username *string            `json:"username" validate:"omitempty,min=3,max=64"`
	Status   *domain.UserStatus `json:"status"`
	Profile  json.RawMessage    `json:"profile"`
}

// VerifyEmailInput carries the emailed verification credential.
type VerifyEmailInput struct {
	Token string `json:"token" validate:"required"`
}

// ResetPasswordInput carries the emailed reset credential and the new password.
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Signup registers an unverified account and emits a user.created event. The
// (email, appId) pair must be unique; a duplicate surfaces as Conflict.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		AppID:        input.AppID,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		IsVerified:   false,
		Status:       domain.UserStatusActive,
		Profile:      input.Profile,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.producer.PublishUserCreated(ctx, user.ID)

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("app_id", user.AppID),
	)

	return user, nil
}

// GetUser returns a user enriched with roles, permissions, application and
// devices. Non-owners without the read-any permission get the same NotFound
// as a genuinely missing id.
func (s *UserService) GetUser(ctx context.Context, requestingUserID, id string) (*domain.UserDetail, error) {
	if err := authorizeOwnerOrPermission(ctx, s.permissions, id, requestingUserID, PermReadAnyUser, MsgUserNotFound); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	rp, err := s.permissions.RolesAndPermissionsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	devices, err := s.deviceRepo.ListByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.UserDetail{
		User:        *user,
		Roles:       rp.Roles,
		Permissions: rp.Permissions,
		Devices:     devices,
	}

	// Application enrichment is best-effort; a missing row degrades the
	// detail rather than failing the read.
	if app, err := s.appRepo.GetByID(ctx, user.AppID); err == nil {
		detail.Application = app
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return detail, nil
}

// ListUsers returns users matching the filter, paginated. The handler gates
// this behind the list-any permission.
func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter, page pagination.Params) ([]domain.User, error) {
	return s.userRepo.List(ctx, filter, page)
}

// UpdateUser applies an administrative mutation to username, status or
// profile.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.ValidationFailed("unknown user status: " + string(*input.Status))
		}
		user.Status = *input.Status
	}
	if input.Profile != nil {
		user.Profile = input.Profile
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", user.ID))

	return user, nil
}

// GetProfile returns the opaque profile blob, owner or read-any-profile only.
func (s *UserService) GetProfile(ctx context.Context, requestingUserID, id string) (json.RawMessage, error) {
	if err := authorizeOwnerOrPermission(ctx, s.permissions, id, requestingUserID, PermReadAnyProfile, MsgUserNotFound); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	return user.Profile, nil
}

// UpdateProfile replaces the profile blob, owner or update-any-profile only.
func (s *UserService) UpdateProfile(ctx context.Context, requestingUserID, id string, profile json.RawMessage) (json.RawMessage, error) {
	if err := authorizeOwnerOrPermission(ctx, s.permissions, id, requestingUserID, PermUpdateAnyProfile, MsgUserNotFound); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	user.Profile = profile
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.Profile, nil
}

// VerifyEmail consumes an email-verification credential and marks the account
// verified. The consumption revokes every outstanding verification token for
// the user, so older emailed links stop working.
func (s *UserService) VerifyEmail(ctx context.Context, input VerifyEmailInput) error {
	userID, _, err := s.tokens.ValidateAndRevokeToken(ctx, input.Token, domain.TokenTypeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ValidationFailed(MsgInvalidToken)
		}
		return err
	}

	if user.IsVerified {
		return nil
	}

	user.IsVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "email verified", slog.String("user_id", user.ID))

	return nil
}

// ResetPassword consumes a password-reset credential and replaces the stored
// hash. The consumption revokes every outstanding reset token for the user.
func (s *UserService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	userID, _, err := s.tokens.ValidateAndRevokeToken(ctx, input.Token, domain.TokenTypePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ValidationFailed(MsgInvalidToken)
		}
		return err
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", slog.String("user_id", user.ID))

	return nil
}
