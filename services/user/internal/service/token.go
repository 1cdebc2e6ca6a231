package service

import (
	"context"
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

// Authentication failure messages. Login failures share one message so the
// response never distinguishes "no such user" from "wrong password".
const (
	MsgCredentialsMismatch = "The given email and password do not match."
	MsgEmailNotVerified    = "Your email address is not verified. Please verify it before logging in."
	MsgAccountBanned       = "This account has been banned."
	MsgSignInRequired      = "You need to be signed in."
	MsgInvalidToken        = "Invalid authentication token."
	MsgTokenExpired        = "The token has expired."
	MsgTokenRevoked        = "The token has been revoked."
	MsgTokenNotFound       = "Token not found."
)

// TokenService implements the token lifecycle: issuance, listing, validity
// computation, soft revocation, and credential verification.
type TokenService struct {
	tokenRepo repository.TokenRepository
	userRepo  repository.UserRepository
	signer    *auth.Signer
	hasher    *auth.PasswordHasher
	checker   PermissionChecker
	producer  *event.Producer
	logger    *slog.Logger
}

// NewTokenService creates a new token service.
func NewTokenService(
	tokenRepo repository.TokenRepository,
	userRepo repository.UserRepository,
	signer *auth.Signer,
	hasher *auth.PasswordHasher,
	checker PermissionChecker,
	producer *event.Producer,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		signer:    signer,
		hasher:    hasher,
		checker:   checker,
		producer:  producer,
		logger:    logger,
	}
}

// LoginInput holds the parameters for creating a session.
type LoginInput struct {
	AppID    string `json:"appId" validate:"required,uuid4"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateTokenInput holds the parameters for issuing a non-session token.
type CreateTokenInput struct {
	AppID    string           `json:"appId" validate:"required,uuid4"`
	Type     domain.TokenType `json:"type" validate:"required"`
	DeviceID *string          `json:"deviceId" validate:"omitempty,uuid4"`
}

// Login authenticates the credentials and issues a session token. The check
// order is fixed: unknown user, unverified email, wrong password, banned
// account. The ban check runs after the password check so a banned response
// never doubles as a password oracle.
func (s *TokenService) Login(ctx context.Context, input LoginInput) (*domain.Token, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.AppID, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(MsgCredentialsMismatch)
		}
		return nil, fmt.Errorf("look up user for login: %w", err)
	}

	if !user.IsVerified {
		return nil, apperrors.Unauthorized(MsgEmailNotVerified)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, apperrors.Unauthorized(MsgCredentialsMismatch)
	}

	if user.Status == domain.UserStatusBanned {
		return nil, apperrors.Unauthorized(MsgAccountBanned)
	}

	token, err := s.issue(ctx, user.ID, input.AppID, domain.TokenTypeSession, nil)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session created",
		slog.String("user_id", user.ID),
		slog.String("token_id", token.ID),
	)

	return token, nil
}

// CreateToken issues a token of the given type for the target user. The
// target must exist. Verification and reset tokens additionally emit a
// domain event so a downstream notification can be dispatched; the emission
// never blocks or fails token creation.
func (s *TokenService) CreateToken(ctx context.Context, userID string, input CreateTokenInput) (*domain.Token, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.ValidationFailed("unknown token type: " + string(input.Type))
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("User not found")
	}

	token, err := s.issue(ctx, userID, input.AppID, input.Type, input.DeviceID)
	if err != nil {
		return nil, err
	}

	switch input.Type {
	case domain.TokenTypeEmailVerification:
		s.producer.PublishVerificationTokenCreated(ctx, userID, token.ID)
	case domain.TokenTypePasswordReset:
		s.producer.PublishResetTokenCreated(ctx, userID, token.ID)
	}

	s.logger.InfoContext(ctx, "token created",
		slog.String("user_id", userID),
		slog.String("token_id", token.ID),
		slog.String("type", string(input.Type)),
	)

	return token, nil
}

// issue generates the record id up front, signs the credential with that id
// embedded, and persists the complete record in one insert. Callers never
// observe an unsigned token.
func (s *TokenService) issue(ctx context.Context, userID, appID string, tokenType domain.TokenType, deviceID *string) (*domain.Token, error) {
	id := uuid.New().String()

	signed, err := s.signer.Sign(userID, id)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	now := time.Now().UTC()
	token := &domain.Token{
		ID:        id,
		UserID:    userID,
		AppID:     appID,
		DeviceID:  deviceID,
		Type:      tokenType,
		Token:     signed,
		ExpiresAt: now.Add(s.signer.Expiry()),
		CreatedAt: now,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	return token, nil
}

// ListTokens returns tokens matching the filter. Requesters without the
// list-any permission are forcibly scoped to their own tokens regardless of
// the filter supplied; authorization narrows the query instead of rejecting.
func (s *TokenService) ListTokens(ctx context.Context, requestingUserID string, filter domain.TokenFilter, page pagination.Params) ([]domain.Token, error) {
	allowed, err := s.checker.HasPermission(ctx, requestingUserID, PermListAnyToken)
	if err != nil {
		return nil, err
	}
	if !allowed {
		filter.UserID = requestingUserID
	}

	return s.tokenRepo.List(ctx, filter, page)
}

// GetTokenByID returns a token with its computed validity. A missing token
// and a token owned by someone else (absent the read-any permission) are
// indistinguishable: both are the same NotFound.
func (s *TokenService) GetTokenByID(ctx context.Context, requestingUserID, id string) (*domain.TokenWithStatus, error) {
	token, err := s.tokenRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgTokenNotFound)
		}
		return nil, err
	}

	if err := authorizeOwnerOrPermission(ctx, s.checker, token.UserID, requestingUserID, PermReadAnyToken, MsgTokenNotFound); err != nil {
		return nil, err
	}

	ts := token.WithStatus(time.Now().UTC())
	return &ts, nil
}

// DeleteToken soft-revokes a token, with the same existence-hiding rule as
// GetTokenByID. Revocation is idempotent; the first revocation time wins.
func (s *TokenService) DeleteToken(ctx context.Context, requestingUserID, id string) error {
	token, err := s.tokenRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound(MsgTokenNotFound)
		}
		return err
	}

	if err := authorizeOwnerOrPermission(ctx, s.checker, token.UserID, requestingUserID, PermDeleteAnyToken, MsgTokenNotFound); err != nil {
		return err
	}

	if err := s.tokenRepo.Revoke(ctx, id, time.Now().UTC()); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "token revoked",
		slog.String("token_id", id),
		slog.String("user_id", token.UserID),
	)

	return nil
}

// LinkTokenToDevice attaches a device reference to a token after issuance.
// Token creation and device resolution are deliberately decoupled, so this
// runs as a separate step once the device is known.
func (s *TokenService) LinkTokenToDevice(ctx context.Context, tokenID, deviceID string) error {
	return s.tokenRepo.LinkDevice(ctx, tokenID, deviceID)
}

// CheckToken verifies a presented credential and returns its subject. This
// is the introspection path used by peer services and the only verification
// path that does not require a pre-authenticated caller.
func (s *TokenService) CheckToken(ctx context.Context, credential string) (string, error) {
	claims, _, err := s.resolve(ctx, credential)
	if err != nil {
		return "", unauthorizedFor(err)
	}

	return claims.Subject, nil
}

// ValidateAndRevokeToken verifies a single-use credential of the expected
// type and then revokes every outstanding token of that type for the user,
// so one consumed reset email invalidates all stale emailed links. Failures
// here use the ValidationFailed taxonomy because the credential arrives in a
// request body rather than an Authorization header.
func (s *TokenService) ValidateAndRevokeToken(ctx context.Context, credential string, expected domain.TokenType) (userID, tokenID string, err error) {
	claims, token, err := s.resolve(ctx, credential)
	if err != nil {
		return "", "", validationFailedFor(err)
	}

	if token.Type != expected {
		return "", "", apperrors.ValidationFailed(MsgInvalidToken)
	}

	if err := s.tokenRepo.RevokeAllOfType(ctx, claims.Subject, token.Type, time.Now().UTC()); err != nil {
		return "", "", fmt.Errorf("revoke tokens after use: %w", err)
	}

	s.logger.InfoContext(ctx, "single-use token consumed",
		slog.String("user_id", claims.Subject),
		slog.String("token_id", token.ID),
		slog.String("type", string(token.Type)),
	)

	return claims.Subject, token.ID, nil
}

// resolve verifies the credential's signature and claims, then loads and
// checks the backing record. Errors are the raw lifecycle failures; callers
// map them onto their taxonomy.
func (s *TokenService) resolve(ctx context.Context, credential string) (*auth.Claims, *domain.Token, error) {
	claims, err := s.signer.Verify(credential)
	if err != nil {
		return nil, nil, err
	}

	if claims.Subject == "" || claims.TokenID == "" {
		return nil, nil, auth.ErrTokenMalformed
	}

	token, err := s.tokenRepo.GetByID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, auth.ErrTokenMalformed
		}
		return nil, nil, err
	}

	if token.RevokedAt != nil {
		return nil, nil, errTokenRevoked
	}

	return claims, token, nil
}

var errTokenRevoked = errors.New("token revoked")

func unauthorizedFor(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return apperrors.Unauthorized(MsgTokenExpired)
	case errors.Is(err, errTokenRevoked):
		return apperrors.Unauthorized(MsgTokenRevoked)
	case errors.Is(err, auth.ErrTokenMalformed):
		return apperrors.Unauthorized(MsgInvalidToken)
	default:
		return err
	}
}

func validationFailedFor(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return apperrors.ValidationFailed(MsgTokenExpired)
	case errors.Is(err, errTokenRevoked):
		return apperrors.ValidationFailed(MsgTokenRevoked)
	case errors.Is(err, auth.ErrTokenMalformed):
		return apperrors.ValidationFailed(MsgInvalidToken)
	default:
		return err
	}
}
