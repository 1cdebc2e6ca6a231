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
	"github.com/Azizo-B/microservices/services/notification/internal/crypto"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/repository"
)

// PermissionChecker resolves whether a user holds a named permission.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

// Permission names follow "<service>:<verb>:any:<resource>".
const (
	PermListAnySenders  = "notificationservice:list:any:sender"
	PermReadAnySender   = "notificationservice:read:any:sender"
	PermUpdateAnySender = "notificationservice:update:any:sender"
	PermDeleteAnySender = "notificationservice:delete:any:sender"
	PermUseAnySender    = "notificationservice:use:any:sender"
)

// MsgSenderNotFound masks missing senders and senders owned by someone else.
const MsgSenderNotFound = "Sender not found."

// SenderService manages delivery identities. Credentials are encrypted before
// they reach the repository and never leave the service decrypted.
type SenderService struct {
	senderRepo repository.SenderRepository
	encryptor  *crypto.Encryptor
	checker    PermissionChecker
	logger     *slog.Logger
}

// NewSenderService creates a new sender service.
func NewSenderService(
	senderRepo repository.SenderRepository,
	encryptor *crypto.Encryptor,
	checker PermissionChecker,
	logger *slog.Logger,
) *SenderService {
	return &SenderService{
		senderRepo: senderRepo,
		encryptor:  encryptor,
		checker:    checker,
		logger:     logger,
	}
}

// CreateSenderInput holds the parameters for registering a sender.
type CreateSenderInput struct {
	Name        string                  `json:"name" validate:"required,min=1,max=128"`
	Type        domain.NotificationType `json:"type" validate:"required"`
	Credentials domain.EmailCredentials `json:"credentials" validate:"required"`
}

// UpdateSenderInput holds the parameters for updating a sender.
type UpdateSenderInput struct {
	Name        *string                  `json:"name"`
	Credentials *domain.EmailCredentials `json:"credentials"`
}

// CreateSender registers a new sender owned by the user.
func (s *SenderService) CreateSender(ctx context.Context, userID string, input CreateSenderInput) (*domain.Sender, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.ValidationFailed(fmt.Sprintf("invalid sender type: %s", input.Type))
	}

	encrypted, err := s.encryptCredentials(input.Credentials)
	if err != nil {
		return nil, err
	}

	sender := &domain.Sender{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Name:                 input.Name,
		Type:                 input.Type,
		EncryptedCredentials: encrypted,
		CreatedAt:            time.Now().UTC(),
	}

	if err := s.senderRepo.Create(ctx, sender); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sender created",
		slog.String("sender_id", sender.ID),
		slog.String("type", string(sender.Type)),
	)

	return sender, nil
}

// ListSenders returns the user's senders. Listing everyone's senders requires
// the list-any permission.
func (s *SenderService) ListSenders(ctx context.Context, userID string, all bool, page pagination.Params) ([]domain.Sender, error) {
	scope := userID
	if all {
		allowed, err := s.checker.HasPermission(ctx, userID, PermListAnySenders)
		if err != nil {
			return nil, err
		}
		if allowed {
			scope = ""
		}
	}

	return s.senderRepo.List(ctx, scope, page)
}

// GetSender retrieves a sender, subject to the owner-or-permission check.
func (s *SenderService) GetSender(ctx context.Context, userID, id string) (*domain.Sender, error) {
	return s.getAndAuthorize(ctx, userID, id, PermReadAnySender)
}

// UpdateSender modifies a sender's name or credentials, subject to the
// owner-or-permission check.
func (s *SenderService) UpdateSender(ctx context.Context, userID, id string, input UpdateSenderInput) (*domain.Sender, error) {
	sender, err := s.getAndAuthorize(ctx, userID, id, PermUpdateAnySender)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		sender.Name = *input.Name
	}
	if input.Credentials != nil {
		encrypted, err := s.encryptCredentials(*input.Credentials)
		if err != nil {
			return nil, err
		}
		sender.EncryptedCredentials = encrypted
	}

	if err := s.senderRepo.Update(ctx, sender); err != nil {
		return nil, err
	}

	return sender, nil
}

// DeleteSender removes a sender, subject to the owner-or-permission check.
func (s *SenderService) DeleteSender(ctx context.Context, userID, id string) error {
	if _, err := s.getAndAuthorize(ctx, userID, id, PermDeleteAnySender); err != nil {
		return err
	}

	return s.senderRepo.Delete(ctx, id)
}

// credentialsOf decrypts a sender's stored credentials.
func (s *SenderService) credentialsOf(sender *domain.Sender) (domain.EmailCredentials, error) {
	plaintext, err := s.encryptor.Decrypt(sender.EncryptedCredentials)
	if err != nil {
		return domain.EmailCredentials{}, err
	}

	var creds domain.EmailCredentials
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return domain.EmailCredentials{}, fmt.Errorf("decode credentials: %w", err)
	}

	return creds, nil
}

func (s *SenderService) encryptCredentials(creds domain.EmailCredentials) (string, error) {
	raw, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}

	return s.encryptor.Encrypt(string(raw))
}

// getAndAuthorize loads a sender and applies the owner-or-permission rule.
// Unrelated actors without the permission get the same NotFound as a missing
// record.
func (s *SenderService) getAndAuthorize(ctx context.Context, userID, id, permission string) (*domain.Sender, error) {
	sender, err := s.senderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgSenderNotFound)
		}
		return nil, err
	}

	if sender.UserID == userID {
		return sender, nil
	}

	allowed, err := s.checker.HasPermission(ctx, userID, permission)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NotFound(MsgSenderNotFound)
	}

	return sender, nil
}
