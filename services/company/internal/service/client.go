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

// ClientService manages a company's external clients.
type ClientService struct {
	clientRepo repository.ClientRepository
	logger     *slog.Logger
}

// NewClientService creates a new client service.
func NewClientService(clientRepo repository.ClientRepository, logger *slog.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

// CreateClientInput holds the parameters for registering a client.
type CreateClientInput struct {
	CompanyID string `json:"companyId" validate:"required,uuid4"`
	Name      string `json:"name" validate:"required,min=2"`
	Type      string `json:"type" validate:"required"`
	Contact   string `json:"contact" validate:"required"`
}

// UpdateClientInput holds the parameters for updating a client.
type UpdateClientInput struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	Contact *string `json:"contact"`
}

// CreateClient registers a client for a company.
func (s *ClientService) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		ID:        uuid.New().String(),
		CompanyID: input.CompanyID,
		Name:      input.Name,
		Type:      input.Type,
		Contact:   input.Contact,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "client created",
		slog.String("client_id", client.ID),
		slog.String("company_id", client.CompanyID),
	)

	return client, nil
}

// GetClient retrieves a client by id.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Client not found.")
		}
		return nil, err
	}
	return client, nil
}

// ListClients returns clients matching the filter, paginated.
func (s *ClientService) ListClients(ctx context.Context, filter domain.ClientFilter, page pagination.Params) ([]domain.Client, error) {
	return s.clientRepo.List(ctx, filter, page)
}

// UpdateClient modifies a client's name or contact.
func (s *ClientService) UpdateClient(ctx context.Context, id string, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Contact != nil {
		client.Contact = *input.Contact
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes a client record.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	return s.clientRepo.Delete(ctx, id)
}
