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

// ApplicationService manages the application (tenant) registry.
type ApplicationService struct {
	appRepo repository.ApplicationRepository
	logger  *slog.Logger
}

// NewApplicationService creates a new application service.
func NewApplicationService(appRepo repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{appRepo: appRepo, logger: logger}
}

// CreateApplicationInput holds the parameters for registering an application.
type CreateApplicationInput struct {
	Name string `json:"name" validate:"required,min=2"`
}

// UpdateApplicationInput holds the parameters for renaming an application.
type UpdateApplicationInput struct {
	Name string `json:"name" validate:"required,min=2"`
}

// CreateApplication registers a new application.
func (s *ApplicationService) CreateApplication(ctx context.Context, input CreateApplicationInput) (*domain.Application, error) {
	app := &domain.Application{
		ID:        uuid.New().String(),
		Name:      input.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "application created",
		slog.String("app_id", app.ID),
		slog.String("name", app.Name),
	)

	return app, nil
}

// GetApplication retrieves an application by id.
func (s *ApplicationService) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Application not found")
		}
		return nil, err
	}
	return app, nil
}

// ListApplications returns applications, paginated.
func (s *ApplicationService) ListApplications(ctx context.Context, page pagination.Params) ([]domain.Application, error) {
	return s.appRepo.List(ctx, page)
}

// UpdateApplication renames an application.
func (s *ApplicationService) UpdateApplication(ctx context.Context, id string, input UpdateApplicationInput) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Application not found")
		}
		return nil, err
	}

	app.Name = input.Name
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

// DeleteApplication removes an application. Fails with Conflict while users
// still belong to it.
func (s *ApplicationService) DeleteApplication(ctx context.Context, id string) error {
	return s.appRepo.Delete(ctx, id)
}
