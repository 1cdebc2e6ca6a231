package service

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/repository"
)

// MsgDeviceNotFound is the masked response for missing devices and for
// devices owned by someone else.
const MsgDeviceNotFound = "Device not found"

// DeviceService exposes read access to recorded devices. Device creation
// happens during token issuance, not through this surface.
type DeviceService struct {
	deviceRepo repository.DeviceRepository
	checker    PermissionChecker
	logger     *slog.Logger
}

// NewDeviceService creates a new device service.
func NewDeviceService(deviceRepo repository.DeviceRepository, checker PermissionChecker, logger *slog.Logger) *DeviceService {
	return &DeviceService{deviceRepo: deviceRepo, checker: checker, logger: logger}
}

// ListDevices returns devices, scoped to the requester's own devices unless
// they hold the list-any permission and name another user.
func (s *DeviceService) ListDevices(ctx context.Context, requestingUserID, userID string) ([]domain.Device, error) {
	target := requestingUserID
	if userID != "" && userID != requestingUserID {
		allowed, err := s.checker.HasPermission(ctx, requestingUserID, PermListAnyDevice)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		target = userID
	}

	return s.deviceRepo.ListByUserID(ctx, target)
}

// GetDevice returns a device, owner or read-any-device only, with the same
// existence-hiding NotFound as the other protected entities.
func (s *DeviceService) GetDevice(ctx context.Context, requestingUserID, id string) (*domain.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgDeviceNotFound)
		}
		return nil, err
	}

	if err := authorizeOwnerOrPermission(ctx, s.checker, device.UserID, requestingUserID, PermReadAnyDevice, MsgDeviceNotFound); err != nil {
		return nil, err
	}

	return device, nil
}
