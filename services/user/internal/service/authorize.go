package service

import (
	"context"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
)

// authorizeOwnerOrPermission implements the recurring "owner OR holds the
// any-permission" check. A non-owner without the permission gets the same
// NotFound the caller would return for a missing entity, so the response
// never confirms the entity exists. This class of check deliberately never
// returns Forbidden.
func authorizeOwnerOrPermission(ctx context.Context, checker PermissionChecker, ownerID, actorID, permission, notFoundMsg string) error {
	if ownerID == actorID {
		return nil
	}

	allowed, err := checker.HasPermission(ctx, actorID, permission)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NotFound(notFoundMsg)
	}

	return nil
}
