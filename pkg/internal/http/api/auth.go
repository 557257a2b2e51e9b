package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

// authenticate resolves the bearer token (header, or "tk" query for socket
// upgrades) into the live account. Anonymous requests pass through; the
// per-route guards decide who gets in.
func authenticate(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if len(token) == 0 {
		token = c.Query("tk")
	}

	if len(token) > 0 {
		if user, err := services.ParseToken(token); err == nil {
			c.Locals("user", user)
		}
	}

	return c.Next()
}

func ensureAuthenticated(c *fiber.Ctx) (models.Account, error) {
	user, ok := c.Locals("user").(models.Account)
	if !ok {
		return user, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

func ensureAdmin(c *fiber.Ctx) (models.Account, error) {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return user, err
	}
	if user.Role != models.AccountRoleAdmin {
		return user, fiber.NewError(fiber.StatusForbidden, "admin only")
	}
	return user, nil
}

// mapServiceError translates service sentinels into HTTP statuses so callers
// can tell the failure kinds apart.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrPollNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrTimelineItemNotFound),
		errors.Is(err, services.ErrTrackNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotificationForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrPollInactive),
		errors.Is(err, services.ErrPollAlreadyVoted),
		errors.Is(err, services.ErrTrackAlreadyQueued),
		errors.Is(err, services.ErrTrackAlreadyVoted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPollInvalid),
		errors.Is(err, services.ErrPollInvalidOption):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
