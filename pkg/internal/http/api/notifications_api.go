package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wonderfly/host-hub/pkg/internal/http/exts"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func listNotifications(c *fiber.Ctx) error {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	notifications, err := services.ListUnreadNotifications(user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(notifications)
}

func markNotificationRead(c *fiber.Ctx) error {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	notificationId, _ := c.ParamsInt("notificationId")

	if err := services.MarkNotificationRead(user, uint(notificationId)); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func markAllNotificationsRead(c *fiber.Ctx) error {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	if err := services.MarkAllNotificationsRead(user); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func createAnnouncement(c *fiber.Ctx) error {
	if _, err := ensureAdmin(c); err != nil {
		return err
	}

	var data struct {
		EventID uint   `json:"event_id" validate:"required"`
		Title   string `json:"title" validate:"required"`
		Message string `json:"message" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	event, err := services.GetEvent(data.EventID)
	if err != nil {
		return mapServiceError(err)
	}

	services.NewAnnouncement(event, data.Title, data.Message)

	return c.SendStatus(fiber.StatusCreated)
}
