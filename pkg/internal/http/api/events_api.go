package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wonderfly/host-hub/pkg/internal/http/exts"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func createEvent(c *fiber.Ctx) error {
	user, err := ensureAdmin(c)
	if err != nil {
		return err
	}

	var data struct {
		Name        string    `json:"name" validate:"required"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		Status      string    `json:"status" validate:"omitempty,oneof=planning active completed"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	event, err := services.NewEvent(models.Event{
		Name:        data.Name,
		Description: data.Description,
		Date:        data.Date,
		Status:      data.Status,
		AccountID:   user.ID,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

func getEvent(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	event, err := services.GetEvent(uint(eventId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(event)
}

func getEventWithAccessCode(c *fiber.Ctx) error {
	event, err := services.GetEventWithAccessCode(c.Params("accessCode"))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(event)
}

func listEventGuests(c *fiber.Ctx) error {
	if _, err := ensureAdmin(c); err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	if _, err := services.GetEvent(uint(eventId)); err != nil {
		return mapServiceError(err)
	}

	guests, err := services.ListEventGuests(uint(eventId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(guests)
}
