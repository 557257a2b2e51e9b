package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wonderfly/host-hub/pkg/internal/http/exts"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func listTimelineItems(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	items, err := services.ListTimelineItems(uint(eventId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(items)
}

func createTimelineItem(c *fiber.Ctx) error {
	user, err := ensureAdmin(c)
	if err != nil {
		return err
	}

	var data struct {
		EventID     uint       `json:"event_id" validate:"required"`
		Title       string     `json:"title" validate:"required"`
		Description string     `json:"description"`
		StartTime   time.Time  `json:"start_time" validate:"required"`
		EndTime     *time.Time `json:"end_time"`
		Location    string     `json:"location"`
		Kind        string     `json:"kind" validate:"omitempty,oneof=activity meal performance break other"`
		Important   bool       `json:"important"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewTimelineItem(models.TimelineItem{
		EventID:     data.EventID,
		Title:       data.Title,
		Description: data.Description,
		StartTime:   data.StartTime,
		EndTime:     data.EndTime,
		Location:    data.Location,
		Kind:        data.Kind,
		Important:   data.Important,
		AccountID:   user.ID,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func editTimelineItem(c *fiber.Ctx) error {
	if _, err := ensureAdmin(c); err != nil {
		return err
	}

	itemId, _ := c.ParamsInt("itemId")

	item, err := services.GetTimelineItem(uint(itemId))
	if err != nil {
		return mapServiceError(err)
	}

	var data struct {
		Title       string     `json:"title" validate:"required"`
		Description string     `json:"description"`
		StartTime   time.Time  `json:"start_time" validate:"required"`
		EndTime     *time.Time `json:"end_time"`
		Location    string     `json:"location"`
		Kind        string     `json:"kind" validate:"omitempty,oneof=activity meal performance break other"`
		Important   bool       `json:"important"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item.Title = data.Title
	item.Description = data.Description
	item.StartTime = data.StartTime
	item.EndTime = data.EndTime
	item.Location = data.Location
	if len(data.Kind) > 0 {
		item.Kind = data.Kind
	}
	item.Important = data.Important

	item, err = services.EditTimelineItem(item)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(item)
}

func deleteTimelineItem(c *fiber.Ctx) error {
	if _, err := ensureAdmin(c); err != nil {
		return err
	}

	itemId, _ := c.ParamsInt("itemId")

	item, err := services.GetTimelineItem(uint(itemId))
	if err != nil {
		return mapServiceError(err)
	}

	if err := services.DeleteTimelineItem(item); err != nil {
		return mapServiceError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
