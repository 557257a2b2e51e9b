package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wonderfly/host-hub/pkg/internal/http/exts"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func getTrackQueue(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	queue, err := services.GetTrackQueue(uint(eventId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(queue)
}

func suggestTrack(c *fiber.Ctx) error {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	var data struct {
		TrackID  string `json:"track_id" validate:"required"`
		Name     string `json:"name" validate:"required"`
		Artists  string `json:"artists"`
		ImageURL string `json:"image_url"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	queue, err := services.SuggestTrack(uint(eventId), models.QueuedTrack{
		TrackID:  data.TrackID,
		Name:     data.Name,
		Artists:  data.Artists,
		ImageURL: data.ImageURL,
	}, user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(queue)
}

func voteTrack(c *fiber.Ctx) error {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	queue, err := services.VoteTrack(uint(eventId), c.Params("trackId"), user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(queue)
}
