package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/wonderfly/host-hub/pkg/internal/http/exts"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func createPoll(c *fiber.Ctx) error {
	user, err := ensureAdmin(c)
	if err != nil {
		return err
	}

	var data struct {
		EventID         uint                        `json:"event_id" validate:"required"`
		Question        string                      `json:"question" validate:"required"`
		Options         []string                    `json:"options" validate:"required,min=2"`
		Type            string                      `json:"type" validate:"omitempty,oneof=general activity music food"`
		ActivityOptions []models.PollActivityOption `json:"activity_options"`
		DurationMinutes *int                        `json:"duration_minutes"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll := models.Poll{
		EventID:  data.EventID,
		Question: data.Question,
		Type:     data.Type,
		Options: lo.Map(data.Options, func(text string, _ int) models.PollOption {
			return models.PollOption{Text: text}
		}),
		ActivityOptions: data.ActivityOptions,
		AccountID:       user.ID,
	}

	poll, err = services.NewPoll(poll, data.DurationMinutes)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(poll)
}

func getPoll(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(poll)
}

func listEventPolls(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}

	eventId, _ := c.ParamsInt("eventId")

	polls, err := services.ListEventPolls(uint(eventId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(polls)
}

func votePoll(c *fiber.Ctx) error {
	user, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	var data struct {
		OptionIndex *int `json:"option_index" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	options, err := services.VotePoll(uint(pollId), *data.OptionIndex, user)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"options": options,
	})
}

func closePoll(c *fiber.Ctx) error {
	if _, err := ensureAdmin(c); err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	poll, winner, err := services.ClosePoll(uint(pollId))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"poll":   poll,
		"winner": winner,
	})
}
