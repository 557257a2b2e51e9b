package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wonderfly/host-hub/pkg/internal/http/exts"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func doLogin(c *fiber.Ctx) error {
	var data struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := services.AuthenticateAccount(data.Username, data.Password)
	if err != nil {
		return mapServiceError(err)
	}

	token, err := services.MintToken(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"account": user,
	})
}

func doGuestJoin(c *fiber.Ctx) error {
	var data struct {
		AccessCode string `json:"access_code" validate:"required"`
		Name       string `json:"name" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, event, err := services.JoinEvent(data.AccessCode, data.Name)
	if err != nil {
		return mapServiceError(err)
	}

	token, err := services.MintToken(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":   token,
		"account": user,
		"event":   event,
	})
}
