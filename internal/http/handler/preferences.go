package handler

import (
	"github.com/gofiber/fiber/v2"

	"photojournal/internal/service"
)

type preferencesRequest struct {
	DarkMode *bool `json:"dark_mode" validate:"required"`
}

// GetPreferences returns the stored presentation settings.
//
// @Summary Get preferences
// @Tags preferences
// @Produce json
// @Success 200 {object} model.Preferences
// @Router /preferences [get]
func GetPreferences(svc service.PreferencesService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(p)
	}
}

// PutPreferences replaces the stored presentation settings.
//
// @Summary Update preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param body body preferencesRequest true "Preferences"
// @Success 200 {object} model.Preferences
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /preferences [put]
func PutPreferences(svc service.PreferencesService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req preferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "dark_mode is required")
		}
		p, err := svc.SetDarkMode(c.UserContext(), *req.DarkMode)
		if err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "PERSISTENCE_FAILED", "preferences could not be saved")
		}
		return c.JSON(p)
	}
}

// TogglePreferences flips dark mode.
//
// @Summary Toggle dark mode
// @Tags preferences
// @Produce json
// @Success 200 {object} model.Preferences
// @Failure 503 {object} errorPayload
// @Router /preferences/toggle [post]
func TogglePreferences(svc service.PreferencesService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.ToggleDarkMode(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "PERSISTENCE_FAILED", "preferences could not be saved")
		}
		return c.JSON(p)
	}
}
