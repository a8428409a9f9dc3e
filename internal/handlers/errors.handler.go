package handlers

import (
	"errors"

	"labstock/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respondError maps engine errors onto HTTP statuses so handlers stay
// declarative about their own concerns.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidState):
		status = fiber.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrLockTimeout):
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
