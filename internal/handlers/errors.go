package handlers

import (
	"errors"
	"log"

	"fittrack/internal/repositories"
	"fittrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service and store errors to a status code. The error text
// is always returned so clients can show it verbatim.
func respondError(c *fiber.Ctx, action string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": verr.Message,
			"errors":  verr.Fields,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Entry not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Registration failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	default:
		log.Printf("Error trying to %s: %v", action, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not " + action,
			"error":   err.Error(),
		})
	}
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// confirmed reports whether a destructive request carries ?confirm=true.
// Unconfirmed requests are answered here and must not reach the store.
func confirmed(c *fiber.Ctx) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	_ = c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
		"message": "Delete this entry?",
		"error":   "confirmation required: repeat the request with ?confirm=true",
	})
	return false
}
