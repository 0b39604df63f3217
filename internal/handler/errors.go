package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/orgdeskhq/orgdesk/internal/middleware"
)

// organizationID reads the organization context the validator attached to
// the request. Org-scoped handlers refuse to run without it.
func organizationID(c *fiber.Ctx) (string, bool) {
	orgID, ok := c.Locals(middleware.OrganizationIDKey).(string)
	return orgID, ok && orgID != ""
}

// respondError maps the domain error taxonomy to HTTP at the single error
// boundary. Expected kinds keep their message; anything else is logged with
// operation context and answered generically so internal detail never
// reaches the caller.
func respondError(c *fiber.Ctx, operation string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("%s: %v", operation, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
