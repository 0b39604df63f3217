package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/domain"
)

// RequireRoles gates an operation on a declared set of roles. It is a pure
// per-request decision over the principal attached by RequireAuth.
//
// An empty role list means the operation is unrestricted. Organization
// admins satisfy only gates that declare org_admin, and only inside their
// own organization: the validator must have attached an organization
// context, otherwise the role match alone is not enough. Gates declared
// for other roles treat an org admin like any non-matching caller.
func RequireRoles(requiredRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(requiredRoles) == 0 {
			return c.Next()
		}

		principal, ok := c.Locals(PrincipalKey).(*domain.Principal)
		if !ok || principal == nil || principal.Role == "" {
			// A malformed principal reaching the gate is an upstream bug,
			// not a normal denial
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no resolvable identity",
			})
		}

		if principal.Role == domain.RoleOrgAdmin && containsRole(requiredRoles, domain.RoleOrgAdmin) {
			if orgID, ok := c.Locals(OrganizationIDKey).(string); ok && orgID != "" {
				return c.Next()
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "organization context missing",
			})
		}

		for _, role := range requiredRoles {
			if principal.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":          "insufficient permissions",
			"required_roles": requiredRoles,
		})
	}
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireFeature gates an operation on an organization entitlement. It runs
// after RequireAuth and a role gate, so the principal is already normalized.
// Superadmins carry the full catalog and therefore pass every feature check.
func RequireFeature(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := c.Locals(PrincipalKey).(*domain.Principal)
		if !ok || principal == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no resolvable identity",
			})
		}

		if !principal.HasFeature(feature) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "feature not enabled for organization",
				"feature": feature,
			})
		}

		return c.Next()
	}
}
