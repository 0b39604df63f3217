package middleware

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/orgdeskhq/orgdesk/internal/domain"
)

// Context keys for request-scoped identity
const (
	PrincipalKey      = "principal"
	UserIDKey         = "userID"
	OrganizationIDKey = "organization_id"
)

// PrincipalResolver derives live claims from persisted state
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.Principal, error)
}

// RequireAuth verifies the bearer token and re-derives the caller's claims
// from the database. The token is only trusted for identity (sub/email);
// role, organization and features always come from a fresh resolution, so a
// revoked role or feature change applies immediately, not at token expiry.
func RequireAuth(jwtSecret string, resolver PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization token",
			})
		}

		// Extract token (format: "Bearer <token>")
		tokenString := authHeader
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		}

		token, err := jwt.ParseWithClaims(tokenString, &domain.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*domain.AccessClaims)
		if !ok || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		if claims.Subject == "" || claims.Email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token format",
			})
		}

		principal, err := resolver.Resolve(c.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "user not found",
				})
			}
			// Internal failures stay server-side; the caller sees one
			// uniform message
			log.Printf("auth: claims resolution failed for user %s: %v", claims.Subject, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication failed",
			})
		}

		// An authenticated but orphaned account is not a valid principal
		if !principal.IsSuperAdmin && principal.OrganizationID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "no organization access",
			})
		}

		c.Locals(PrincipalKey, principal)
		c.Locals(UserIDKey, principal.ID)
		if principal.OrganizationID != "" {
			c.Locals(OrganizationIDKey, principal.OrganizationID)
		}

		return c.Next()
	}
}
