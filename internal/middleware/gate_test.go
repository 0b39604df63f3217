package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateApp builds a one-route app that injects the given principal before the
// handler under test runs
func gateApp(principal *domain.Principal, withOrgContext bool, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(PrincipalKey, principal)
			c.Locals(UserIDKey, principal.ID)
		}
		if withOrgContext && principal != nil && principal.OrganizationID != "" {
			c.Locals(OrganizationIDKey, principal.OrganizationID)
		}
		return c.Next()
	})
	args := append(handlers, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/", args...)
	return app
}

func gateRequest(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireRolesEmptyAllowsAnyone(t *testing.T) {
	principal := &domain.Principal{ID: "u1", Role: domain.RoleUser}
	app := gateApp(principal, false, RequireRoles())
	assert.Equal(t, http.StatusOK, gateRequest(t, app))
}

func TestRequireRolesDeniesMissingPrincipal(t *testing.T) {
	app := gateApp(nil, false, RequireRoles(domain.RoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, gateRequest(t, app))
}

func TestRequireRolesDeniesWrongRole(t *testing.T) {
	principal := &domain.Principal{ID: "u1", Role: domain.RoleUser}
	app := gateApp(principal, false, RequireRoles(domain.RoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, gateRequest(t, app))
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	principal := &domain.Principal{ID: "u1", Role: domain.RoleSuperAdmin, IsSuperAdmin: true}
	app := gateApp(principal, false, RequireRoles(domain.RoleSuperAdmin))
	assert.Equal(t, http.StatusOK, gateRequest(t, app))
}

func TestOrgAdminRequiresOrganizationContext(t *testing.T) {
	principal := &domain.Principal{ID: "u1", Role: domain.RoleOrgAdmin, OrganizationID: "org1"}

	withContext := gateApp(principal, true, RequireRoles(domain.RoleOrgAdmin))
	assert.Equal(t, http.StatusOK, gateRequest(t, withContext))

	// Matching role alone is not enough without the request-bound org
	withoutContext := gateApp(principal, false, RequireRoles(domain.RoleOrgAdmin))
	assert.Equal(t, http.StatusForbidden, gateRequest(t, withoutContext))
}

func TestOrgAdminDeniedOnSuperAdminGate(t *testing.T) {
	// An org admin's pass is scoped to gates declaring org_admin; the
	// attached organization context must not open platform operations
	principal := &domain.Principal{ID: "u1", Role: domain.RoleOrgAdmin, OrganizationID: "org1"}
	app := gateApp(principal, true, RequireRoles(domain.RoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, gateRequest(t, app))
}

func TestRequireFeature(t *testing.T) {
	principal := &domain.Principal{
		ID:             "u1",
		Role:           domain.RoleOrgAdmin,
		OrganizationID: "org1",
		Features:       []string{domain.FeatureOffices},
	}

	granted := gateApp(principal, true, RequireFeature(domain.FeatureOffices))
	assert.Equal(t, http.StatusOK, gateRequest(t, granted))

	denied := gateApp(principal, true, RequireFeature(domain.FeatureBankAccounts))
	assert.Equal(t, http.StatusForbidden, gateRequest(t, denied))
}

func TestRequireFeatureSuperAdminCarriesCatalog(t *testing.T) {
	principal := &domain.Principal{
		ID:           "root",
		Role:         domain.RoleSuperAdmin,
		IsSuperAdmin: true,
		Features:     []string{domain.FeatureOffices, domain.FeatureBankAccounts, domain.FeatureDocuments},
	}
	app := gateApp(principal, false, RequireFeature(domain.FeatureDocuments))
	assert.Equal(t, http.StatusOK, gateRequest(t, app))
}
