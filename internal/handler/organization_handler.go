package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/service"
)

// OrganizationHandler handles the platform-level organization surface
type OrganizationHandler struct {
	orgService      *service.OrgService
	overviewService *service.OverviewService
	catalog         []string
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgService *service.OrgService, overviewService *service.OverviewService, catalog []string) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:      orgService,
		overviewService: overviewService,
		catalog:         catalog,
	}
}

type createOrganizationRequest struct {
	Name        string   `json:"name"`
	AdminUserID string   `json:"admin_user_id"`
	Features    []string `json:"features"`
}

type updateOrganizationRequest struct {
	Name string `json:"name"`
}

type setFeaturesRequest struct {
	Features []string `json:"features"`
}

// Create handles POST /v1/platform/organizations
func (h *OrganizationHandler) Create(c *fiber.Ctx) error {
	var req createOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	org, err := h.orgService.CreateOrganization(c.Context(), service.CreateOrganizationRequest{
		Name:        req.Name,
		AdminUserID: req.AdminUserID,
		Features:    req.Features,
	})
	if err != nil {
		return respondError(c, "organizations.create", err)
	}

	return c.Status(fiber.StatusCreated).JSON(org)
}

// List handles GET /v1/platform/organizations
func (h *OrganizationHandler) List(c *fiber.Ctx) error {
	orgs, err := h.orgService.ListOrganizations(c.Context())
	if err != nil {
		return respondError(c, "organizations.list", err)
	}
	return c.JSON(fiber.Map{"organizations": orgs})
}

// Get handles GET /v1/platform/organizations/:id
func (h *OrganizationHandler) Get(c *fiber.Ctx) error {
	org, err := h.orgService.GetOrganization(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, "organizations.get", err)
	}
	return c.JSON(org)
}

// Update handles PUT /v1/platform/organizations/:id
func (h *OrganizationHandler) Update(c *fiber.Ctx) error {
	var req updateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	org, err := h.orgService.UpdateOrganization(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return respondError(c, "organizations.update", err)
	}
	return c.JSON(org)
}

// SetFeatures handles PUT /v1/platform/organizations/:id/features
func (h *OrganizationHandler) SetFeatures(c *fiber.Ctx) error {
	var req setFeaturesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	org, err := h.orgService.SetFeatures(c.Context(), c.Params("id"), req.Features)
	if err != nil {
		return respondError(c, "organizations.set_features", err)
	}
	return c.JSON(org)
}

// Delete handles DELETE /v1/platform/organizations/:id
func (h *OrganizationHandler) Delete(c *fiber.Ctx) error {
	if err := h.orgService.DeleteOrganization(c.Context(), c.Params("id")); err != nil {
		return respondError(c, "organizations.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Overview handles GET /v1/platform/organizations/:id/overview
func (h *OrganizationHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.overviewService.GetOverview(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, "organizations.overview", err)
	}
	return c.JSON(overview)
}

// Catalog handles GET /v1/platform/features, exposing the static catalog
func (h *OrganizationHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"features": h.catalog})
}

// MyOrganization handles GET /v1/org, returning the caller's own organization
func (h *OrganizationHandler) MyOrganization(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	org, err := h.orgService.GetOrganization(c.Context(), orgID)
	if err != nil {
		return respondError(c, "organizations.self", err)
	}
	return c.JSON(org)
}

// MyOverview handles GET /v1/org/overview
func (h *OrganizationHandler) MyOverview(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	overview, err := h.overviewService.GetOverview(c.Context(), orgID)
	if err != nil {
		return respondError(c, "organizations.self_overview", err)
	}
	return c.JSON(overview)
}
