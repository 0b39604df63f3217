package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/service"
)

// OfficeHandler handles the org-scoped office surface. The organization ID
// always comes from the validated principal, never from the request.
type OfficeHandler struct {
	officeService *service.OfficeService
}

// NewOfficeHandler creates a new office handler
func NewOfficeHandler(officeService *service.OfficeService) *OfficeHandler {
	return &OfficeHandler{officeService: officeService}
}

type officeRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// Create handles POST /v1/org/offices
func (h *OfficeHandler) Create(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	var req officeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	office, err := h.officeService.CreateOffice(c.Context(), service.CreateOfficeRequest{
		OrganizationID: orgID,
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		Phone:          req.Phone,
	})
	if err != nil {
		return respondError(c, "offices.create", err)
	}

	return c.Status(fiber.StatusCreated).JSON(office)
}

// List handles GET /v1/org/offices
func (h *OfficeHandler) List(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	offices, err := h.officeService.ListOffices(c.Context(), orgID)
	if err != nil {
		return respondError(c, "offices.list", err)
	}
	return c.JSON(fiber.Map{"offices": offices})
}

// Get handles GET /v1/org/offices/:id
func (h *OfficeHandler) Get(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	office, err := h.officeService.GetOffice(c.Context(), orgID, c.Params("id"))
	if err != nil {
		return respondError(c, "offices.get", err)
	}
	return c.JSON(office)
}

// Update handles PUT /v1/org/offices/:id
func (h *OfficeHandler) Update(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	var req officeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	office, err := h.officeService.UpdateOffice(c.Context(), orgID, c.Params("id"), service.UpdateOfficeRequest{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
	})
	if err != nil {
		return respondError(c, "offices.update", err)
	}
	return c.JSON(office)
}

// Delete handles DELETE /v1/org/offices/:id
func (h *OfficeHandler) Delete(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	if err := h.officeService.DeleteOffice(c.Context(), orgID, c.Params("id")); err != nil {
		return respondError(c, "offices.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
