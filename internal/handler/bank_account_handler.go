package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/service"
)

// maxDocumentSize caps verification document uploads at 10 MB
const maxDocumentSize = 10 << 20

// BankAccountHandler handles the org-scoped bank account surface
type BankAccountHandler struct {
	accountService *service.BankAccountService
}

// NewBankAccountHandler creates a new bank account handler
func NewBankAccountHandler(accountService *service.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{accountService: accountService}
}

type createBankAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
	Currency      string `json:"currency"`
}

type updateBankAccountRequest struct {
	BankName   string `json:"bank_name"`
	HolderName string `json:"holder_name"`
	Currency   string `json:"currency"`
}

// Create handles POST /v1/org/bank-accounts
func (h *BankAccountHandler) Create(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	var req createBankAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	account, err := h.accountService.CreateBankAccount(c.Context(), service.CreateBankAccountRequest{
		OrganizationID: orgID,
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		HolderName:     req.HolderName,
		Currency:       req.Currency,
	})
	if err != nil {
		return respondError(c, "bank_accounts.create", err)
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

// List handles GET /v1/org/bank-accounts
func (h *BankAccountHandler) List(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	accounts, err := h.accountService.ListBankAccounts(c.Context(), orgID)
	if err != nil {
		return respondError(c, "bank_accounts.list", err)
	}
	return c.JSON(fiber.Map{"bank_accounts": accounts})
}

// Get handles GET /v1/org/bank-accounts/:id
func (h *BankAccountHandler) Get(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	account, err := h.accountService.GetBankAccount(c.Context(), orgID, c.Params("id"))
	if err != nil {
		return respondError(c, "bank_accounts.get", err)
	}
	return c.JSON(account)
}

// Update handles PUT /v1/org/bank-accounts/:id
func (h *BankAccountHandler) Update(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	var req updateBankAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	account, err := h.accountService.UpdateBankAccount(c.Context(), orgID, c.Params("id"), service.UpdateBankAccountRequest{
		BankName:   req.BankName,
		HolderName: req.HolderName,
		Currency:   req.Currency,
	})
	if err != nil {
		return respondError(c, "bank_accounts.update", err)
	}
	return c.JSON(account)
}

// Delete handles DELETE /v1/org/bank-accounts/:id
func (h *BankAccountHandler) Delete(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	if err := h.accountService.DeleteBankAccount(c.Context(), orgID, c.Params("id")); err != nil {
		return respondError(c, "bank_accounts.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadDocument handles POST /v1/org/bank-accounts/:id/document. Expects a
// multipart form with a "document" file field.
func (h *BankAccountHandler) UploadDocument(c *fiber.Ctx) error {
	orgID, ok := organizationID(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "organization context missing",
		})
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document file is required",
		})
	}
	if fileHeader.Size > maxDocumentSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "document exceeds maximum size",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, "bank_accounts.upload_document", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, "bank_accounts.upload_document", err)
	}

	account, err := h.accountService.AttachDocument(
		c.Context(), orgID, c.Params("id"),
		data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		return respondError(c, "bank_accounts.upload_document", err)
	}
	return c.JSON(account)
}
