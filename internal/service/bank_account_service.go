package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/orgdeskhq/orgdesk/internal/domain"
)

// BankAccountService manages an organization's bank accounts and their
// verification documents
type BankAccountService struct {
	accountRepo  domain.BankAccountRepository
	documentRepo domain.DocumentRepository
}

// NewBankAccountService creates a new bank account service. documentRepo may
// be nil when no object store is configured; uploads then fail cleanly.
func NewBankAccountService(
	accountRepo domain.BankAccountRepository,
	documentRepo domain.DocumentRepository,
) *BankAccountService {
	return &BankAccountService{
		accountRepo:  accountRepo,
		documentRepo: documentRepo,
	}
}

// CreateBankAccountRequest contains the creation params
type CreateBankAccountRequest struct {
	OrganizationID string
	BankName       string
	AccountNumber  string
	HolderName     string
	Currency       string
}

// CreateBankAccount registers a new bank account under the organization.
// Account numbers are unique per organization.
func (s *BankAccountService) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*domain.BankAccount, error) {
	if req.OrganizationID == "" || req.BankName == "" || req.AccountNumber == "" || req.HolderName == "" {
		return nil, fmt.Errorf("%w: bank name, account number and holder are required", domain.ErrInvalid)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	account := &domain.BankAccount{
		OrganizationID: req.OrganizationID,
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		HolderName:     req.HolderName,
		Currency:       currency,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: account number already registered", domain.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}
	return account, nil
}

// GetBankAccount retrieves a bank account, scoped to the caller's organization
func (s *BankAccountService) GetBankAccount(ctx context.Context, organizationID, id string) (*domain.BankAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

// ListBankAccounts retrieves all bank accounts of an organization
func (s *BankAccountService) ListBankAccounts(ctx context.Context, organizationID string) ([]*domain.BankAccount, error) {
	return s.accountRepo.GetByOrganizationID(ctx, organizationID)
}

// UpdateBankAccountRequest contains the updatable fields
type UpdateBankAccountRequest struct {
	BankName   string
	HolderName string
	Currency   string
}

// UpdateBankAccount applies field updates; the account number is immutable
func (s *BankAccountService) UpdateBankAccount(ctx context.Context, organizationID, id string, req UpdateBankAccountRequest) (*domain.BankAccount, error) {
	account, err := s.GetBankAccount(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if req.BankName != "" {
		account.BankName = req.BankName
	}
	if req.HolderName != "" {
		account.HolderName = req.HolderName
	}
	if req.Currency != "" {
		account.Currency = req.Currency
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update bank account: %w", err)
	}
	return account, nil
}

// DeleteBankAccount removes a bank account within the organization
func (s *BankAccountService) DeleteBankAccount(ctx context.Context, organizationID, id string) error {
	if _, err := s.GetBankAccount(ctx, organizationID, id); err != nil {
		return err
	}
	return s.accountRepo.Delete(ctx, id)
}

// AttachDocument uploads a verification document to object storage and
// records its URL on the bank account
func (s *BankAccountService) AttachDocument(ctx context.Context, organizationID, id string, file []byte, filename, contentType string) (*domain.BankAccount, error) {
	if s.documentRepo == nil {
		return nil, fmt.Errorf("%w: document storage is not configured", domain.ErrInternal)
	}
	if len(file) == 0 {
		return nil, fmt.Errorf("%w: document file is required", domain.ErrInvalid)
	}

	account, err := s.GetBankAccount(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("documents/%s/%s%s", organizationID, ulid.Make().String(), filepath.Ext(filename))
	url, err := s.documentRepo.Upload(ctx, file, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	account.DocumentURL = url
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to record document url: %w", err)
	}

	log.Printf("Attached verification document for bank account %s (org %s)", account.ID, organizationID)
	return account, nil
}
