package service

import (
	"context"
	"fmt"

	"github.com/orgdeskhq/orgdesk/internal/domain"
)

// OfficeService manages an organization's offices
type OfficeService struct {
	officeRepo domain.OfficeRepository
}

// NewOfficeService creates a new office service
func NewOfficeService(officeRepo domain.OfficeRepository) *OfficeService {
	return &OfficeService{officeRepo: officeRepo}
}

// CreateOfficeRequest contains the creation params
type CreateOfficeRequest struct {
	OrganizationID string
	Name           string
	Address        string
	City           string
	Phone          string
}

// CreateOffice registers a new office under the given organization
func (s *OfficeService) CreateOffice(ctx context.Context, req CreateOfficeRequest) (*domain.Office, error) {
	if req.Name == "" || req.OrganizationID == "" {
		return nil, fmt.Errorf("%w: name and organization are required", domain.ErrInvalid)
	}

	office := &domain.Office{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		Phone:          req.Phone,
	}

	if err := s.officeRepo.Create(ctx, office); err != nil {
		return nil, fmt.Errorf("failed to create office: %w", err)
	}
	return office, nil
}

// GetOffice retrieves an office, scoped to the caller's organization
func (s *OfficeService) GetOffice(ctx context.Context, organizationID, id string) (*domain.Office, error) {
	office, err := s.officeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Cross-tenant IDs read as absent, not forbidden
	if office.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return office, nil
}

// ListOffices retrieves all offices of an organization
func (s *OfficeService) ListOffices(ctx context.Context, organizationID string) ([]*domain.Office, error) {
	return s.officeRepo.GetByOrganizationID(ctx, organizationID)
}

// UpdateOfficeRequest contains the updatable fields
type UpdateOfficeRequest struct {
	Name    string
	Address string
	City    string
	Phone   string
}

// UpdateOffice applies field updates to an office within the organization
func (s *OfficeService) UpdateOffice(ctx context.Context, organizationID, id string, req UpdateOfficeRequest) (*domain.Office, error) {
	office, err := s.GetOffice(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		office.Name = req.Name
	}
	if req.Address != "" {
		office.Address = req.Address
	}
	if req.City != "" {
		office.City = req.City
	}
	if req.Phone != "" {
		office.Phone = req.Phone
	}

	if err := s.officeRepo.Update(ctx, office); err != nil {
		return nil, fmt.Errorf("failed to update office: %w", err)
	}
	return office, nil
}

// DeleteOffice removes an office within the organization
func (s *OfficeService) DeleteOffice(ctx context.Context, organizationID, id string) error {
	if _, err := s.GetOffice(ctx, organizationID, id); err != nil {
		return err
	}
	return s.officeRepo.Delete(ctx, id)
}
