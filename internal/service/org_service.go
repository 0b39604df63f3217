package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgdeskhq/orgdesk/internal/domain"
)

// OrgService manages organizations and their feature grants
type OrgService struct {
	orgRepo  domain.OrganizationRepository
	userRepo domain.UserRepository
	catalog  []string
}

// NewOrgService creates a new organization service
func NewOrgService(
	orgRepo domain.OrganizationRepository,
	userRepo domain.UserRepository,
	catalog []string,
) *OrgService {
	return &OrgService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
		catalog:  catalog,
	}
}

// CreateOrganizationRequest contains the creation params
type CreateOrganizationRequest struct {
	Name        string
	AdminUserID string
	Features    []string
}

// CreateOrganization creates an organization and appoints its admin. The
// admin user gains the org_admin role binding; a user already administering
// an organization cannot take a second one.
func (s *OrgService) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*domain.Organization, error) {
	if req.Name == "" || req.AdminUserID == "" {
		return nil, fmt.Errorf("%w: name and admin user are required", domain.ErrInvalid)
	}

	admin, err := s.userRepo.GetByID(ctx, req.AdminUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load admin user: %w", err)
	}

	// Appointing would prepend org_admin ahead of super_admin and demote
	// the platform account under first-role-wins
	if admin.HasRole(domain.RoleSuperAdmin) {
		return nil, fmt.Errorf("%w: a platform administrator cannot be appointed organization admin", domain.ErrInvalid)
	}

	features, err := s.validateFeatures(req.Features)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{
		Name:     req.Name,
		UserID:   admin.ID,
		Features: features,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: user already administers an organization", domain.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	// Appoint as first role so claims derivation picks it up
	if !admin.HasRole(domain.RoleOrgAdmin) {
		admin.Roles = append([]string{domain.RoleOrgAdmin}, admin.Roles...)
		if err := s.userRepo.Update(ctx, admin); err != nil {
			return nil, fmt.Errorf("failed to appoint organization admin: %w", err)
		}
	}

	return org, nil
}

// GetOrganization retrieves an organization by ID
func (s *OrgService) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

// ListOrganizations retrieves all organizations
func (s *OrgService) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	return s.orgRepo.GetAll(ctx)
}

// UpdateOrganization renames an organization
func (s *OrgService) UpdateOrganization(ctx context.Context, id, name string) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Name = name
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// SetFeatures replaces an organization's feature grant set. Every feature
// must exist in the static catalog.
func (s *OrgService) SetFeatures(ctx context.Context, id string, features []string) (*domain.Organization, error) {
	validated, err := s.validateFeatures(features)
	if err != nil {
		return nil, err
	}
	if err := s.orgRepo.SetFeatures(ctx, id, validated); err != nil {
		return nil, err
	}
	return s.orgRepo.GetByID(ctx, id)
}

// DeleteOrganization removes an organization and demotes its admin
func (s *OrgService) DeleteOrganization(ctx context.Context, id string) error {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orgRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.RemoveRole(ctx, org.UserID, domain.RoleOrgAdmin); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to demote organization admin: %w", err)
	}
	return nil
}

// validateFeatures filters empties and rejects features outside the catalog
func (s *OrgService) validateFeatures(features []string) ([]string, error) {
	known := make(map[string]struct{}, len(s.catalog))
	for _, f := range s.catalog {
		known[f] = struct{}{}
	}

	validated := filterFeatures(features)
	for _, f := range validated {
		if _, ok := known[f]; !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", domain.ErrInvalid, f)
		}
	}
	return validated, nil
}
