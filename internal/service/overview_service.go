package service

import (
	"context"
	"fmt"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"golang.org/x/sync/errgroup"
)

// OverviewService aggregates per-organization counts for the admin dashboard
type OverviewService struct {
	orgRepo         domain.OrganizationRepository
	officeRepo      domain.OfficeRepository
	bankAccountRepo domain.BankAccountRepository
}

// NewOverviewService creates a new overview service
func NewOverviewService(
	orgRepo domain.OrganizationRepository,
	officeRepo domain.OfficeRepository,
	bankAccountRepo domain.BankAccountRepository,
) *OverviewService {
	return &OverviewService{
		orgRepo:         orgRepo,
		officeRepo:      officeRepo,
		bankAccountRepo: bankAccountRepo,
	}
}

// OrganizationOverview summarizes an organization's registered resources
type OrganizationOverview struct {
	Organization     *domain.Organization `json:"organization"`
	OfficeCount      int64                `json:"office_count"`
	BankAccountCount int64                `json:"bank_account_count"`
	FeatureCount     int                  `json:"feature_count"`
}

// GetOverview fetches the organization and its resource counts concurrently
func (s *OverviewService) GetOverview(ctx context.Context, organizationID string) (*OrganizationOverview, error) {
	overview := &OrganizationOverview{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		org, err := s.orgRepo.GetByID(gCtx, organizationID)
		if err != nil {
			return err
		}
		overview.Organization = org
		overview.FeatureCount = len(org.Features)
		return nil
	})

	g.Go(func() error {
		count, err := s.officeRepo.CountByOrganizationID(gCtx, organizationID)
		if err != nil {
			return fmt.Errorf("failed to count offices: %w", err)
		}
		overview.OfficeCount = count
		return nil
	})

	g.Go(func() error {
		count, err := s.bankAccountRepo.CountByOrganizationID(gCtx, organizationID)
		if err != nil {
			return fmt.Errorf("failed to count bank accounts: %w", err)
		}
		overview.BankAccountCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return overview, nil
}
