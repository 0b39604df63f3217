package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/orgdeskhq/orgdesk/internal/domain"
)

// EntitlementService derives a Principal from persisted state. It is the
// single source of authorization facts: login, signup and every validated
// request go through Resolve, so token payloads never become authoritative.
type EntitlementService struct {
	userRepo domain.UserRepository
	orgRepo  domain.OrganizationRepository
	catalog  []string
}

// NewEntitlementService creates a new entitlement service.
// catalog is the static feature catalog loaded at startup; it is read-only
// from here on.
func NewEntitlementService(
	userRepo domain.UserRepository,
	orgRepo domain.OrganizationRepository,
	catalog []string,
) *EntitlementService {
	return &EntitlementService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		catalog:  catalog,
	}
}

// Resolve loads the user and reduces its role and organization bindings to a
// Principal. A missing user returns domain.ErrNotFound; any other user-load
// failure is surfaced as-is. Organization and feature lookup failures degrade
// to an empty feature set - one organization's data problem must never block
// authentication for a user record that exists.
func (s *EntitlementService) Resolve(ctx context.Context, userID string) (*domain.Principal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return s.ResolveUser(ctx, user), nil
}

// ResolveUser derives the Principal for an already-loaded user record.
// Used by login, which has just fetched the user by email.
func (s *EntitlementService) ResolveUser(ctx context.Context, user *domain.User) *domain.Principal {
	// First role binding wins. Storage allows multiple bindings but the
	// system uses a single derived role; see DESIGN.md.
	role := user.PrimaryRole()

	if role == domain.RoleSuperAdmin {
		log.Printf("entitlement: superadmin grant for user %s", user.ID)
		return &domain.Principal{
			ID:           user.ID,
			Email:        user.Email,
			Role:         role,
			Features:     append([]string(nil), s.catalog...),
			IsSuperAdmin: true,
		}
	}

	principal := &domain.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     role,
		Features: []string{},
	}

	// Canonical organization binding: explicit admin ownership
	// (organizations.user_id). Office membership is not consulted.
	org, err := s.orgRepo.GetByAdminUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("entitlement: no organization bound to user %s", user.ID)
		} else {
			// Degrade rather than abort: the user record itself resolved
			log.Printf("entitlement: organization lookup failed for user %s: %v", user.ID, err)
		}
		return principal
	}

	principal.OrganizationID = org.ID
	principal.Features = filterFeatures(org.Features)
	if len(principal.Features) == 0 {
		log.Printf("entitlement: organization %s has no features", org.ID)
	}

	return principal
}

// Catalog returns the full static feature catalog
func (s *EntitlementService) Catalog() []string {
	return append([]string(nil), s.catalog...)
}

// filterFeatures drops empty feature strings and deduplicates while
// preserving order
func filterFeatures(features []string) []string {
	filtered := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		filtered = append(filtered, f)
	}
	return filtered
}
