package repository

import (
	"context"
	"time"

	"github.com/orgdeskhq/orgdesk/internal/domain"
)

const (
	orgByIDKeyPrefix    = "org:id:"
	orgByAdminKeyPrefix = "org:admin:"
	orgCacheTTL         = 5 * time.Minute
)

// CachedOrganizationRepository wraps MongoOrganizationRepository with Redis
// caching. Feature grants and org updates invalidate both lookup paths so
// claims resolution observes changes within one request, not one TTL.
type CachedOrganizationRepository struct {
	mongo *MongoOrganizationRepository
	cache *RedisCacheRepository
}

// NewCachedOrganizationRepository creates a new cached organization repository
func NewCachedOrganizationRepository(mongo *MongoOrganizationRepository, cache *RedisCacheRepository) *CachedOrganizationRepository {
	return &CachedOrganizationRepository{
		mongo: mongo,
		cache: cache,
	}
}

// GetByID retrieves an organization by ID with caching
func (r *CachedOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	key := orgByIDKeyPrefix + id

	var org domain.Organization
	if err := r.cache.Get(ctx, key, &org); err == nil {
		return &org, nil
	}

	result, err := r.mongo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, orgCacheTTL)

	return result, nil
}

// GetByAdminUserID retrieves the organization a user administers with caching
func (r *CachedOrganizationRepository) GetByAdminUserID(ctx context.Context, userID string) (*domain.Organization, error) {
	key := orgByAdminKeyPrefix + userID

	var org domain.Organization
	if err := r.cache.Get(ctx, key, &org); err == nil {
		return &org, nil
	}

	result, err := r.mongo.GetByAdminUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, key, result, orgCacheTTL)

	return result, nil
}

// Create creates an organization; nothing is cached yet for a new org
func (r *CachedOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if err := r.mongo.Create(ctx, org); err != nil {
		return err
	}
	r.invalidate(ctx, org.ID, org.UserID)
	return nil
}

// Update updates an organization and invalidates both cache paths
func (r *CachedOrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	if err := r.mongo.Update(ctx, org); err != nil {
		return err
	}
	r.invalidate(ctx, org.ID, org.UserID)
	return nil
}

// SetFeatures replaces the feature grant set and invalidates caches
func (r *CachedOrganizationRepository) SetFeatures(ctx context.Context, id string, features []string) error {
	if err := r.mongo.SetFeatures(ctx, id, features); err != nil {
		return err
	}
	// Admin binding is unknown here; fetch to clear the by-admin entry too
	if org, err := r.mongo.GetByID(ctx, id); err == nil {
		r.invalidate(ctx, org.ID, org.UserID)
	} else {
		_ = r.cache.Delete(ctx, orgByIDKeyPrefix+id)
	}
	return nil
}

// Delete removes an organization and invalidates caches
func (r *CachedOrganizationRepository) Delete(ctx context.Context, id string) error {
	org, getErr := r.mongo.GetByID(ctx, id)
	if err := r.mongo.Delete(ctx, id); err != nil {
		return err
	}
	if getErr == nil {
		r.invalidate(ctx, org.ID, org.UserID)
	} else {
		_ = r.cache.Delete(ctx, orgByIDKeyPrefix+id)
	}
	return nil
}

// GetAll bypasses the cache; list results are not cached
func (r *CachedOrganizationRepository) GetAll(ctx context.Context) ([]*domain.Organization, error) {
	return r.mongo.GetAll(ctx)
}

func (r *CachedOrganizationRepository) invalidate(ctx context.Context, orgID, adminUserID string) {
	_ = r.cache.Delete(ctx, orgByIDKeyPrefix+orgID)
	if adminUserID != "" {
		_ = r.cache.Delete(ctx, orgByAdminKeyPrefix+adminUserID)
	}
}
