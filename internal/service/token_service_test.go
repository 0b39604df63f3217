package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/orgdeskhq/orgdesk/internal/config"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-123"

// fakeRefreshTokenRepo is an in-memory RefreshTokenRepository keyed by hash
type fakeRefreshTokenRepo struct {
	tokens map[string]*domain.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	token.CreatedAt = time.Now()
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeRefreshTokenRepo) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	return r.tokens[hash], nil
}

func (r *fakeRefreshTokenRepo) RevokeByHash(ctx context.Context, hash string) error {
	if t, ok := r.tokens[hash]; ok {
		t.Revoked = true
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID string) error {
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	for hash, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func newTokenFixture(accessExpiry time.Duration, users *fakeUserRepo, orgs *fakeOrgRepo) (*TokenService, *fakeRefreshTokenRepo) {
	refreshRepo := newFakeRefreshTokenRepo()
	entitlement := NewEntitlementService(users, orgs, testCatalog)
	svc := NewTokenService(config.JWTConfig{
		Secret:             testSecret,
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: 24 * time.Hour,
	}, refreshRepo, entitlement)
	return svc, refreshRepo
}

func parseAccessToken(t *testing.T, tokenString string) *domain.AccessClaims {
	t.Helper()
	token, err := jwt.ParseWithClaims(tokenString, &domain.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return token.Claims.(*domain.AccessClaims)
}

func TestIssueAccessTokenRoundTrip(t *testing.T) {
	svc, _ := newTokenFixture(15*time.Minute, newFakeUserRepo(), newFakeOrgRepo())

	principal := &domain.Principal{
		ID:             "u1",
		Email:          "admin@acme.com",
		Role:           domain.RoleOrgAdmin,
		OrganizationID: "org1",
		Features:       []string{"offices"},
	}

	signed, err := svc.IssueAccessToken(principal)
	require.NoError(t, err)

	claims := parseAccessToken(t, signed)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "admin@acme.com", claims.Email)
	assert.Equal(t, domain.RoleOrgAdmin, claims.Role)
	assert.Equal(t, "org1", claims.OrganizationID)
	assert.Equal(t, []string{"offices"}, claims.Features)
	assert.False(t, claims.IsSuperAdmin)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	svc, _ := newTokenFixture(-1*time.Minute, newFakeUserRepo(), newFakeOrgRepo())

	signed, err := svc.IssueAccessToken(&domain.Principal{ID: "u1", Email: "x@example.com", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &domain.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.Error(t, err)
}

func TestRefreshRotatesAndRederivesClaims(t *testing.T) {
	users := newFakeUserRepo(&domain.User{
		ID:    "u1",
		Email: "admin@acme.com",
		Roles: []string{domain.RoleOrgAdmin},
	})
	orgs := newFakeOrgRepo(&domain.Organization{
		ID:       "org1",
		UserID:   "u1",
		Features: []string{"offices"},
	})
	svc, refreshRepo := newTokenFixture(15*time.Minute, users, orgs)

	ctx := context.Background()
	principal := &domain.Principal{ID: "u1", Email: "admin@acme.com", Role: domain.RoleOrgAdmin, OrganizationID: "org1", Features: []string{"offices"}}

	pair, err := svc.GenerateTokenPair(ctx, principal, "ua", "127.0.0.1")
	require.NoError(t, err)

	// Features change between issuance and refresh
	require.NoError(t, orgs.SetFeatures(ctx, "org1", []string{"offices", "documents"}))

	newPair, err := svc.RefreshAccessToken(ctx, pair.RefreshToken, "ua", "127.0.0.1")
	require.NoError(t, err)

	claims := parseAccessToken(t, newPair.AccessToken)
	assert.Equal(t, []string{"offices", "documents"}, claims.Features,
		"refreshed token must carry freshly resolved features")

	// The exchanged token is dead
	_, err = svc.RefreshAccessToken(ctx, pair.RefreshToken, "ua", "127.0.0.1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// And only hashes ever hit storage
	_, stored := refreshRepo.tokens[newPair.RefreshToken]
	assert.False(t, stored, "raw refresh token must not be a storage key")
}

func TestRefreshUnknownTokenRejected(t *testing.T) {
	svc, _ := newTokenFixture(15*time.Minute, newFakeUserRepo(), newFakeOrgRepo())

	_, err := svc.RefreshAccessToken(context.Background(), "never-issued", "ua", "127.0.0.1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRevokeAllUserTokens(t *testing.T) {
	users := newFakeUserRepo(&domain.User{ID: "u1", Email: "x@example.com", Roles: []string{domain.RoleSuperAdmin}})
	svc, _ := newTokenFixture(15*time.Minute, users, newFakeOrgRepo())

	ctx := context.Background()
	principal := &domain.Principal{ID: "u1", Email: "x@example.com", Role: domain.RoleSuperAdmin, IsSuperAdmin: true}

	pair, err := svc.GenerateTokenPair(ctx, principal, "ua", "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllUserTokens(ctx, "u1"))

	_, err = svc.RefreshAccessToken(ctx, pair.RefreshToken, "ua", "127.0.0.1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPurgeExpiredTokens(t *testing.T) {
	users := newFakeUserRepo(&domain.User{ID: "u1", Email: "x@example.com", Roles: []string{domain.RoleSuperAdmin}})
	svc, refreshRepo := newTokenFixture(15*time.Minute, users, newFakeOrgRepo())

	ctx := context.Background()
	principal := &domain.Principal{ID: "u1", Email: "x@example.com", Role: domain.RoleSuperAdmin, IsSuperAdmin: true}

	_, err := svc.GenerateTokenPair(ctx, principal, "ua", "127.0.0.1")
	require.NoError(t, err)

	refreshRepo.tokens["stale-hash"] = &domain.RefreshToken{
		UserID:    "u1",
		TokenHash: "stale-hash",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	require.NoError(t, svc.PurgeExpiredTokens(ctx))

	_, stale := refreshRepo.tokens["stale-hash"]
	assert.False(t, stale, "expired session must be swept")
	assert.Len(t, refreshRepo.tokens, 1)
}
