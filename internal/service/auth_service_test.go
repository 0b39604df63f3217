package service

import (
	"context"
	"testing"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(users ...*domain.User) (*AuthService, *fakeUserRepo, *fakeOrgRepo) {
	userRepo := newFakeUserRepo(users...)
	orgRepo := newFakeOrgRepo()
	entitlement := NewEntitlementService(userRepo, orgRepo, testCatalog)
	return NewAuthService(userRepo, entitlement), userRepo, orgRepo
}

func hashedUser(id, email, password string, roles ...string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:           id,
		Email:        email,
		Name:         email,
		PasswordHash: string(hash),
		Roles:        roles,
	}
}

func TestSignupCreatesDefaultRoleUser(t *testing.T) {
	svc, userRepo, _ := newAuthFixture()

	result, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.True(t, result.IsNewUser)
	assert.Equal(t, []string{domain.RoleUser}, result.User.Roles)
	assert.Equal(t, domain.RoleUser, result.Principal.Role)
	assert.Empty(t, result.Principal.OrganizationID)

	stored, err := userRepo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
}

func TestSignupRejectsMissingFields(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Signup(context.Background(), SignupRequest{Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(hashedUser("u1", "taken@example.com", "pw", domain.RoleUser))

	_, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "taken@example.com",
		Password: "another",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLoginSuccess(t *testing.T) {
	svc, _, orgRepo := newAuthFixture(hashedUser("u1", "admin@acme.com", "correct-horse", domain.RoleOrgAdmin))
	require.NoError(t, orgRepo.Create(context.Background(), &domain.Organization{
		ID:       "org1",
		Name:     "Acme",
		UserID:   "u1",
		Features: []string{"offices"},
	}))

	result, err := svc.Login(context.Background(), "admin@acme.com", "correct-horse")
	require.NoError(t, err)

	assert.False(t, result.IsNewUser)
	assert.Equal(t, "org1", result.Principal.OrganizationID)
	assert.Equal(t, []string{"offices"}, result.Principal.Features)
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	svc, _, _ := newAuthFixture(hashedUser("u1", "known@example.com", "right-password", domain.RoleUser))

	_, unknownErr := svc.Login(context.Background(), "unknown@example.com", "whatever")
	_, wrongPwErr := svc.Login(context.Background(), "known@example.com", "wrong-password")

	assert.ErrorIs(t, unknownErr, domain.ErrUnauthorized)
	assert.ErrorIs(t, wrongPwErr, domain.ErrUnauthorized)
	// Same message either way, so responses cannot be used for enumeration
	assert.Equal(t, unknownErr.Error(), wrongPwErr.Error())
}
