package service

import (
	"context"
	"testing"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrgFixture(users ...*domain.User) (*OrgService, *fakeUserRepo, *fakeOrgRepo) {
	userRepo := newFakeUserRepo(users...)
	orgRepo := newFakeOrgRepo()
	return NewOrgService(orgRepo, userRepo, testCatalog), userRepo, orgRepo
}

func TestCreateOrganizationAppointsAdmin(t *testing.T) {
	svc, userRepo, _ := newOrgFixture(&domain.User{
		ID:    "u1",
		Email: "owner@acme.com",
		Roles: []string{domain.RoleUser},
	})

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Name:        "Acme",
		AdminUserID: "u1",
		Features:    []string{"offices"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", org.UserID)

	admin, err := userRepo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	// Prepended so claims derivation picks the admin binding first
	assert.Equal(t, domain.RoleOrgAdmin, admin.PrimaryRole())
}

func TestCreateOrganizationRejectsSecondOrg(t *testing.T) {
	svc, _, _ := newOrgFixture(&domain.User{ID: "u1", Email: "owner@acme.com", Roles: []string{domain.RoleUser}})

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "First", AdminUserID: "u1"})
	require.NoError(t, err)

	_, err = svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Second", AdminUserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateOrganizationRejectsSuperAdminTarget(t *testing.T) {
	svc, userRepo, _ := newOrgFixture(&domain.User{
		ID:    "root",
		Email: "root@orgdesk.io",
		Roles: []string{domain.RoleSuperAdmin},
	})

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Acme", AdminUserID: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	// The platform account keeps its binding untouched
	admin, err := userRepo.GetByID(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, admin.PrimaryRole())
}

func TestCreateOrganizationUnknownAdmin(t *testing.T) {
	svc, _, _ := newOrgFixture()

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Acme", AdminUserID: "nobody"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetFeaturesValidatesAgainstCatalog(t *testing.T) {
	svc, _, orgRepo := newOrgFixture(&domain.User{ID: "u1", Email: "owner@acme.com", Roles: []string{domain.RoleUser}})

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Acme", AdminUserID: "u1"})
	require.NoError(t, err)

	_, err = svc.SetFeatures(context.Background(), org.ID, []string{"offices", "time_travel"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	updated, err := svc.SetFeatures(context.Background(), org.ID, []string{"offices", "", "documents"})
	require.NoError(t, err)
	assert.Equal(t, []string{"offices", "documents"}, updated.Features)

	stored, err := orgRepo.GetByID(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"offices", "documents"}, stored.Features)
}

func TestDeleteOrganizationDemotesAdmin(t *testing.T) {
	svc, userRepo, _ := newOrgFixture(&domain.User{ID: "u1", Email: "owner@acme.com", Roles: []string{domain.RoleUser}})

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Acme", AdminUserID: "u1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrganization(context.Background(), org.ID))

	admin, err := userRepo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, admin.HasRole(domain.RoleOrgAdmin))
}
