package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/orgdeskhq/orgdesk/internal/repository"
	"github.com/orgdeskhq/orgdesk/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGoldenPath(t *testing.T) {
	// 1. Setup Infrastructure
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cfg := TestConfig()

	// 2. Initialize App
	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
	})

	// Helper for requests
	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response) map[string]interface{} {
		var data map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		return data
	}

	// ==========================================
	// STEP 1: Seed & Login Super Admin
	// ==========================================
	// The platform account only ever comes from seeding, never from signup
	userRepo := repository.NewMongoUserRepository(db)
	hash, err := bcrypt.GenerateFromPassword([]byte("root-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), &domain.User{
		Email:        "root@orgdesk.test",
		Name:         "Platform Admin",
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleSuperAdmin},
	}))

	resp := request("POST", "/v1/auth/login", "", map[string]string{
		"email":    "root@orgdesk.test",
		"password": "root-password",
	})
	require.Equal(t, 200, resp.StatusCode)

	loginData := decode(resp)
	superToken := loginData["token"].(string)
	require.NotEmpty(t, superToken)

	superUser := loginData["user"].(map[string]interface{})
	assert.Equal(t, domain.RoleSuperAdmin, superUser["role"])

	fmt.Println("✓ Super Admin Logged In")

	// ==========================================
	// STEP 2: Signup future Org Admin
	// ==========================================
	resp = request("POST", "/v1/auth/signup", "", map[string]string{
		"email":    "owner@acme.test",
		"name":     "Acme Owner",
		"password": "owner-password",
	})
	require.Equal(t, 201, resp.StatusCode)

	signupData := decode(resp)
	assert.Equal(t, true, signupData["is_new_user"])
	ownerToken := signupData["token"].(string)
	ownerID := signupData["user"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, ownerID)

	// Authenticated but orphaned: no organization means no valid principal
	resp = request("GET", "/v1/me", ownerToken, nil)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "no organization access", decode(resp)["error"])

	fmt.Println("✓ Orphaned signup rejected at validation")

	// ==========================================
	// STEP 3: Super Admin creates Organization
	// ==========================================
	resp = request("POST", "/v1/platform/organizations", superToken, map[string]interface{}{
		"name":          "Acme Corp",
		"admin_user_id": ownerID,
		"features":      []string{"offices"},
	})
	require.Equal(t, 201, resp.StatusCode)

	orgData := decode(resp)
	orgID := orgData["id"].(string)
	require.NotEmpty(t, orgID)

	fmt.Println("✓ Organization Created:", orgID)

	// ==========================================
	// STEP 4: Claims re-resolve on every request
	// ==========================================
	// The owner's token predates the organization, but the validator derives
	// claims from the database, so the old token now carries org access.
	resp = request("GET", "/v1/me", ownerToken, nil)
	require.Equal(t, 200, resp.StatusCode)

	me := decode(resp)
	assert.Equal(t, domain.RoleOrgAdmin, me["role"])
	assert.Equal(t, orgID, me["organization_id"])
	assert.Equal(t, []interface{}{"offices"}, me["features"])

	fmt.Println("✓ Pre-promotion token picked up fresh claims")

	// ==========================================
	// STEP 5: Office CRUD (feature granted)
	// ==========================================
	resp = request("POST", "/v1/org/offices", ownerToken, map[string]string{
		"name":    "HQ",
		"address": "1 Main St",
		"city":    "Springfield",
		"phone":   "555-0100",
	})
	require.Equal(t, 201, resp.StatusCode)
	officeID := decode(resp)["id"].(string)

	resp = request("GET", "/v1/org/offices", ownerToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	offices := decode(resp)["offices"].([]interface{})
	assert.Len(t, offices, 1)

	fmt.Println("✓ Office Created:", officeID)

	// ==========================================
	// STEP 6: Bank accounts gated until granted
	// ==========================================
	resp = request("POST", "/v1/org/bank-accounts", ownerToken, map[string]string{
		"bank_name":      "First National",
		"account_number": "12345678",
		"holder_name":    "Acme Corp",
	})
	assert.Equal(t, 403, resp.StatusCode)

	resp = request("PUT", "/v1/platform/organizations/"+orgID+"/features", superToken, map[string]interface{}{
		"features": []string{"offices", "bank_accounts"},
	})
	require.Equal(t, 200, resp.StatusCode)

	// Same owner token, new entitlement
	resp = request("POST", "/v1/org/bank-accounts", ownerToken, map[string]string{
		"bank_name":      "First National",
		"account_number": "12345678",
		"holder_name":    "Acme Corp",
	})
	require.Equal(t, 201, resp.StatusCode)

	fmt.Println("✓ Feature grant took effect without re-login")

	// Unknown features are rejected against the catalog
	resp = request("PUT", "/v1/platform/organizations/"+orgID+"/features", superToken, map[string]interface{}{
		"features": []string{"time_travel"},
	})
	assert.Equal(t, 400, resp.StatusCode)

	// ==========================================
	// STEP 7: Overview fan-out
	// ==========================================
	resp = request("GET", "/v1/org/overview", ownerToken, nil)
	require.Equal(t, 200, resp.StatusCode)

	overview := decode(resp)
	assert.EqualValues(t, 1, overview["office_count"])
	assert.EqualValues(t, 1, overview["bank_account_count"])

	fmt.Println("✓ Overview Verified")

	// ==========================================
	// STEP 8: Plain users stay outside admin surfaces
	// ==========================================
	resp = request("POST", "/v1/auth/signup", "", map[string]string{
		"email":    "regular@acme.test",
		"password": "user-password",
	})
	require.Equal(t, 201, resp.StatusCode)
	regularToken := decode(resp)["token"].(string)

	resp = request("GET", "/v1/platform/organizations", regularToken, nil)
	assert.Equal(t, 401, resp.StatusCode, "orphaned user fails validation before the role gate")

	fmt.Println("✓ Role Gates Verified")

	// ==========================================
	// STEP 9: Refresh rotation and logout
	// ==========================================
	resp = request("POST", "/v1/auth/login", "", map[string]string{
		"email":    "owner@acme.test",
		"password": "owner-password",
	})
	require.Equal(t, 200, resp.StatusCode)

	var refreshCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "orgdesk-refresh-token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)

	refreshReq, _ := http.NewRequest("POST", "/v1/auth/refresh", nil)
	refreshReq.AddCookie(refreshCookie)
	resp, err = app.Test(refreshReq, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, decode(resp)["token"])

	// The exchanged cookie is single-use
	replayReq, _ := http.NewRequest("POST", "/v1/auth/refresh", nil)
	replayReq.AddCookie(refreshCookie)
	resp, err = app.Test(replayReq, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	fmt.Println("✓ Refresh Rotation Verified")
}
