package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims represents the JWT payload issued at login/signup.
// It is a snapshot of the principal at issuance time; validation re-derives
// the live principal and only trusts Subject and Email from here.
type AccessClaims struct {
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	OrganizationID string   `json:"organization_id,omitempty"`
	Features       []string `json:"features"`
	IsSuperAdmin   bool     `json:"is_super_admin"`
	jwt.RegisteredClaims
}
