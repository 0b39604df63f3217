package domain

import (
	"context"
	"time"
)

// User represents an account with one or more role bindings.
// Storage allows multiple roles, but authorization uses only the first
// binding (see Principal); multi-role precedence is intentionally out.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Roles        []string  `bson:"roles" json:"roles"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// HasRole checks if user has a specific role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first role binding, defaulting to RoleUser
// when no binding exists.
func (u *User) PrimaryRole() string {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	return u.Roles[0]
}

// UserRepository defines operations for managing users. Role grants go
// through Update: the first binding decides authorization, so the caller
// must order Roles explicitly.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	RemoveRole(ctx context.Context, userID string, role string) error
}

// Role constants
const (
	RoleSuperAdmin = "super_admin" // Platform operator - no organization restriction
	RoleOrgAdmin   = "org_admin"   // Administers exactly one organization
	RoleUser       = "user"        // Default role for new signups
)
