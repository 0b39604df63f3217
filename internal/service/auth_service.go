package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgdeskhq/orgdesk/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup and password login
type AuthService struct {
	userRepo    domain.UserRepository
	entitlement *EntitlementService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, entitlement *EntitlementService) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		entitlement: entitlement,
	}
}

// SignupRequest contains the signup params
type SignupRequest struct {
	Email    string
	Name     string
	Password string
}

// AuthResult contains the authenticated user and its freshly derived claims
type AuthResult struct {
	User      *domain.User
	Principal *domain.Principal
	IsNewUser bool
}

// Signup creates a new account with the default role. Elevated roles are
// never granted here; organization admins are appointed when an organization
// is created for them, and super admins only via the seeder.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalid)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := req.Name
	if name == "" {
		name = req.Email
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         name,
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleUser},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &AuthResult{
		User:      user,
		Principal: s.entitlement.ResolveUser(ctx, user),
		IsNewUser: true,
	}, nil
}

// Login verifies email/password and derives fresh claims. Unknown email and
// wrong password both answer ErrUnauthorized so callers cannot enumerate
// accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	return &AuthResult{
		User:      user,
		Principal: s.entitlement.ResolveUser(ctx, user),
	}, nil
}
