package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/orgdeskhq/orgdesk/internal/domain"
	"github.com/orgdeskhq/orgdesk/internal/middleware"
	"github.com/orgdeskhq/orgdesk/internal/service"
)

const refreshCookieName = "orgdesk-refresh-token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.authService.Signup(c.Context(), service.SignupRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, "auth.signup", err)
	}

	return h.respondWithTokens(c, fiber.StatusCreated, result)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, "auth.login", err)
	}

	return h.respondWithTokens(c, fiber.StatusOK, result)
}

// RefreshToken handles POST /v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "no refresh token provided",
		})
	}

	tokenPair, err := h.tokenService.RefreshAccessToken(c.Context(), refreshToken, c.Get("User-Agent"), c.IP())
	if err != nil {
		h.clearRefreshCookie(c)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or expired refresh token",
		})
	}

	h.setRefreshCookie(c, tokenPair.RefreshToken)
	return c.JSON(fiber.Map{
		"token":      tokenPair.AccessToken,
		"expires_in": tokenPair.ExpiresIn,
	})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := c.Cookies(refreshCookieName); refreshToken != "" {
		_ = h.tokenService.RevokeRefreshToken(c.Context(), refreshToken)
	}

	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{
		"message": "logged out successfully",
	})
}

// Me handles GET /v1/me, returning the freshly resolved principal
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := c.Locals(middleware.PrincipalKey).(*domain.Principal)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication failed",
		})
	}
	return c.JSON(principal)
}

func (h *AuthHandler) respondWithTokens(c *fiber.Ctx, status int, result *service.AuthResult) error {
	tokenPair, err := h.tokenService.GenerateTokenPair(c.Context(), result.Principal, c.Get("User-Agent"), c.IP())
	if err != nil {
		return respondError(c, "auth.tokens", err)
	}

	h.setRefreshCookie(c, tokenPair.RefreshToken)

	return c.Status(status).JSON(fiber.Map{
		"token":       tokenPair.AccessToken,
		"expires_in":  tokenPair.ExpiresIn,
		"is_new_user": result.IsNewUser,
		"user": fiber.Map{
			"id":              result.Principal.ID,
			"email":           result.Principal.Email,
			"role":            result.Principal.Role,
			"organization_id": result.Principal.OrganizationID,
			"features":        result.Principal.Features,
		},
	})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   false, // set to true behind HTTPS
		SameSite: "Lax",
		Path:     "/",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		Path:     "/",
	})
}
