package handlers

import (
	"log/slog"

	"taskboard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	throttle    fiber.Handler
}

// NewAuthHandler creates a new AuthHandler. throttle guards both endpoints
// and may be nil.
func NewAuthHandler(authService *services.AuthService, throttle fiber.Handler) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		throttle:    throttle,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", gated(h.throttle, h.HandleRegister)...)
	authRoutes.Post("/login", gated(h.throttle, h.HandleLogin)...)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=200"`
	Password string `json:"password" validate:"required,max=72"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if done, err := validateRequest(c, req); done {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Registration failed")
	}

	slog.InfoContext(c.UserContext(), "user registered", "user_id", user.ID, "username", user.Username)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if done, err := validateRequest(c, req); done {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		slog.WarnContext(c.UserContext(), "login failed", "username", req.Username, "ip", c.IP(), "error", err)
		return respondError(c, err, "Authentication failed")
	}

	return c.JSON(token)
}
