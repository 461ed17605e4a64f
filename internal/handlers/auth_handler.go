package handlers

import (
	"time"

	"pustaka/internal/middleware"
	"pustaka/internal/services"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService       *services.AuthService
	cookie            CookieConfig
	allowRegistration bool
	log               logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookie CookieConfig, allowRegistration bool, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		cookie:            cookie,
		allowRegistration: allowRegistration,
		log:               log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/session", middleware.RequireAPI(middleware.AnyRole), h.HandleSession)
	if h.allowRegistration {
		authRoutes.Post("/register", h.HandleRegister)
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// HandleLogin checks credentials, sets the session cookie and returns the token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	token, session, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		// Never log the submitted email or password.
		h.log.Info("login failed", map[string]interface{}{"ip": c.IP()})
		return respondError(c, h.log, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"session": session,
	})
}

// HandleLogout clears the session cookie. Tokens are self-contained, so a
// copied token stays valid until it expires.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleSession returns the caller's session and account.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	user, err := h.authService.CurrentUser(c.UserContext(), session)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"session": session,
		"user":    user,
	})
}

// HandleRegister creates a STUDENT account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}
