package middleware

import (
	"strings"

	"pustaka/internal/models"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// TokenValidator turns a session token into a Session.
// services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(token string) (*models.Session, error)
}

// LoadSession is a Fiber middleware that reads the session token from the
// Authorization header ("Bearer <token>") or, failing that, from the
// session cookie. A valid token stores the Session for later handlers.
// Missing or invalid tokens leave the request anonymous; route policies
// decide what that means.
func LoadSession(validator TokenValidator, cookieName string, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && cookieName != "" {
			token = c.Cookies(cookieName)
		}
		if token == "" {
			return c.Next()
		}

		session, err := validator.ValidateToken(token)
		if err != nil {
			log.Debug("ignoring invalid session token", map[string]interface{}{
				"path":  c.Path(),
				"error": err.Error(),
			})
			return c.Next()
		}

		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// SessionFrom returns the Session stored by LoadSession, or nil.
func SessionFrom(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
