package middleware

import (
	"net/url"

	"pustaka/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// AnyRole passed as the required role admits every signed-in user.
const AnyRole models.Role = ""

// ForbiddenPageMessage is shown on the landing page after a page route
// rejected a signed-in user.
const ForbiddenPageMessage = "You do not have permission to access that page"

// Authorize decides whether session may use a route that needs role.
func Authorize(session *models.Session, required models.Role) Decision {
	if session == nil || session.UserID == "" {
		return DenyUnauthenticated
	}
	if required != AnyRole && session.Role != required {
		return DenyForbidden
	}
	return Allow
}

// RequireAPI guards API routes. Denials are JSON errors, never redirects.
func RequireAPI(required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch Authorize(SessionFrom(c), required) {
		case DenyUnauthenticated:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		case DenyForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin role required",
			})
		}
		return c.Next()
	}
}

// RequirePage guards page routes. Anonymous visitors are sent to loginPath
// with the requested URL as callbackUrl; users lacking the role are sent
// to the landing page with a message.
func RequirePage(required models.Role, loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch Authorize(SessionFrom(c), required) {
		case DenyUnauthenticated:
			q := url.Values{"callbackUrl": {c.OriginalURL()}}
			return c.Redirect(loginPath+"?"+q.Encode(), fiber.StatusFound)
		case DenyForbidden:
			q := url.Values{"message": {ForbiddenPageMessage}}
			return c.Redirect("/?"+q.Encode(), fiber.StatusFound)
		}
		return c.Next()
	}
}
