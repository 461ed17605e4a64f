package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"pustaka/internal/middleware"
	"pustaka/internal/models"
	"pustaka/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTokenValidator is a mock implementation of middleware.TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*models.Session, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func TestAuthorize(t *testing.T) {
	admin := &models.Session{UserID: "a", Role: models.RoleAdmin}
	student := &models.Session{UserID: "s", Role: models.RoleStudent}

	cases := []struct {
		name     string
		session  *models.Session
		required models.Role
		want     middleware.Decision
	}{
		{"anonymous on open route", nil, middleware.AnyRole, middleware.DenyUnauthenticated},
		{"anonymous on admin route", nil, models.RoleAdmin, middleware.DenyUnauthenticated},
		{"empty session", &models.Session{Role: models.RoleAdmin}, models.RoleAdmin, middleware.DenyUnauthenticated},
		{"student on admin route", student, models.RoleAdmin, middleware.DenyForbidden},
		{"student on open route", student, middleware.AnyRole, middleware.Allow},
		{"admin on admin route", admin, models.RoleAdmin, middleware.Allow},
		{"admin on student route", admin, models.RoleStudent, middleware.DenyForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, middleware.Authorize(tc.session, tc.required), tc.want.String())
		})
	}
}

func newGateApp(validator middleware.TokenValidator) *fiber.App {
	app := fiber.New()
	app.Use(middleware.LoadSession(validator, "session_token", logger.Nop()))

	whoami := func(c *fiber.Ctx) error {
		session := middleware.SessionFrom(c)
		if session == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(session.UserID)
	}

	app.Get("/public", whoami)
	app.Get("/api/admin", middleware.RequireAPI(models.RoleAdmin), whoami)
	app.Get("/api/me", middleware.RequireAPI(middleware.AnyRole), whoami)
	app.Get("/admin/*", middleware.RequirePage(models.RoleAdmin, "/auth/login"), whoami)
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestLoadSession(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("ValidateToken", "admin-token").Return(&models.Session{UserID: "admin-1", Role: models.RoleAdmin}, nil)
	validator.On("ValidateToken", "student-token").Return(&models.Session{UserID: "student-1", Role: models.RoleStudent}, nil)
	validator.On("ValidateToken", "bad-token").Return(nil, errors.New("invalid"))
	app := newGateApp(validator)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", body(t, resp))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "student-token"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "student-1", body(t, resp))
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "anonymous", body(t, resp))
	})

	t.Run("malformed header is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Token admin-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "anonymous", body(t, resp))
	})
}

func TestRequireAPI(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("ValidateToken", "admin-token").Return(&models.Session{UserID: "admin-1", Role: models.RoleAdmin}, nil)
	validator.On("ValidateToken", "student-token").Return(&models.Session{UserID: "student-1", Role: models.RoleStudent}, nil)
	app := newGateApp(validator)

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"anonymous admin route", "/api/admin", "", fiber.StatusUnauthorized},
		{"student admin route", "/api/admin", "student-token", fiber.StatusForbidden},
		{"admin admin route", "/api/admin", "admin-token", fiber.StatusOK},
		{"anonymous session route", "/api/me", "", fiber.StatusUnauthorized},
		{"student session route", "/api/me", "student-token", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Empty(t, resp.Header.Get("Location"))
			if tc.status != fiber.StatusOK {
				assert.Contains(t, body(t, resp), `"error"`)
			}
		})
	}
}

func TestRequirePage(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("ValidateToken", "admin-token").Return(&models.Session{UserID: "admin-1", Role: models.RoleAdmin}, nil)
	validator.On("ValidateToken", "student-token").Return(&models.Session{UserID: "student-1", Role: models.RoleStudent}, nil)
	app := newGateApp(validator)

	t.Run("anonymous is sent to login with callback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/books?page=2", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/auth/login", location.Path)
		assert.Equal(t, "/admin/books?page=2", location.Query().Get("callbackUrl"))
	})

	t.Run("student is sent home with a message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/books", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "student-token"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/", location.Path)
		assert.Equal(t, middleware.ForbiddenPageMessage, location.Query().Get("message"))
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/books", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "admin-token"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "admin-1", body(t, resp))
	})
}
