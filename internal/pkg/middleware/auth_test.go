package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	icuser "github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

func newGuardedApp(guard fiber.Handler, loggedIn bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(icuser.KeyFromProtected, loggedIn)
		return c.Next()
	})
	app.Get("/guarded", guard, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	app := newGuardedApp(RequireAuth, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestRequireAuthPassesLoggedIn(t *testing.T) {
	app := newGuardedApp(RequireAuth, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireAPISessionAuthReturnsJSON401(t *testing.T) {
	app := newGuardedApp(RequireAPISessionAuth, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get("Content-Type"))
}

func TestRequireAPISessionAuthPassesLoggedIn(t *testing.T) {
	app := newGuardedApp(RequireAPISessionAuth, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
