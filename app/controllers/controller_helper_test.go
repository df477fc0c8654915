package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenowsbs/timenow/internal/pkg/blog"
	"github.com/timenowsbs/timenow/internal/pkg/usercontext"
)

func TestExtractUsername(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(USER_NAME, "alice")
		return c.SendString(ExtractUsername(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, "alice", body)
}

func TestExtractUsernameEmptyWithoutLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ExtractUsername(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "", readBody(t, resp))
}

func TestGetClientIPCloudflareHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		ipv4, ipv6 := GetClientIP(c)
		return c.JSON(fiber.Map{"ipv4": ipv4, "ipv6": ipv6})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.7")
	req.Header.Set("X-Forwarded-For", "2001:db8::1, 203.0.113.7")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `"ipv4":"203.0.113.7"`)
	assert.Contains(t, body, `"ipv6":"2001:db8::1"`)
}

func TestGetClientIPForwardedForList(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		ipv4, _ := GetClientIP(c)
		return c.SendString(ipv4)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.9", readBody(t, resp))
}

func TestResolveVoterKeyLoggedInUser(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		key := resolveVoterKey(c, usercontext.UserContext{UserID: 42, IsLoggedIn: true})
		return c.SendString(key)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, blog.VoterKeyForUser(42), readBody(t, resp))
}

func TestResolveVoterKeySetsAnonymousCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		key := resolveVoterKey(c, usercontext.UserContext{})
		return c.SendString(key)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	body := readBody(t, resp)
	assert.True(t, strings.HasPrefix(body, "anon:"))

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == voterCookieName {
			cookie = c.Value
		}
	}
	require.NotEmpty(t, cookie)
	assert.Equal(t, blog.VoterKeyAnonymous(cookie), body)
}

func TestResolveVoterKeyReusesExistingCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		key := resolveVoterKey(c, usercontext.UserContext{})
		return c.SendString(key)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: voterCookieName, Value: "existing-token"})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "anon:existing-token", readBody(t, resp))
	assert.Empty(t, resp.Cookies())
}

func TestParamUint(t *testing.T) {
	app := fiber.New()
	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		id, err := paramUint(c, "id")
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/17", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"id":17`)

	for _, bad := range []string{"0", "-3", "abc"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+bad, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "id %q", bad)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
