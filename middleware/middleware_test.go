package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthcare-booking/constants"
	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/ratelimit"
	"healthcare-booking/services/token"
	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader map[uint]*account.Account

func (f fakeLoader) FindByID(_ context.Context, id uint) (*account.Account, error) {
	if acct, ok := f[id]; ok {
		return acct, nil
	}
	return nil, accounts.ErrNotFound
}

func newSessionApp(t *testing.T) (*fiber.App, *token.Manager) {
	t.Helper()
	tokens := token.NewManager("test-secret", time.Hour)
	loader := fakeLoader{
		1: {ID: 1, Role: account.RolePatient, IsActive: true},
		2: {ID: 2, Role: account.RoleDoctor, IsActive: true},
		3: {ID: 3, Role: account.RolePatient, IsActive: false},
	}
	session := NewSession(tokens, loader)

	app := fiber.New()
	app.Get("/me", session.Authenticate(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": CurrentAccount(c).ID})
	})
	app.Get("/doctors-only", session.Authenticate(), Authorize(constants.RoleDoctor), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/maybe", session.Optional(), func(c *fiber.Ctx) error {
		if id := CurrentAccountID(c); id != nil {
			return c.JSON(fiber.Map{"id": *id})
		}
		return c.JSON(fiber.Map{"id": 0})
	})
	return app, tokens
}

func issue(t *testing.T, tokens *token.Manager, id uint, role account.Role) string {
	t.Helper()
	raw, _, err := tokens.Issue(id, string(role))
	require.NoError(t, err)
	return raw
}

func TestAuthenticateAcceptsBearerAndCookie(t *testing.T) {
	app, tokens := newSessionApp(t)
	raw := issue(t, tokens, 1, account.RolePatient)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: raw})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthenticateRejects(t *testing.T) {
	app, tokens := newSessionApp(t)

	cases := map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"garbage":   "Bearer not-a-jwt",
		"suspended": "Bearer " + issue(t, tokens, 3, account.RolePatient),
		"deleted":   "Bearer " + issue(t, tokens, 99, account.RolePatient),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

			var body types.ApiResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, fiber.StatusUnauthorized, body.Status)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestAuthorizeChecksRole(t *testing.T) {
	app, tokens := newSessionApp(t)

	req := httptest.NewRequest(http.MethodGet, "/doctors-only", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, 1, account.RolePatient))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/doctors-only", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, 2, account.RoleDoctor))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestOptionalNeverRejects(t *testing.T) {
	app, tokens := newSessionApp(t)

	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer broken")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, 2, account.RoleDoctor))
	resp, err = app.Test(req)
	require.NoError(t, err)
	var body map[string]uint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint(2), body["id"])
}

func TestRateLimitReturns429WithRetryAfter(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "reset-password", 2, time.Minute)
	app := fiber.New()
	app.Post("/reset", RateLimit(limiter), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/reset", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimit_ForgotPasswordAllowsThreePerHour(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "forgot-password", 3, time.Hour)
	app := fiber.New()
	app.Post("/forgot-password", RateLimit(limiter), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/forgot-password", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/forgot-password", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var body types.ApiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Too many attempts, please try again in 60 minutes", body.Message)
	assert.Equal(t, "3600", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRateLimitFailures_CountsOnlyRejectedAttempts(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "login", 2, time.Minute)
	app := fiber.New()
	app.Post("/login", RateLimitFailures(limiter), func(c *fiber.Ctx) error {
		if c.Query("ok") == "1" {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusUnauthorized)
	})
	do := func(target string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, target, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, fiber.StatusOK, do("/login?ok=1"))
	}
	assert.Equal(t, fiber.StatusUnauthorized, do("/login"))
	assert.Equal(t, fiber.StatusUnauthorized, do("/login"))
	assert.Equal(t, fiber.StatusTooManyRequests, do("/login"))
	assert.Equal(t, fiber.StatusTooManyRequests, do("/login?ok=1"))
}
