package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIssueAndParse(t *testing.T) {
	m := NewManager(testSecret, time.Hour, nil, false)

	token, err := m.Issue(42)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestParseRejects(t *testing.T) {
	m := NewManager(testSecret, time.Hour, nil, false)

	other, err := NewManager("another-secret", time.Hour, nil, false).Issue(1)
	require.NoError(t, err)
	expired, err := NewManager(testSecret, -time.Minute, nil, false).Issue(1)
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    issuer,
		ID:        "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", other},
		{"expired", expired},
		{"unsigned", noneAlg},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := NewManager("", time.Hour, nil, false).Issue(1)
	assert.Error(t, err)
}

func TestRevoke(t *testing.T) {
	mr, rdb := newRedis(t)
	m := NewManager(testSecret, time.Hour, rdb, false)
	ctx := context.Background()

	token, err := m.Issue(1)
	require.NoError(t, err)
	claims, err := m.Parse(token)
	require.NoError(t, err)

	revoked, err := m.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, m.Revoke(ctx, claims))

	revoked, err = m.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Greater(t, mr.TTL(revokedKey(claims.ID)), 50*time.Minute)
}

func sessionApp(m *Manager) *fiber.App {
	app := fiber.New()
	app.Get("/login", func(c *fiber.Ctx) error {
		return m.Login(c, 7)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		claims, err := m.Current(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"user_id": claims.UserID})
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		return m.Logout(c)
	})
	return app
}

func TestLoginCurrentLogout(t *testing.T) {
	_, rdb := newRedis(t)
	app := sessionApp(NewManager(testSecret, time.Hour, rdb, false))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	cookie := findCookie(resp, CookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value})
	resp, err = app.Test(req)
	require.NoError(t, err)
	cleared := findCookie(resp, CookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// A copy of the old cookie no longer authenticates.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie.Value})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentWithoutCookie(t *testing.T) {
	app := sessionApp(NewManager(testSecret, time.Hour, nil, false))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
