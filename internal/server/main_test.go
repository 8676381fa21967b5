package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "admin"
	testPassword = "password"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		SessionSecret:   "test-secret",
		SessionTTLHours: 1,
		DBDriver:        "sqlite",
		DBPath:          ":memory:",
		AdminUsername:   testUser,
		AdminPassword:   testPassword,
		LoginRateLimit:  10,
	}
}

// newTestServer builds a server over a private in-memory database with the
// admin account already created.
func newTestServer(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	cfg := testConfig()

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	require.NoError(t, s.Bootstrap(context.Background()))

	return s, s.App()
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

// csrfCookie loads a page the way a browser would before submitting a form
// and returns the anti-forgery cookie it was issued.
func csrfCookie(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp := get(t, app, "/")
	c := cookieNamed(resp, csrfCookieName)
	require.NotNil(t, c)
	require.NotEmpty(t, c.Value)
	return &http.Cookie{Name: c.Name, Value: c.Value}
}

// postForm submits values to target with a valid CSRF token attached.
func postForm(t *testing.T, app *fiber.App, target string, values url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	token := csrfCookie(t, app)

	form := url.Values{}
	for k, v := range values {
		form[k] = v
	}
	form.Set(csrfFormField, token.Value)

	return send(t, app, formRequest(http.MethodPost, target, form), append([]*http.Cookie{token}, cookies...)...)
}

func send(t *testing.T, app *fiber.App, req *http.Request, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login signs in as the bootstrap admin and returns the session cookie.
func login(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp := postForm(t, app, "/login", url.Values{
		"username": {testUser},
		"password": {testPassword},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	c := cookieNamed(resp, session.CookieName)
	require.NotNil(t, c)
	require.NotEmpty(t, c.Value)
	return &http.Cookie{Name: c.Name, Value: c.Value}
}

func entryValues(title, tags string) url.Values {
	return url.Values{
		"title":     {title},
		"date":      {"14-03-2024"},
		"duration":  {"2 hours"},
		"learned":   {"Goroutines and channels"},
		"resources": {"Effective Go"},
		"tags":      {tags},
	}
}

func createEntry(t *testing.T, app *fiber.App, auth *http.Cookie, title, tags string) {
	t.Helper()
	resp := postForm(t, app, "/entry", entryValues(title, tags), auth)
	require.Equal(t, fiber.StatusFound, resp.StatusCode, readBody(t, resp))
}

func get(t *testing.T, app *fiber.App, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	return send(t, app, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}
