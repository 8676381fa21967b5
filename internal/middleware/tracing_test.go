package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingMiddleware_SetsTraceLocals(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		tid, _ := c.UserContext().Value(TraceIDKey).(string)
		assert.Equal(t, c.Locals("traceID"), tid)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
}
