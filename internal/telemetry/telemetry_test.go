package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	tel, err := NewTelemetry(zap.NewNop())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(tel.Middleware())
	app.Get("/videos/:id", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", tel.Handler())

	for _, path := range []string{"/videos/1", "/videos/2"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(tel.requests.WithLabelValues("/videos/:id", "GET", "200")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "ytcatalog_http_request_duration_seconds"))
}
