package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pustaka/internal/middleware"
	"pustaka/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestCount(t *testing.T, method, route, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetricsLabelsSurviveBufferReuse(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Metrics())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Get("/things/:id", ok)
	app.Put("/things/:id", ok)
	app.Delete("/things/:id", ok)

	const route = "/things/:id"
	before := map[string]float64{}
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		before[method] = requestCount(t, method, route, "204")
	}

	sequence := []string{
		http.MethodDelete, http.MethodGet, http.MethodPut,
		http.MethodGet, http.MethodDelete, http.MethodGet,
	}
	for _, method := range sequence {
		resp, err := app.Test(httptest.NewRequest(method, "/things/x", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, before[http.MethodGet]+3, requestCount(t, http.MethodGet, route, "204"))
	assert.Equal(t, before[http.MethodPut]+1, requestCount(t, http.MethodPut, route, "204"))
	assert.Equal(t, before[http.MethodDelete]+2, requestCount(t, http.MethodDelete, route, "204"))

	// Corrupted label strings show up as duplicate series at gather time.
	_, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)
}
