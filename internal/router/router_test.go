package router

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RoutesAndAuth(t *testing.T) {
	ds, err := dataset.Parse("Agent,money\nA,1\nA,2\n", dataset.DefaultOptions())
	require.NoError(t, err)

	key := strings.Repeat("k", 32)
	cfg := config.DefaultConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{key}}
	cfg.Export.Dir = t.TempDir()

	app := New(logging.Nop(), source.NewStaticSession(ds), *cfg)

	// health is public
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/summary?param=money", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	for _, target := range []string{
		"/v1/dataset", "/v1/columns", "/v1/agents",
		"/v1/series?param=money", "/v1/summary?param=money", "/v1/histogram?param=money",
		"/v1/timeseries?param=money", "/v1/correlation?x=money&y=money",
		"/v1/anomalies?param=money", "/v1/export",
	} {
		req := httptest.NewRequest("GET", target, nil)
		req.Header.Set("X-API-Key", key)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, target)
	}

	req := httptest.NewRequest("GET", "/v1/unknown", nil)
	req.Header.Set("X-API-Key", key)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
