package packages_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"var-manager/core/catalog"
	"var-manager/feature/packages"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newTestApp(t *testing.T) (*fiber.App, *packages.Service) {
	t.Helper()
	svc := newFixture(t)
	app := fiber.New()
	packages.NewHandler(svc).RegisterRoutes(app)
	return app, svc
}

func decodeBody(t *testing.T, resp io.Reader, out any) {
	t.Helper()
	body, err := io.ReadAll(resp)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(body, out))
}

func TestHandleList(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/packages?creator=Acme", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Count    int              `json:"count"`
		Packages []packages.Entry `json:"packages"`
	}
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Acme.Outfit.3", body.Packages[0].Key)
}

func TestHandleGet(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/packages/Acme.Outfit.3", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var meta catalog.Metadata
	decodeBody(t, resp.Body, &meta)
	assert.Equal(t, "Acme", meta.CreatorName)
	assert.Equal(t, catalog.StatusLoaded, meta.Status)
}

func TestHandleGetNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/packages/Ghost.Pack.1", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleResync(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/packages/resync", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats catalog.Stats
	decodeBody(t, resp.Body, &stats)
	assert.Equal(t, 2, stats.Packages)
	// The fixture already resynced once; the second pass reuses
	// everything through the fast path.
	assert.Equal(t, int64(2), stats.FastPathReuses)
}

func TestHandleRefreshValidation(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/packages/refresh",
		strings.NewReader(`{"packageBase": "", "path": ""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleInvalidate(t *testing.T) {
	app, svc := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/packages/Acme.Outfit.3", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, ok := svc.Get("Acme.Outfit.3")
	assert.False(t, ok)
}

func TestHandleStats(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/packages/stats", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats catalog.Stats
	decodeBody(t, resp.Body, &stats)
	assert.Equal(t, 2, stats.Packages)
}
