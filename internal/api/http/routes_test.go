package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/dataset"
	"github.com/i474232898/participant-map/internal/store"
)

const testDataset = `{
  "cities": [
    {"id": 1, "name": "Moscow", "coordinates": [37.6173, 55.7558]},
    {"id": 2, "name": "Saint Petersburg", "coordinates": [30.3351, 59.9343]},
    {"id": 3, "name": "Kazan", "coordinates": [49.1221, 55.7887]},
    {"id": 4, "name": "Tver", "coordinates": [0, 0]}
  ],
  "participants": [
    {"id": 1, "name": "Anna", "city_id": 1},
    {"id": 2, "name": "Boris", "city_id": 3},
    {"id": 3, "name": "Clara", "city_id": 1},
    {"id": 4, "name": "Dmitry", "city_id": 2},
    {"id": 5, "name": "Eva", "city_id": 4}
  ]
}`

func newTestApp(t *testing.T, data string) (*fiber.App, *atlas.Service) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.json")
	if data != "" {
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}

	svc := atlas.NewService(store.NewMemoryStore(10, time.Hour), atlas.FileSource{Path: path})
	_, _ = svc.Reload(context.Background())

	view := atlas.MapView{
		Center:   dataset.Coordinates{37.6173, 55.7558},
		Zoom:     4,
		StyleURL: "https://demotiles.maplibre.org/style.json",
		Paint:    atlas.DefaultHeatmapPaint(),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, NewPresenter(svc, view))
	return app, svc
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, body
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	return doRequest(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestMapViewEndpoint(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/api/v1/map")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view map[string]any
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, []any{37.6173, 55.7558}, view["center"])
	assert.Equal(t, 4.0, view["zoom"])
	assert.NotContains(t, view, "maxBounds")

	paint, ok := view["paint"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 30.0, paint["heatmap-radius"])
}

func TestParticipantsGeoJSON(t *testing.T) {
	app, svc := newTestApp(t, testDataset)

	resp, body := get(t, app, "/api/v1/participants.geojson")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get(fiber.HeaderContentType))

	var fc atlas.FeatureCollection
	require.NoError(t, json.Unmarshal(body, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 5)
	assert.Equal(t, map[string]string{"name": "Anna", "city": "Moscow"}, fc.Features[0].Properties)

	etag := resp.Header.Get(fiber.HeaderETag)
	assert.Equal(t, `"`+svc.Current().ID+`"`, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/participants.geojson", nil)
	req.Header.Set(fiber.HeaderIfNoneMatch, etag)
	resp, _ = doRequest(t, app, req)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestCitiesEndpoint(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/api/v1/cities")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Total  int              `json:"total"`
		Cities []atlas.CityStat `json:"cities"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 5, out.Total)
	require.Len(t, out.Cities, 4)
	assert.Equal(t, "Moscow", out.Cities[0].City)
	assert.Equal(t, []string{"Anna", "Clara"}, out.Cities[0].Names)
}

func TestCitiesWithinBoundingBox(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/api/v1/cities?bbox=30,55,40,58")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Total  int              `json:"total"`
		Cities []atlas.CityStat `json:"cities"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Cities, 1)
	assert.Equal(t, "Moscow", out.Cities[0].City)
	assert.Equal(t, 2, out.Total)

	resp, _ = get(t, app, "/api/v1/cities?bbox=40,58,30,55")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNearestCities(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/api/v1/cities/nearest?lng=35.9006&lat=56.8587&k=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Cities []struct {
			City       string  `json:"city"`
			DistanceKm float64 `json:"distanceKm"`
		} `json:"cities"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Cities, 2)
	assert.Equal(t, "Moscow", out.Cities[0].City)
	assert.Equal(t, "Saint Petersburg", out.Cities[1].City)
	assert.Less(t, out.Cities[0].DistanceKm, out.Cities[1].DistanceKm)
}

func TestNearestCitiesValidation(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	for _, target := range []string{
		"/api/v1/cities/nearest",
		"/api/v1/cities/nearest?lng=abc&lat=10",
		"/api/v1/cities/nearest?lng=200&lat=10",
		"/api/v1/cities/nearest?lng=10&lat=10&k=0",
		"/api/v1/cities/nearest?lng=10&lat=10&k=500",
	} {
		resp, body := get(t, app, target)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
		assert.Contains(t, string(body), `"error":true`)
	}
}

func TestExtent(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/api/v1/extent")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bounds [2][2]float64
	require.NoError(t, json.Unmarshal(body, &bounds))
	assert.InDelta(t, 30.3351-extentPadding, bounds[0][0], 1e-6)
	assert.InDelta(t, 55.7558-extentPadding, bounds[0][1], 1e-6)
	assert.InDelta(t, 49.1221+extentPadding, bounds[1][0], 1e-6)
	assert.InDelta(t, 59.9343+extentPadding, bounds[1][1], 1e-6)
}

func TestEmptyDatasetStillRenders(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, body := get(t, app, "/api/v1/participants.geojson")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(body))

	resp, body = get(t, app, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "No participants yet.")

	resp, _ = get(t, app, "/api/v1/extent")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMapPage(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/html"))

	page := string(body)
	assert.Contains(t, page, "5 participants")
	assert.Contains(t, page, "Saint Petersburg")
	assert.Contains(t, page, "(needs coordinates)")
	assert.Contains(t, page, "Anna, Clara")
	assert.Contains(t, page, `"heatmap-radius":30`)
	assert.Less(t, strings.Index(page, "Moscow"), strings.Index(page, "Kazan"))
}

func TestHistoryEndpoint(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	// Missing from/to should return 400.
	resp, _ := get(t, app, "/api/v1/history")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// to before from should also return 400.
	resp, _ = get(t, app, "/api/v1/history?from=2030-01-02T00:00:00Z&to=2030-01-01T00:00:00Z")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp, _ = get(t, app, "/api/v1/history?from=0&to=1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	now := time.Now().UTC()
	from := now.Add(-time.Hour).Format(time.RFC3339)
	to := now.Add(time.Hour).Format(time.RFC3339)
	resp, body := get(t, app, "/api/v1/history?from="+from+"&to="+to)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Snapshots []atlas.SnapshotSummary `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Snapshots, 1)
	assert.Equal(t, 5, out.Snapshots[0].Participants)
	assert.Equal(t, 4, out.Snapshots[0].Cities)
}

func TestReloadEndpoint(t *testing.T) {
	app, svc := newTestApp(t, testDataset)
	before := svc.Current().ID

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary atlas.SnapshotSummary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.NotEqual(t, before, summary.ID)
	assert.Equal(t, svc.Current().ID, summary.ID)
}

func TestReloadEndpointReportsLoadFailure(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "failed to load dataset")
}

func TestHealth(t *testing.T) {
	app, svc := newTestApp(t, testDataset)

	resp, body := get(t, app, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "participant-map", health["service"])
	assert.Equal(t, svc.Current().ID, health["snapshot"])
	assert.Equal(t, false, health["degraded"])
}

func TestHealthReportsDegradedSnapshot(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, body := get(t, app, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, true, health["degraded"])
}

func TestQRCode(t *testing.T) {
	app, _ := newTestApp(t, testDataset)

	resp, body := get(t, app, "/qr.png?url=https://example.org/map")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))

	resp, _ = get(t, app, "/qr.png?url=not-a-url")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
