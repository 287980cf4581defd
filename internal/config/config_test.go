package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/dataset"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, dataset.DefaultPath, cfg.DataPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.ReloadInterval)
	assert.Equal(t, 288, cfg.StoreMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)

	assert.Equal(t, dataset.Coordinates{37.6173, 55.7558}, cfg.Map.Center)
	assert.Equal(t, 4.0, cfg.Map.Zoom)
	assert.Equal(t, DefaultStyleURL, cfg.Map.StyleURL)
	assert.Nil(t, cfg.Map.MaxBounds)
	assert.Equal(t, atlas.DefaultHeatmapPaint(), cfg.Map.Paint)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATA_PATH", "/tmp/people.json")
	t.Setenv("RELOAD_INTERVAL", "30s")
	t.Setenv("STORE_MAX_HISTORY", "12")
	t.Setenv("MAP_CENTER", "49.1221,55.7887")
	t.Setenv("MAP_ZOOM", "6.5")
	t.Setenv("MAP_MAX_BOUNDS", "19,41,180,82")
	t.Setenv("HEATMAP_RADIUS", "20")
	t.Setenv("HEATMAP_COLOR_STOPS", `{"1": "red", "0": "blue"}`)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/people.json", cfg.DataPath)
	assert.Equal(t, 30*time.Second, cfg.ReloadInterval)
	assert.Equal(t, 12, cfg.StoreMaxHistory)
	assert.Equal(t, dataset.Coordinates{49.1221, 55.7887}, cfg.Map.Center)
	assert.Equal(t, 6.5, cfg.Map.Zoom)
	require.NotNil(t, cfg.Map.MaxBounds)
	assert.Equal(t, dataset.Coordinates{19, 41}, cfg.Map.MaxBounds.SouthWest)
	assert.Equal(t, 20.0, cfg.Map.Paint.Radius)
	assert.Equal(t, atlas.Stops{{Density: 0, Color: "blue"}, {Density: 1, Color: "red"}}, cfg.Map.Paint.Stops)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"interval":    {"RELOAD_INTERVAL", "often"},
		"center":      {"MAP_CENTER", "200,10"},
		"zoom":        {"MAP_ZOOM", "30"},
		"zoom number": {"MAP_ZOOM", "far"},
		"style":       {"MAP_STYLE_URL", "not a url"},
		"bounds":      {"MAP_MAX_BOUNDS", "180,82,19,41"},
		"outside":     {"MAP_MAX_BOUNDS", "0,0,10,10"},
		"opacity":     {"HEATMAP_OPACITY", "1.5"},
		"radius":      {"HEATMAP_RADIUS", "0"},
		"stops":       {"HEATMAP_COLOR_STOPS", `{"0": "blue"}`},
		"history":     {"STORE_MAX_HISTORY", "lots"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
