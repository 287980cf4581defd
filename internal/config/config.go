package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/dataset"
)

const DefaultStyleURL = "https://demotiles.maplibre.org/style.json"

type AppConfig struct {
	// DataPath is the JSON dataset shared by the server and the append command.
	DataPath string

	// ReloadInterval controls how often the server re-reads the dataset
	// (negative disables reloading).
	ReloadInterval time.Duration

	// In-memory snapshot retention.
	StoreMaxHistory int           // max number of snapshots kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Map is the view handed to the browser.
	Map atlas.MapView

	GeocoderAPIKey string
	HTTPTimeout    time.Duration

	Port string
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// DataPath returns the dataset location from the environment (or .env),
// for commands that do not need the rest of the configuration.
func DataPath() string {
	_ = godotenv.Load()
	return getenvDefault("DATA_PATH", dataset.DefaultPath)
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.DataPath = getenvDefault("DATA_PATH", dataset.DefaultPath)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.ReloadInterval, err = getenvDuration("RELOAD_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Store retention: a day of snapshots at the default interval.
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 288); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	view, err := loadMapView()
	if err != nil {
		return nil, err
	}
	cfg.Map = view

	return cfg, nil
}

func loadMapView() (atlas.MapView, error) {
	view := atlas.MapView{
		StyleURL: getenvDefault("MAP_STYLE_URL", DefaultStyleURL),
		Paint:    atlas.DefaultHeatmapPaint(),
	}

	center, err := atlas.ParseCoordinates(getenvDefault("MAP_CENTER", "37.6173,55.7558"))
	if err != nil {
		return view, fmt.Errorf("invalid MAP_CENTER: %w", err)
	}
	view.Center = center

	if view.Zoom, err = getenvFloat("MAP_ZOOM", 4); err != nil {
		return view, err
	}

	if raw := os.Getenv("MAP_MAX_BOUNDS"); raw != "" {
		b, err := atlas.ParseBounds(raw)
		if err != nil {
			return view, fmt.Errorf("invalid MAP_MAX_BOUNDS: %w", err)
		}
		if !b.Contains(view.Center) {
			return view, fmt.Errorf("invalid MAP_MAX_BOUNDS: center %v is outside", view.Center)
		}
		view.MaxBounds = &b
	}

	paint := &view.Paint
	for key, dst := range map[string]*float64{
		"HEATMAP_WEIGHT":    &paint.Weight,
		"HEATMAP_INTENSITY": &paint.Intensity,
		"HEATMAP_RADIUS":    &paint.Radius,
		"HEATMAP_OPACITY":   &paint.Opacity,
	} {
		if *dst, err = getenvFloat(key, *dst); err != nil {
			return view, err
		}
	}

	if raw := os.Getenv("HEATMAP_COLOR_STOPS"); raw != "" {
		stops, err := atlas.ParseStops(raw)
		if err != nil {
			return view, fmt.Errorf("invalid HEATMAP_COLOR_STOPS: %w", err)
		}
		paint.Stops = stops
	}

	if err := validate.Struct(view); err != nil {
		return view, fmt.Errorf("invalid map configuration: %w", err)
	}
	return view, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
