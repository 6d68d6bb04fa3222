package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	TrailFile       string        `validate:"required"`
	TrailName       string        `validate:"required"`
	SpeedMps        float64       `validate:"gt=0,lte=1000"`
	TickInterval    time.Duration `validate:"gte=1ms"`
	StartLat        *float64      `validate:"omitempty,gte=-90,lte=90"`
	StartLon        *float64      `validate:"omitempty,gte=-180,lte=180"`
	NATSURL         string        `validate:"omitempty,url"`
	LogNATSSubjects bool
	MetricsAddr     string `validate:"omitempty,hostname_port"`
	GeoJSONOut      string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		TrailFile: getenvDefault("TRAIL_FILE", "cami-de-sant-jaume.kml"),
		TrailName: getenvDefault("TRAIL_NAME", "Cami de Sant Jaume"),
	}

	// Ground speed in meters per second
	if v := os.Getenv("SPEED_MPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SPEED_MPS: %q", v)
		}
		cfg.SpeedMps = f
	} else {
		cfg.SpeedMps = 20
	}

	// Tick interval
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TICK_INTERVAL_MS: %q", v)
		}
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	} else {
		cfg.TickInterval = 50 * time.Millisecond
	}

	// Optional start coordinate; both or neither
	lat, err := getenvFloat("START_LAT")
	if err != nil {
		return nil, err
	}
	lon, err := getenvFloat("START_LON")
	if err != nil {
		return nil, err
	}
	if (lat == nil) != (lon == nil) {
		return nil, fmt.Errorf("START_LAT and START_LON must be set together")
	}
	cfg.StartLat, cfg.StartLon = lat, lon

	// Empty disables the NATS sink.
	cfg.NATSURL = os.Getenv("NATS_URL")

	// Debug logging for NATS publish subjects
	if v := os.Getenv("LOG_NATS_SUBJECTS"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.LogNATSSubjects = true
		default:
			cfg.LogNATSSubjects = false
		}
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.GeoJSONOut = os.Getenv("GEOJSON_OUT")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string) (*float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", k, v)
	}
	return &f, nil
}
