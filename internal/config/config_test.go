package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TRAIL_FILE", "TRAIL_NAME", "SPEED_MPS", "TICK_INTERVAL_MS", "START_LAT", "START_LON",
	"NATS_URL", "LOG_NATS_SUBJECTS", "METRICS_ADDR", "GEOJSON_OUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cami-de-sant-jaume.kml", cfg.TrailFile)
	assert.Equal(t, "Cami de Sant Jaume", cfg.TrailName)
	assert.Equal(t, 20.0, cfg.SpeedMps)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Nil(t, cfg.StartLat)
	assert.Empty(t, cfg.NATSURL)
	assert.False(t, cfg.LogNATSSubjects)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRAIL_FILE", "montserrat.gpx")
	t.Setenv("SPEED_MPS", "1.4")
	t.Setenv("TICK_INTERVAL_MS", "100")
	t.Setenv("START_LAT", "41.59")
	t.Setenv("START_LON", "1.83")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("LOG_NATS_SUBJECTS", "yes")
	t.Setenv("METRICS_ADDR", ":9102")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "montserrat.gpx", cfg.TrailFile)
	assert.Equal(t, 1.4, cfg.SpeedMps)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	require.NotNil(t, cfg.StartLat)
	assert.Equal(t, 41.59, *cfg.StartLat)
	assert.Equal(t, 1.83, *cfg.StartLon)
	assert.True(t, cfg.LogNATSSubjects)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unparsable speed", env: map[string]string{"SPEED_MPS": "fast"}},
		{name: "zero speed", env: map[string]string{"SPEED_MPS": "0"}},
		{name: "negative tick", env: map[string]string{"TICK_INTERVAL_MS": "-5"}},
		{name: "lat without lon", env: map[string]string{"START_LAT": "41"}},
		{name: "lat out of range", env: map[string]string{"START_LAT": "91", "START_LON": "0"}},
		{name: "bad nats url", env: map[string]string{"NATS_URL": "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
