package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkscope-backend/domain/services"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, SourceMemory, cfg.SourceMode)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, int64(400), cfg.BloomMillis)
	assert.Equal(t, services.DefaultTuning(), cfg.Tuning)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("FRAME_INTERVAL_MS", "16")
	t.Setenv("DEFAULT_VIEWPORT_WIDTH", "1920")
	t.Setenv("ENABLE_CORS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 1920.0, cfg.DefaultWidth)
	assert.False(t, cfg.EnableCORS)
}

func TestLoadConfigHTTPSourceRequiresURL(t *testing.T) {
	t.Setenv("FINDING_SOURCE", "http")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FINDING_SOURCE_URL")

	t.Setenv("FINDING_SOURCE_URL", "http://collector:9000")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SourceHTTP, cfg.SourceMode)
}

func TestLoadConfigRejectsUnknownSource(t *testing.T) {
	t.Setenv("FINDING_SOURCE", "carrier-pigeon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadTuningOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repulsion: 12000\nrest_length: 150\n"), 0o600))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 12000.0, tuning.Repulsion)
	assert.Equal(t, 150.0, tuning.RestLength)
	// Fields the file does not name keep their defaults.
	assert.Equal(t, services.DefaultTuning().Damping, tuning.Damping)
	assert.Equal(t, services.DefaultTuning().SpringConstant, tuning.SpringConstant)
}

func TestLoadTuningRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("damping: 1.5\n"), 0o600))

	_, err := LoadTuning(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "damping")
}

func TestLoadTuningMissingFile(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateTuning(t *testing.T) {
	base := services.DefaultTuning()
	require.NoError(t, ValidateTuning(base))

	cases := []struct {
		name   string
		mutate func(*services.Tuning)
	}{
		{"zero damping", func(t *services.Tuning) { t.Damping = 0 }},
		{"damping at one", func(t *services.Tuning) { t.Damping = 1 }},
		{"negative repulsion", func(t *services.Tuning) { t.Repulsion = -1 }},
		{"zero min distance", func(t *services.Tuning) { t.MinDistance = 0 }},
		{"zero spring constant", func(t *services.Tuning) { t.SpringConstant = 0 }},
		{"zero rest length", func(t *services.Tuning) { t.RestLength = 0 }},
		{"zero settle threshold", func(t *services.Tuning) { t.SettleThreshold = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tuning := base
			tc.mutate(&tuning)
			assert.Error(t, ValidateTuning(tuning))
		})
	}
}
