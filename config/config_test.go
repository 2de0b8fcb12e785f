package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, DefaultDistanceBins(), cfg.DistanceBins)
	assert.Equal(t, "host=localhost port=5432 user=pledge password=pledge123 dbname=pledge_db sslmode=disable", cfg.DSN())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	binsPath := filepath.Join(t.TempDir(), "bins.yaml")
	require.NoError(t, os.WriteFile(binsPath, []byte("bins:\n  - label: near\n    min: 0\n    max: 20\n  - label: far\n    min: 20\n"), 0644))

	t.Setenv("PLEDGE_LOG_LEVEL", "debug")
	t.Setenv("PLEDGE_APP_ENV", "production")
	t.Setenv("PLEDGE_MAX_CONCURRENCY", "8")
	t.Setenv("PLEDGE_DATABASE_URL", "postgres://u:p@db:5432/pledges")
	t.Setenv("PLEDGE_DISTANCE_BINS_PATH", binsPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://u:p@db:5432/pledges", cfg.DSN())

	require.Len(t, cfg.DistanceBins, 2)
	assert.Equal(t, 20.0, cfg.DistanceBins[0].Max)
	assert.True(t, math.IsInf(cfg.DistanceBins[1].Max, 1))
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("PLEDGE_MAX_CONCURRENCY", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestParseDistanceBinsErrors(t *testing.T) {
	tests := map[string]string{
		"empty":    "bins: []\n",
		"no label": "bins:\n  - min: 0\n    max: 5\n",
		"negative": "bins:\n  - label: x\n    min: -1\n    max: 5\n",
		"not yaml": "bins: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDistanceBins([]byte(doc))
			assert.Error(t, err)
		})
	}
}
