package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen-dispatcher/internal/config"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeTemp(t, `{
		"capacity": {"hot": 10, "cold": 10, "frozen": 10, "overflow": 15},
		"intake_orders_per_sec": 2,
		"pickup_min_sec": 2,
		"pickup_max_sec": 6,
		"cleanup_delay": 0.5
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Capacity[config.Hot])
	assert.Equal(t, 15, cfg.Capacity[config.Overflow])
	assert.Equal(t, 2, cfg.IntakeOrdersPerSec)
	assert.Equal(t, 0.5, cfg.CleanupDelay)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeTemp(t, `{
		"capacity": {"hot": 1, "cold": 1, "frozen": 1, "overflow": 1},
		"intake_orders_per_sec": 1,
		"pickup_min_sec": 1,
		"pickup_max_sec": 1,
		"cleanup_delay": 1,
		"unknown_field": true
	}`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingCapacityKeyRejected(t *testing.T) {
	path := writeTemp(t, `{
		"capacity": {"hot": 1, "cold": 1, "frozen": 1},
		"intake_orders_per_sec": 1,
		"pickup_min_sec": 1,
		"pickup_max_sec": 1,
		"cleanup_delay": 1
	}`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_PickupMinGreaterThanMaxRejected(t *testing.T) {
	path := writeTemp(t, `{
		"capacity": {"hot": 1, "cold": 1, "frozen": 1, "overflow": 1},
		"intake_orders_per_sec": 1,
		"pickup_min_sec": 10,
		"pickup_max_sec": 5,
		"cleanup_delay": 1
	}`)

	_, err := config.Load(path)
	assert.Error(t, err)
}
