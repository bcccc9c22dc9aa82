package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "riskscore", cfg.AppName)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 0.2, cfg.Training.TestRatio)
	assert.Equal(t, uint64(42), cfg.Training.Seed)
	assert.Equal(t, 100, cfg.Training.NumTrees)
	assert.Equal(t, 10*time.Minute, cfg.Redis.FeatureTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/riskscore")
	t.Setenv("TRAIN_SEED", "7")
	t.Setenv("TRAIN_TEST_RATIO", "0.25")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, uint64(7), cfg.Training.Seed)
	assert.Equal(t, 0.25, cfg.Training.TestRatio)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("test ratio", func(t *testing.T) {
		t.Setenv("TRAIN_TEST_RATIO", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})
}
