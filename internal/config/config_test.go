package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, defaultPollInterval, cfg.PollInterval)
	assert.Equal(t, defaultThreshold, cfg.Quality.Threshold)
	assert.Equal(t, defaultBucket, cfg.Storage.Bucket)
	assert.ErrorIs(t, cfg.Validate(), ErrDatabaseURL)
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := []byte(`
listen_addr: ":9090"
database_url: "postgres://yaml"
compose_workers: 2
poll_interval: 2s
storage:
  bucket: certs
  allowed_domain: example.com
quality:
  threshold: 55
`)
	require.NoError(t, os.WriteFile(path, yml, 0o600))
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("COMPOSE_WORKERS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.ComposeWorkers)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "certs", cfg.Storage.Bucket)
	assert.Equal(t, "example.com", cfg.Storage.AllowedDomain)
	assert.Equal(t, 55, cfg.Quality.Threshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("QUALITY_THRESHOLD=81\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	// t.Setenv restores the original value; godotenv never overrides a set variable.
	t.Setenv("QUALITY_THRESHOLD", "")
	require.NoError(t, os.Unsetenv("QUALITY_THRESHOLD"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 81, cfg.Quality.Threshold)
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x", Quality: Quality{Threshold: 140}}
	assert.Error(t, cfg.Validate())
}
