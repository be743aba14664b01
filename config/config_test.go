package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.Geo.Backend)
	assert.Equal(t, 10.0, cfg.Geo.DefaultRadiusKm)
	assert.Equal(t, "0.15", cfg.Ledger.FeeRate)
	assert.Equal(t, int64(100), cfg.Ledger.MinWithdrawal)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GIGMATCH_SERVER_PORT", "9090")
	t.Setenv("GIGMATCH_STORAGE_DRIVER", "memory")
	t.Setenv("GIGMATCH_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("GIGMATCH_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gigmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: memory
geo:
  backend: redis
  default_radius_km: 25
ledger:
  min_withdrawal: 500
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "redis", cfg.Geo.Backend)
	assert.Equal(t, 25.0, cfg.Geo.DefaultRadiusKm)
	assert.Equal(t, int64(500), cfg.Ledger.MinWithdrawal)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("GIGMATCH_STORAGE_DRIVER", "sqlite")
	_, err := Load("")
	assert.ErrorContains(t, err, "storage.driver")
}

func TestLoad_Tracing(t *testing.T) {
	t.Setenv("GIGMATCH_TRACING_EXPORTER", "otlp")
	t.Setenv("GIGMATCH_TRACING_ENDPOINT", "collector:4318")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, "collector:4318", cfg.Tracing.Endpoint)

	t.Setenv("GIGMATCH_TRACING_EXPORTER", "jaeger")
	_, err = Load("")
	assert.ErrorContains(t, err, "tracing.exporter")
}
