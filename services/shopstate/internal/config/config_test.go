package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, 10, cfg.RecentlyViewedLimit)
	assert.Equal(t, time.Duration(0), cfg.SlotTTL())
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout())
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STORAGE_BACKEND":       "postgres",
		"SLOT_TTL_HOURS":        "720",
		"RECENTLY_VIEWED_LIMIT": "20",
		"KAFKA_BROKERS":         "k1:9092,k2:9092",
		"SHARE_ORIGIN":          "https://maysa.ir",
	})

	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 720*time.Hour, cfg.SlotTTL())
	assert.Equal(t, 20, cfg.RecentlyViewedLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "https://maysa.ir", cfg.ShareOrigin)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port", map[string]string{"SHOPSTATE_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"backend", map[string]string{"STORAGE_BACKEND": "sqlite"}, "STORAGE_BACKEND"},
		{"ttl", map[string]string{"SLOT_TTL_HOURS": "-1"}, "SLOT_TTL_HOURS"},
		{"recent limit", map[string]string{"RECENTLY_VIEWED_LIMIT": "0"}, "RECENTLY_VIEWED_LIMIT"},
		{"catalog url", map[string]string{"CATALOG_BASE_URL": "catalog"}, "CATALOG_BASE_URL"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2.0"}, "OTEL_SAMPLE_RATE"},
		{"not a number", map[string]string{"REDIS_PORT": "six"}, "load shopstate config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.env)

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("SHOPSTATE_HTTP_PORT", "9100")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
}
