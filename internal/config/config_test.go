package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("PROVIDER_TIMEOUT", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "activity_events", cfg.ConsumerTopic)
	require.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	require.Equal(t, StorePostgres, cfg.StoreBackend)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " broker-a:9092, ,broker-b:9092 ")
	t.Setenv("CONSUMER_TOPIC", "activity.queue")
	t.Setenv("CONSUMER_WORKERS", "3")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("PROVIDER_API_KEY", "secret")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("DLQ_MAX_RETRIES", "not-a-number")

	cfg := Load()
	require.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "activity.queue", cfg.ConsumerTopic)
	require.Equal(t, 3, cfg.ConsumerWorkers)
	require.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	require.Equal(t, "secret", cfg.ProviderAPIKey)
	require.Equal(t, StoreRedis, cfg.StoreBackend)
	require.Equal(t, 5, cfg.DLQMaxRetries, "invalid ints fall back to the default")
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Config{
		ProviderTimeout: 0,
		StoreBackend:    "mongo",
		ConsumerWorkers: 1,
	}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PROVIDER_URL is required")
	require.Contains(t, err.Error(), "PROVIDER_TIMEOUT must be positive")
	require.Contains(t, err.Error(), "KAFKA_BROKERS is required")
	require.Contains(t, err.Error(), `unknown STORE_BACKEND "mongo"`)
}
