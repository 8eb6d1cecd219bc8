package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "labfhir.audit.events", cfg.Kafka.AuditTopic)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 4, cfg.Pipeline.VerifyParallelism)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LABFHIR_ADDR", ":9090")
	t.Setenv("LABFHIR_LOG_LEVEL", "debug")
	t.Setenv("LABFHIR_POSTGRES_DSN", "postgres://localhost/labfhir")
	t.Setenv("LABFHIR_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,kafka-1:9092,")
	t.Setenv("LABFHIR_LOCK_TTL", "45s")
	t.Setenv("LABFHIR_VERIFY_PARALLELISM", "16")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://localhost/labfhir", cfg.Postgres.DSN)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 45*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 16, cfg.Pipeline.VerifyParallelism)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LABFHIR_LOCK_TTL", "not-a-duration")
	t.Setenv("LABFHIR_VERIFY_PARALLELISM", "many")

	cfg := FromEnv()

	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 4, cfg.Pipeline.VerifyParallelism)
}
