// Package config loads process configuration from the environment. Plain
// os.Getenv with defaults so main stays lean; unset infrastructure sections
// select the in-process fallbacks (memory stores, in-process locks, no audit
// mirror), which is the dev and test posture.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platstrings "labfhir/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	LogLevel string

	HTTP     HTTP
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Auth     Auth
	Storage  Storage
	Pipeline Pipeline
}

// HTTP captures server-level settings.
type HTTP struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Postgres selects the durable store. An empty DSN runs on memory stores.
type Postgres struct {
	DSN string
}

// Redis selects the distributed report lock. Empty URL uses in-process locks.
type Redis struct {
	URL     string
	LockTTL time.Duration
}

// Kafka selects the audit event mirror. No brokers, no mirror.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Auth gates the API. Both mechanisms disabled leaves the API open, which is
// only acceptable for dev and test deployments.
type Auth struct {
	// JWTSigningKey enables bearer-token auth when non-empty.
	JWTSigningKey string
	JWTIssuer     string
	// APIKeyHashes holds bcrypt hashes of accepted X-API-Key values.
	APIKeyHashes []string
}

// Storage locates the original-document store. Empty root keeps documents in
// memory.
type Storage struct {
	DocumentRoot string
}

// Pipeline tunes orchestrator behavior.
type Pipeline struct {
	VerifyParallelism int
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		LogLevel: getenv("LABFHIR_LOG_LEVEL", "info"),
		HTTP: HTTP{
			Addr:            getenv("LABFHIR_ADDR", ":8080"),
			RequestTimeout:  getduration("LABFHIR_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getduration("LABFHIR_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Postgres: Postgres{
			DSN: os.Getenv("LABFHIR_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:     os.Getenv("LABFHIR_REDIS_URL"),
			LockTTL: getduration("LABFHIR_LOCK_TTL", 30*time.Second),
		},
		Kafka: Kafka{
			Brokers:    getlist("LABFHIR_KAFKA_BROKERS"),
			AuditTopic: getenv("LABFHIR_KAFKA_AUDIT_TOPIC", "labfhir.audit.events"),
		},
		Auth: Auth{
			JWTSigningKey: os.Getenv("LABFHIR_JWT_SIGNING_KEY"),
			JWTIssuer:     getenv("LABFHIR_JWT_ISSUER", "labfhir"),
			APIKeyHashes:  getlist("LABFHIR_API_KEY_HASHES"),
		},
		Storage: Storage{
			DocumentRoot: os.Getenv("LABFHIR_DOCUMENT_ROOT"),
		},
		Pipeline: Pipeline{
			VerifyParallelism: getint("LABFHIR_VERIFY_PARALLELISM", 4),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getlist(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return platstrings.DedupeAndTrim(strings.Split(v, ","))
}
