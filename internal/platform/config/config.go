package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultProbeMonths bounds how many recent month buckets the
// time-partitioned backend probes for point lookups. Sessions whose start
// month has aged past the horizon become unreachable by id-only lookup;
// this is a deliberate scalability trade-off, not a bug.
const DefaultProbeMonths = 3

// RedisConfig holds connection settings for the time-partitioned backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoConfig holds connection settings for the document backend.
type MongoConfig struct {
	URI      string
	Database string
}

// PostgresConfig holds connection settings for the durable audit store.
type PostgresConfig struct {
	DSN string
}

// Config captures process-level configuration for the session core and the
// sweeper. Values come from the environment so main stays lean.
type Config struct {
	Production bool

	// BackendPriority orders store backends for factory selection,
	// e.g. "redis,mongo,memory". The memory backend is always the
	// final fallback whether listed or not.
	BackendPriority []string

	// TablePrefix isolates test/dev instances sharing one backing
	// account; applied to table/collection base names, never to keys.
	TablePrefix string

	// ProbeMonths is the partition probe horizon (see DefaultProbeMonths).
	ProbeMonths int

	// ExpiryThreshold is how long a session may stay live before a sweep
	// ends it.
	ExpiryThreshold time.Duration

	// SweepLookback bounds how far back the sweeper queries for
	// candidate sessions.
	SweepLookback time.Duration

	ConnectRetries    int
	ConnectRetryDelay time.Duration

	// MetricsAddr, when set, exposes prometheus metrics from the sweeper.
	MetricsAddr string

	Redis    RedisConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
}

// FromEnv builds a Config from environment variables with dev-friendly
// defaults.
func FromEnv() Config {
	cfg := Config{
		Production:        os.Getenv("STATIONLOG_ENV") == "production",
		BackendPriority:   splitList(envOr("STATIONLOG_BACKENDS", "redis,mongo,memory")),
		TablePrefix:       os.Getenv("STATIONLOG_TABLE_PREFIX"),
		ProbeMonths:       envInt("STATIONLOG_PROBE_MONTHS", DefaultProbeMonths),
		ExpiryThreshold:   envDuration("STATIONLOG_EXPIRY_THRESHOLD", 12*time.Hour),
		SweepLookback:     envDuration("STATIONLOG_SWEEP_LOOKBACK", 90*24*time.Hour),
		ConnectRetries:    envInt("STATIONLOG_CONNECT_RETRIES", 3),
		ConnectRetryDelay: envDuration("STATIONLOG_CONNECT_RETRY_DELAY", 2*time.Second),
		MetricsAddr:       os.Getenv("STATIONLOG_METRICS_ADDR"),
		Redis: RedisConfig{
			URL:          os.Getenv("STATIONLOG_REDIS_URL"),
			PoolSize:     envInt("STATIONLOG_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("STATIONLOG_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("STATIONLOG_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("STATIONLOG_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("STATIONLOG_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("STATIONLOG_MONGO_URI"),
			Database: envOr("STATIONLOG_MONGO_DATABASE", "stationlog"),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("STATIONLOG_POSTGRES_DSN"),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
