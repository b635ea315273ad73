// Package config builds runtime configuration from the environment so main
// stays lean. With no backing services configured the server runs entirely
// on in-memory stores, which is the dev and unit-test mode.
package config

import (
	"os"
	"strings"
	"time"

	"landshare/pkg/domain"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr          string
	JWTSigningKey string

	// AdminAddress holds the platform admin who may mutate the access
	// registry. Required in production; dev default below.
	AdminAddress domain.Address

	// PostgresURL selects pgx-backed stores when non-empty.
	PostgresURL string

	// RedisURL enables the portfolio cache when non-empty.
	RedisURL string

	// KafkaSeeds enables the Kafka audit publisher when non-empty.
	KafkaSeeds []string
	KafkaTopic string

	PortfolioCacheTTL time.Duration
}

// Dev defaults keep the binary runnable with zero environment. Override in
// any real deployment.
const (
	defaultAddr       = ":8080"
	defaultJWTKey     = "dev-secret-key-change-in-production"
	defaultAdmin      = "0x00000000000000000000000000000000000000a1"
	defaultAuditTopic = "landshare.settlement.audit"
)

// FromEnv reads configuration from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("LANDSHARE_ADDR", defaultAddr),
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", defaultJWTKey),
		AdminAddress:      domain.Address(envOr("ADMIN_ADDRESS", defaultAdmin)),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaTopic:        envOr("KAFKA_AUDIT_TOPIC", defaultAuditTopic),
		PortfolioCacheTTL: 30 * time.Second,
	}
	if seeds := os.Getenv("KAFKA_SEEDS"); seeds != "" {
		cfg.KafkaSeeds = strings.Split(seeds, ",")
	}
	if ttl := os.Getenv("PORTFOLIO_CACHE_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			cfg.PortfolioCacheTTL = parsed
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
