// Package postgres owns the pgx connection pool and the schema the stores
// depend on. Schema setup is idempotent so dev and test environments can
// bootstrap themselves.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool with health checking.
type Pool struct {
	*pgxpool.Pool
}

// New connects and pings. Returns nil if url is empty (postgres not
// configured; callers fall back to memory stores).
func New(ctx context.Context, url string) (*Pool, error) {
	if url == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// Health checks the connection.
func (p *Pool) Health(ctx context.Context) error {
	return p.Ping(ctx)
}

// EnsureSchema creates the settlement tables if they do not exist.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS access_roles (
		address TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('verifier', 'valuer')),
		granted_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (address, role)
	)`,
	`CREATE TABLE IF NOT EXISTS verification_records (
		id UUID PRIMARY KEY,
		property_id UUID NOT NULL,
		issuer TEXT NOT NULL,
		document_pointer BYTEA NOT NULL,
		issued_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS valuation_records (
		id UUID PRIMARY KEY,
		property_id UUID NOT NULL,
		issuer TEXT NOT NULL,
		amount BIGINT NOT NULL,
		currency TEXT NOT NULL,
		document_pointer BYTEA NOT NULL,
		issued_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id UUID PRIMARY KEY,
		metadata JSONB NOT NULL,
		owner_address TEXT NOT NULL,
		verification_id UUID,
		valuation_id UUID,
		fractionalized BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties (owner_address)`,
	`CREATE TABLE IF NOT EXISTS share_ledgers (
		property_id UUID PRIMARY KEY,
		total_supply BIGINT NOT NULL,
		escrowed BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS share_balances (
		property_id UUID NOT NULL REFERENCES share_ledgers (property_id),
		holder TEXT NOT NULL,
		balance BIGINT NOT NULL CHECK (balance >= 0),
		PRIMARY KEY (property_id, holder)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_share_balances_holder ON share_balances (holder)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id UUID PRIMARY KEY,
		property_id UUID NOT NULL,
		seller TEXT NOT NULL,
		buyer TEXT,
		shares_locked BIGINT NOT NULL,
		price_per_share BIGINT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('open', 'filled', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings (seller)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_property ON listings (property_id, status)`,
	`CREATE TABLE IF NOT EXISTS dividend_pools (
		property_id UUID PRIMARY KEY,
		total_supply BIGINT NOT NULL,
		total_deposited BIGINT NOT NULL DEFAULT 0,
		distribution_index BIGINT NOT NULL DEFAULT 0,
		carry BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dividend_claims (
		property_id UUID NOT NULL REFERENCES dividend_pools (property_id),
		holder TEXT NOT NULL,
		claimed_index BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (property_id, holder)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		request_id TEXT,
		client_ip TEXT,
		device TEXT,
		details JSONB,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_actor ON audit_events (actor, occurred_at)`,
}
