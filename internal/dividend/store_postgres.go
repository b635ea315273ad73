package dividend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"landshare/internal/platform/postgres"
	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// PostgresStore persists pools across dividend_pools and dividend_claims.
// Execute locks the pool row FOR UPDATE; per-holder claim rows are upserted
// only for holders whose claimed index changed.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, pool *Pool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO dividend_pools (property_id, total_supply, total_deposited, distribution_index, carry, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(pool.PropertyID), int64(pool.TotalSupply), int64(pool.TotalDeposited),
		int64(pool.DistributionIndex), int64(pool.Carry), pool.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create pool: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByProperty(ctx context.Context, propertyID domain.PropertyID) (*Pool, error) {
	return s.load(ctx, s.pool, propertyID, false)
}

func (s *PostgresStore) Execute(
	ctx context.Context,
	propertyID domain.PropertyID,
	validate func(*Pool) error,
	mutate func(*Pool) error,
) (*Pool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pool, err := s.load(ctx, tx, propertyID, true)
	if err != nil {
		return nil, err
	}
	before := pool.Clone()
	if validate != nil {
		if err := validate(pool.Clone()); err != nil {
			return nil, err
		}
	}
	if err := mutate(pool); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE dividend_pools
		 SET total_deposited = $2, distribution_index = $3, carry = $4
		 WHERE property_id = $1`,
		uuid.UUID(propertyID), int64(pool.TotalDeposited),
		int64(pool.DistributionIndex), int64(pool.Carry),
	)
	if err != nil {
		return nil, fmt.Errorf("update pool: %w", err)
	}
	for holder, idx := range pool.Claimed {
		if before.Claimed[holder] == idx {
			continue
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO dividend_claims (property_id, holder, claimed_index)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (property_id, holder) DO UPDATE SET claimed_index = EXCLUDED.claimed_index`,
			uuid.UUID(propertyID), holder.String(), int64(idx),
		)
		if err != nil {
			return nil, fmt.Errorf("upsert claim: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return pool, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) load(ctx context.Context, q querier, propertyID domain.PropertyID, forUpdate bool) (*Pool, error) {
	query := `SELECT total_supply, total_deposited, distribution_index, carry, created_at
		 FROM dividend_pools WHERE property_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	pool := &Pool{
		PropertyID: propertyID,
		Claimed:    make(map[domain.Address]uint64),
	}
	var supply, deposited, index, carry int64
	err := q.QueryRow(ctx, query, uuid.UUID(propertyID)).
		Scan(&supply, &deposited, &index, &carry, &pool.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pool: %w", err)
	}
	pool.TotalSupply = uint64(supply)
	pool.TotalDeposited = uint64(deposited)
	pool.DistributionIndex = uint64(index)
	pool.Carry = uint64(carry)

	rows, err := q.Query(ctx,
		`SELECT holder, claimed_index FROM dividend_claims WHERE property_id = $1`,
		uuid.UUID(propertyID),
	)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			holder string
			idx    int64
		)
		if err := rows.Scan(&holder, &idx); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		pool.Claimed[domain.Address(holder)] = uint64(idx)
	}
	return pool, rows.Err()
}
