package property

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

// PostgresStore persists property records. Execute wraps the validate-mutate
// pair in a transaction with SELECT ... FOR UPDATE.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, record *Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO properties (id, metadata, owner_address, fractionalized, created_at, updated_at)
		 VALUES ($1, $2, $3, FALSE, $4, $5)`,
		uuid.UUID(record.ID), record.Metadata, record.Owner.String(),
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.PropertyID) (*Record, error) {
	return s.scanOne(ctx, s.pool, id, false)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.Address) ([]*Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, metadata, owner_address, verification_id, valuation_id, fractionalized, created_at, updated_at
		 FROM properties WHERE owner_address = $1 ORDER BY created_at`,
		owner.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Execute(ctx context.Context, id domain.PropertyID, validate func(*Record) error, mutate func(*Record)) (*Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	record, err := s.scanOne(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	mutate(record)

	var verID, valID *uuid.UUID
	if record.VerificationID != nil {
		v := uuid.UUID(*record.VerificationID)
		verID = &v
	}
	if record.ValuationID != nil {
		v := uuid.UUID(*record.ValuationID)
		valID = &v
	}
	_, err = tx.Exec(ctx,
		`UPDATE properties
		 SET verification_id = $2, valuation_id = $3, fractionalized = $4, updated_at = $5
		 WHERE id = $1`,
		uuid.UUID(id), verID, valID, record.Fractionalized, record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return record, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) scanOne(ctx context.Context, q querier, id domain.PropertyID, forUpdate bool) (*Record, error) {
	query := `SELECT id, metadata, owner_address, verification_id, valuation_id, fractionalized, created_at, updated_at
		 FROM properties WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	record, err := scanRecord(q.QueryRow(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}
	return record, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		record Record
		recID  uuid.UUID
		owner  string
		verID  *uuid.UUID
		valID  *uuid.UUID
	)
	err := row.Scan(&recID, &record.Metadata, &owner, &verID, &valID,
		&record.Fractionalized, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.ID = domain.PropertyID(recID)
	record.Owner = domain.Address(owner)
	if verID != nil {
		v := domain.VerificationID(*verID)
		record.VerificationID = &v
	}
	if valID != nil {
		v := domain.ValuationID(*valID)
		record.ValuationID = &v
	}
	return &record, nil
}
