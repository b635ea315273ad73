package ledger

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

// PostgresStore persists share ledgers across the share_ledgers and
// share_balances tables. Execute locks the ledger row FOR UPDATE so that
// concurrent mutations of the same property serialize, then rewrites the
// balance set wholesale; balance sets are small (holders per property) so
// delete-and-reinsert beats diffing.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, ledger *ShareLedger) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO share_ledgers (property_id, total_supply, escrowed, created_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.UUID(ledger.PropertyID), int64(ledger.TotalSupply), int64(ledger.Escrowed), ledger.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create ledger: %w", err)
	}
	if err := insertBalances(ctx, tx, ledger); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByProperty(ctx context.Context, propertyID domain.PropertyID) (*ShareLedger, error) {
	return s.load(ctx, s.pool, propertyID, false)
}

func (s *PostgresStore) ListByHolder(ctx context.Context, holder domain.Address) ([]*ShareLedger, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT property_id FROM share_balances WHERE holder = $1 AND balance > 0 ORDER BY property_id`,
		holder.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var ids []domain.PropertyID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		ids = append(ids, domain.PropertyID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*ShareLedger, 0, len(ids))
	for _, id := range ids {
		ledger, err := s.load(ctx, s.pool, id, false)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger)
	}
	return out, nil
}

func (s *PostgresStore) Execute(
	ctx context.Context,
	propertyID domain.PropertyID,
	validate func(*ShareLedger) error,
	mutate func(*ShareLedger) error,
) (*ShareLedger, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ledger, err := s.load(ctx, tx, propertyID, true)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(ledger.Clone()); err != nil {
			return nil, err
		}
	}
	if err := mutate(ledger); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE share_ledgers SET escrowed = $2 WHERE property_id = $1`,
		uuid.UUID(propertyID), int64(ledger.Escrowed),
	)
	if err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}
	_, err = tx.Exec(ctx,
		`DELETE FROM share_balances WHERE property_id = $1`,
		uuid.UUID(propertyID),
	)
	if err != nil {
		return nil, fmt.Errorf("clear balances: %w", err)
	}
	if err := insertBalances(ctx, tx, ledger); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ledger, nil
}

type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) load(ctx context.Context, q execQuerier, propertyID domain.PropertyID, forUpdate bool) (*ShareLedger, error) {
	query := `SELECT total_supply, escrowed, created_at FROM share_ledgers WHERE property_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	ledger := &ShareLedger{
		PropertyID: propertyID,
		Balances:   make(map[domain.Address]uint64),
	}
	var totalSupply, escrowed int64
	err := q.QueryRow(ctx, query, uuid.UUID(propertyID)).
		Scan(&totalSupply, &escrowed, &ledger.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ledger: %w", err)
	}
	ledger.TotalSupply = uint64(totalSupply)
	ledger.Escrowed = uint64(escrowed)

	rows, err := q.Query(ctx,
		`SELECT holder, balance FROM share_balances WHERE property_id = $1`,
		uuid.UUID(propertyID),
	)
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			holder  string
			balance int64
		)
		if err := rows.Scan(&holder, &balance); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		ledger.Balances[domain.Address(holder)] = uint64(balance)
	}
	return ledger, rows.Err()
}

func insertBalances(ctx context.Context, q execQuerier, ledger *ShareLedger) error {
	for holder, balance := range ledger.Balances {
		_, err := q.Exec(ctx,
			`INSERT INTO share_balances (property_id, holder, balance) VALUES ($1, $2, $3)`,
			uuid.UUID(ledger.PropertyID), holder.String(), int64(balance),
		)
		if err != nil {
			return fmt.Errorf("insert balance: %w", err)
		}
	}
	return nil
}
