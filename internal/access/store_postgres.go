package access

import (
	"context"
	"fmt"

	"landshare/internal/platform/postgres"
	"landshare/pkg/domain"
	"landshare/pkg/requestcontext"
)

// PostgresStore persists role membership in the access_roles table.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Grant(ctx context.Context, role Role, addr domain.Address) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO access_roles (address, role, granted_at) VALUES ($1, $2, $3)
		 ON CONFLICT (address, role) DO NOTHING`,
		addr.String(), string(role), requestcontext.Now(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("grant %s: %w", role, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, role Role, addr domain.Address) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM access_roles WHERE address = $1 AND role = $2`,
		addr.String(), string(role),
	)
	if err != nil {
		return false, fmt.Errorf("revoke %s: %w", role, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Holds(ctx context.Context, role Role, addr domain.Address) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM access_roles WHERE address = $1 AND role = $2)`,
		addr.String(), string(role),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", role, err)
	}
	return exists, nil
}

func (s *PostgresStore) Members(ctx context.Context, role Role) ([]domain.Address, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT address FROM access_roles WHERE role = $1 ORDER BY granted_at`,
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", role, err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, domain.Address(addr))
	}
	return out, rows.Err()
}
