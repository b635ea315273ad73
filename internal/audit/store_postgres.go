package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"landshare/internal/platform/postgres"
	"landshare/pkg/domain"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO audit_events (id, action, actor, request_id, client_ip, device, details, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Action, event.Actor.String(), event.RequestID,
		event.ClientIP, event.Device, details, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByActor(ctx context.Context, actor domain.Address) ([]Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, action, actor, request_id, client_ip, device, details, occurred_at
		 FROM audit_events WHERE actor = $1 ORDER BY id`,
		actor.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e       Event
			actorS  string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &actorS, &e.RequestID, &e.ClientIP, &e.Device, &details, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Actor = domain.Address(actorS)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
