package ledger

import (
	"context"
	"sync"

	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// Store persists share ledgers. Execute runs validate then mutate against
// the current ledger state atomically; concurrent Executes against the same
// property serialize.
type Store interface {
	Create(ctx context.Context, ledger *ShareLedger) error
	FindByProperty(ctx context.Context, propertyID domain.PropertyID) (*ShareLedger, error)
	ListByHolder(ctx context.Context, holder domain.Address) ([]*ShareLedger, error)
	Execute(ctx context.Context, propertyID domain.PropertyID,
		validate func(*ShareLedger) error,
		mutate func(*ShareLedger) error,
	) (*ShareLedger, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	ledgers map[domain.PropertyID]*ShareLedger
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[domain.PropertyID]*ShareLedger)}
}

func (s *MemoryStore) Create(_ context.Context, ledger *ShareLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[ledger.PropertyID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.ledgers[ledger.PropertyID] = ledger.Clone()
	return nil
}

func (s *MemoryStore) FindByProperty(_ context.Context, propertyID domain.PropertyID) (*ShareLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledger, ok := s.ledgers[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return ledger.Clone(), nil
}

func (s *MemoryStore) ListByHolder(_ context.Context, holder domain.Address) ([]*ShareLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ShareLedger
	for _, ledger := range s.ledgers {
		if ledger.BalanceOf(holder) > 0 {
			out = append(out, ledger.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Execute(
	_ context.Context,
	propertyID domain.PropertyID,
	validate func(*ShareLedger) error,
	mutate func(*ShareLedger) error,
) (*ShareLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(ledger.Clone()); err != nil {
			return nil, err
		}
	}
	updated := ledger.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	s.ledgers[propertyID] = updated
	return updated.Clone(), nil
}
