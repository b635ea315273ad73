package dividend

import (
	"context"
	"sync"

	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// Store persists dividend pools. Execute runs validate then mutate
// atomically; concurrent deposits and claims on the same pool serialize.
type Store interface {
	Create(ctx context.Context, pool *Pool) error
	FindByProperty(ctx context.Context, propertyID domain.PropertyID) (*Pool, error)
	Execute(ctx context.Context, propertyID domain.PropertyID,
		validate func(*Pool) error,
		mutate func(*Pool) error,
	) (*Pool, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	pools map[domain.PropertyID]*Pool
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pools: make(map[domain.PropertyID]*Pool)}
}

func (s *MemoryStore) Create(_ context.Context, pool *Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pools[pool.PropertyID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.pools[pool.PropertyID] = pool.Clone()
	return nil
}

func (s *MemoryStore) FindByProperty(_ context.Context, propertyID domain.PropertyID) (*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.pools[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return pool.Clone(), nil
}

func (s *MemoryStore) Execute(
	_ context.Context,
	propertyID domain.PropertyID,
	validate func(*Pool) error,
	mutate func(*Pool) error,
) (*Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(pool.Clone()); err != nil {
			return nil, err
		}
	}
	updated := pool.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	s.pools[propertyID] = updated
	return updated.Clone(), nil
}
