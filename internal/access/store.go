package access

import (
	"context"
	"sync"

	"landshare/pkg/domain"
)

// Store persists role membership. Grant and Revoke report whether membership
// actually changed so the service can keep idempotent retries silent in the
// audit trail.
type Store interface {
	Grant(ctx context.Context, role Role, addr domain.Address) (bool, error)
	Revoke(ctx context.Context, role Role, addr domain.Address) (bool, error)
	Holds(ctx context.Context, role Role, addr domain.Address) (bool, error)
	Members(ctx context.Context, role Role) ([]domain.Address, error)
}

// MemoryStore keeps the registry behind a mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	registry *Registry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{registry: NewRegistry()}
}

func (s *MemoryStore) Grant(_ context.Context, role Role, addr domain.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Grant(role, addr), nil
}

func (s *MemoryStore) Revoke(_ context.Context, role Role, addr domain.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Revoke(role, addr), nil
}

func (s *MemoryStore) Holds(_ context.Context, role Role, addr domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Holds(role, addr), nil
}

func (s *MemoryStore) Members(_ context.Context, role Role) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Members(role), nil
}
