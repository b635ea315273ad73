package property

import (
	"context"
	"sync"

	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// Store persists property records. Execute runs validate then mutate while
// holding the record's lock (mutex in memory, FOR UPDATE in postgres), so a
// lifecycle check and the transition it guards are one atomic step.
type Store interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id domain.PropertyID) (*Record, error)
	ListByOwner(ctx context.Context, owner domain.Address) ([]*Record, error)
	Execute(ctx context.Context, id domain.PropertyID, validate func(*Record) error, mutate func(*Record)) (*Record, error)
}

// MemoryStore backs unit tests and dev mode.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.PropertyID]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.PropertyID]*Record)}
}

func (s *MemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.PropertyID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[id]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) ListByOwner(_ context.Context, owner domain.Address) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, record := range s.records {
		if record.Owner == owner {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *MemoryStore) Execute(_ context.Context, id domain.PropertyID, validate func(*Record) error, mutate func(*Record)) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	mutate(record)
	clone := *record
	return &clone, nil
}
