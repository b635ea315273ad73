package attestation

import (
	"context"
	"sync"

	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// Store persists attestation records. Append-only by interface design: there
// is no update or delete.
type Store interface {
	SaveVerification(ctx context.Context, record VerificationRecord) error
	FindVerification(ctx context.Context, id domain.VerificationID) (VerificationRecord, error)
	SaveValuation(ctx context.Context, record ValuationRecord) error
	FindValuation(ctx context.Context, id domain.ValuationID) (ValuationRecord, error)
	ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]VerificationRecord, []ValuationRecord, error)
}

// MemoryStore backs unit tests and dev mode.
type MemoryStore struct {
	mu            sync.RWMutex
	verifications map[domain.VerificationID]VerificationRecord
	valuations    map[domain.ValuationID]ValuationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		verifications: make(map[domain.VerificationID]VerificationRecord),
		valuations:    make(map[domain.ValuationID]ValuationRecord),
	}
}

func (s *MemoryStore) SaveVerification(_ context.Context, record VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verifications[record.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.verifications[record.ID] = record
	return nil
}

func (s *MemoryStore) FindVerification(_ context.Context, id domain.VerificationID) (VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.verifications[id]; ok {
		return record, nil
	}
	return VerificationRecord{}, sentinel.ErrNotFound
}

func (s *MemoryStore) SaveValuation(_ context.Context, record ValuationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.valuations[record.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.valuations[record.ID] = record
	return nil
}

func (s *MemoryStore) FindValuation(_ context.Context, id domain.ValuationID) (ValuationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.valuations[id]; ok {
		return record, nil
	}
	return ValuationRecord{}, sentinel.ErrNotFound
}

func (s *MemoryStore) ListByProperty(_ context.Context, propertyID domain.PropertyID) ([]VerificationRecord, []ValuationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var verifications []VerificationRecord
	for _, record := range s.verifications {
		if record.PropertyID == propertyID {
			verifications = append(verifications, record)
		}
	}
	var valuations []ValuationRecord
	for _, record := range s.valuations {
		if record.PropertyID == propertyID {
			valuations = append(valuations, record)
		}
	}
	return verifications, valuations, nil
}
