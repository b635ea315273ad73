package market

import (
	"context"
	"sort"
	"sync"

	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// Store persists listings. Execute runs validate then mutate atomically
// against the current listing state.
type Store interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id domain.ListingID) (*Listing, error)
	ListByProperty(ctx context.Context, propertyID domain.PropertyID, status Status) ([]*Listing, error)
	ListBySeller(ctx context.Context, seller domain.Address) ([]*Listing, error)
	Execute(ctx context.Context, id domain.ListingID,
		validate func(*Listing) error,
		mutate func(*Listing),
	) (*Listing, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	listings map[domain.ListingID]*Listing
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{listings: make(map[domain.ListingID]*Listing)}
}

func (s *MemoryStore) Create(_ context.Context, listing *Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.listings[listing.ID] = listing.Clone()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.ListingID) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return listing.Clone(), nil
}

func (s *MemoryStore) ListByProperty(_ context.Context, propertyID domain.PropertyID, status Status) ([]*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Listing
	for _, listing := range s.listings {
		if listing.PropertyID == propertyID && listing.Status == status {
			out = append(out, listing.Clone())
		}
	}
	sortListings(out)
	return out, nil
}

func (s *MemoryStore) ListBySeller(_ context.Context, seller domain.Address) ([]*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Listing
	for _, listing := range s.listings {
		if listing.Seller == seller {
			out = append(out, listing.Clone())
		}
	}
	sortListings(out)
	return out, nil
}

func (s *MemoryStore) Execute(_ context.Context, id domain.ListingID, validate func(*Listing) error, mutate func(*Listing)) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(listing.Clone()); err != nil {
			return nil, err
		}
	}
	updated := listing.Clone()
	mutate(updated)
	s.listings[id] = updated
	return updated.Clone(), nil
}

func sortListings(listings []*Listing) {
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.Before(listings[j].CreatedAt)
	})
}
