package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"landshare/internal/audit"
	"landshare/internal/market/metrics"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/platform/sentinel"
	"landshare/pkg/requestcontext"
)

// ShareEscrow moves shares between live balances and escrow. Satisfied by
// the ledger service. EscrowDebit failing with not-found doubles as the
// fractionalization check: only fractionalized properties have a ledger.
type ShareEscrow interface {
	EscrowDebit(ctx context.Context, propertyID domain.PropertyID, holder domain.Address, amount uint64) error
	EscrowCredit(ctx context.Context, propertyID domain.PropertyID, to domain.Address, amount uint64) error
}

// ViewInvalidator drops cached portfolio views whose listings a write has
// made stale. Satisfied by the portfolio cache.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, addr domain.Address) error
}

// Service runs the marketplace: listing creation locks shares in escrow,
// fills release them to the buyer, cancels return them to the seller.
type Service struct {
	store   Store
	escrow  ShareEscrow
	logger  *slog.Logger
	emitter *audit.Emitter
	metrics *metrics.Metrics
	views   ViewInvalidator
}

type Option func(*serviceConfig)

type serviceConfig struct {
	logger    *slog.Logger
	publisher audit.Publisher
	metrics   *metrics.Metrics
	views     ViewInvalidator
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *serviceConfig) { c.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithViewInvalidator(v ViewInvalidator) Option {
	return func(c *serviceConfig) { c.views = v }
}

func NewService(store Store, escrow ShareEscrow, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("market store is required")
	}
	if escrow == nil {
		return nil, fmt.Errorf("share escrow is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		escrow:  escrow,
		logger:  logger,
		emitter: audit.NewEmitter(cfg.logger, cfg.publisher),
		metrics: cfg.metrics,
		views:   cfg.views,
	}, nil
}

// invalidateViews is best effort; on failure the stale view still expires
// on its TTL.
func (s *Service) invalidateViews(ctx context.Context, addrs ...domain.Address) {
	if s.views == nil {
		return
	}
	for _, addr := range addrs {
		if err := s.views.Invalidate(ctx, addr); err != nil {
			s.logger.Warn("portfolio view invalidation failed",
				"address", addr.String(), "error", err)
		}
	}
}

// CreateListing offers shares for sale on behalf of the context caller.
// The shares move into ledger escrow before the listing is persisted, so
// there is no window in which a listed share can also be transferred.
func (s *Service) CreateListing(ctx context.Context, propertyID domain.PropertyID, shares, pricePerShare uint64) (*Listing, error) {
	caller := requestcontext.Caller(ctx)
	listing, err := NewListing(propertyID, caller, shares, pricePerShare, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.escrow.EscrowDebit(ctx, propertyID, caller, shares); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, listing); err != nil {
		// Shares are already locked; put them back before failing.
		if creditErr := s.escrow.EscrowCredit(ctx, propertyID, caller, shares); creditErr != nil {
			s.logger.Error("escrow credit-back failed after listing create failure",
				"property_id", propertyID.String(), "seller", caller.String(), "error", creditErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create listing")
	}

	if s.metrics != nil {
		s.metrics.IncrementListingsCreated()
	}
	s.emitter.Emit(ctx, audit.ActionListingCreated, map[string]any{
		"listing_id":      listing.ID.String(),
		"property_id":     propertyID.String(),
		"shares":          shares,
		"price_per_share": pricePerShare,
	})
	s.invalidateViews(ctx, caller)
	return listing, nil
}

// Buy fills an open listing for the context caller. The whole lot settles
// at once; the escrowed shares move to the buyer and the listing becomes
// terminal. Payment settles off-platform at listing.TotalPrice().
func (s *Service) Buy(ctx context.Context, listingID domain.ListingID) (*Listing, error) {
	start := time.Now()
	buyer := requestcontext.Caller(ctx)
	now := requestcontext.Now(ctx)

	listing, err := s.store.Execute(ctx, listingID,
		func(l *Listing) error { return l.CanFill(buyer) },
		func(l *Listing) { l.ApplyFill(buyer, now) },
	)
	if err != nil {
		return nil, translateStoreErr(err, "fill listing")
	}

	if err := s.escrow.EscrowCredit(ctx, listing.PropertyID, buyer, listing.SharesLocked); err != nil {
		// The listing is already terminal; losing the credit would strand
		// shares in escrow and break supply conservation.
		s.logger.Error("escrow release failed after fill",
			"listing_id", listingID.String(), "buyer", buyer.String(), "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveFill(start)
	}
	s.emitter.Emit(ctx, audit.ActionListingFilled, map[string]any{
		"listing_id":  listingID.String(),
		"property_id": listing.PropertyID.String(),
		"seller":      listing.Seller.String(),
		"shares":      listing.SharesLocked,
		"total_price": listing.TotalPrice(),
	})
	s.invalidateViews(ctx, listing.Seller, buyer)
	return listing, nil
}

// Cancel withdraws an open listing and returns the escrowed shares to the
// seller. Only the seller may cancel.
func (s *Service) Cancel(ctx context.Context, listingID domain.ListingID) (*Listing, error) {
	caller := requestcontext.Caller(ctx)
	now := requestcontext.Now(ctx)

	listing, err := s.store.Execute(ctx, listingID,
		func(l *Listing) error { return l.CanCancel(caller) },
		func(l *Listing) { l.ApplyCancel(now) },
	)
	if err != nil {
		return nil, translateStoreErr(err, "cancel listing")
	}

	if err := s.escrow.EscrowCredit(ctx, listing.PropertyID, listing.Seller, listing.SharesLocked); err != nil {
		s.logger.Error("escrow release failed after cancel",
			"listing_id", listingID.String(), "seller", listing.Seller.String(), "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementListingsCancelled()
	}
	s.emitter.Emit(ctx, audit.ActionListingCancelled, map[string]any{
		"listing_id":  listingID.String(),
		"property_id": listing.PropertyID.String(),
		"shares":      listing.SharesLocked,
	})
	s.invalidateViews(ctx, listing.Seller)
	return listing, nil
}

// Get returns a listing by id.
func (s *Service) Get(ctx context.Context, id domain.ListingID) (*Listing, error) {
	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "load listing")
	}
	return listing, nil
}

// OpenListings returns the open order book for a property.
func (s *Service) OpenListings(ctx context.Context, propertyID domain.PropertyID) ([]*Listing, error) {
	listings, err := s.store.ListByProperty(ctx, propertyID, StatusOpen)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list open listings")
	}
	return listings, nil
}

// BySeller returns every listing the seller has created, any status.
func (s *Service) BySeller(ctx context.Context, seller domain.Address) ([]*Listing, error) {
	listings, err := s.store.ListBySeller(ctx, seller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list seller listings")
	}
	return listings, nil
}

func translateStoreErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "listing not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}
