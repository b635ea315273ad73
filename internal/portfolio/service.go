package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"landshare/internal/ledger"
	"landshare/internal/market"
	"landshare/internal/property"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/requestcontext"
)

// Properties lists registered properties by owner. Satisfied by the
// property service.
type Properties interface {
	ListByOwner(ctx context.Context, owner domain.Address) ([]*property.Record, error)
}

// Holdings lists ledgers where an address holds shares. Satisfied by the
// ledger service.
type Holdings interface {
	Holdings(ctx context.Context, holder domain.Address) ([]*ledger.ShareLedger, error)
}

// Listings lists a seller's listings. Satisfied by the market service.
type Listings interface {
	BySeller(ctx context.Context, seller domain.Address) ([]*market.Listing, error)
}

// Entitlements previews unclaimed dividends. Satisfied by the dividend
// service. Not-found means the property predates dividends and maps to a
// zero entitlement here.
type Entitlements interface {
	Entitlement(ctx context.Context, propertyID domain.PropertyID, holder domain.Address) (uint64, error)
}

// Service assembles portfolio views, with a short-TTL cache in front since
// views fan out across four modules.
type Service struct {
	properties   Properties
	holdings     Holdings
	listings     Listings
	entitlements Entitlements
	cache        *Cache
	logger       *slog.Logger
}

type Option func(*serviceConfig)

type serviceConfig struct {
	logger *slog.Logger
	cache  *Cache
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithCache(cache *Cache) Option {
	return func(c *serviceConfig) { c.cache = cache }
}

func NewService(properties Properties, holdings Holdings, listings Listings, entitlements Entitlements, opts ...Option) (*Service, error) {
	if properties == nil || holdings == nil || listings == nil || entitlements == nil {
		return nil, fmt.Errorf("all portfolio sources are required")
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
		properties:   properties,
		holdings:     holdings,
		listings:     listings,
		entitlements: entitlements,
		cache:        cfg.cache,
		logger:       logger,
	}, nil
}

// Get returns the portfolio for addr, serving from cache when fresh. Cache
// failures degrade to direct reads and are logged, never surfaced.
func (s *Service) Get(ctx context.Context, addr domain.Address) (*View, error) {
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}

	if cached, err := s.cache.Get(ctx, addr); err != nil {
		s.logger.Warn("portfolio cache read failed", "address", addr.String(), "error", err)
	} else if cached != nil {
		return cached, nil
	}

	view, err := s.assemble(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, view); err != nil {
		s.logger.Warn("portfolio cache write failed", "address", addr.String(), "error", err)
	}
	return view, nil
}

func (s *Service) assemble(ctx context.Context, addr domain.Address) (*View, error) {
	properties, err := s.properties.ListByOwner(ctx, addr)
	if err != nil {
		return nil, err
	}
	ledgers, err := s.holdings.Holdings(ctx, addr)
	if err != nil {
		return nil, err
	}
	listings, err := s.listings.BySeller(ctx, addr)
	if err != nil {
		return nil, err
	}

	holdings := make([]Holding, 0, len(ledgers))
	for _, l := range ledgers {
		claimable, err := s.entitlements.Entitlement(ctx, l.PropertyID, addr)
		if err != nil {
			if dErrors.CodeOf(err) != dErrors.CodeNotFound {
				return nil, err
			}
			claimable = 0
		}
		holdings = append(holdings, Holding{
			PropertyID:  l.PropertyID,
			Balance:     l.BalanceOf(addr),
			TotalSupply: l.TotalSupply,
			Claimable:   claimable,
		})
	}

	return &View{
		Address:     addr,
		Properties:  properties,
		Holdings:    holdings,
		Listings:    listings,
		GeneratedAt: requestcontext.Now(ctx),
	}, nil
}
