package dividend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"landshare/internal/audit"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/platform/sentinel"
	"landshare/pkg/requestcontext"
)

// Balances answers live share balances. Satisfied by the ledger service.
// Claims are always settled against the balance at claim time, not a
// balance supplied by the caller.
type Balances interface {
	BalanceOf(ctx context.Context, propertyID domain.PropertyID, holder domain.Address) (uint64, error)
}

// ViewInvalidator drops cached portfolio views whose claimable totals a
// write has made stale. Satisfied by the portfolio cache.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, addr domain.Address) error
}

// Service owns dividend pools: one per fractionalized property, opened at
// fractionalization, deposited into by anyone, claimed by holders.
type Service struct {
	store    Store
	balances Balances
	logger   *slog.Logger
	emitter  *audit.Emitter
	views    ViewInvalidator
}

type Option func(*serviceConfig)

type serviceConfig struct {
	logger    *slog.Logger
	publisher audit.Publisher
	views     ViewInvalidator
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *serviceConfig) { c.publisher = publisher }
}

func WithViewInvalidator(v ViewInvalidator) Option {
	return func(c *serviceConfig) { c.views = v }
}

func NewService(store Store, balances Balances, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("dividend store is required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance reader is required")
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
		store:    store,
		balances: balances,
		logger:   logger,
		emitter:  audit.NewEmitter(cfg.logger, cfg.publisher),
		views:    cfg.views,
	}, nil
}

// CreatePool opens the pool for a property. Called by fractionalization;
// a second pool for the same property is a conflict.
func (s *Service) CreatePool(ctx context.Context, propertyID domain.PropertyID, totalSupply uint64) error {
	pool, err := NewPool(propertyID, totalSupply, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	if err := s.store.Create(ctx, pool); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return dErrors.New(dErrors.CodePoolAlreadyExists, "dividend pool already exists for property")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "create pool")
	}
	return nil
}

// Deposit credits amount to the property's pool, advancing the
// distribution index for all current holders.
func (s *Service) Deposit(ctx context.Context, propertyID domain.PropertyID, amount uint64) (*Pool, error) {
	pool, err := s.store.Execute(ctx, propertyID, nil, func(p *Pool) error {
		return p.Deposit(amount)
	})
	if err != nil {
		return nil, translateStoreErr(err, "deposit dividend")
	}

	s.emitter.Emit(ctx, audit.ActionDividendDeposited, map[string]any{
		"property_id": propertyID.String(),
		"amount":      amount,
	})
	return pool, nil
}

// Claim pays out the context caller's accrued entitlement, measured
// against their share balance at claim time.
func (s *Service) Claim(ctx context.Context, propertyID domain.PropertyID) (uint64, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}
	balance, err := s.balances.BalanceOf(ctx, propertyID, caller)
	if err != nil {
		return 0, err
	}

	var owed uint64
	_, err = s.store.Execute(ctx, propertyID, nil, func(p *Pool) error {
		var claimErr error
		owed, claimErr = p.Claim(caller, balance)
		return claimErr
	})
	if err != nil {
		return 0, translateStoreErr(err, "claim dividend")
	}

	s.emitter.Emit(ctx, audit.ActionDividendClaimed, map[string]any{
		"property_id": propertyID.String(),
		"amount":      owed,
	})
	if s.views != nil {
		// Best effort; on failure the stale view still expires on its TTL.
		if err := s.views.Invalidate(ctx, caller); err != nil {
			s.logger.Warn("portfolio view invalidation failed",
				"address", caller.String(), "error", err)
		}
	}
	return owed, nil
}

// GetPool returns the pool snapshot for a property.
func (s *Service) GetPool(ctx context.Context, propertyID domain.PropertyID) (*Pool, error) {
	pool, err := s.store.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, translateStoreErr(err, "load pool")
	}
	return pool, nil
}

// Entitlement previews what holder could claim right now without paying
// out.
func (s *Service) Entitlement(ctx context.Context, propertyID domain.PropertyID, holder domain.Address) (uint64, error) {
	pool, err := s.store.FindByProperty(ctx, propertyID)
	if err != nil {
		return 0, translateStoreErr(err, "load pool")
	}
	balance, err := s.balances.BalanceOf(ctx, propertyID, holder)
	if err != nil {
		return 0, err
	}
	return pool.Entitlement(holder, balance), nil
}

func translateStoreErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "property has no dividend pool")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}
