package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"landshare/internal/audit"
	"landshare/internal/ledger/metrics"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/platform/sentinel"
	"landshare/pkg/requestcontext"
)

// ViewInvalidator drops cached portfolio views whose balances a write has
// made stale. Satisfied by the portfolio cache.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, addr domain.Address) error
}

// Service owns share ledger lifecycle and balance movement. Mint is reserved
// for fractionalization; escrow movement is reserved for the marketplace.
type Service struct {
	store   Store
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

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
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

// Mint creates the ledger for a freshly fractionalized property with the
// whole supply credited to owner. There is no other way to create shares.
func (s *Service) Mint(ctx context.Context, propertyID domain.PropertyID, owner domain.Address, totalSupply uint64) (*ShareLedger, error) {
	ledger, err := NewShareLedger(propertyID, owner, totalSupply, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, ledger); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeAlreadyFractionalized, "ledger already exists for property")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint ledger")
	}
	if s.metrics != nil {
		s.metrics.IncrementLedgersMinted()
	}
	s.invalidateViews(ctx, owner)
	return ledger, nil
}

// Transfer moves shares from the context caller to another holder.
func (s *Service) Transfer(ctx context.Context, propertyID domain.PropertyID, to domain.Address, amount uint64) (*ShareLedger, error) {
	start := time.Now()
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}

	ledger, err := s.store.Execute(ctx, propertyID, nil, func(l *ShareLedger) error {
		return l.Transfer(caller, to, amount)
	})
	if err != nil {
		return nil, translateStoreErr(err, "transfer shares")
	}

	if s.metrics != nil {
		s.metrics.ObserveTransfer(start, amount)
	}
	s.emitter.Emit(ctx, audit.ActionSharesTransferred, map[string]any{
		"property_id": propertyID.String(),
		"to":          to.String(),
		"amount":      amount,
	})
	s.invalidateViews(ctx, caller, to)
	return ledger, nil
}

// EscrowDebit locks shares out of the holder's balance on behalf of the
// marketplace. Audit for escrow movement is emitted by the marketplace
// alongside the listing event.
func (s *Service) EscrowDebit(ctx context.Context, propertyID domain.PropertyID, holder domain.Address, amount uint64) error {
	_, err := s.store.Execute(ctx, propertyID, nil, func(l *ShareLedger) error {
		return l.DebitToEscrow(holder, amount)
	})
	if err != nil {
		return translateStoreErr(err, "escrow shares")
	}
	s.invalidateViews(ctx, holder)
	return nil
}

// EscrowCredit releases escrowed shares to a holder.
func (s *Service) EscrowCredit(ctx context.Context, propertyID domain.PropertyID, to domain.Address, amount uint64) error {
	_, err := s.store.Execute(ctx, propertyID, nil, func(l *ShareLedger) error {
		return l.CreditFromEscrow(to, amount)
	})
	if err != nil {
		return translateStoreErr(err, "release escrow")
	}
	s.invalidateViews(ctx, to)
	return nil
}

// BalanceOf returns the holder's live balance for a property.
func (s *Service) BalanceOf(ctx context.Context, propertyID domain.PropertyID, holder domain.Address) (uint64, error) {
	ledger, err := s.store.FindByProperty(ctx, propertyID)
	if err != nil {
		return 0, translateStoreErr(err, "load ledger")
	}
	return ledger.BalanceOf(holder), nil
}

// GetLedger returns the full ledger snapshot for a property.
func (s *Service) GetLedger(ctx context.Context, propertyID domain.PropertyID) (*ShareLedger, error) {
	ledger, err := s.store.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, translateStoreErr(err, "load ledger")
	}
	return ledger, nil
}

// Holdings lists every ledger in which holder has a positive live balance.
func (s *Service) Holdings(ctx context.Context, holder domain.Address) ([]*ShareLedger, error) {
	ledgers, err := s.store.ListByHolder(ctx, holder)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list holdings")
	}
	return ledgers, nil
}

func translateStoreErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "property has no share ledger")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}
