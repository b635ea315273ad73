package property

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"landshare/internal/attestation"
	"landshare/internal/audit"
	"landshare/internal/ledger"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/platform/sentinel"
	"landshare/pkg/requestcontext"
)

// Attestations resolves minted records for attachment checks. Satisfied by
// the attestation service.
type Attestations interface {
	GetVerification(ctx context.Context, id domain.VerificationID) (*attestation.VerificationRecord, error)
	GetValuation(ctx context.Context, id domain.ValuationID) (*attestation.ValuationRecord, error)
}

// ShareMinter mints the share ledger during fractionalization. Satisfied by
// the ledger service.
type ShareMinter interface {
	Mint(ctx context.Context, propertyID domain.PropertyID, owner domain.Address, totalSupply uint64) (*ledger.ShareLedger, error)
}

// PoolCreator opens the dividend pool that accompanies every fractionalized
// property. Satisfied by the dividend service.
type PoolCreator interface {
	CreatePool(ctx context.Context, propertyID domain.PropertyID, totalSupply uint64) error
}

// Service owns the property lifecycle: registration, attestation attachment
// and the one-way transition into fractionalized state.
type Service struct {
	store        Store
	attestations Attestations
	shares       ShareMinter
	pools        PoolCreator
	emitter      *audit.Emitter
}

type Option func(*serviceConfig)

type serviceConfig struct {
	logger    *slog.Logger
	publisher audit.Publisher
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *serviceConfig) { c.publisher = publisher }
}

func NewService(store Store, attestations Attestations, shares ShareMinter, pools PoolCreator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("property store is required")
	}
	if attestations == nil {
		return nil, fmt.Errorf("attestation resolver is required")
	}
	if shares == nil {
		return nil, fmt.Errorf("share minter is required")
	}
	if pools == nil {
		return nil, fmt.Errorf("pool creator is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		store:        store,
		attestations: attestations,
		shares:       shares,
		pools:        pools,
		emitter:      audit.NewEmitter(cfg.logger, cfg.publisher),
	}, nil
}

// Register records a new property owned by the context caller. The id is
// client-chosen so registrations can be prepared off-line; re-use of an id
// is rejected rather than upserted.
func (s *Service) Register(ctx context.Context, id domain.PropertyID, metadata []byte) (*Record, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}
	if len(metadata) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "property metadata is required")
	}

	record, err := NewRecord(id, metadata, caller, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeDuplicateProperty, "property id already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "register property")
	}

	s.emitter.Emit(ctx, audit.ActionPropertyCreated, map[string]any{
		"property_id": id.String(),
	})
	return record, nil
}

// AttachAttestations binds a verification and a valuation record to the
// property. Both records must reference this property; either side
// mismatching rejects the pair atomically. Re-attachment replaces earlier
// references until the property fractionalizes, after which the record is
// frozen.
func (s *Service) AttachAttestations(ctx context.Context, propertyID domain.PropertyID, verificationID domain.VerificationID, valuationID domain.ValuationID) (*Record, error) {
	verification, err := s.attestations.GetVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	valuation, err := s.attestations.GetValuation(ctx, valuationID)
	if err != nil {
		return nil, err
	}
	if verification.PropertyID != propertyID {
		return nil, dErrors.New(dErrors.CodeMismatchedAttestation, "verification record references a different property")
	}
	if valuation.PropertyID != propertyID {
		return nil, dErrors.New(dErrors.CodeMismatchedAttestation, "valuation record references a different property")
	}

	now := requestcontext.Now(ctx)
	record, err := s.store.Execute(ctx, propertyID,
		func(r *Record) error { return r.CanAttach() },
		func(r *Record) { r.ApplyAttach(verificationID, valuationID, now) },
	)
	if err != nil {
		return nil, translateStoreErr(err, "attach attestations")
	}

	s.emitter.Emit(ctx, audit.ActionAttestationsAttached, map[string]any{
		"property_id":     propertyID.String(),
		"verification_id": verificationID.String(),
		"valuation_id":    valuationID.String(),
	})
	return record, nil
}

// Fractionalize flips the property into fractionalized state, mints its
// share ledger with the whole supply credited to the owner, and opens the
// property's dividend pool. The transition is one-way.
func (s *Service) Fractionalize(ctx context.Context, propertyID domain.PropertyID, totalShares uint64) (*Record, *ledger.ShareLedger, error) {
	caller := requestcontext.Caller(ctx)
	now := requestcontext.Now(ctx)

	record, err := s.store.Execute(ctx, propertyID,
		func(r *Record) error { return r.CanFractionalize(caller, totalShares) },
		func(r *Record) { r.ApplyFractionalize(now) },
	)
	if err != nil {
		return nil, nil, translateStoreErr(err, "fractionalize property")
	}

	shareLedger, err := s.shares.Mint(ctx, propertyID, record.Owner, totalShares)
	if err != nil {
		return nil, nil, err
	}
	if err := s.pools.CreatePool(ctx, propertyID, totalShares); err != nil {
		return nil, nil, err
	}

	s.emitter.Emit(ctx, audit.ActionPropertyFractioned, map[string]any{
		"property_id":  propertyID.String(),
		"total_shares": totalShares,
	})
	return record, shareLedger, nil
}

// Get returns the property record.
func (s *Service) Get(ctx context.Context, id domain.PropertyID) (*Record, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "load property")
	}
	return record, nil
}

// ListByOwner returns every property registered by owner.
func (s *Service) ListByOwner(ctx context.Context, owner domain.Address) ([]*Record, error) {
	records, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list properties")
	}
	return records, nil
}

func translateStoreErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "property not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}
