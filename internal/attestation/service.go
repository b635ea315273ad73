package attestation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"landshare/internal/audit"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/requestcontext"
)

// Roles answers capability checks. Satisfied by the access service.
// Membership is re-checked on every mint: a revoked verifier cannot mint
// even moments after revocation.
type Roles interface {
	HasVerifier(ctx context.Context, addr domain.Address) (bool, error)
	HasValuer(ctx context.Context, addr domain.Address) (bool, error)
}

// Service mints attestation records under role checks.
type Service struct {
	store   Store
	roles   Roles
	emitter *audit.Emitter
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

func NewService(store Store, roles Roles, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("attestation store is required")
	}
	if roles == nil {
		return nil, fmt.Errorf("roles checker is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		store:   store,
		roles:   roles,
		emitter: audit.NewEmitter(cfg.logger, cfg.publisher),
	}, nil
}

// MintVerification creates an immutable verification record issued by the
// context caller, who must currently hold the verifier capability.
func (s *Service) MintVerification(ctx context.Context, propertyID domain.PropertyID, docPointer domain.DocumentPointer) (*VerificationRecord, error) {
	caller := requestcontext.Caller(ctx)
	held, err := s.roles.HasVerifier(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, dErrors.New(dErrors.CodeRoleNotGranted, "caller does not hold the verifier capability")
	}
	if propertyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "property id is required")
	}
	pointer, err := domain.ParseDocumentPointer(docPointer)
	if err != nil {
		return nil, err
	}

	record := VerificationRecord{
		ID:              domain.NewVerificationID(),
		PropertyID:      propertyID,
		Issuer:          caller,
		DocumentPointer: pointer,
		IssuedAt:        requestcontext.Now(ctx),
	}
	if err := s.store.SaveVerification(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification record")
	}

	s.emitter.Emit(ctx, audit.ActionVerificationMinted, map[string]any{
		"verification_id": record.ID.String(),
		"property_id":     propertyID.String(),
		"document_digest": pointer.Digest(),
	})
	return &record, nil
}

// MintValuation creates an immutable valuation record issued by the context
// caller, who must currently hold the valuer capability.
func (s *Service) MintValuation(ctx context.Context, propertyID domain.PropertyID, amount uint64, currency string, docPointer domain.DocumentPointer) (*ValuationRecord, error) {
	caller := requestcontext.Caller(ctx)
	held, err := s.roles.HasValuer(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, dErrors.New(dErrors.CodeRoleNotGranted, "caller does not hold the valuer capability")
	}
	if propertyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "property id is required")
	}
	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeZeroAmount, "valuation amount must be positive")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "currency is required")
	}
	pointer, err := domain.ParseDocumentPointer(docPointer)
	if err != nil {
		return nil, err
	}

	record := ValuationRecord{
		ID:              domain.NewValuationID(),
		PropertyID:      propertyID,
		Issuer:          caller,
		Amount:          amount,
		Currency:        currency,
		DocumentPointer: pointer,
		IssuedAt:        requestcontext.Now(ctx),
	}
	if err := s.store.SaveValuation(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save valuation record")
	}

	s.emitter.Emit(ctx, audit.ActionValuationMinted, map[string]any{
		"valuation_id":    record.ID.String(),
		"property_id":     propertyID.String(),
		"amount":          amount,
		"currency":        currency,
		"document_digest": pointer.Digest(),
	})
	return &record, nil
}

// GetVerification looks up a verification record by id.
func (s *Service) GetVerification(ctx context.Context, id domain.VerificationID) (*VerificationRecord, error) {
	record, err := s.store.FindVerification(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "verification record not found")
	}
	return &record, nil
}

// GetValuation looks up a valuation record by id.
func (s *Service) GetValuation(ctx context.Context, id domain.ValuationID) (*ValuationRecord, error) {
	record, err := s.store.FindValuation(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "valuation record not found")
	}
	return &record, nil
}
