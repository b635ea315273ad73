package access

import (
	"context"
	"fmt"
	"log/slog"

	"landshare/internal/audit"
	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
	"landshare/pkg/requestcontext"
)

// Service enforces the admin gate over role membership and answers
// capability checks for the attestation service.
type Service struct {
	store   Store
	admin   domain.Address
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

func NewService(store Store, admin domain.Address, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("access store is required")
	}
	if admin.IsZero() {
		return nil, fmt.Errorf("admin address is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		store:   store,
		admin:   admin,
		emitter: audit.NewEmitter(cfg.logger, cfg.publisher),
	}, nil
}

// GrantVerifier adds addr to the verifier set. Admin only; idempotent.
func (s *Service) GrantVerifier(ctx context.Context, addr domain.Address) error {
	return s.mutate(ctx, RoleVerifier, addr, true)
}

// RevokeVerifier removes addr from the verifier set. Admin only; idempotent.
func (s *Service) RevokeVerifier(ctx context.Context, addr domain.Address) error {
	return s.mutate(ctx, RoleVerifier, addr, false)
}

// GrantValuer adds addr to the valuer set. Admin only; idempotent.
func (s *Service) GrantValuer(ctx context.Context, addr domain.Address) error {
	return s.mutate(ctx, RoleValuer, addr, true)
}

// RevokeValuer removes addr from the valuer set. Admin only; idempotent.
func (s *Service) RevokeValuer(ctx context.Context, addr domain.Address) error {
	return s.mutate(ctx, RoleValuer, addr, false)
}

func (s *Service) mutate(ctx context.Context, role Role, addr domain.Address, grant bool) error {
	if caller := requestcontext.Caller(ctx); caller != s.admin {
		return dErrors.New(dErrors.CodeUnauthorized, "only the platform admin may modify role membership")
	}
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}

	var (
		changed bool
		err     error
	)
	if grant {
		changed, err = s.store.Grant(ctx, role, addr)
	} else {
		changed, err = s.store.Revoke(ctx, role, addr)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role membership")
	}

	// Idempotent no-ops succeed silently: no membership change, no event.
	if changed {
		s.emitter.Emit(ctx, auditAction(role, grant), map[string]any{
			"address": addr.String(),
		})
	}
	return nil
}

// HasVerifier reports whether addr currently holds the verifier capability.
// Checked per call by the attestation service; never cached.
func (s *Service) HasVerifier(ctx context.Context, addr domain.Address) (bool, error) {
	held, err := s.store.Holds(ctx, RoleVerifier, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier role")
	}
	return held, nil
}

// HasValuer reports whether addr currently holds the valuer capability.
func (s *Service) HasValuer(ctx context.Context, addr domain.Address) (bool, error) {
	held, err := s.store.Holds(ctx, RoleValuer, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check valuer role")
	}
	return held, nil
}

// ListVerifiers returns the current verifier set.
func (s *Service) ListVerifiers(ctx context.Context) ([]domain.Address, error) {
	members, err := s.store.Members(ctx, RoleVerifier)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifiers")
	}
	return members, nil
}

// ListValuers returns the current valuer set.
func (s *Service) ListValuers(ctx context.Context) ([]domain.Address, error) {
	members, err := s.store.Members(ctx, RoleValuer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list valuers")
	}
	return members, nil
}

func auditAction(role Role, grant bool) string {
	switch {
	case role == RoleVerifier && grant:
		return audit.ActionVerifierGranted
	case role == RoleVerifier:
		return audit.ActionVerifierRevoked
	case grant:
		return audit.ActionValuerGranted
	default:
		return audit.ActionValuerRevoked
	}
}
