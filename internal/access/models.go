// Package access tracks which addresses hold the Verifier and Valuer
// capabilities. Membership is re-checked on every attestation call rather
// than cached into capability tokens, so a revocation takes effect on the
// very next call.
package access

import (
	"landshare/pkg/domain"
)

// Role names the two grantable capabilities.
type Role string

const (
	RoleVerifier Role = "verifier"
	RoleValuer   Role = "valuer"
)

// Registry is the process-wide capability table. The admin gate lives in
// the service, which owns the admin address; the registry itself only
// tracks membership.
//
// Invariants:
//   - Granting an already-granted address or revoking an absent one is a
//     no-op, not an error, so callers can retry blindly.
type Registry struct {
	verifiers map[domain.Address]struct{}
	valuers   map[domain.Address]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		verifiers: make(map[domain.Address]struct{}),
		valuers:   make(map[domain.Address]struct{}),
	}
}

// Grant adds addr to the role's set. Returns false when already granted.
func (r *Registry) Grant(role Role, addr domain.Address) bool {
	set := r.set(role)
	if _, ok := set[addr]; ok {
		return false
	}
	set[addr] = struct{}{}
	return true
}

// Revoke removes addr from the role's set. Returns false when absent.
func (r *Registry) Revoke(role Role, addr domain.Address) bool {
	set := r.set(role)
	if _, ok := set[addr]; !ok {
		return false
	}
	delete(set, addr)
	return true
}

// Holds reports current membership.
func (r *Registry) Holds(role Role, addr domain.Address) bool {
	_, ok := r.set(role)[addr]
	return ok
}

// Members returns the role's current membership.
func (r *Registry) Members(role Role) []domain.Address {
	set := r.set(role)
	out := make([]domain.Address, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	return out
}

func (r *Registry) set(role Role) map[domain.Address]struct{} {
	if role == RoleValuer {
		return r.valuers
	}
	return r.verifiers
}
