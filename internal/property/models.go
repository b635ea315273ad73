// Package property owns the property record lifecycle:
// created → attested → fractionalized.
package property

import (
	"encoding/json"
	"time"

	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
)

// Record is a unit of real estate.
//
// Invariants:
//   - VerificationID and ValuationID, once set, reference records whose
//     property_ref equals ID (validated by the service before ApplyAttach).
//   - Fractionalized is one-way: once true it never becomes false, and no
//     further attestation changes are accepted.
type Record struct {
	ID             domain.PropertyID      `json:"id"`
	Metadata       json.RawMessage        `json:"metadata"`
	Owner          domain.Address         `json:"owner"`
	VerificationID *domain.VerificationID `json:"verification_id,omitempty"`
	ValuationID    *domain.ValuationID    `json:"valuation_id,omitempty"`
	Fractionalized bool                   `json:"fractionalized"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewRecord creates an unattested property owned by owner.
func NewRecord(id domain.PropertyID, metadata []byte, owner domain.Address, now time.Time) (*Record, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "property id is required")
	}
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner address is required")
	}
	return &Record{
		ID:        id,
		Metadata:  metadata,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Attested reports whether both attestation references are present.
func (r *Record) Attested() bool {
	return r.VerificationID != nil && r.ValuationID != nil
}

// CanAttach checks whether attestation references may be (re)attached.
// Re-attachment replaces prior references to support re-verification, but
// only while the property is not fractionalized.
func (r *Record) CanAttach() error {
	if r.Fractionalized {
		return dErrors.New(dErrors.CodeAlreadyFractionalized, "attestations are frozen once fractionalized")
	}
	return nil
}

// ApplyAttach sets both references. Call CanAttach first.
func (r *Record) ApplyAttach(verificationID domain.VerificationID, valuationID domain.ValuationID, now time.Time) {
	r.VerificationID = &verificationID
	r.ValuationID = &valuationID
	r.UpdatedAt = now
}

// CanFractionalize checks the preconditions for minting the share ledger.
func (r *Record) CanFractionalize(caller domain.Address, totalShares uint64) error {
	if caller != r.Owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the property owner may fractionalize")
	}
	if r.Fractionalized {
		return dErrors.New(dErrors.CodeAlreadyFractionalized, "property is already fractionalized")
	}
	if !r.Attested() {
		return dErrors.New(dErrors.CodeConflict, "verification and valuation must be attached before fractionalization")
	}
	if totalShares == 0 {
		return dErrors.New(dErrors.CodeZeroAmount, "total shares must be positive")
	}
	return nil
}

// ApplyFractionalize flips the one-way flag. Call CanFractionalize first.
func (r *Record) ApplyFractionalize(now time.Time) {
	r.Fractionalized = true
	r.UpdatedAt = now
}
