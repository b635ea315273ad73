// Package attestation issues the immutable verification and valuation
// records that gate fractionalization. Records are never mutated or deleted
// after creation; re-attestation of a property mints new records and the old
// ones remain for audit.
package attestation

import (
	"time"

	"landshare/pkg/domain"
)

// VerificationRecord attests that a third-party verifier inspected the
// property. DocumentPointer references the evidence in off-chain storage.
type VerificationRecord struct {
	ID              domain.VerificationID  `json:"id"`
	PropertyID      domain.PropertyID      `json:"property_id"`
	Issuer          domain.Address         `json:"issuer"`
	DocumentPointer domain.DocumentPointer `json:"document_pointer"`
	IssuedAt        time.Time              `json:"issued_at"`
}

// ValuationRecord attests a professional valuation. Amount is in abstract
// integer units of Currency; the payment collaborator defines their
// real-world meaning.
type ValuationRecord struct {
	ID              domain.ValuationID     `json:"id"`
	PropertyID      domain.PropertyID      `json:"property_id"`
	Issuer          domain.Address         `json:"issuer"`
	Amount          uint64                 `json:"amount"`
	Currency        string                 `json:"currency"`
	DocumentPointer domain.DocumentPointer `json:"document_pointer"`
	IssuedAt        time.Time              `json:"issued_at"`
}
