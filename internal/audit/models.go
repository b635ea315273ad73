// Package audit records every successful mutating operation in the
// settlement core: role changes, attestations, property lifecycle, share
// movements, listing lifecycle, and dividend flows. Events are append-only
// and support the same later-audit guarantee the attestation records do.
package audit

import (
	"time"

	"github.com/oklog/ulid/v2"

	"landshare/pkg/domain"
)

// Actions emitted by the settlement core.
const (
	ActionVerifierGranted      = "access.verifier_granted"
	ActionVerifierRevoked      = "access.verifier_revoked"
	ActionValuerGranted        = "access.valuer_granted"
	ActionValuerRevoked        = "access.valuer_revoked"
	ActionVerificationMinted   = "attestation.verification_minted"
	ActionValuationMinted      = "attestation.valuation_minted"
	ActionPropertyCreated      = "property.created"
	ActionAttestationsAttached = "property.attestations_attached"
	ActionPropertyFractioned   = "property.fractionalized"
	ActionSharesTransferred    = "ledger.shares_transferred"
	ActionListingCreated       = "market.listing_created"
	ActionListingFilled        = "market.listing_filled"
	ActionListingCancelled     = "market.listing_cancelled"
	ActionDividendDeposited    = "dividend.deposited"
	ActionDividendClaimed      = "dividend.claimed"
)

// Event is a single audit record. IDs are ULIDs so events sort by time
// without a secondary index.
type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      domain.Address `json:"actor"`
	RequestID  string         `json:"request_id,omitempty"`
	ClientIP   string         `json:"client_ip,omitempty"`
	Device     string         `json:"device,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEventID returns a fresh ULID string.
func NewEventID() string {
	return ulid.Make().String()
}
