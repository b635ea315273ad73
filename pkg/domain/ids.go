// Package domain defines the typed identifiers shared across the registry and
// settlement modules. IDs are distinct types over uuid.UUID so the compiler
// rejects cross-type assignment (a ListingID can never be passed where a
// PropertyID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "landshare/pkg/domain-errors"
)

type (
	// PropertyID identifies a registered property record.
	PropertyID uuid.UUID

	// VerificationID identifies an immutable verification attestation.
	VerificationID uuid.UUID

	// ValuationID identifies an immutable valuation attestation.
	ValuationID uuid.UUID

	// ListingID identifies a marketplace listing.
	ListingID uuid.UUID
)

func (id PropertyID) String() string     { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id ValuationID) String() string    { return uuid.UUID(id).String() }
func (id ListingID) String() string      { return uuid.UUID(id).String() }

func (id PropertyID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ValuationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ListingID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// IDs marshal as canonical UUID strings in JSON and database text columns.

func (id PropertyID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id VerificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ValuationID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ListingID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

func (id *PropertyID) UnmarshalText(text []byte) error {
	parsed, err := ParsePropertyID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VerificationID) UnmarshalText(text []byte) error {
	parsed, err := ParseVerificationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ValuationID) UnmarshalText(text []byte) error {
	parsed, err := ParseValuationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ListingID) UnmarshalText(text []byte) error {
	parsed, err := ParseListingID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewPropertyID returns a fresh random property identifier.
func NewPropertyID() PropertyID { return PropertyID(uuid.New()) }

// NewVerificationID returns a fresh random verification identifier.
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }

// NewValuationID returns a fresh random valuation identifier.
func NewValuationID() ValuationID { return ValuationID(uuid.New()) }

// NewListingID returns a fresh random listing identifier.
func NewListingID() ListingID { return ListingID(uuid.New()) }

// parseUUID enforces the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs. All Parse* helpers funnel through here.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParsePropertyID validates and converts a raw string into a PropertyID.
func ParsePropertyID(raw string) (PropertyID, error) {
	parsed, err := parseUUID(raw, "property")
	if err != nil {
		return PropertyID{}, err
	}
	return PropertyID(parsed), nil
}

// ParseVerificationID validates and converts a raw string into a VerificationID.
func ParseVerificationID(raw string) (VerificationID, error) {
	parsed, err := parseUUID(raw, "verification")
	if err != nil {
		return VerificationID{}, err
	}
	return VerificationID(parsed), nil
}

// ParseValuationID validates and converts a raw string into a ValuationID.
func ParseValuationID(raw string) (ValuationID, error) {
	parsed, err := parseUUID(raw, "valuation")
	if err != nil {
		return ValuationID{}, err
	}
	return ValuationID(parsed), nil
}

// ParseListingID validates and converts a raw string into a ListingID.
func ParseListingID(raw string) (ListingID, error) {
	parsed, err := parseUUID(raw, "listing")
	if err != nil {
		return ListingID{}, err
	}
	return ListingID(parsed), nil
}
