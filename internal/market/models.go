// Package market is the escrow-backed marketplace for property shares.
package market

import (
	"math"
	"time"

	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
)

// Status is the listing lifecycle state. Open is the only state a listing
// can leave; Filled and Cancelled are terminal.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
)

// Listing offers a fixed lot of shares at a per-share price. The shares sit
// in ledger escrow from the moment the listing is created, so an open
// listing is always fully backed.
type Listing struct {
	ID            domain.ListingID  `json:"id"`
	PropertyID    domain.PropertyID `json:"property_id"`
	Seller        domain.Address    `json:"seller"`
	Buyer         *domain.Address   `json:"buyer,omitempty"`
	SharesLocked  uint64            `json:"shares_locked"`
	PricePerShare uint64            `json:"price_per_share"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewListing creates an open listing. Escrow of the underlying shares is the
// caller's responsibility and must precede persistence.
func NewListing(propertyID domain.PropertyID, seller domain.Address, shares, pricePerShare uint64, now time.Time) (*Listing, error) {
	if shares == 0 {
		return nil, dErrors.New(dErrors.CodeZeroAmount, "listing must offer at least one share")
	}
	if pricePerShare == 0 {
		return nil, dErrors.New(dErrors.CodeZeroAmount, "price per share must be positive")
	}
	if seller.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "seller address is required")
	}
	if shares > math.MaxUint64/pricePerShare {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "total price exceeds settlement range")
	}
	return &Listing{
		ID:            domain.NewListingID(),
		PropertyID:    propertyID,
		Seller:        seller,
		SharesLocked:  shares,
		PricePerShare: pricePerShare,
		Status:        StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// TotalPrice is the settlement amount for the whole lot. NewListing bounds
// the product, so the multiply cannot wrap.
func (l *Listing) TotalPrice() uint64 {
	return l.SharesLocked * l.PricePerShare
}

// CanFill checks that buyer may take the listing.
func (l *Listing) CanFill(buyer domain.Address) error {
	if l.Status != StatusOpen {
		return dErrors.New(dErrors.CodeListingNotOpen, "listing is not open")
	}
	if buyer.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "buyer address is required")
	}
	if buyer == l.Seller {
		return dErrors.New(dErrors.CodeInvalidInput, "seller cannot buy own listing")
	}
	return nil
}

// ApplyFill marks the listing filled by buyer.
func (l *Listing) ApplyFill(buyer domain.Address, now time.Time) {
	l.Buyer = &buyer
	l.Status = StatusFilled
	l.UpdatedAt = now
}

// CanCancel checks that caller may withdraw the listing. Only the seller of
// an open listing can.
func (l *Listing) CanCancel(caller domain.Address) error {
	// Authorization first, so a stranger cannot learn whether the listing
	// already settled.
	if caller != l.Seller {
		return dErrors.New(dErrors.CodeUnauthorized, "only the seller can cancel a listing")
	}
	if l.Status != StatusOpen {
		return dErrors.New(dErrors.CodeListingNotOpen, "listing is not open")
	}
	return nil
}

// ApplyCancel marks the listing cancelled.
func (l *Listing) ApplyCancel(now time.Time) {
	l.Status = StatusCancelled
	l.UpdatedAt = now
}

// Clone returns a copy safe to hand out of a store.
func (l *Listing) Clone() *Listing {
	clone := *l
	if l.Buyer != nil {
		buyer := *l.Buyer
		clone.Buyer = &buyer
	}
	return &clone
}
