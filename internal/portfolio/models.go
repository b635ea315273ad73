// Package portfolio aggregates everything the registry knows about one
// address into a single read model.
package portfolio

import (
	"time"

	"landshare/internal/market"
	"landshare/internal/property"
	"landshare/pkg/domain"
)

// Holding is one share position with its unclaimed dividend entitlement.
type Holding struct {
	PropertyID  domain.PropertyID `json:"property_id"`
	Balance     uint64            `json:"balance"`
	TotalSupply uint64            `json:"total_supply"`
	Claimable   uint64            `json:"claimable_dividend"`
}

// View is the assembled portfolio for one address.
type View struct {
	Address     domain.Address     `json:"address"`
	Properties  []*property.Record `json:"properties"`
	Holdings    []Holding          `json:"holdings"`
	Listings    []*market.Listing  `json:"listings"`
	GeneratedAt time.Time          `json:"generated_at"`
}
