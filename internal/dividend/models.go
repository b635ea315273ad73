// Package dividend distributes pooled income to share holders.
package dividend

import (
	"math/bits"
	"time"

	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
)

// IndexScale is the fixed-point scale of the distribution index. An index
// step of IndexScale means one payment unit accrued per share.
const IndexScale = 1_000_000

// Pool accumulates deposits for one property and tracks, per holder, how
// much of the running distribution index they have already claimed.
//
// Deposits advance DistributionIndex by amount*IndexScale/TotalSupply; the
// division remainder is kept in Carry and rolled into the next deposit, so
// no value is lost to truncation across deposits. A holder's entitlement is
// (DistributionIndex - Claimed[holder]) * balance / IndexScale, evaluated
// against their ledger balance at claim time.
type Pool struct {
	PropertyID        domain.PropertyID         `json:"property_id"`
	TotalSupply       uint64                    `json:"total_supply"`
	TotalDeposited    uint64                    `json:"total_deposited"`
	DistributionIndex uint64                    `json:"distribution_index"`
	Carry             uint64                    `json:"carry"`
	Claimed           map[domain.Address]uint64 `json:"claimed"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// NewPool opens the pool for a freshly fractionalized property.
func NewPool(propertyID domain.PropertyID, totalSupply uint64, now time.Time) (*Pool, error) {
	if totalSupply == 0 {
		return nil, dErrors.New(dErrors.CodeZeroAmount, "total supply must be positive")
	}
	return &Pool{
		PropertyID:  propertyID,
		TotalSupply: totalSupply,
		Claimed:     make(map[domain.Address]uint64),
		CreatedAt:   now,
	}, nil
}

// Deposit credits amount to the pool and advances the distribution index.
func (p *Pool) Deposit(amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeZeroAmount, "deposit amount must be positive")
	}
	if amount > ^uint64(0)-p.TotalDeposited {
		return dErrors.New(dErrors.CodeInvalidInput, "deposit amount too large for pool")
	}
	// The numerator amount*IndexScale+Carry can exceed 64 bits for large
	// deposits, so the division runs on a 128-bit intermediate.
	hi, lo := bits.Mul64(amount, IndexScale)
	lo, over := bits.Add64(lo, p.Carry, 0)
	hi += over
	if hi >= p.TotalSupply {
		return dErrors.New(dErrors.CodeInvalidInput, "deposit amount too large for pool")
	}
	step, rem := bits.Div64(hi, lo, p.TotalSupply)
	if step > ^uint64(0)-p.DistributionIndex {
		return dErrors.New(dErrors.CodeInvalidInput, "deposit amount too large for pool")
	}
	p.DistributionIndex += step
	p.Carry = rem
	p.TotalDeposited += amount
	return nil
}

// Entitlement computes what holder could claim right now given their
// current share balance, without mutating the pool.
func (p *Pool) Entitlement(holder domain.Address, balance uint64) uint64 {
	delta := p.DistributionIndex - p.Claimed[holder]
	// delta*balance can exceed 64 bits; the quotient itself is bounded by
	// TotalDeposited because balance never exceeds TotalSupply.
	hi, lo := bits.Mul64(delta, balance)
	owed, _ := bits.Div64(hi, lo, IndexScale)
	return owed
}

// Claim pays out holder's accrued entitlement against balance and marks the
// holder caught up with the current index. A zero entitlement is an error
// so callers never observe a silent no-op payout.
func (p *Pool) Claim(holder domain.Address, balance uint64) (uint64, error) {
	owed := p.Entitlement(holder, balance)
	if owed == 0 {
		return 0, dErrors.New(dErrors.CodeNothingToClaim, "no dividend accrued for holder")
	}
	p.Claimed[holder] = p.DistributionIndex
	return owed, nil
}

// Clone returns a deep copy so stores can hand out snapshots.
func (p *Pool) Clone() *Pool {
	claimed := make(map[domain.Address]uint64, len(p.Claimed))
	for addr, idx := range p.Claimed {
		claimed[addr] = idx
	}
	clone := *p
	clone.Claimed = claimed
	return &clone
}
