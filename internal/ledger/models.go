// Package ledger tracks fractional share balances per property.
package ledger

import (
	"time"

	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
)

// ShareLedger is the fungible balance table for one fractionalized property.
//
// Invariants:
//   - TotalSupply is fixed at mint; no re-mint exists anywhere.
//   - sum(Balances) + Escrowed == TotalSupply at all times.
//   - Balances never go negative; absence of an entry means zero.
//   - Entries are created on first credit and removed when they reach zero,
//     so iteration only ever sees live holders.
type ShareLedger struct {
	PropertyID  domain.PropertyID         `json:"property_id"`
	TotalSupply uint64                    `json:"total_supply"`
	Escrowed    uint64                    `json:"escrowed"`
	Balances    map[domain.Address]uint64 `json:"balances"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// NewShareLedger mints the whole supply to owner. Called exactly once per
// property, by fractionalization.
func NewShareLedger(propertyID domain.PropertyID, owner domain.Address, totalSupply uint64, now time.Time) (*ShareLedger, error) {
	if totalSupply == 0 {
		return nil, dErrors.New(dErrors.CodeZeroAmount, "total supply must be positive")
	}
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner address is required")
	}
	return &ShareLedger{
		PropertyID:  propertyID,
		TotalSupply: totalSupply,
		Balances:    map[domain.Address]uint64{owner: totalSupply},
		CreatedAt:   now,
	}, nil
}

// BalanceOf returns the holder's live (non-escrowed) balance.
func (l *ShareLedger) BalanceOf(holder domain.Address) uint64 {
	return l.Balances[holder]
}

// Transfer moves amount from one live balance to another. Value is only
// moved, never created or destroyed, so conservation holds by construction.
func (l *ShareLedger) Transfer(from, to domain.Address, amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeZeroAmount, "transfer amount must be positive")
	}
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient address is required")
	}
	if l.Balances[from] < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "balance too low for transfer")
	}
	l.debit(from, amount)
	l.Balances[to] += amount
	return nil
}

// DebitToEscrow locks amount out of the holder's live balance. Used by the
// marketplace at listing time so listed shares cannot be double-sold or
// transferred away mid-listing.
func (l *ShareLedger) DebitToEscrow(holder domain.Address, amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeZeroAmount, "escrow amount must be positive")
	}
	if l.Balances[holder] < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "balance too low to escrow")
	}
	l.debit(holder, amount)
	l.Escrowed += amount
	return nil
}

// CreditFromEscrow releases previously escrowed shares to a live balance:
// to the buyer on fill, back to the seller on cancel.
func (l *ShareLedger) CreditFromEscrow(to domain.Address, amount uint64) error {
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient address is required")
	}
	if l.Escrowed < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "escrow underflow")
	}
	l.Escrowed -= amount
	l.Balances[to] += amount
	return nil
}

func (l *ShareLedger) debit(holder domain.Address, amount uint64) {
	remaining := l.Balances[holder] - amount
	if remaining == 0 {
		delete(l.Balances, holder)
	} else {
		l.Balances[holder] = remaining
	}
}

// Clone returns a deep copy so stores can hand out snapshots.
func (l *ShareLedger) Clone() *ShareLedger {
	balances := make(map[domain.Address]uint64, len(l.Balances))
	for addr, bal := range l.Balances {
		balances[addr] = bal
	}
	clone := *l
	clone.Balances = balances
	return &clone
}
