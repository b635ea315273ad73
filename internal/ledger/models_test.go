package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landshare/pkg/domain"
	dErrors "landshare/pkg/domain-errors"
)

var (
	alice = domain.Address("0x00000000000000000000000000000000000000aa")
	bob   = domain.Address("0x00000000000000000000000000000000000000bb")
	carol = domain.Address("0x00000000000000000000000000000000000000cc")
)

func newTestLedger(t *testing.T, supply uint64) *ShareLedger {
	t.Helper()
	l, err := NewShareLedger(domain.NewPropertyID(), alice, supply, time.Now())
	require.NoError(t, err)
	return l
}

// conservation sums live balances plus escrow; it must always equal supply.
func conservation(l *ShareLedger) uint64 {
	total := l.Escrowed
	for _, bal := range l.Balances {
		total += bal
	}
	return total
}

func TestNewShareLedger(t *testing.T) {
	t.Run("mints whole supply to owner", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		assert.Equal(t, uint64(1000), l.TotalSupply)
		assert.Equal(t, uint64(1000), l.BalanceOf(alice))
		assert.Equal(t, uint64(0), l.Escrowed)
	})

	t.Run("zero supply rejected", func(t *testing.T) {
		_, err := NewShareLedger(domain.NewPropertyID(), alice, 0, time.Now())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeZeroAmount))
	})

	t.Run("zero owner rejected", func(t *testing.T) {
		_, err := NewShareLedger(domain.NewPropertyID(), "", 10, time.Now())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestTransfer(t *testing.T) {
	t.Run("moves shares and conserves supply", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		require.NoError(t, l.Transfer(alice, bob, 300))
		assert.Equal(t, uint64(700), l.BalanceOf(alice))
		assert.Equal(t, uint64(300), l.BalanceOf(bob))
		assert.Equal(t, uint64(1000), conservation(l))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		err := l.Transfer(alice, bob, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeZeroAmount))
	})

	t.Run("insufficient balance rejected", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		err := l.Transfer(bob, carol, 1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	})

	t.Run("exact balance empties and removes entry", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		require.NoError(t, l.Transfer(alice, bob, 1000))
		_, present := l.Balances[alice]
		assert.False(t, present)
		assert.Equal(t, uint64(1000), l.BalanceOf(bob))
	})

	t.Run("absent holder reads as zero", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		assert.Equal(t, uint64(0), l.BalanceOf(carol))
	})
}

func TestEscrow(t *testing.T) {
	t.Run("debit locks shares out of live balance", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		require.NoError(t, l.DebitToEscrow(alice, 400))
		assert.Equal(t, uint64(600), l.BalanceOf(alice))
		assert.Equal(t, uint64(400), l.Escrowed)
		assert.Equal(t, uint64(1000), conservation(l))
	})

	t.Run("escrowed shares cannot be transferred", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		require.NoError(t, l.DebitToEscrow(alice, 900))
		err := l.Transfer(alice, bob, 200)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	})

	t.Run("credit releases to recipient", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		require.NoError(t, l.DebitToEscrow(alice, 400))
		require.NoError(t, l.CreditFromEscrow(bob, 400))
		assert.Equal(t, uint64(400), l.BalanceOf(bob))
		assert.Equal(t, uint64(0), l.Escrowed)
		assert.Equal(t, uint64(1000), conservation(l))
	})

	t.Run("credit beyond escrow rejected", func(t *testing.T) {
		l := newTestLedger(t, 1000)
		require.NoError(t, l.DebitToEscrow(alice, 100))
		err := l.CreditFromEscrow(bob, 101)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	})
}

func TestClone(t *testing.T) {
	l := newTestLedger(t, 100)
	clone := l.Clone()
	require.NoError(t, clone.Transfer(alice, bob, 50))
	assert.Equal(t, uint64(100), l.BalanceOf(alice), "clone mutation must not leak")
}
