package dividend

import (
	"math"
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
)

func newTestPool(t *testing.T, supply uint64) *Pool {
	t.Helper()
	p, err := NewPool(domain.NewPropertyID(), supply, time.Now())
	require.NoError(t, err)
	return p
}

func TestDeposit(t *testing.T) {
	t.Run("advances index by scaled per-share amount", func(t *testing.T) {
		p := newTestPool(t, 1000)
		require.NoError(t, p.Deposit(500))
		// 500 * 1e6 / 1000 = 500_000 exactly, no remainder.
		assert.Equal(t, uint64(500_000), p.DistributionIndex)
		assert.Equal(t, uint64(0), p.Carry)
		assert.Equal(t, uint64(500), p.TotalDeposited)
	})

	t.Run("remainder carries into the next deposit", func(t *testing.T) {
		p := newTestPool(t, 3)
		require.NoError(t, p.Deposit(1))
		// 1 * 1e6 / 3 = 333_333 rem 1
		assert.Equal(t, uint64(333_333), p.DistributionIndex)
		assert.Equal(t, uint64(1), p.Carry)

		require.NoError(t, p.Deposit(1))
		// (1e6 + 1) / 3 = 333_333 rem 2
		assert.Equal(t, uint64(666_666), p.DistributionIndex)
		assert.Equal(t, uint64(2), p.Carry)

		require.NoError(t, p.Deposit(1))
		// (1e6 + 2) / 3 = 333_334 rem 0: the carry was not lost.
		assert.Equal(t, uint64(1_000_000), p.DistributionIndex)
		assert.Equal(t, uint64(0), p.Carry)
	})

	t.Run("large deposit does not wrap the index", func(t *testing.T) {
		p := newTestPool(t, 1000)
		// The scaled numerator 2e13 * 1e6 exceeds 64 bits; the index must
		// still land on the exact per-share value.
		require.NoError(t, p.Deposit(20_000_000_000_000))
		assert.Equal(t, uint64(20_000_000_000_000_000), p.DistributionIndex)
		assert.Equal(t, uint64(0), p.Carry)

		owed, err := p.Claim(alice, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(2_000_000_000_000), owed)
	})

	t.Run("deposit beyond index range rejected", func(t *testing.T) {
		p := newTestPool(t, 1)
		err := p.Deposit(math.MaxUint64/IndexScale + 1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, uint64(0), p.DistributionIndex)
		assert.Equal(t, uint64(0), p.TotalDeposited)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		p := newTestPool(t, 10)
		err := p.Deposit(0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeZeroAmount))
	})
}

func TestClaim(t *testing.T) {
	t.Run("pays out proportional to balance", func(t *testing.T) {
		p := newTestPool(t, 1000)
		require.NoError(t, p.Deposit(500))

		owed, err := p.Claim(alice, 600)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), owed)

		owed, err = p.Claim(bob, 400)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), owed)
	})

	t.Run("second claim without new deposit yields nothing", func(t *testing.T) {
		p := newTestPool(t, 1000)
		require.NoError(t, p.Deposit(500))
		_, err := p.Claim(alice, 600)
		require.NoError(t, err)

		_, err = p.Claim(alice, 600)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNothingToClaim))
	})

	t.Run("new deposit reopens entitlement", func(t *testing.T) {
		p := newTestPool(t, 1000)
		require.NoError(t, p.Deposit(500))
		_, err := p.Claim(alice, 600)
		require.NoError(t, err)

		require.NoError(t, p.Deposit(1000))
		owed, err := p.Claim(alice, 600)
		require.NoError(t, err)
		assert.Equal(t, uint64(600), owed)
	})

	t.Run("zero balance holder has nothing to claim", func(t *testing.T) {
		p := newTestPool(t, 1000)
		require.NoError(t, p.Deposit(500))
		_, err := p.Claim(bob, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNothingToClaim))
	})
}

func TestEntitlement(t *testing.T) {
	p := newTestPool(t, 1000)
	require.NoError(t, p.Deposit(500))

	assert.Equal(t, uint64(300), p.Entitlement(alice, 600))
	// Preview does not advance the claimed marker.
	assert.Equal(t, uint64(300), p.Entitlement(alice, 600))
}
