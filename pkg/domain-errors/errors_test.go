package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches own code", func(t *testing.T) {
		err := New(CodeInsufficientBalance, "short")
		assert.True(t, HasCode(err, CodeInsufficientBalance))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		inner := New(CodeListingNotOpen, "terminal")
		wrapped := fmt.Errorf("buy: %w", inner)
		assert.True(t, HasCode(wrapped, CodeListingNotOpen))
	})

	t.Run("nil error has no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("uncoded errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("coded errors report their code", func(t *testing.T) {
		assert.Equal(t, CodeZeroAmount, CodeOf(New(CodeZeroAmount, "zero")))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeInternal, "noop"))
	})

	t.Run("wrapped error unwraps to the cause", func(t *testing.T) {
		cause := errors.New("pg down")
		err := Wrap(cause, CodeInternal, "load ledger")
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "load ledger")
	})
}

func TestNewf(t *testing.T) {
	err := Newf(CodeDuplicateProperty, "property %d", 7)
	assert.True(t, HasCode(err, CodeDuplicateProperty))
	assert.Contains(t, err.Error(), "property 7")
}
