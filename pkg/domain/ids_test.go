package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "landshare/pkg/domain-errors"
)

func TestParsePropertyID(t *testing.T) {
	t.Run("valid UUID accepted", func(t *testing.T) {
		raw := uuid.NewString()
		id, err := ParsePropertyID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := ParsePropertyID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ParsePropertyID("not-a-uuid")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("nil UUID rejected", func(t *testing.T) {
		_, err := ParsePropertyID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestIDTypesAreDistinct(t *testing.T) {
	// Compile-time property spelled out: assigning across ID types does not
	// build, so the most we can check at runtime is distinct parsing paths.
	raw := uuid.NewString()

	propertyID, err := ParsePropertyID(raw)
	require.NoError(t, err)
	listingID, err := ParseListingID(raw)
	require.NoError(t, err)

	assert.Equal(t, propertyID.String(), listingID.String())
}

func TestIDJSONRoundTrip(t *testing.T) {
	id := NewPropertyID()

	raw, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+id.String()+`"`, string(raw))

	var decoded PropertyID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded)
}

func TestIDUnmarshalRejectsInvalid(t *testing.T) {
	var decoded ListingID
	err := json.Unmarshal([]byte(`"bogus"`), &decoded)
	assert.Error(t, err)
}
