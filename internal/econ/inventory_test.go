package econ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryWithDelta(t *testing.T) {
	inv := FromWhole(10, 0)

	next, err := inv.WithDelta(-5*Scale, 3*Scale)
	require.NoError(t, err)
	assert.Equal(t, FromWhole(5, 3), next)

	_, err = inv.WithDelta(-20*Scale, 0)
	assert.Error(t, err, "delta that drives A negative must be rejected")
}

func TestInventoryValid(t *testing.T) {
	assert.True(t, Inventory{A: 0, B: 0}.Valid())
	assert.False(t, Inventory{A: -1, B: 0}.Valid())
}

func TestRoundToQuantity(t *testing.T) {
	assert.Equal(t, int64(150), RoundToQuantity(1.5))
	assert.Equal(t, int64(-150), RoundToQuantity(-1.5))
	assert.Equal(t, int64(0), RoundToQuantity(0))
}
