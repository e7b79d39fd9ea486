package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swapCall struct {
	label     int
	secondary bool
}

func TestTileSwap(t *testing.T) {
	a := newTile(0, 0, 0)
	b := newTile(1, 1, 0)

	var calls []swapCall
	record := func(t *Tile, secondary bool) {
		calls = append(calls, swapCall{t.Label(), secondary})
	}
	a.OnSwap(record)
	b.OnSwap(record)

	a.Swap(b)

	assert.Equal(t, 1, a.X())
	assert.Equal(t, 0, a.Y())
	assert.Equal(t, 0, b.X())
	assert.Equal(t, 0, b.Y())
	assert.Equal(t, 0, a.Label())
	assert.Equal(t, 1, b.Label())
	assert.Equal(t, []swapCall{{0, false}, {1, true}}, calls)
}

func TestTileIsAdjacentTo(t *testing.T) {
	center := newTile(0, 1, 1)
	tests := []struct {
		x, y     int
		adjacent bool
	}{
		{2, 1, true},
		{0, 1, true},
		{1, 2, true},
		{1, 0, true},
		{1, 1, false},
		{2, 2, false},
		{0, 0, false},
		{3, 1, false},
		{1, 3, false},
	}
	for _, test := range tests {
		other := newTile(1, test.x, test.y)
		assert.Equal(t, test.adjacent, center.IsAdjacentTo(other), "(%d, %d)", test.x, test.y)
		assert.Equal(t, center.IsAdjacentTo(other), other.IsAdjacentTo(center))
	}
}

func TestTileDetach(t *testing.T) {
	a := newTile(0, 0, 0)
	b := newTile(1, 0, 1)

	swaps := 0
	a.OnSwap(func(*Tile, bool) { swaps++ })
	destroyed := 0
	a.OnDetach(func(*Tile) { destroyed++ })

	require.NoError(t, a.Detach())
	assert.True(t, a.Detached())
	assert.Equal(t, 1, destroyed)

	a.Swap(b)
	assert.Equal(t, 0, swaps)
	assert.Equal(t, 1, a.Y())

	err := a.Detach()
	require.ErrorIs(t, err, ErrPreconditionViolation)
	assert.Equal(t, 1, destroyed)
}
