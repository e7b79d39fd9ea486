package puzzle

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleAllNeverSolved(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, size := range sizes {
		t.Run(fmt.Sprintf("%dx%d", size[0], size[1]), func(t *testing.T) {
			for range 20 {
				b, err := NewBoard(size[0], size[1])
				require.NoError(t, err)
				require.NoError(t, b.ShuffleAll(r))
				assert.False(t, b.Shuffling())
				assert.False(t, b.Solved())
				requireInSync(t, b)
			}
		})
	}
}

func TestShufflePacing(t *testing.T) {
	b, err := NewBoard(4, 4)
	require.NoError(t, err)

	swaps := 0
	secondary := 0
	for _, tile := range b.Tiles() {
		tile.OnSwap(func(_ *Tile, s bool) {
			swaps++
			if s {
				secondary++
			}
		})
	}
	done := 0
	b.OnShuffleDone(func() { done++ })

	require.NoError(t, b.Shuffle(rand.New(rand.NewPCG(3, 4))))
	assert.True(t, b.Shuffling())
	assert.Equal(t, 2, swaps)
	assert.Equal(t, 1, secondary)

	require.ErrorIs(t, b.Shuffle(rand.New(rand.NewPCG(3, 4))), ErrPreconditionViolation)
	require.ErrorIs(t, b.Slide(0, 0), ErrPreconditionViolation)

	acks := 0
	for b.Shuffling() {
		assert.Equal(t, 0, done)
		require.NoError(t, b.ShuffleNext())
		acks++
	}

	assert.Equal(t, 1, done)
	assert.GreaterOrEqual(t, acks, b.ShuffleTimes())
	assert.Equal(t, acks, secondary)
	assert.Equal(t, 2*acks, swaps)
	assert.False(t, b.Solved())

	require.ErrorIs(t, b.ShuffleNext(), ErrPreconditionViolation)
	assert.Equal(t, 1, done)
}

func TestShuffleNeverUndoesPreviousSwap(t *testing.T) {
	b, err := NewBoard(5, 5)
	require.NoError(t, err)

	var moved []int
	for _, tile := range b.Tiles() {
		tile.OnSwap(func(t *Tile, secondary bool) {
			if !secondary {
				moved = append(moved, t.Label())
			}
		})
	}

	require.NoError(t, b.ShuffleAll(rand.New(rand.NewPCG(5, 6))))
	require.NotEmpty(t, moved)
	for i := 1; i < len(moved); i++ {
		assert.NotEqual(t, moved[i-1], moved[i], "swap %d undid swap %d", i, i-1)
	}
}

func TestShuffleReproducible(t *testing.T) {
	a, err := NewBoard(4, 4)
	require.NoError(t, err)
	b, err := NewBoard(4, 4)
	require.NoError(t, err)

	require.NoError(t, a.ShuffleAll(rand.New(rand.NewPCG(7, 8))))
	require.NoError(t, b.ShuffleAll(rand.New(rand.NewPCG(7, 8))))
	assert.Equal(t, a.Labels(), b.Labels())
}

func TestShuffleNextIsNotReentrant(t *testing.T) {
	b, err := NewBoard(3, 3)
	require.NoError(t, err)

	var inner error
	b.EmptyTile().OnSwap(func(*Tile, bool) {
		if inner == nil {
			inner = b.ShuffleNext()
		}
	})

	require.NoError(t, b.Shuffle(rand.New(rand.NewPCG(1, 1))))
	assert.ErrorIs(t, inner, ErrPreconditionViolation)
}

func TestCancelShuffle(t *testing.T) {
	b, err := NewBoard(3, 3)
	require.NoError(t, err)

	done := false
	b.OnShuffleDone(func() { done = true })

	assert.False(t, b.CancelShuffle())
	require.NoError(t, b.Shuffle(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, b.ShuffleNext())
	assert.True(t, b.CancelShuffle())

	assert.False(t, b.Shuffling())
	assert.ErrorIs(t, b.ShuffleNext(), ErrPreconditionViolation)
	assert.False(t, done)
	requireInSync(t, b)
}
