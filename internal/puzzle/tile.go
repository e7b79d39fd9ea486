package puzzle

import "fmt"

// SwapFunc is called after a tile changed coordinates. secondary is set for
// the second of the two notifications raised by a single [Tile.Swap].
type SwapFunc func(t *Tile, secondary bool)

type Tile struct {
	label    int
	x, y     int
	onSwap   []SwapFunc
	onDetach []func(t *Tile)
	detached bool
}

func newTile(label, x, y int) *Tile {
	return &Tile{label: label, x: x, y: y}
}

func (t *Tile) Label() int { return t.label }
func (t *Tile) X() int     { return t.x }
func (t *Tile) Y() int     { return t.y }

func (t *Tile) OnSwap(fn SwapFunc) {
	t.onSwap = append(t.onSwap, fn)
}

func (t *Tile) OnDetach(fn func(t *Tile)) {
	t.onDetach = append(t.onDetach, fn)
}

// Swap exchanges coordinates with other. Observers of t are notified first,
// then observers of other with secondary set.
func (t *Tile) Swap(other *Tile) {
	t.x, other.x = other.x, t.x
	t.y, other.y = other.y, t.y

	for _, fn := range t.onSwap {
		fn(t, false)
	}
	for _, fn := range other.onSwap {
		fn(other, true)
	}
}

func (t *Tile) IsAdjacentTo(other *Tile) bool {
	return abs(other.x-t.x)+abs(other.y-t.y) == 1
}

// Detach drops every swap observer and raises the destroyed notification.
// Must be called at most once.
func (t *Tile) Detach() error {
	if t.detached {
		return fmt.Errorf("%w: tile %d already detached", ErrPreconditionViolation, t.label)
	}
	t.detached = true
	t.onSwap = nil
	for _, fn := range t.onDetach {
		fn(t)
	}
	return nil
}

func (t *Tile) Detached() bool {
	return t.detached
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile %d [X:%d Y:%d]", t.label, t.x, t.y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
