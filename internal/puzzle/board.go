package puzzle

import (
	"errors"
	"fmt"
	"log/slog"
)

var Log *slog.Logger = slog.Default()

// Board is a columns x rows grid of tiles. Tiles are stored by label, the grid
// stores labels by position (y*columns + x).
type Board struct {
	columns, rows int
	tiles         []*Tile
	grid          []int
	empty         int
	shuffle       *shuffle
	onShuffleDone []func()
	detached      bool
}

func validateSize(columns, rows int) error {
	if columns < 1 || rows < 1 || columns*rows < 2 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidBoardSize, columns, rows)
	}
	return nil
}

// NewBoard creates a solved board. Labels are assigned in scan order: y from
// rows-1 down to 0, x from 0 to columns-1.
func NewBoard(columns, rows int) (*Board, error) {
	if err := validateSize(columns, rows); err != nil {
		return nil, err
	}
	return build(columns, rows, func(i int) int { return i }), nil
}

// LoadBoard creates a board from labels listed in scan order.
func LoadBoard(columns, rows int, labels []int) (*Board, error) {
	if err := validateSize(columns, rows); err != nil {
		return nil, err
	}
	if err := validateLabels(columns, rows, labels); err != nil {
		return nil, err
	}
	return build(columns, rows, func(i int) int { return labels[i] }), nil
}

func validateLabels(columns, rows int, labels []int) error {
	n := columns * rows
	if len(labels) != n {
		return fmt.Errorf(
			"%w: have %d labels, want %d", ErrInvalidSaveData, len(labels), n,
		)
	}
	seen := make([]bool, n)
	for _, l := range labels {
		if l < 0 || l >= n {
			return fmt.Errorf("%w: label %d out of range", ErrInvalidSaveData, l)
		}
		if seen[l] {
			return fmt.Errorf("%w: duplicate label %d", ErrInvalidSaveData, l)
		}
		seen[l] = true
	}
	return nil
}

func build(columns, rows int, labelAt func(i int) int) *Board {
	n := columns * rows
	b := &Board{
		columns: columns,
		rows:    rows,
		tiles:   make([]*Tile, n),
		grid:    make([]int, n),
		empty:   n - 1,
	}
	i := 0
	for y := rows - 1; y >= 0; y-- {
		for x := range columns {
			label := labelAt(i)
			t := newTile(label, x, y)
			t.OnSwap(b.syncTile)
			b.tiles[label] = t
			b.grid[b.pos(x, y)] = label
			i++
		}
	}
	return b
}

func (b *Board) pos(x, y int) int {
	return y*b.columns + x
}

func (b *Board) syncTile(t *Tile, _ bool) {
	b.grid[b.pos(t.x, t.y)] = t.label
}

func (b *Board) Columns() int { return b.columns }
func (b *Board) Rows() int    { return b.rows }

func (b *Board) InBounds(x, y int) bool {
	return 0 <= x && x < b.columns && 0 <= y && y < b.rows
}

// TileAt returns nil when (x, y) is outside the board.
func (b *Board) TileAt(x, y int) *Tile {
	if !b.InBounds(x, y) {
		return nil
	}
	return b.tiles[b.grid[b.pos(x, y)]]
}

// Tile returns nil for an unknown label.
func (b *Board) Tile(label int) *Tile {
	if label < 0 || label >= len(b.tiles) {
		return nil
	}
	return b.tiles[label]
}

// Tiles lists tiles by label.
func (b *Board) Tiles() []*Tile {
	return b.tiles
}

func (b *Board) EmptyTile() *Tile {
	return b.tiles[b.empty]
}

func (b *Board) IsEmpty(t *Tile) bool {
	return t.label == b.empty
}

// Labels lists labels in scan order.
func (b *Board) Labels() []int {
	labels := make([]int, 0, len(b.grid))
	for y := b.rows - 1; y >= 0; y-- {
		for x := range b.columns {
			labels = append(labels, b.grid[b.pos(x, y)])
		}
	}
	return labels
}

// Solved reports whether labels ascend in scan order.
func (b *Board) Solved() bool {
	last := 0
	for y := b.rows - 1; y >= 0; y-- {
		for x := range b.columns {
			label := b.grid[b.pos(x, y)]
			if label < last {
				return false
			}
			last = label
		}
	}
	return true
}

// AdjacentTiles returns the orthogonal neighbours of center in the order
// right, left, up, down.
func (b *Board) AdjacentTiles(center *Tile) []*Tile {
	adjacent := make([]*Tile, 0, 4)
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if t := b.TileAt(center.x+d[0], center.y+d[1]); t != nil {
			adjacent = append(adjacent, t)
		}
	}
	return adjacent
}

// Slide moves the tile at (x, y) into the empty slot.
func (b *Board) Slide(x, y int) error {
	if b.detached {
		return fmt.Errorf("%w: board is detached", ErrPreconditionViolation)
	}
	if b.Shuffling() {
		return fmt.Errorf("%w: board is shuffling", ErrPreconditionViolation)
	}
	t := b.TileAt(x, y)
	if t == nil {
		return fmt.Errorf("%w: (%d, %d) is out of bounds", ErrIllegalMove, x, y)
	}
	empty := b.EmptyTile()
	if t == empty || !t.IsAdjacentTo(empty) {
		return fmt.Errorf("%w: %s is not next to the empty tile", ErrIllegalMove, t)
	}
	t.Swap(empty)
	return nil
}

// Detach detaches every tile. The board accepts no moves afterwards.
func (b *Board) Detach() error {
	if b.detached {
		return fmt.Errorf("%w: board already detached", ErrPreconditionViolation)
	}
	b.detached = true
	b.shuffle = nil
	var errs []error
	for _, t := range b.tiles {
		if err := t.Detach(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Board) Detached() bool {
	return b.detached
}

func (b *Board) String() string {
	return fmt.Sprintf("Board %dx%d %v", b.columns, b.rows, b.Labels())
}
