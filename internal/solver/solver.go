// Package solver finds the shortest sequence of slides that solves a board.
package solver

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gammazero/deque"

	"github.com/vancomm/fifteen-server/internal/puzzle"
)

var (
	ErrUnsolvable = errors.New("board cannot be solved")
	ErrLimit      = errors.New("search limit exceeded")
	ErrSolved     = errors.New("board is already solved")
	ErrTooLarge   = errors.New("board too large to search")
)

type step struct {
	prev  string
	label int
}

type search struct {
	columns, rows int
	n             int
}

// Solvable reports whether labels, listed in scan order, can be brought to
// ascending order by sliding tiles.
func Solvable(columns, rows int, labels []int) bool {
	n := columns * rows
	empty := slices.Index(labels, n-1)
	if empty < 0 {
		return false
	}

	if columns == 1 || rows == 1 {
		// tiles can only shift along the line, their order is fixed
		last := -1
		for _, l := range labels {
			if l == n-1 {
				continue
			}
			if l < last {
				return false
			}
			last = l
		}
		return true
	}

	// every slide is one transposition and moves the empty tile by one cell
	ex, ey := empty%columns, empty/columns
	gx, gy := (n-1)%columns, (n-1)/columns
	distance := abs(ex-gx) + abs(ey-gy)
	return permutationParity(labels) == distance%2
}

func permutationParity(labels []int) int {
	visited := make([]bool, len(labels))
	cycles := 0
	for i := range labels {
		if visited[i] {
			continue
		}
		cycles++
		for j := i; !visited[j]; j = labels[j] {
			visited[j] = true
		}
	}
	return (len(labels) - cycles) % 2
}

// Solve returns the labels to slide, in order, to solve the board. The search
// gives up with [ErrLimit] after visiting more than limit states.
func Solve(columns, rows int, labels []int, limit int) ([]int, error) {
	save := puzzle.SaveState{Columns: columns, Rows: rows, Labels: labels}
	if err := save.Validate(); err != nil {
		return nil, err
	}
	n := columns * rows
	if n > 256 {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, columns, rows)
	}
	if !Solvable(columns, rows, labels) {
		return nil, ErrUnsolvable
	}

	start := encode(labels)
	goal := make([]int, n)
	for i := range goal {
		goal[i] = i
	}
	target := encode(goal)
	if start == target {
		return []int{}, nil
	}

	s := search{columns: columns, rows: rows, n: n}
	parents := map[string]step{start: {}}
	var queue deque.Deque[string]
	queue.PushBack(start)

	for queue.Len() > 0 {
		state := queue.PopFront()
		for _, next := range s.neighbours(state) {
			if _, seen := parents[next.state]; seen {
				continue
			}
			parents[next.state] = step{prev: state, label: next.label}
			if next.state == target {
				return path(parents, start, target), nil
			}
			if len(parents) > limit {
				return nil, fmt.Errorf("%w: %d states", ErrLimit, limit)
			}
			queue.PushBack(next.state)
		}
	}
	return nil, ErrUnsolvable
}

// Hint returns the label of the tile to slide next.
func Hint(columns, rows int, labels []int, limit int) (int, error) {
	moves, err := Solve(columns, rows, labels, limit)
	if err != nil {
		return 0, err
	}
	if len(moves) == 0 {
		return 0, ErrSolved
	}
	return moves[0], nil
}

type neighbour struct {
	state string
	label int
}

func (s search) neighbours(state string) []neighbour {
	empty := -1
	for i := range len(state) {
		if int(state[i]) == s.n-1 {
			empty = i
			break
		}
	}
	x, row := empty%s.columns, empty/s.columns

	out := make([]neighbour, 0, 4)
	try := func(i int) {
		b := []byte(state)
		label := int(b[i])
		b[empty], b[i] = b[i], b[empty]
		out = append(out, neighbour{string(b), label})
	}
	if x+1 < s.columns {
		try(empty + 1)
	}
	if x > 0 {
		try(empty - 1)
	}
	if row > 0 {
		try(empty - s.columns)
	}
	if row+1 < s.rows {
		try(empty + s.columns)
	}
	return out
}

func path(parents map[string]step, start, target string) []int {
	var moves []int
	for state := target; state != start; {
		st := parents[state]
		moves = append(moves, st.label)
		state = st.prev
	}
	slices.Reverse(moves)
	return moves
}

func encode(labels []int) string {
	b := make([]byte, len(labels))
	for i, l := range labels {
		b[i] = byte(l)
	}
	return string(b)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
