package puzzle

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
)

type shuffle struct {
	rnd       *rand.Rand
	length    int // swaps in the current pass
	step      int
	last      int // label of the previous partner, -1 before the first swap
	passes    int
	suspended bool
}

// ShuffleTimes is the number of swaps in one shuffle pass.
func (b *Board) ShuffleTimes() int {
	return b.columns * b.rows * 3
}

func (b *Board) OnShuffleDone(fn func()) {
	b.onShuffleDone = append(b.onShuffleDone, fn)
}

// Shuffling reports whether a shuffle is in progress.
func (b *Board) Shuffling() bool {
	return b.shuffle != nil
}

// Shuffle performs the first swap of a shuffle and suspends. Every following
// swap happens on [Board.ShuffleNext].
func (b *Board) Shuffle(rnd *rand.Rand) error {
	if b.detached {
		return fmt.Errorf("%w: board is detached", ErrPreconditionViolation)
	}
	if b.shuffle != nil {
		return fmt.Errorf("%w: shuffle already in progress", ErrPreconditionViolation)
	}
	b.shuffle = &shuffle{
		rnd:    rnd,
		length: b.ShuffleTimes(),
		last:   -1,
		passes: 1,
	}
	b.shuffleOnce()
	return nil
}

// ShuffleNext acknowledges the last shuffle swap and resumes the sequence.
func (b *Board) ShuffleNext() error {
	s := b.shuffle
	if s == nil || !s.suspended {
		return fmt.Errorf("%w: no suspended shuffle", ErrPreconditionViolation)
	}
	s.suspended = false

	if s.step < s.length {
		b.shuffleOnce()
		return nil
	}

	if b.Solved() {
		// An odd pass moves the empty tile off its home cell, so the
		// board cannot stay solved.
		s.step = 0
		s.length = b.ShuffleTimes() + 1
		s.passes++
		Log.Debug("shuffle ended solved, retrying",
			slog.Int("columns", b.columns),
			slog.Int("rows", b.rows),
			slog.Int("pass", s.passes),
		)
		b.shuffleOnce()
		return nil
	}

	b.shuffle = nil
	for _, fn := range b.onShuffleDone {
		fn()
	}
	return nil
}

// CancelShuffle drops the active shuffle without raising the shuffle-done
// notification. It reports whether a shuffle was active.
func (b *Board) CancelShuffle() bool {
	active := b.shuffle != nil
	b.shuffle = nil
	return active
}

// ShuffleAll runs a whole shuffle, acknowledging every swap immediately.
func (b *Board) ShuffleAll(rnd *rand.Rand) error {
	if err := b.Shuffle(rnd); err != nil {
		return err
	}
	for b.Shuffling() {
		if err := b.ShuffleNext(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) shuffleOnce() {
	s := b.shuffle
	empty := b.EmptyTile()
	candidates := b.AdjacentTiles(empty)
	if len(candidates) > 1 {
		candidates = slices.DeleteFunc(candidates, func(t *Tile) bool {
			return t.label == s.last
		})
	}
	t := candidates[s.rnd.IntN(len(candidates))]
	s.step++
	s.last = t.label
	t.Swap(empty)
	s.suspended = true
}
