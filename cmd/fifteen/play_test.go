package main

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/fifteen-server/internal/prefs"
	"github.com/vancomm/fifteen-server/internal/puzzle"
	"github.com/vancomm/fifteen-server/internal/solver"
)

type memorySaver struct {
	state *puzzle.SaveState
}

func (m *memorySaver) Save(s puzzle.SaveState) error {
	m.state = &s
	return nil
}

func (m *memorySaver) Clear() error {
	m.state = nil
	return nil
}

func (m *memorySaver) Load() (puzzle.SaveState, error) {
	if m.state == nil {
		return puzzle.SaveState{}, prefs.ErrNoSave
	}
	return *m.state, nil
}

func newTestPlayer(input string, saver *memorySaver) (*player, *bytes.Buffer) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	var out bytes.Buffer
	return &player{
		in:    strings.NewReader(input),
		out:   &out,
		log:   logger,
		saver: saver,
		rnd:   rand.New(rand.NewPCG(7, 7)),
		limit: 10_000,
	}, &out
}

func TestParseSize(t *testing.T) {
	columns, rows, err := parseSize("5X3")
	require.NoError(t, err)
	assert.Equal(t, 5, columns)
	assert.Equal(t, 3, rows)

	for _, s := range []string{"", "4", "ax4", "4xb"} {
		_, _, err := parseSize(s)
		assert.Error(t, err, s)
	}
}

func TestContinueAndWin(t *testing.T) {
	saver := &memorySaver{state: &puzzle.SaveState{
		Columns: 2, Rows: 2, MoveCount: 4, Labels: []int{0, 1, 3, 2},
	}}
	p, out := newTestPlayer("x\n2\nh\n3\n", saver)

	require.NoError(t, p.run())
	assert.True(t, strings.HasPrefix(out.String(), "1 2\n. 3\n"), out.String())
	assert.Contains(t, out.String(), errBadInput.Error())
	assert.Contains(t, out.String(), "not next to the empty tile")
	assert.Contains(t, out.String(), "try 3")
	assert.Contains(t, out.String(), "Solved in 5 moves!")
	assert.Nil(t, saver.state)
}

func TestNewGameSavesShuffle(t *testing.T) {
	saver := &memorySaver{}
	p, out := newTestPlayer("2\nq\n", saver)

	assert.ErrorIs(t, p.run(), errQuit)
	assert.Contains(t, out.String(), "1) 3x3")
	require.NotNil(t, saver.state)
	assert.Equal(t, 4, saver.state.Columns)
	assert.Equal(t, 4, saver.state.Rows)
	assert.Zero(t, saver.state.MoveCount)
	assert.True(t, solver.Solvable(4, 4, saver.state.Labels))

	b, err := saver.state.Board()
	require.NoError(t, err)
	assert.False(t, b.Solved())
}

func TestFreshIgnoresSave(t *testing.T) {
	saver := &memorySaver{state: &puzzle.SaveState{
		Columns: 2, Rows: 2, Labels: []int{0, 1, 3, 2},
	}}
	p, _ := newTestPlayer("q\n", saver)
	p.fresh = true
	p.sizeOf = "3x2"

	assert.ErrorIs(t, p.run(), errQuit)
	require.NotNil(t, saver.state)
	assert.Equal(t, 3, saver.state.Columns)
	assert.Equal(t, 2, saver.state.Rows)
}

func TestRender(t *testing.T) {
	b, err := puzzle.LoadBoard(4, 3, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 10})
	require.NoError(t, err)
	p, out := newTestPlayer("", &memorySaver{})

	p.render(b)
	assert.Equal(t, " 1  2  3  4\n 5  6  7  8\n 9 10 .. 11\n", out.String())
}
