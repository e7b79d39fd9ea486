package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/gammazero/deque"

	"github.com/vancomm/fifteen-server/internal/puzzle"
)

type State int

const (
	ShufflingAnimation State = iota
	WaitingForInput
	SwapAnimation
	Victory
	Aborted
)

func (s State) String() string {
	switch s {
	case ShufflingAnimation:
		return "shuffling"
	case WaitingForInput:
		return "waiting"
	case SwapAnimation:
		return "swapping"
	case Victory:
		return "victory"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Sizes are the board sizes offered to players.
var Sizes = [][2]int{{3, 3}, {4, 4}, {5, 5}}

var (
	ErrBusy             = errors.New("game is busy")
	ErrFinished         = errors.New("game is finished")
	ErrUnexpectedSettle = errors.New("unexpected settle")
)

// Saver persists the game after every completed move.
type Saver interface {
	Save(state puzzle.SaveState) error
	Clear() error
}

type Option func(*Game)

func WithSaver(s Saver) Option {
	return func(g *Game) { g.saver = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

type Game struct {
	board     *puzzle.Board
	state     State
	moveCount int
	saver     Saver
	logger    *slog.Logger
	events    deque.Deque[Event]
}

func newGame(board *puzzle.Board, opts []Option) *Game {
	g := &Game{
		board:  board,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, t := range board.Tiles() {
		t.OnSwap(g.tileSwapped)
		t.OnDetach(g.tileDetached)
	}
	board.OnShuffleDone(g.shuffleDone)
	return g
}

// New creates a solved board and starts shuffling it. Shuffle swaps are
// paced by [Game.Settled].
func New(columns, rows int, rnd *rand.Rand, opts ...Option) (*Game, error) {
	board, err := puzzle.NewBoard(columns, rows)
	if err != nil {
		return nil, err
	}
	g := newGame(board, opts)
	g.state = ShufflingAnimation
	if err := board.Shuffle(rnd); err != nil {
		return nil, err
	}
	g.logger.Debug("new game", slog.Int("columns", columns), slog.Int("rows", rows))
	return g, nil
}

// Continue restores a saved game, ready for input. A solved save is won
// straight away.
func Continue(save puzzle.SaveState, opts ...Option) (*Game, error) {
	board, err := save.Board()
	if err != nil {
		return nil, err
	}
	g := newGame(board, opts)
	g.moveCount = save.MoveCount
	g.state = WaitingForInput
	if board.Solved() {
		if err := g.win(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) Board() *puzzle.Board { return g.board }
func (g *Game) State() State         { return g.state }
func (g *Game) MoveCount() int       { return g.moveCount }

func (g *Game) Snapshot() puzzle.SaveState {
	return g.board.Save(g.moveCount)
}

// Restart reshuffles the current board and resets the move counter.
func (g *Game) Restart(rnd *rand.Rand) error {
	switch g.state {
	case WaitingForInput:
	case Victory, Aborted:
		return ErrFinished
	default:
		return fmt.Errorf("%w: %s", ErrBusy, g.state)
	}
	g.moveCount = 0
	g.state = ShufflingAnimation
	return g.board.Shuffle(rnd)
}

// Click slides the tile at (x, y) into the empty slot.
func (g *Game) Click(x, y int) error {
	switch g.state {
	case WaitingForInput:
	case Victory, Aborted:
		return ErrFinished
	default:
		return fmt.Errorf("%w: %s", ErrBusy, g.state)
	}
	g.state = SwapAnimation
	if err := g.board.Slide(x, y); err != nil {
		g.state = WaitingForInput
		return err
	}
	return nil
}

// Settled is the view's signal that a tile finished moving. Only the
// secondary signal of a swap advances the game.
func (g *Game) Settled(secondary bool) error {
	if !secondary {
		return nil
	}
	switch g.state {
	case ShufflingAnimation:
		return g.board.ShuffleNext()
	case SwapAnimation:
		g.moveCount++
		if g.board.Solved() {
			return g.win()
		}
		g.state = WaitingForInput
		return g.save()
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedSettle, g.state)
	}
}

// Abort stops a running shuffle without completing it. The game accepts no
// more input.
func (g *Game) Abort() {
	if g.board.CancelShuffle() {
		g.logger.Debug("shuffle cancelled")
	}
	if g.state != Victory {
		g.state = Aborted
	}
}

// NextEvent pops the oldest pending event.
func (g *Game) NextEvent() (Event, bool) {
	if g.events.Len() == 0 {
		return Event{}, false
	}
	return g.events.PopFront(), true
}

func (g *Game) Pending() int {
	return g.events.Len()
}

// SettleAll drains every pending event, settling each swap right away, and
// returns the drained events.
func (g *Game) SettleAll() ([]Event, error) {
	var drained []Event
	for {
		ev, ok := g.NextEvent()
		if !ok {
			return drained, nil
		}
		drained = append(drained, ev)
		if ev.Kind == TileMoved && ev.Secondary {
			if err := g.Settled(true); err != nil {
				return drained, err
			}
		}
	}
}

func (g *Game) win() error {
	g.state = Victory
	g.logger.Info("puzzle solved",
		slog.Int("columns", g.board.Columns()),
		slog.Int("rows", g.board.Rows()),
		slog.Int("moves", g.moveCount),
	)
	err := g.board.Detach()
	g.events.PushBack(Event{Kind: Won, MoveCount: g.moveCount})
	if g.saver != nil {
		err = errors.Join(err, g.saver.Clear())
	}
	return err
}

func (g *Game) save() error {
	if g.saver == nil {
		return nil
	}
	if err := g.saver.Save(g.Snapshot()); err != nil {
		return fmt.Errorf("unable to save game: %w", err)
	}
	return nil
}

func (g *Game) tileSwapped(t *puzzle.Tile, secondary bool) {
	g.events.PushBack(Event{
		Kind:      TileMoved,
		Label:     t.Label(),
		X:         t.X(),
		Y:         t.Y(),
		Secondary: secondary,
		MoveCount: g.moveCount,
	})
}

func (g *Game) tileDetached(t *puzzle.Tile) {
	g.events.PushBack(Event{Kind: TileRemoved, Label: t.Label(), MoveCount: g.moveCount})
}

func (g *Game) shuffleDone() {
	g.state = WaitingForInput
	g.events.PushBack(Event{Kind: ShuffleDone, MoveCount: g.moveCount})
	if err := g.save(); err != nil {
		g.logger.Error("unable to save shuffled game", slog.Any("error", err))
	}
}
