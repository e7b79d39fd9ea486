package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/fifteen-server/internal/game"
	"github.com/vancomm/fifteen-server/internal/prefs"
	"github.com/vancomm/fifteen-server/internal/puzzle"
	"github.com/vancomm/fifteen-server/internal/solver"
)

var (
	errQuit     = errors.New("quit")
	errBadInput = errors.New("type a tile number, h, r or q")
)

type saveStore interface {
	game.Saver
	Load() (puzzle.SaveState, error)
}

type player struct {
	in     io.Reader
	out    io.Writer
	log    *logrus.Logger
	saver  saveStore
	rnd    *rand.Rand
	opts   []game.Option
	fresh  bool
	limit  int
	sizeOf string

	lines *bufio.Scanner
}

func (p *player) readLine() (string, error) {
	if p.lines == nil {
		p.lines = bufio.NewScanner(p.in)
	}
	if !p.lines.Scan() {
		if err := p.lines.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(p.lines.Text()), nil
}

func (p *player) run() error {
	g, err := p.start()
	if err != nil {
		return err
	}
	for {
		p.render(g.Board())
		if g.State() == game.Victory {
			fmt.Fprintf(p.out, "Solved in %d moves!\n", g.MoveCount())
			return nil
		}
		fmt.Fprintf(p.out, "moves: %d > ", g.MoveCount())
		line, err := p.readLine()
		if err != nil {
			return err
		}
		err = p.handle(g, line)
		switch {
		case err == nil:
		case errors.Is(err, errBadInput),
			errors.Is(err, puzzle.ErrIllegalMove),
			errors.Is(err, solver.ErrLimit),
			errors.Is(err, solver.ErrTooLarge):
			fmt.Fprintln(p.out, err)
		default:
			return err
		}
	}
}

func (p *player) options() []game.Option {
	return append(slices.Clip(p.opts), game.WithSaver(p.saver))
}

// start continues the saved game when there is one, or shuffles a new board.
func (p *player) start() (*game.Game, error) {
	if !p.fresh {
		g, err := p.resume()
		if err != nil {
			return nil, err
		}
		if g != nil {
			return g, nil
		}
	}

	columns, rows, err := p.chooseSize()
	if err != nil {
		return nil, err
	}
	g, err := game.New(columns, rows, p.rnd, p.options()...)
	if err != nil {
		return nil, err
	}
	events, err := g.SettleAll()
	if err != nil {
		return nil, fmt.Errorf("unable to shuffle: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"columns": columns,
		"rows":    rows,
		"events":  len(events),
	}).Info("new game")
	return g, nil
}

func (p *player) resume() (*game.Game, error) {
	save, err := p.saver.Load()
	if errors.Is(err, prefs.ErrNoSave) {
		return nil, nil
	}
	if err == nil {
		var g *game.Game
		g, err = game.Continue(save, p.options()...)
		if err == nil && g.State() != game.Victory {
			p.log.WithField("moves", save.MoveCount).Info("continuing saved game")
			return g, nil
		}
	}
	p.log.WithError(err).Warn("discarding saved game")
	return nil, p.saver.Clear()
}

func (p *player) chooseSize() (int, int, error) {
	if p.sizeOf != "" {
		return parseSize(p.sizeOf)
	}
	fallback := game.Sizes[len(game.Sizes)/2]
	for {
		for i, s := range game.Sizes {
			fmt.Fprintf(p.out, "%d) %dx%d\n", i+1, s[0], s[1])
		}
		fmt.Fprintf(p.out, "size [%dx%d]: ", fallback[0], fallback[1])
		line, err := p.readLine()
		if err != nil {
			return 0, 0, err
		}
		if line == "" {
			return fallback[0], fallback[1], nil
		}
		if i, err := strconv.Atoi(line); err == nil && 1 <= i && i <= len(game.Sizes) {
			return game.Sizes[i-1][0], game.Sizes[i-1][1], nil
		}
		columns, rows, err := parseSize(line)
		if err == nil {
			return columns, rows, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

func (p *player) handle(g *game.Game, line string) error {
	switch line {
	case "q":
		return errQuit
	case "h":
		b := g.Board()
		label, err := solver.Hint(b.Columns(), b.Rows(), b.Labels(), p.limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "try %d\n", label+1)
		return nil
	case "r":
		if err := g.Restart(p.rnd); err != nil {
			return err
		}
		_, err := g.SettleAll()
		return err
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return errBadInput
	}
	b := g.Board()
	t := b.Tile(n - 1)
	if t == nil || b.IsEmpty(t) {
		return errBadInput
	}
	if err := g.Click(t.X(), t.Y()); err != nil {
		return err
	}
	events, err := g.SettleAll()
	for _, ev := range events {
		p.log.Debug(ev.String())
	}
	return err
}

// render prints the board top row first, tiles numbered from 1.
func (p *player) render(b *puzzle.Board) {
	width := len(strconv.Itoa(b.Columns() * b.Rows()))
	var sb strings.Builder
	for y := b.Rows() - 1; y >= 0; y-- {
		for x := range b.Columns() {
			if x > 0 {
				sb.WriteByte(' ')
			}
			t := b.TileAt(x, y)
			if b.IsEmpty(t) {
				sb.WriteString(strings.Repeat(".", width))
				continue
			}
			fmt.Fprintf(&sb, "%*d", width, t.Label()+1)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(p.out, sb.String())
}
