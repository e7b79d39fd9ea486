package handlers

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vancomm/fifteen-server/internal/game"
	"github.com/vancomm/fifteen-server/internal/repository"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNothingToAck   = errors.New("nothing to acknowledge")
)

type wsCommand string

const (
	wsGet     wsCommand = "g"
	wsShuffle wsCommand = "s"
	wsMove    wsCommand = "m"
	wsAck     wsCommand = "a"
)

var commandNargs = map[wsCommand]int{
	wsGet:     0,
	wsShuffle: 0,
	wsMove:    2,
	wsAck:     0,
}

type wsState struct {
	Kind    string          `json:"kind"`
	Session *GameSessionDTO `json:"session"`
}

type wsError struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func iterBySep(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

func parseXY(args []string) (x int, y int, err error) {
	if x, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("first argument must be an int")
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("second argument must be an int")
	}
	return x, y, nil
}

// liveGame is one websocket connection playing one session. Every swap is
// streamed as a pair of events and the next step waits for an "a" from the
// client.
type liveGame struct {
	*GameHandler
	ctx         context.Context
	logger      *slog.Logger
	conn        *websocket.Conn
	session     *repository.GameSession
	game        *game.Game
	awaitingAck bool
	restarted   bool
}

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}
	if !g.authorize(w, r, session) {
		return
	}
	gm, ok := g.continueGame(w, session)
	if !ok {
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	logger := g.logger.With(
		slog.String("connId", uuid.NewString()),
		slog.Int64("gameSessionId", session.GameSessionId),
	)
	live := &liveGame{
		GameHandler: &g,
		ctx:         r.Context(),
		logger:      logger,
		conn:        c,
		session:     session,
		game:        gm,
	}
	logger.Debug("ws connected")
	defer func() {
		live.game.Abort()
		logger.Debug("ws disconnected", slog.Int("pendingEvents", live.game.Pending()))
	}()

	for {
		if g.ws.IdleTimeout > 0 {
			c.SetReadDeadline(time.Now().Add(g.ws.IdleTimeout))
		}
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}
		text := strings.TrimSpace(string(message))
		logger.Debug(fmt.Sprintf("\t> %s", text))
		for _, cmd := range iterBySep(text, "\n") {
			cmd = strings.TrimSpace(cmd)
			if cmd == "" {
				continue
			}
			err := live.execute(cmd)
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) {
				return
			}
			if err != nil {
				logger.Debug("command rejected", slog.String("command", cmd), slog.Any("error", err))
				if err := c.WriteJSON(wsError{Kind: "error", Error: err.Error()}); err != nil {
					logger.Error("unable to write json", slog.Any("error", err))
					return
				}
			}
		}
	}
}

func (l *liveGame) execute(command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return ErrUnknownCommand
	}
	name := wsCommand(parts[0])
	nargs, ok := commandNargs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return fmt.Errorf("invalid number of arguments")
	}

	switch name {
	case wsGet:
		return l.sendState()
	case wsShuffle:
		if err := l.game.Restart(l.newRand()); err != nil {
			return err
		}
		l.restarted = true
		return l.flush()
	case wsMove:
		x, y, err := parseXY(parts[1:])
		if err != nil {
			return err
		}
		if err := l.game.Click(x, y); err != nil {
			return err
		}
		return l.flush()
	case wsAck:
		return l.ack()
	}
	return ErrUnknownCommand
}

func (l *liveGame) ack() error {
	if !l.awaitingAck {
		return ErrNothingToAck
	}
	l.awaitingAck = false

	before := l.game.State()
	if err := l.game.Settled(true); err != nil {
		return err
	}
	after := l.game.State()

	if before != after && (after == game.WaitingForInput || after == game.Victory) {
		session, err := l.persist(l.ctx, l.session, l.game, l.restarted)
		if errors.Is(err, repository.ErrStaleSession) {
			return l.reload(err)
		}
		if err != nil {
			l.logger.Error("unable to update session in db", slog.Any("error", err))
			return fmt.Errorf("unable to save game")
		}
		l.session = session
		l.restarted = false
	}
	return l.flush()
}

// reload replaces the live game with the stored session after another client
// changed it, dropping whatever this connection had not saved. cause is
// returned so the client learns its last step was discarded.
func (l *liveGame) reload(cause error) error {
	session, err := l.repo.FetchGameSession(l.ctx, l.session.GameSessionId)
	if err != nil {
		l.logger.Error("unable to fetch session from db", slog.Any("error", err))
		return fmt.Errorf("unable to load game")
	}
	gm, err := l.restore(session)
	if err != nil {
		l.logger.Error("unable to restore game", slog.Any("error", err))
		return fmt.Errorf("unable to load game")
	}
	l.logger.Info("session changed elsewhere, reloaded", slog.Int("moveCount", session.MoveCount))
	l.game.Abort()
	l.game = gm
	l.session = session
	l.restarted = false
	l.awaitingAck = false
	return cause
}

// flush sends pending events up to and including the next swap that needs an
// acknowledgment.
func (l *liveGame) flush() error {
	for {
		ev, ok := l.game.NextEvent()
		if !ok {
			return nil
		}
		if err := l.conn.WriteJSON(ev); err != nil {
			return err
		}
		l.logger.Debug(fmt.Sprintf("\t< %s", ev))
		if ev.Kind == game.TileMoved && ev.Secondary {
			l.awaitingAck = true
			return nil
		}
	}
}

func (l *liveGame) sendState() error {
	dto, err := NewGameSessionDTO(l.session)
	if err != nil {
		return err
	}
	dto.MoveCount = l.game.MoveCount()
	dto.Labels = l.game.Board().Labels()
	return l.conn.WriteJSON(wsState{Kind: "state", Session: dto})
}
