package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/fifteen-server/internal/config"
	"github.com/vancomm/fifteen-server/internal/game"
	"github.com/vancomm/fifteen-server/internal/middleware"
	"github.com/vancomm/fifteen-server/internal/puzzle"
	"github.com/vancomm/fifteen-server/internal/repository"
	"github.com/vancomm/fifteen-server/internal/solver"
)

var ErrForbidden = errors.New("game belongs to another player")

type GameHandler struct {
	logger  *slog.Logger
	repo    Repository
	ws      *config.WebSocket
	cfg     *config.Game
	newRand func() *rand.Rand
}

func NewGameHandler(
	logger *slog.Logger,
	repo Repository,
	ws *config.WebSocket,
	cfg *config.Game,
	newRand func() *rand.Rand,
) *GameHandler {
	handler := &GameHandler{
		logger:  logger,
		repo:    repo,
		ws:      ws,
		cfg:     cfg,
		newRand: newRand,
	}

	return handler
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewGameDTO(r.URL.Query(), g.cfg.MaxSide)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	gm, err := game.New(dto.Columns, dto.Rows, g.newRand(), game.WithLogger(g.logger))
	if errors.Is(err, puzzle.ErrInvalidBoardSize) {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		internalError(w, g.logger, "unable to create a game", err)
		return
	}
	if _, err := gm.SettleAll(); err != nil {
		internalError(w, g.logger, "unable to shuffle a new game", err)
		return
	}

	params := repository.CreateGameSessionParams{State: gm.Snapshot()}
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		g.logger.Debug("creating player session", slog.Int64("player_id", claims.PlayerId))
		params.PlayerId = &claims.PlayerId
	} else {
		g.logger.Debug("creating anonymous session")
	}

	session, err := g.repo.CreateGameSession(r.Context(), params)
	if err != nil {
		internalError(w, g.logger, "unable to create game session", err)
		return
	}

	g.sendSession(w, session)
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}
	g.sendSession(w, session)
}

func (g GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	pos, err := ParsePositionDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

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

	if err := gm.Click(pos.X, pos.Y); err != nil {
		g.sendGameError(w, err)
		return
	}
	if _, err := gm.SettleAll(); err != nil {
		internalError(w, g.logger, "unable to settle a move", err)
		return
	}

	session, err = g.persist(r.Context(), session, gm, false)
	if errors.Is(err, repository.ErrStaleSession) {
		sendError(w, g.logger, http.StatusConflict, err)
		return
	}
	if err != nil {
		internalError(w, g.logger, "unable to update session in db", err)
		return
	}

	g.sendSession(w, session)
}

func (g GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}
	if !g.authorize(w, r, session) {
		return
	}
	if session.Won {
		sendError(w, g.logger, http.StatusConflict, game.ErrFinished)
		return
	}

	state, err := session.SaveState()
	if err != nil {
		internalError(w, g.logger, "db returned invalid game_session.labels", err)
		return
	}

	label, err := solver.Hint(state.Columns, state.Rows, state.Labels, g.cfg.HintLimit)
	switch {
	case errors.Is(err, solver.ErrLimit), errors.Is(err, solver.ErrTooLarge):
		sendError(w, g.logger, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, solver.ErrSolved), errors.Is(err, solver.ErrUnsolvable):
		sendError(w, g.logger, http.StatusConflict, err)
		return
	case err != nil:
		internalError(w, g.logger, "unable to compute a hint", err)
		return
	}

	board, err := state.Board()
	if err != nil {
		internalError(w, g.logger, "unable to load board", err)
		return
	}
	tile := board.Tile(label)
	sendJSONOrLog(w, g.logger, HintDTO{Label: label, X: tile.X(), Y: tile.Y()})
}

func (g GameHandler) fetchSession(w http.ResponseWriter, r *http.Request) (*repository.GameSession, bool) {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, fmt.Errorf("invalid game id"))
		return nil, false
	}

	session, err := g.repo.FetchGameSession(r.Context(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		internalError(w, g.logger, "unable to fetch session from db", err)
		return nil, false
	}
	return session, true
}

// authorize lets anyone play an anonymous session and only its owner play a
// player session.
func (g GameHandler) authorize(w http.ResponseWriter, r *http.Request, session *repository.GameSession) bool {
	if session.PlayerId == nil {
		return true
	}
	claims, ok := middleware.PlayerClaims(r.Context())
	if ok && claims.PlayerId == *session.PlayerId {
		return true
	}
	sendError(w, g.logger, http.StatusForbidden, ErrForbidden)
	return false
}

func (g GameHandler) continueGame(w http.ResponseWriter, session *repository.GameSession) (*game.Game, bool) {
	gm, err := g.restore(session)
	if err != nil {
		internalError(w, g.logger, "unable to restore game", err)
		return nil, false
	}
	return gm, true
}

func (g GameHandler) restore(session *repository.GameSession) (*game.Game, error) {
	state, err := session.SaveState()
	if err != nil {
		return nil, fmt.Errorf("db returned invalid game_session.labels: %w", err)
	}
	return game.Continue(state, game.WithLogger(g.logger))
}

// persist writes the board and move count back over base, the session gm was
// restored from. A won game also gets its end time, a reshuffled one a new
// start time. If the stored session no longer matches base nothing is
// written and repository.ErrStaleSession is returned.
func (g GameHandler) persist(
	ctx context.Context, base *repository.GameSession, gm *game.Game, restarted bool,
) (*repository.GameSession, error) {
	expected, err := base.SaveState()
	if err != nil {
		return nil, err
	}
	state := gm.Snapshot()
	params := repository.UpdateGameSessionParams{
		MoveCount: &state.MoveCount,
		Labels:    &state.Labels,
		Expected:  &expected,
	}
	now := time.Now().UTC()
	if restarted {
		params.StartedAt = &now
	}
	if gm.State() == game.Victory {
		won := true
		params.Won = &won
		params.EndedAt = &now
	}
	return g.repo.UpdateGameSession(ctx, base.GameSessionId, params)
}

func (g GameHandler) sendSession(w http.ResponseWriter, session *repository.GameSession) {
	dto, err := NewGameSessionDTO(session)
	if err != nil {
		internalError(w, g.logger, "db returned invalid game_session.labels", err)
		return
	}
	sendJSONOrLog(w, g.logger, dto)
}

func (g GameHandler) sendGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, puzzle.ErrIllegalMove),
		errors.Is(err, game.ErrFinished),
		errors.Is(err, game.ErrBusy):
		sendError(w, g.logger, http.StatusConflict, err)
	default:
		internalError(w, g.logger, "unable to make a move", err)
	}
}
