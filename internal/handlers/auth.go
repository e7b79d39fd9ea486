package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/fifteen-server/internal/config"
	"github.com/vancomm/fifteen-server/internal/middleware"
	"github.com/vancomm/fifteen-server/internal/repository"
)

type Auth struct {
	logger  *slog.Logger
	repo    Repository
	cookies *config.Cookies
}

func NewAuth(
	logger *slog.Logger,
	repo Repository,
	cookies *config.Cookies,
) *Auth {
	auth := &Auth{
		logger:  logger,
		repo:    repo,
		cookies: cookies,
	}

	return auth
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password too long")
	ErrUsernameTaken      = errors.New("username taken")
	ErrBadCredentials     = errors.New("invalid username or password")
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

func (a Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		a.logger.Debug("could not parse cookies - clear cookies")
		a.cookies.Clear(w)
		sendJSONOrLog(w, a.logger, Status{LoggedIn: false})
		return
	}

	a.logger.Debug("refresh cookies")
	fresh := config.NewPlayerClaims(claims.PlayerId, claims.Username)
	if err := a.cookies.Refresh(w, fresh); err != nil {
		internalError(w, a.logger, "unable to refresh cookies", err)
		return
	}
	sendJSONOrLog(w, a.logger, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func (a Auth) parseCredentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		sendError(w, a.logger, http.StatusBadRequest, ErrBadAuthBody)
		return "", "", false
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		sendError(w, a.logger, http.StatusBadRequest, ErrBadAuthBody)
		return "", "", false
	}
	if len(password) > maxPasswordBytes {
		sendError(w, a.logger, http.StatusBadRequest, ErrBadPasswordTooLong)
		return "", "", false
	}
	return username, password, true
}

func (a Auth) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := a.parseCredentials(w, r)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, a.logger, "unable to hash password", err)
		return
	}

	player, err := a.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		sendError(w, a.logger, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, a.logger, "unable to insert player", err)
		return
	}

	a.login(w, player)
}

func (a Auth) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := a.parseCredentials(w, r)
	if !ok {
		return
	}

	player, err := a.repo.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, a.logger, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, a.logger, "unable to fetch player from db", err)
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		sendError(w, a.logger, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, a.logger, "bcrypt compare error", err)
		return
	}

	a.login(w, player)
}

func (a Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	sendJSONOrLog(w, a.logger, Status{LoggedIn: false})
}

func (a Auth) login(w http.ResponseWriter, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerId, player.Username)
	if err := a.cookies.Refresh(w, claims); err != nil {
		internalError(w, a.logger, "unable to set auth cookies", err)
		return
	}
	sendJSONOrLog(w, a.logger, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerId, player.Username},
	})
}
