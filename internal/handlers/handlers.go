package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vancomm/fifteen-server/internal/repository"
)

// Repository is the subset of [repository.Queries] the handlers use.
type Repository interface {
	CreatePlayer(context.Context, repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
	CreateGameSession(context.Context, repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, params repository.UpdateGameSessionParams) (*repository.GameSession, error)
	GetHighscores(context.Context, repository.HighscoreFilter) ([]repository.Highscore, error)
}

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func sendError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	sendJSONOrLog(w, logger, wrapError(err))
}

func internalError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	logger.Error(msg, slog.Any("error", err))
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
