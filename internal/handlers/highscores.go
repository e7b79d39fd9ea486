package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vancomm/fifteen-server/internal/repository"
)

type Highscores struct {
	logger *slog.Logger
	repo   Repository
}

func NewHighscores(logger *slog.Logger, repo Repository) *Highscores {
	return &Highscores{logger: logger, repo: repo}
}

func (h Highscores) List(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoresDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	highscores, err := h.repo.GetHighscores(r.Context(), filter)
	if err != nil {
		h.logger.Error("unable to fetch highscores",
			slog.Any("error", err), slog.Any("filter", filter),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}

	sendJSONOrLog(w, h.logger, highscores)
}
