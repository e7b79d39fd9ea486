package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/fifteen-server/internal/handlers"
	"github.com/vancomm/fifteen-server/internal/repository"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	repo := repository.New(a.db)

	game := handlers.NewGameHandler(a.logger, repo, a.ws, a.game, createRand)
	auth := handlers.NewAuth(a.logger, repo, a.cookies)
	highscores := handlers.NewHighscores(a.logger, repo)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.Move)
	a.router.HandleFunc("GET /game/{id}/hint", game.Hint)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	a.router.HandleFunc("GET /highscores", highscores.List)

	a.router.HandleFunc("POST /register", auth.Register)
	a.router.HandleFunc("POST /login", auth.Login)
	a.router.HandleFunc("POST /logout", auth.Logout)
	a.router.HandleFunc("GET /status", auth.Status)

	a.router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
}
