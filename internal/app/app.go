package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/fifteen-server/internal/config"
	"github.com/vancomm/fifteen-server/internal/database"
	"github.com/vancomm/fifteen-server/internal/middleware"
)

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	db         *pgxpool.Pool
	cookies    *config.Cookies
	ws         *config.WebSocket
	game       *config.Game
	migrations fs.FS
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	router := http.NewServeMux()

	app := &App{
		logger:     logger,
		router:     router,
		migrations: migrations,
	}

	return app
}

func (a *App) loadConfig() error {
	jwt, err := config.NewJWT()
	if err != nil {
		return fmt.Errorf("failed to read jwt config: %w", err)
	}
	if a.cookies, err = config.NewCookies(jwt); err != nil {
		return fmt.Errorf("failed to read cookies config: %w", err)
	}
	if a.ws, err = config.NewWebSocket(); err != nil {
		return fmt.Errorf("failed to read ws config: %w", err)
	}
	if a.game, err = config.NewGame(); err != nil {
		return fmt.Errorf("failed to read game config: %w", err)
	}
	return nil
}

func (a *App) handler() http.Handler {
	var h http.Handler = a.router
	if base := strings.TrimSuffix(config.BasePath(), "/"); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(),
		middleware.Logging(a.logger),
	)
}

// Start connects to the database, applies migrations and serves until ctx is
// cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	db, _, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer db.Close()
	a.db = db

	a.loadRoutes()

	addr := config.Port()
	server := &http.Server{
		Addr:        addr,
		Handler:     a.handler(),
		ReadTimeout: time.Second * 15,
		IdleTimeout: time.Second * 60,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info(fmt.Sprintf("fifteen server listening at http://localhost%s", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}
