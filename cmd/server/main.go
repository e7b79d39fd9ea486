package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/fifteen-server/internal/app"
	"github.com/vancomm/fifteen-server/internal/config"
	"github.com/vancomm/fifteen-server/internal/database"
	"github.com/vancomm/fifteen-server/internal/puzzle"
)

func main() {
	logger := config.NewLogger()
	puzzle.Log = logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(logger, database.Migrations)
	if err := a.Start(ctx); err != nil {
		logger.Error("failed to start app", slog.Any("error", err))
		os.Exit(1)
	}
}
