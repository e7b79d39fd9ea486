package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/fifteen-server/internal/game"
	"github.com/vancomm/fifteen-server/internal/prefs"
	"github.com/vancomm/fifteen-server/internal/puzzle"
)

var log = logrus.New()

func setupLogging(path string, debug bool) error {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if path == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      logrus.WarnLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return err
	}
	log.AddHook(hook)
	return nil
}

func parseSize(s string) (columns, rows int, err error) {
	c, r, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size must look like 4x4")
	}
	if columns, err = strconv.Atoi(c); err != nil {
		return 0, 0, fmt.Errorf("bad column count: %w", err)
	}
	if rows, err = strconv.Atoi(r); err != nil {
		return 0, 0, fmt.Errorf("bad row count: %w", err)
	}
	return columns, rows, nil
}

func createRand(seed uint64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func main() {
	var (
		dbPath  = flag.String("db", "fifteen.db", "sqlite file keeping the game in progress")
		logPath = flag.String("log", "fifteen.log", "file collecting warnings and errors, empty to disable")
		size    = flag.String("size", "", "board size, e.g. 4x4; asked interactively when empty")
		fresh   = flag.Bool("new", false, "ignore the saved game")
		seed    = flag.Uint64("seed", 0, "shuffle seed, random when 0")
		debug   = flag.Bool("debug", false, "log every tile movement")
	)
	flag.Parse()

	if err := setupLogging(*logPath, *debug); err != nil {
		log.WithError(err).Fatal("unable to set up logging")
	}
	gameLog := slog.New(slog.NewTextHandler(log.WriterLevel(logrus.DebugLevel), nil))
	puzzle.Log = gameLog

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.WithError(err).Fatal("unable to open save file")
	}
	defer db.Close()

	store, err := prefs.NewStore(db, "prefs")
	if err != nil {
		log.WithError(err).Fatal("unable to open prefs")
	}

	p := &player{
		in:     os.Stdin,
		out:    os.Stdout,
		log:    log,
		saver:  prefs.NewSaver(store),
		rnd:    createRand(*seed),
		opts:   []game.Option{game.WithLogger(gameLog)},
		fresh:  *fresh,
		limit:  200_000,
		sizeOf: *size,
	}
	if err := p.run(); err != nil && !errors.Is(err, errQuit) {
		log.WithError(err).Error("game stopped")
		os.Exit(1)
	}
}
