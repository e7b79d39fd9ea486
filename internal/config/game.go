package config

import (
	"fmt"
	"os"
	"strconv"
)

type Game struct {
	// MaxSide bounds both dimensions of a board created over HTTP.
	MaxSide int
	// HintLimit bounds the number of states the hint solver may expand.
	HintLimit int
}

func lookupInt(name string, fallback int) (int, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return v, nil
}

func NewGame() (*Game, error) {
	maxSide, err := lookupInt("GAME_MAX_SIDE", 8)
	if err != nil {
		return nil, err
	}
	hintLimit, err := lookupInt("GAME_HINT_LIMIT", 200_000)
	if err != nil {
		return nil, err
	}
	return &Game{MaxSide: maxSide, HintLimit: hintLimit}, nil
}
