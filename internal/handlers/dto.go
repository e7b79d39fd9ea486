package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/fifteen-server/internal/puzzle"
	"github.com/vancomm/fifteen-server/internal/repository"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type NewGameDTO struct {
	Columns int `schema:"columns,required"`
	Rows    int `schema:"rows,required"`
}

var ErrBoardTooLarge = errors.New("board too large")

func ParseNewGameDTO(src url.Values, maxSide int) (NewGameDTO, error) {
	var dto NewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Columns > maxSide || dto.Rows > maxSide {
		return dto, fmt.Errorf("%w: sides are limited to %d", ErrBoardTooLarge, maxSide)
	}
	return dto, nil
}

type PositionDTO struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

func ParsePositionDTO(src url.Values) (PositionDTO, error) {
	var dto PositionDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type HighscoresDTO struct {
	Username *string `schema:"username"`
	Columns  *int    `schema:"columns"`
	Rows     *int    `schema:"rows"`
	Limit    int     `schema:"limit"`
}

const (
	defaultHighscoresLimit = 50
	maxHighscoresLimit     = 100
)

func ParseHighscoresDTO(src url.Values) (repository.HighscoreFilter, error) {
	var dto HighscoresDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return repository.HighscoreFilter{}, err
	}
	if dto.Limit <= 0 {
		dto.Limit = defaultHighscoresLimit
	}
	dto.Limit = min(dto.Limit, maxHighscoresLimit)
	return repository.HighscoreFilter(dto), nil
}

type GameSessionDTO struct {
	GameSessionId string `json:"game_session_id"`
	Columns       int    `json:"columns"`
	Rows          int    `json:"rows"`
	MoveCount     int    `json:"move_count"`
	Labels        []int  `json:"labels"`
	Won           bool   `json:"won"`
	StartedAt     int64  `json:"started_at"`
	EndedAt       *int64 `json:"ended_at,omitempty"`
}

func NewGameSessionDTO(s *repository.GameSession) (*GameSessionDTO, error) {
	labels, err := puzzle.ParseLabels(s.Labels)
	if err != nil {
		return nil, err
	}
	var endedAt *int64
	if s.EndedAt.Valid {
		e := s.EndedAt.Time.UnixMilli()
		endedAt = &e
	}
	dto := &GameSessionDTO{
		GameSessionId: strconv.FormatInt(s.GameSessionId, 10),
		Columns:       s.Columns,
		Rows:          s.Rows,
		MoveCount:     s.MoveCount,
		Labels:        labels,
		Won:           s.Won,
		StartedAt:     s.StartedAt.Time.UnixMilli(),
		EndedAt:       endedAt,
	}
	return dto, nil
}

type HintDTO struct {
	Label int `json:"label"`
	X     int `json:"x"`
	Y     int `json:"y"`
}
