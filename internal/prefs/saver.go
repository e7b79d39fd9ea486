package prefs

import (
	"errors"
	"fmt"

	"github.com/vancomm/fifteen-server/internal/puzzle"
)

const (
	LabelsKey    = "labels"
	MoveCountKey = "move_count"
	ColumnsKey   = "columns"
	RowsKey      = "rows"
)

var ErrNoSave = errors.New("no saved game")

// Saver keeps a single game in progress in a [Store].
type Saver struct {
	store *Store
}

func NewSaver(store *Store) *Saver {
	return &Saver{store: store}
}

func (s *Saver) Save(state puzzle.SaveState) error {
	values := []struct {
		key   string
		value any
	}{
		{LabelsKey, puzzle.EncodeLabels(state.Labels)},
		{MoveCountKey, state.MoveCount},
		{ColumnsKey, state.Columns},
		{RowsKey, state.Rows},
	}
	for _, v := range values {
		if err := s.store.Set(v.key, v.value); err != nil {
			return fmt.Errorf("unable to save %s: %w", v.key, err)
		}
	}
	return nil
}

func (s *Saver) Clear() error {
	return s.store.DeleteAll()
}

// Load returns the saved game, or [ErrNoSave] when there is none.
func (s *Saver) Load() (puzzle.SaveState, error) {
	var (
		state  puzzle.SaveState
		labels string
	)
	err := s.store.Get(LabelsKey, &labels)
	if errors.Is(err, ErrNotFound) {
		return state, ErrNoSave
	}
	if err != nil {
		return state, err
	}
	for key, dst := range map[string]*int{
		MoveCountKey: &state.MoveCount,
		ColumnsKey:   &state.Columns,
		RowsKey:      &state.Rows,
	} {
		if err := s.store.Get(key, dst); err != nil {
			return state, fmt.Errorf("unable to load %s: %w", key, err)
		}
	}
	if state.Labels, err = puzzle.ParseLabels(labels); err != nil {
		return state, err
	}
	return state, state.Validate()
}

func (s *Saver) HasSave() (bool, error) {
	err := s.store.Get(LabelsKey, nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
