package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// SaveState is everything needed to restore a game in progress. Labels are
// listed in scan order.
type SaveState struct {
	Columns   int
	Rows      int
	MoveCount int
	Labels    []int
}

func (b *Board) Save(moveCount int) SaveState {
	return SaveState{
		Columns:   b.columns,
		Rows:      b.rows,
		MoveCount: moveCount,
		Labels:    b.Labels(),
	}
}

func (s SaveState) Validate() error {
	if err := validateSize(s.Columns, s.Rows); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSaveData, err)
	}
	if s.MoveCount < 0 {
		return fmt.Errorf("%w: negative move count", ErrInvalidSaveData)
	}
	return validateLabels(s.Columns, s.Rows, s.Labels)
}

func (s SaveState) Board() (*Board, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return LoadBoard(s.Columns, s.Rows, s.Labels)
}

func EncodeLabels(labels []int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}

// ParseLabels reads a comma separated label list.
func ParseLabels(s string) ([]int, error) {
	labels := make([]int, 0)
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty label at %d", ErrInvalidSaveData, i)
		}
		l, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSaveData, err)
		}
		labels = append(labels, l)
	}
	return labels, nil
}
