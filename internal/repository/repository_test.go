package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/fifteen-server/internal/puzzle"
)

func TestUpdateGameSessionSetClause(t *testing.T) {
	clause, args := UpdateGameSessionParams{}.SetClause()
	assert.Empty(t, clause)
	assert.Empty(t, args)

	moves, won := 12, true
	labels := []int{0, 1, 3, 2}
	ended := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clause, args = UpdateGameSessionParams{
		MoveCount: &moves,
		Labels:    &labels,
		Won:       &won,
		EndedAt:   &ended,
	}.SetClause()
	assert.Equal(t,
		"move_count = @move_count, labels = @labels, won = @won, ended_at = @ended_at",
		clause,
	)
	assert.Equal(t, pgx.NamedArgs{
		"move_count": 12,
		"labels":     "0,1,3,2",
		"won":        true,
		"ended_at":   ended,
	}, args)
}

func TestUpdateGameSessionWhereClause(t *testing.T) {
	clause, args := UpdateGameSessionParams{}.WhereClause(7)
	assert.Equal(t, "game_session_id = @game_session_id", clause)
	assert.Equal(t, pgx.NamedArgs{"game_session_id": int64(7)}, args)

	clause, args = UpdateGameSessionParams{
		Expected: &puzzle.SaveState{Columns: 2, Rows: 2, MoveCount: 3, Labels: []int{0, 1, 3, 2}},
	}.WhereClause(7)
	assert.Equal(t,
		"game_session_id = @game_session_id AND move_count = @expected_move_count AND labels = @expected_labels",
		clause,
	)
	assert.Equal(t, pgx.NamedArgs{
		"game_session_id":     int64(7),
		"expected_move_count": 3,
		"expected_labels":     "0,1,3,2",
	}, args)
}

func TestHighscoreFilterWhereClause(t *testing.T) {
	clause, args := HighscoreFilter{}.WhereClause()
	assert.Empty(t, clause)
	assert.Empty(t, args)

	name, columns, rows := "alice", 4, 4
	clause, args = HighscoreFilter{
		Username: &name, Columns: &columns, Rows: &rows,
	}.WhereClause()
	assert.Equal(t, "username = @username AND columns = @columns AND rows = @rows", clause)
	assert.Equal(t, pgx.NamedArgs{"username": "alice", "columns": 4, "rows": 4}, args)
}

func TestGameSessionSaveState(t *testing.T) {
	s := GameSession{Columns: 2, Rows: 2, MoveCount: 3, Labels: "3,1,0,2"}
	state, err := s.SaveState()
	require.NoError(t, err)
	assert.Equal(t, puzzle.SaveState{
		Columns: 2, Rows: 2, MoveCount: 3, Labels: []int{3, 1, 0, 2},
	}, state)

	s.Labels = "3,1,0"
	_, err = s.SaveState()
	assert.ErrorIs(t, err, puzzle.ErrInvalidSaveData)
}
