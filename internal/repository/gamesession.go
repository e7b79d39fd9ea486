package repository

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/fifteen-server/internal/puzzle"
)

var ErrStaleSession = errors.New("game session was changed by another client")

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	PlayerId      *int64             `db:"player_id"`
	Columns       int                `db:"columns"`
	Rows          int                `db:"rows"`
	MoveCount     int                `db:"move_count"`
	Labels        string             `db:"labels"`
	Won           bool               `db:"won"`
	StartedAt     pgtype.Timestamptz `db:"started_at"`
	EndedAt       pgtype.Timestamptz `db:"ended_at"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

// SaveState decodes the stored board.
func (s GameSession) SaveState() (puzzle.SaveState, error) {
	labels, err := puzzle.ParseLabels(s.Labels)
	if err != nil {
		return puzzle.SaveState{}, err
	}
	state := puzzle.SaveState{
		Columns:   s.Columns,
		Rows:      s.Rows,
		MoveCount: s.MoveCount,
		Labels:    labels,
	}
	return state, state.Validate()
}

type CreateGameSessionParams struct {
	PlayerId *int64
	State    puzzle.SaveState
}

func (q *Queries) CreateGameSession(
	ctx context.Context, params CreateGameSessionParams,
) (*GameSession, error) {
	args := pgx.NamedArgs{
		"player_id":  params.PlayerId,
		"columns":    params.State.Columns,
		"rows":       params.State.Rows,
		"move_count": params.State.MoveCount,
		"labels":     puzzle.EncodeLabels(params.State.Labels),
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (player_id, columns, rows, move_count, labels)
		VALUES (@player_id, @columns, @rows, @move_count, @labels)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

// UpdateGameSessionParams lists the columns to change; nil fields are left
// as they are. When Expected is set the row is only updated while its board
// and move count still match it.
type UpdateGameSessionParams struct {
	MoveCount *int
	Labels    *[]int
	Won       *bool
	StartedAt *time.Time
	EndedAt   *time.Time

	Expected *puzzle.SaveState
}

func (p UpdateGameSessionParams) SetClause() (string, pgx.NamedArgs) {
	parts := make([]string, 0)
	args := pgx.NamedArgs{}

	if p.MoveCount != nil {
		parts = append(parts, "move_count = @move_count")
		args["move_count"] = *p.MoveCount
	}
	if p.Labels != nil {
		parts = append(parts, "labels = @labels")
		args["labels"] = puzzle.EncodeLabels(*p.Labels)
	}
	if p.Won != nil {
		parts = append(parts, "won = @won")
		args["won"] = *p.Won
	}
	if p.StartedAt != nil {
		parts = append(parts, "started_at = @started_at")
		args["started_at"] = *p.StartedAt
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}

	return strings.Join(parts, ", "), args
}

func (p UpdateGameSessionParams) WhereClause(gameSessionId int64) (string, pgx.NamedArgs) {
	parts := []string{"game_session_id = @game_session_id"}
	args := pgx.NamedArgs{"game_session_id": gameSessionId}

	if p.Expected != nil {
		parts = append(parts,
			"move_count = @expected_move_count",
			"labels = @expected_labels",
		)
		args["expected_move_count"] = p.Expected.MoveCount
		args["expected_labels"] = puzzle.EncodeLabels(p.Expected.Labels)
	}

	return strings.Join(parts, " AND "), args
}

// UpdateGameSession returns ErrStaleSession when Expected no longer matches
// the stored row.
func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	if setClause == "" {
		return q.FetchGameSession(ctx, gameSessionId)
	}
	whereClause, whereArgs := params.WhereClause(gameSessionId)
	maps.Copy(args, whereArgs)
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE "+whereClause+" RETURNING *",
		args,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	if errors.Is(err, pgx.ErrNoRows) && params.Expected != nil {
		return nil, ErrStaleSession
	}
	return session, err
}
