package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Highscore struct {
	GameSessionId int64   `json:"game_session_id" db:"game_session_id"`
	Username      *string `json:"username" db:"username"`
	Columns       int     `json:"columns" db:"columns"`
	Rows          int     `json:"rows" db:"rows"`
	MoveCount     int     `json:"move_count" db:"move_count"`
	PlaytimeMs    float64 `json:"playtime_ms" db:"playtime_ms"`
}

type HighscoreFilter struct {
	Username *string
	Columns  *int
	Rows     *int
	Limit    int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.Columns != nil {
		clauses = append(clauses, "columns = @columns")
		args["columns"] = *f.Columns
	}
	if f.Rows != nil {
		clauses = append(clauses, "rows = @rows")
		args["rows"] = *f.Rows
	}
	return strings.Join(clauses, " AND "), args
}

// GetHighscores lists won sessions, fewest moves first, then fastest.
func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		game_session_id,
		username,
		columns,
		rows,
		move_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_session
		LEFT OUTER JOIN player using (player_id)
	WHERE
		won = true
		AND ended_at IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY move_count, playtime_ms"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
