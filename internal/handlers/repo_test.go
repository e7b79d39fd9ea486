package handlers

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/fifteen-server/internal/puzzle"
	"github.com/vancomm/fifteen-server/internal/repository"
)

// memoryRepo mimics the postgres repository closely enough for handlers.
type memoryRepo struct {
	mu       sync.Mutex
	players  []*repository.Player
	sessions map[int64]*repository.GameSession
	nextId   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: make(map[int64]*repository.GameSession)}
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func (m *memoryRepo) CreatePlayer(_ context.Context, p repository.CreatePlayerParams) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, player := range m.players {
		if player.Username == p.Username {
			return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		}
	}
	m.nextId++
	player := &repository.Player{
		PlayerId:     m.nextId,
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
	}
	m.players = append(m.players, player)
	return player, nil
}

func (m *memoryRepo) FetchPlayer(_ context.Context, username string) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, player := range m.players {
		if player.Username == username {
			return player, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryRepo) CreateGameSession(_ context.Context, p repository.CreateGameSessionParams) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextId++
	now := time.Now()
	s := &repository.GameSession{
		GameSessionId: m.nextId,
		PlayerId:      p.PlayerId,
		Columns:       p.State.Columns,
		Rows:          p.State.Rows,
		MoveCount:     p.State.MoveCount,
		Labels:        puzzle.EncodeLabels(p.State.Labels),
		StartedAt:     timestamptz(now),
		CreatedAt:     timestamptz(now),
		UpdatedAt:     timestamptz(now),
	}
	m.sessions[s.GameSessionId] = s
	copied := *s
	return &copied, nil
}

func (m *memoryRepo) FetchGameSession(_ context.Context, id int64) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (m *memoryRepo) UpdateGameSession(
	_ context.Context, id int64, p repository.UpdateGameSessionParams,
) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if e := p.Expected; e != nil && (s.MoveCount != e.MoveCount || s.Labels != puzzle.EncodeLabels(e.Labels)) {
		return nil, repository.ErrStaleSession
	}
	if p.MoveCount != nil {
		s.MoveCount = *p.MoveCount
	}
	if p.Labels != nil {
		s.Labels = puzzle.EncodeLabels(*p.Labels)
	}
	if p.Won != nil {
		s.Won = *p.Won
	}
	if p.StartedAt != nil {
		s.StartedAt = timestamptz(*p.StartedAt)
	}
	if p.EndedAt != nil {
		s.EndedAt = timestamptz(*p.EndedAt)
	}
	s.UpdatedAt = timestamptz(time.Now())
	copied := *s
	return &copied, nil
}

func (m *memoryRepo) GetHighscores(_ context.Context, f repository.HighscoreFilter) ([]repository.Highscore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var scores []repository.Highscore
	for _, s := range m.sessions {
		if !s.Won || !s.EndedAt.Valid {
			continue
		}
		if f.Columns != nil && s.Columns != *f.Columns || f.Rows != nil && s.Rows != *f.Rows {
			continue
		}
		var username *string
		if s.PlayerId != nil {
			for _, p := range m.players {
				if p.PlayerId == *s.PlayerId {
					username = &p.Username
				}
			}
		}
		if f.Username != nil && (username == nil || *username != *f.Username) {
			continue
		}
		scores = append(scores, repository.Highscore{
			GameSessionId: s.GameSessionId,
			Username:      username,
			Columns:       s.Columns,
			Rows:          s.Rows,
			MoveCount:     s.MoveCount,
			PlaytimeMs:    float64(s.EndedAt.Time.Sub(s.StartedAt.Time).Milliseconds()),
		})
	}
	slices.SortFunc(scores, func(a, b repository.Highscore) int {
		return cmp.Or(cmp.Compare(a.MoveCount, b.MoveCount), cmp.Compare(a.PlaytimeMs, b.PlaytimeMs))
	})
	if f.Limit > 0 && len(scores) > f.Limit {
		scores = scores[:f.Limit]
	}
	return scores, nil
}

// addSession stores a session with the given board directly.
func (m *memoryRepo) addSession(playerId *int64, state puzzle.SaveState) int64 {
	s, _ := m.CreateGameSession(context.Background(), repository.CreateGameSessionParams{
		PlayerId: playerId, State: state,
	})
	return s.GameSessionId
}
