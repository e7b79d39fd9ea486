package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/fifteen-server/internal/game"
	"github.com/vancomm/fifteen-server/internal/puzzle"
	"github.com/vancomm/fifteen-server/internal/repository"
)

type wsMessage struct {
	Kind      string          `json:"kind"`
	Label     int             `json:"label"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Secondary bool            `json:"secondary"`
	MoveCount int             `json:"move_count"`
	Session   *GameSessionDTO `json:"session"`
	Error     string          `json:"error"`
}

func dialGame(t *testing.T, env *testEnv, id int64) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(env.handler)
	t.Cleanup(srv.Close)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/game/%d/connect", id)
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	c.SetReadDeadline(time.Now().Add(10 * time.Second))
	return c
}

func send(t *testing.T, c *websocket.Conn, command string) {
	t.Helper()
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(command)))
}

func receive(t *testing.T, c *websocket.Conn) wsMessage {
	t.Helper()
	var m wsMessage
	require.NoError(t, c.ReadJSON(&m))
	return m
}

func TestConnectWSMove(t *testing.T) {
	env := newTestEnv(t)
	id := env.repo.addSession(nil, puzzle.SaveState{
		Columns: 2, Rows: 2, Labels: []int{0, 1, 3, 2},
	})
	c := dialGame(t, env, id)

	send(t, c, "g")
	m := receive(t, c)
	require.Equal(t, "state", m.Kind)
	assert.Equal(t, []int{0, 1, 3, 2}, m.Session.Labels)

	send(t, c, "a")
	assert.Equal(t, "error", receive(t, c).Kind)

	send(t, c, "m 1 0")
	m = receive(t, c)
	assert.Equal(t, wsMessage{Kind: string(game.TileMoved), Label: 2, X: 0, Y: 0}, m)
	m = receive(t, c)
	assert.Equal(t, wsMessage{Kind: string(game.TileMoved), Label: 3, X: 1, Y: 0, Secondary: true}, m)

	// the move is not counted until the client has played it back
	send(t, c, "m 0 1")
	m = receive(t, c)
	assert.Equal(t, "error", m.Kind)
	assert.Contains(t, m.Error, game.ErrBusy.Error())

	send(t, c, "a")
	removed := 0
	for {
		m = receive(t, c)
		if m.Kind == string(game.Won) {
			break
		}
		assert.Equal(t, string(game.TileRemoved), m.Kind)
		removed++
	}
	assert.Equal(t, 4, removed)
	assert.Equal(t, 1, m.MoveCount)

	session, err := env.repo.FetchGameSession(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, session.Won)
	assert.Equal(t, 1, session.MoveCount)
	assert.Equal(t, "0,1,2,3", session.Labels)
	assert.True(t, session.EndedAt.Valid)

	send(t, c, "m 0 0")
	m = receive(t, c)
	assert.Equal(t, "error", m.Kind)
	assert.Contains(t, m.Error, game.ErrFinished.Error())
}

func TestConnectWSStaleBoard(t *testing.T) {
	env := newTestEnv(t)
	id := env.repo.addSession(nil, puzzle.SaveState{
		Columns: 3, Rows: 3, Labels: []int{0, 1, 2, 3, 8, 5, 6, 4, 7},
	})
	c := dialGame(t, env, id)

	rec := env.do(http.MethodPost, fmt.Sprintf("/game/%d/move?x=0&y=1", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the socket still holds the board from before the http move
	send(t, c, "m 2 1")
	assert.Equal(t, wsMessage{Kind: string(game.TileMoved), Label: 5, X: 1, Y: 1}, receive(t, c))
	assert.Equal(t, wsMessage{Kind: string(game.TileMoved), Label: 8, X: 2, Y: 1, Secondary: true}, receive(t, c))
	send(t, c, "a")
	m := receive(t, c)
	assert.Equal(t, "error", m.Kind)
	assert.Contains(t, m.Error, repository.ErrStaleSession.Error())

	session, err := env.repo.FetchGameSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, session.MoveCount)
	assert.Equal(t, "0,1,2,8,3,5,6,4,7", session.Labels)

	send(t, c, "g")
	m = receive(t, c)
	require.Equal(t, "state", m.Kind)
	assert.Equal(t, []int{0, 1, 2, 8, 3, 5, 6, 4, 7}, m.Session.Labels)
	assert.Equal(t, 1, m.Session.MoveCount)

	send(t, c, "m 1 1")
	assert.Equal(t, string(game.TileMoved), receive(t, c).Kind)
	assert.Equal(t, string(game.TileMoved), receive(t, c).Kind)
	send(t, c, "a")
	send(t, c, "g")
	require.Equal(t, "state", receive(t, c).Kind)

	session, err = env.repo.FetchGameSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, session.MoveCount)
	assert.Equal(t, "0,1,2,3,8,5,6,4,7", session.Labels)
}

func TestConnectWSShuffle(t *testing.T) {
	env := newTestEnv(t)
	id := env.repo.addSession(nil, puzzle.SaveState{
		Columns: 3, Rows: 3, MoveCount: 5, Labels: []int{0, 1, 2, 3, 4, 5, 6, 8, 7},
	})
	c := dialGame(t, env, id)

	send(t, c, "s")
	acks := 0
	for {
		m := receive(t, c)
		if m.Kind == string(game.ShuffleDone) {
			break
		}
		require.Equal(t, string(game.TileMoved), m.Kind)
		if m.Secondary {
			acks++
			require.Less(t, acks, 1000)
			send(t, c, "a")
		}
	}
	assert.GreaterOrEqual(t, acks, 27)

	session, err := env.repo.FetchGameSession(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, session.MoveCount)
	assert.NotEqual(t, "0,1,2,3,4,5,6,7,8", session.Labels)

	send(t, c, "g")
	m := receive(t, c)
	require.Equal(t, "state", m.Kind)
	assert.Equal(t, session.Labels, puzzle.EncodeLabels(m.Session.Labels))
}

func TestConnectWSBadCommands(t *testing.T) {
	env := newTestEnv(t)
	id := env.repo.addSession(nil, puzzle.SaveState{
		Columns: 2, Rows: 2, Labels: []int{0, 1, 3, 2},
	})
	c := dialGame(t, env, id)

	for _, command := range []string{"x", "m 1", "m a b", "g 1", "m 1 1"} {
		send(t, c, command)
		assert.Equal(t, "error", receive(t, c).Kind, command)
	}
}

func TestIterBySep(t *testing.T) {
	testCases := []struct {
		input string
		sep   string
		array []string
	}{
		{"g", "\n", []string{"g"}},
		{"m 1 0\na\na", "\n", []string{"m 1 0", "a", "a"}},
		{"a\n\ng", "\n", []string{"a", "", "g"}},
	}
	for _, test := range testCases {
		var pieces []string
		for i, p := range iterBySep(test.input, test.sep) {
			require.Equal(t, len(pieces), i)
			pieces = append(pieces, p)
		}
		assert.Equal(t, test.array, pieces, test.input)
	}
}
