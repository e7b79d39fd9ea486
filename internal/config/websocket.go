package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
	// IdleTimeout closes a live game connection that sends nothing.
	IdleTimeout time.Duration
}

func NewWebSocket() (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	ws := &WebSocket{
		Upgrader:    upgrader,
		IdleTimeout: 10 * time.Minute,
	}

	return ws, nil
}
