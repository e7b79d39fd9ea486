package game

import "fmt"

type EventKind string

const (
	TileMoved   EventKind = "moved"
	TileRemoved EventKind = "removed"
	ShuffleDone EventKind = "shuffled"
	Won         EventKind = "won"
)

// Event is something a view has to play back. A TileMoved event with
// Secondary set closes a swap; the view answers it with [Game.Settled].
type Event struct {
	Kind      EventKind `json:"kind"`
	Label     int       `json:"label"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Secondary bool      `json:"secondary,omitempty"`
	MoveCount int       `json:"move_count"`
}

func (e Event) String() string {
	switch e.Kind {
	case TileMoved:
		return fmt.Sprintf("%s %d -> (%d, %d)", e.Kind, e.Label, e.X, e.Y)
	case TileRemoved:
		return fmt.Sprintf("%s %d", e.Kind, e.Label)
	default:
		return fmt.Sprintf("%s after %d moves", e.Kind, e.MoveCount)
	}
}
