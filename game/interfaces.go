// game/interfaces.go
package game

import (
	"time"

	"github.com/extratha/fake-catch-sketch/models"
)

// Broadcaster delivers a message to every connected member of a room. This
// is defined here to break the import cycle between game and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}

// Scheduler runs a deferred callback identified by key. Scheduling an
// existing key replaces the pending callback; Cancel drops it.
type Scheduler interface {
	Schedule(key string, delay time.Duration, callback func())
	Cancel(key string)
}

// WordSource supplies secret words for a round.
type WordSource interface {
	Pick(n int) []string
	Reroll(exclude string) string
}

// RoundSink receives resolved rounds. Implementations must not assume they
// run on the room's writer goroutine.
type RoundSink interface {
	RoundResolved(state *models.GameState, word string, points int)
}
