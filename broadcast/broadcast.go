// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/extratha/fake-catch-sketch/session"
)

var (
	ErrNoRecipients = errors.New("no sessions bound to room")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
	RelayToRoom(roomID, exceptSessionID string, msgID uint16, data []byte) error
}

// RoomBroadcaster delivers packets over the live sessions bound to a room.
// Send failures on individual sessions are skipped; the disconnect path
// cleans those sessions up.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	sessions := b.sessionManager.GetByRoomID(roomID)
	if len(sessions) == 0 {
		return ErrNoRecipients
	}

	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

// RelayToRoom forwards ephemeral traffic (drawing strokes) to everyone in
// the room except the sender.
func (b *RoomBroadcaster) RelayToRoom(roomID, exceptSessionID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoomID(roomID) {
		if s.GetID() == exceptSessionID {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
