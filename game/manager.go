// game/manager.go
package game

import (
	"github.com/extratha/fake-catch-sketch/logger"
	"github.com/extratha/fake-catch-sketch/models"
)

// Manager 管理所有房间. Rooms are created on first join and removed once no
// connected player remains.
type Manager struct {
	store       Store
	settings    Settings
	words       WordSource
	scheduler   Scheduler
	broadcaster Broadcaster
	sink        RoundSink
}

func NewManager(store Store, settings Settings, words WordSource, scheduler Scheduler, broadcaster Broadcaster, sink RoundSink) *Manager {
	return &Manager{
		store:       store,
		settings:    settings,
		words:       words,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		sink:        sink,
	}
}

// Join routes a join to the room, creating it on first join to the roomID.
func (m *Manager) Join(roomID, playerID, name, sessionID string) (*Room, error) {
	room, exists := m.store.Get(roomID)
	if !exists {
		room = NewRoom(roomID, m.settings, m.words, m.scheduler, m.broadcaster, m.sink)
		m.store.Put(roomID, room)
		logger.Log.Infof("room %s created", roomID)
	}
	if err := room.Join(playerID, name, sessionID); err != nil {
		return nil, err
	}
	return room, nil
}

func (m *Manager) Get(roomID string) (*Room, bool) {
	return m.store.Get(roomID)
}

// Apply routes a named intent to its room.
func (m *Manager) Apply(roomID, playerID string, intent Intent) error {
	room, exists := m.store.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}
	return room.Apply(playerID, intent)
}

// Leave removes the player from the roster, tearing the room down if nobody
// is left connected.
func (m *Manager) Leave(roomID, playerID string) {
	room, exists := m.store.Get(roomID)
	if !exists {
		return
	}
	if room.Leave(playerID) {
		m.remove(room)
	}
}

// Disconnect marks the session's player as not-connected, tearing the room
// down if nobody is left connected.
func (m *Manager) Disconnect(roomID, sessionID string) {
	room, exists := m.store.Get(roomID)
	if !exists {
		return
	}
	if room.Disconnect(sessionID) {
		m.remove(room)
	}
}

func (m *Manager) remove(room *Room) {
	room.Close()
	m.store.Delete(room.ID())
	logger.Log.Infof("room %s removed, no players connected", room.ID())
}

// Summaries returns the derived room listing.
func (m *Manager) Summaries() []models.RoomSummary {
	rooms := m.store.List()
	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	return summaries
}

// Count 活跃房间数量
func (m *Manager) Count() int {
	return len(m.store.List())
}
