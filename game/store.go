// game/store.go
package game

import "sync"

// Store holds the authoritative room set. It is an explicit, injected
// interface so the in-memory map can be swapped for a distributed store
// without touching the state machine.
type Store interface {
	Get(roomID string) (*Room, bool)
	Put(roomID string, room *Room)
	Delete(roomID string)
	List() []*Room
}

// MemoryStore 内存房间存储
type MemoryStore struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*Room),
	}
}

func (s *MemoryStore) Get(roomID string) (*Room, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	room, exists := s.rooms[roomID]
	return room, exists
}

func (s *MemoryStore) Put(roomID string, room *Room) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rooms[roomID] = room
}

func (s *MemoryStore) Delete(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.rooms, roomID)
}

func (s *MemoryStore) List() []*Room {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
