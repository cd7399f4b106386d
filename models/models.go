// models/models.go
package models

import (
	"sort"
	"time"
)

// Phase 房间阶段
type Phase string

const (
	PhaseLobby    Phase = "LOBBY"
	PhasePicking  Phase = "PICKING"
	PhaseDrawing  Phase = "DRAWING"
	PhaseGuessing Phase = "GUESSING"
)

// NoWinner is the winnerId sentinel for a round that resolved without a
// correct guess.
const NoWinner = "NONE"

// Player 玩家数据模型. The id is the durable identity and survives
// reconnects; SessionID points at the current live transport session and is
// stale while the player is disconnected.
type Player struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Score              int    `json:"score"`
	IsHost             bool   `json:"isHost"`
	IsGuesser          bool   `json:"isGuesser"`
	HasFinishedDrawing bool   `json:"hasFinishedDrawing"`
	DrawingOrder       int    `json:"drawingOrder"` // 0 = not finished
	DrawingData        string `json:"drawingData,omitempty"`
	IsConnected        bool   `json:"isConnected"`
	SessionID          string `json:"sessionId,omitempty"`
}

// GameState 房间状态模型, the authoritative snapshot broadcast to the room
// after every accepted intent.
type GameState struct {
	RoomID          string    `json:"roomId"`
	Phase           Phase     `json:"phase"`
	Players         []*Player `json:"players"`
	CurrentWord     string    `json:"currentWord,omitempty"`
	GuesserID       string    `json:"guesserId,omitempty"`
	WinnerID        string    `json:"winnerId,omitempty"`
	RevealOrder     int       `json:"revealOrder"`
	SelectableWords []string  `json:"selectableWords,omitempty"`
	IsBoardLocked   bool      `json:"isBoardLocked"`
}

// FindPlayer returns the roster entry for a durable player identity.
func (g *GameState) FindPlayer(playerID string) *Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// ConnectedCount 在线玩家数量
func (g *GameState) ConnectedCount() int {
	n := 0
	for _, p := range g.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

// Drawers returns the finished non-guesser players ordered by the sequence
// in which they finished. Index revealOrder into this slice is the drawing
// currently shown to the guesser.
func (g *GameState) Drawers() []*Player {
	var drawers []*Player
	for _, p := range g.Players {
		if !p.IsGuesser && p.HasFinishedDrawing {
			drawers = append(drawers, p)
		}
	}
	sort.Slice(drawers, func(i, j int) bool {
		return drawers[i].DrawingOrder < drawers[j].DrawingOrder
	})
	return drawers
}

// DrawerCount 非猜题者数量
func (g *GameState) DrawerCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsGuesser {
			n++
		}
	}
	return n
}

// RoomSummary 房间列表条目 (derived, read-only view)
type RoomSummary struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	Phase       Phase  `json:"phase"`
}

// ChatMessage is relayed to the room as-is and never touches the
// authoritative state.
type ChatMessage struct {
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
