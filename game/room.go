// game/room.go
package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/extratha/fake-catch-sketch/logger"
	"github.com/extratha/fake-catch-sketch/models"
	"github.com/extratha/fake-catch-sketch/network"
)

// Settings 房间规则参数
type Settings struct {
	MinPlayers  int
	WordChoices int
	LockDelay   time.Duration
	MaxNameLen  int
}

// DefaultSettings matches the original game rules.
func DefaultSettings() Settings {
	return Settings{
		MinPlayers:  2,
		WordChoices: 3,
		LockDelay:   400 * time.Millisecond,
		MaxNameLen:  15,
	}
}

// Room 是游戏房间的核心结构. It owns the authoritative GameState and is the
// single logical writer for it: every mutation runs under one mutex, is
// validated against the current phase and caller role, and on success is
// immediately broadcast. Rejected intents change nothing and broadcast
// nothing.
type Room struct {
	state       *models.GameState
	settings    Settings
	words       WordSource
	scheduler   Scheduler
	broadcaster Broadcaster
	sink        RoundSink
	round       int // generation counter; bumped whenever a pending lock becomes stale
	createdAt   time.Time
	mutex       sync.Mutex
}

// NewRoom 创建一个新房间 in LOBBY phase with an empty roster.
func NewRoom(id string, settings Settings, words WordSource, scheduler Scheduler, broadcaster Broadcaster, sink RoundSink) *Room {
	return &Room{
		state: &models.GameState{
			RoomID:  id,
			Phase:   models.PhaseLobby,
			Players: []*models.Player{},
		},
		settings:    settings,
		words:       words,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		sink:        sink,
		createdAt:   time.Now(),
	}
}

func (r *Room) ID() string {
	return r.state.RoomID
}

// Join adds a player to the roster, or reconciles a reconnect: an identity
// already present is marked connected and gets its name and transport
// session refreshed without touching score or drawing state.
func (r *Room) Join(playerID, name, sessionID string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	// 按字符截断, 不能切断多字节字符
	if runes := []rune(name); len(runes) > r.settings.MaxNameLen {
		name = string(runes[:r.settings.MaxNameLen])
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if p := r.state.FindPlayer(playerID); p != nil {
		p.IsConnected = true
		p.Name = name
		p.SessionID = sessionID
	} else {
		r.state.Players = append(r.state.Players, &models.Player{
			ID:          playerID,
			Name:        name,
			IsHost:      len(r.state.Players) == 0,
			IsGuesser:   r.state.GuesserID == playerID,
			IsConnected: true,
			SessionID:   sessionID,
		})
	}

	r.ensureHost()
	r.broadcastState()
	return nil
}

// Disconnect marks the player owning sessionID as not-connected, keeping the
// roster entry so the identity can reconnect. Returns true when no connected
// player remains and the room is eligible for deletion.
func (r *Room) Disconnect(sessionID string) (empty bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var found *models.Player
	for _, p := range r.state.Players {
		if p.SessionID == sessionID {
			found = p
			break
		}
	}
	if found == nil || !found.IsConnected {
		return r.state.ConnectedCount() == 0
	}

	found.IsConnected = false
	r.ensureHost()

	if r.state.ConnectedCount() == 0 {
		return true
	}
	r.broadcastState()
	return false
}

// Leave removes the player from the roster outright. Unlike a transport
// disconnect, an explicit leave is not presumed transient.
func (r *Room) Leave(playerID string) (empty bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	idx := -1
	for i, p := range r.state.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return r.state.ConnectedCount() == 0
	}

	r.state.Players = append(r.state.Players[:idx], r.state.Players[idx+1:]...)
	r.ensureHost()

	// A round cannot resolve without its guesser. If the guesser's roster
	// entry is gone mid-round, abandon the round and return to the lobby so
	// the host can start a fresh one.
	if playerID == r.state.GuesserID && r.state.Phase != models.PhaseLobby && r.state.WinnerID == "" {
		r.abandonRound()
	}

	if r.state.ConnectedCount() == 0 {
		return true
	}
	r.broadcastState()
	return false
}

// abandonRound resets all per-round state back to LOBBY. GuesserID is kept so
// the next rotation still advances past the departed guesser.
func (r *Room) abandonRound() {
	for _, p := range r.state.Players {
		p.IsGuesser = false
		p.HasFinishedDrawing = false
		p.DrawingOrder = 0
		p.DrawingData = ""
	}
	r.state.Phase = models.PhaseLobby
	r.state.CurrentWord = ""
	r.state.SelectableWords = nil
	r.state.WinnerID = ""
	r.state.RevealOrder = 0
	r.state.IsBoardLocked = false
	r.invalidateLock()
	logger.Log.Infof("room %s round abandoned, guesser left", r.state.RoomID)
}

// Apply validates and applies a named intent from playerID. On success the
// new state has been broadcast before Apply returns.
func (r *Room) Apply(playerID string, intent Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	caller := r.state.FindPlayer(playerID)
	if caller == nil {
		return ErrPlayerNotFound
	}

	var err error
	switch intent.Type {
	case IntentStartRound:
		err = r.startRound(caller)
	case IntentPickWord:
		err = r.pickWord(caller, intent.Word)
	case IntentFinishDrawing:
		err = r.finishDrawing(caller, intent.Drawing)
	case IntentRerollWord:
		err = r.rerollWord(caller)
	case IntentGuessResult:
		err = r.guessResult(caller, intent.Correct)
	}
	if err != nil {
		return err
	}

	r.broadcastState()
	return nil
}

// startRound rotates the guesser, resets per-round fields and deals the word
// choices. Legal from LOBBY, or from GUESSING once the round is resolved.
func (r *Room) startRound(caller *models.Player) error {
	if !caller.IsHost {
		return ErrNotHost
	}
	switch r.state.Phase {
	case models.PhaseLobby:
	case models.PhaseGuessing:
		if r.state.WinnerID == "" {
			return ErrBadPhase
		}
	default:
		return ErrBadPhase
	}
	if r.state.ConnectedCount() < r.settings.MinPlayers {
		return ErrNeedMorePlayers
	}

	// Rotation runs over the roster sorted by identity so every client
	// derives the same order regardless of join sequence.
	sorted := make([]*models.Player, len(r.state.Players))
	copy(sorted, r.state.Players)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	guesserIdx := -1
	for i, p := range sorted {
		if p.ID == r.state.GuesserID {
			guesserIdx = i
			break
		}
	}
	guesserIdx = (guesserIdx + 1) % len(sorted)
	guesser := sorted[guesserIdx]

	for _, p := range r.state.Players {
		p.IsGuesser = p.ID == guesser.ID
		p.HasFinishedDrawing = false
		p.DrawingOrder = 0
		p.DrawingData = ""
	}

	r.state.Phase = models.PhasePicking
	r.state.GuesserID = guesser.ID
	r.state.CurrentWord = ""
	r.state.WinnerID = ""
	r.state.RevealOrder = 0
	r.state.SelectableWords = r.words.Pick(r.settings.WordChoices)
	r.state.IsBoardLocked = false
	r.invalidateLock()

	logger.Log.Infof("room %s round started, guesser=%s", r.state.RoomID, guesser.ID)
	return nil
}

func (r *Room) pickWord(caller *models.Player, word string) error {
	if r.state.Phase != models.PhasePicking {
		return ErrBadPhase
	}
	if !caller.IsGuesser {
		return ErrNotGuesser
	}

	offered := false
	for _, w := range r.state.SelectableWords {
		if w == word {
			offered = true
			break
		}
	}
	if !offered {
		return ErrWordNotOffered
	}

	r.state.CurrentWord = word
	r.state.SelectableWords = nil
	r.state.Phase = models.PhaseDrawing
	return nil
}

func (r *Room) finishDrawing(caller *models.Player, drawing string) error {
	if r.state.Phase != models.PhaseDrawing {
		return ErrBadPhase
	}
	if caller.IsGuesser {
		return ErrGuesserCantDraw
	}
	if caller.HasFinishedDrawing {
		return ErrAlreadyFinished
	}

	finished := len(r.state.Drawers())
	caller.HasFinishedDrawing = true
	caller.DrawingOrder = finished + 1
	caller.DrawingData = drawing

	if finished+1 >= r.state.DrawerCount() {
		r.state.Phase = models.PhaseGuessing
		r.invalidateLock()
		return nil
	}

	// Auto-lock: once more than one drawer is done the remaining boards
	// freeze after a short debounce, so a straggler cannot keep editing.
	// Any later transition that makes the pending lock stale cancels it;
	// a further finish just reschedules the same key.
	if finished+1 > 1 && !r.state.IsBoardLocked {
		generation := r.round
		r.scheduler.Schedule(r.lockKey(), r.settings.LockDelay, func() {
			r.applyBoardLock(generation)
		})
	}
	return nil
}

func (r *Room) rerollWord(caller *models.Player) error {
	if r.state.Phase != models.PhaseDrawing {
		return ErrBadPhase
	}
	if !caller.IsGuesser {
		return ErrNotGuesser
	}

	r.state.CurrentWord = r.words.Reroll(r.state.CurrentWord)
	for _, p := range r.state.Players {
		p.HasFinishedDrawing = false
		p.DrawingOrder = 0
		p.DrawingData = ""
	}
	r.state.IsBoardLocked = false
	r.state.RevealOrder = 0
	r.invalidateLock()
	return nil
}

func (r *Room) guessResult(caller *models.Player, correct bool) error {
	if r.state.Phase != models.PhaseGuessing {
		return ErrBadPhase
	}
	if !caller.IsGuesser {
		return ErrNotGuesser
	}
	if r.state.WinnerID != "" {
		return ErrRoundResolved
	}

	if correct {
		// reveal 0 -> 3 stars, reveal 1 -> 2, anything later -> 1;
		// awarded to the guesser and the currently revealed drawer only.
		points := 3 - r.state.RevealOrder
		if points < 1 {
			points = 1
		}
		caller.Score += points

		drawers := r.state.Drawers()
		if r.state.RevealOrder < len(drawers) {
			drawers[r.state.RevealOrder].Score += points
		}

		r.state.WinnerID = caller.ID
		r.resolveRound(points)
		return nil
	}

	if r.state.RevealOrder < r.state.DrawerCount()-1 {
		r.state.RevealOrder++
		return nil
	}

	// Every drawing revealed, nobody scored.
	r.state.WinnerID = models.NoWinner
	r.resolveRound(0)
	return nil
}

// resolveRound hands the resolved round to the sink off the writer
// goroutine; a transition never blocks on I/O.
func (r *Room) resolveRound(points int) {
	if r.sink == nil {
		return
	}
	snapshot := r.snapshotLocked()
	word := r.state.CurrentWord
	go r.sink.RoundResolved(snapshot, word, points)
}

// applyBoardLock is the deferred auto-lock callback. It re-checks that the
// round generation and phase it was scheduled under still hold.
func (r *Room) applyBoardLock(generation int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.round != generation || r.state.Phase != models.PhaseDrawing || r.state.IsBoardLocked {
		return
	}
	r.state.IsBoardLocked = true
	logger.Log.Infof("room %s board locked", r.state.RoomID)
	r.broadcastState()
}

// invalidateLock cancels any pending auto-lock and bumps the generation so
// an in-flight callback becomes a no-op.
func (r *Room) invalidateLock() {
	r.scheduler.Cancel(r.lockKey())
	r.round++
}

func (r *Room) lockKey() string {
	return fmt.Sprintf("lock:%s:%d", r.state.RoomID, r.round)
}

// ensureHost keeps exactly one host among connected players whenever anyone
// is connected. Host status moves to the first connected player in roster
// order.
func (r *Room) ensureHost() {
	var first *models.Player
	hosts := 0
	for _, p := range r.state.Players {
		if p.IsConnected && first == nil {
			first = p
		}
		if p.IsHost && p.IsConnected {
			hosts++
		}
	}
	if first == nil {
		return
	}
	if hosts == 1 {
		return
	}
	for _, p := range r.state.Players {
		p.IsHost = false
	}
	first.IsHost = true
}

// Snapshot returns a deep copy of the current state, safe to read outside
// the room mutex.
func (r *Room) Snapshot() *models.GameState {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() *models.GameState {
	clone := *r.state
	clone.Players = make([]*models.Player, len(r.state.Players))
	for i, p := range r.state.Players {
		cp := *p
		clone.Players[i] = &cp
	}
	clone.SelectableWords = append([]string(nil), r.state.SelectableWords...)
	return &clone
}

// Summary returns the derived room-list entry.
func (r *Room) Summary() models.RoomSummary {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return models.RoomSummary{
		ID:          r.state.RoomID,
		PlayerCount: len(r.state.Players),
		Phase:       r.state.Phase,
	}
}

// Close cancels any pending deferred work. State is discarded with the room.
func (r *Room) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.scheduler.Cancel(r.lockKey())
}

func (r *Room) broadcastState() {
	data, err := json.Marshal(r.state)
	if err != nil {
		logger.Log.Errorf("room %s failed to marshal state: %v", r.state.RoomID, err)
		return
	}
	if err := r.broadcaster.BroadcastToRoom(r.state.RoomID, network.MsgTypeStateUpdate, data); err != nil {
		logger.Log.Warnf("room %s broadcast failed: %v", r.state.RoomID, err)
	}
}
