package game

import (
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/extratha/fake-catch-sketch/logger"
	"github.com/extratha/fake-catch-sketch/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// mockBroadcaster is a test double for the Broadcaster interface.
type mockBroadcaster struct {
	mutex sync.Mutex
	calls int
}

func (m *mockBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls++
	return nil
}

func (m *mockBroadcaster) count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.calls
}

// mockScheduler records scheduled tasks and lets tests fire them manually.
type mockScheduler struct {
	mutex     sync.Mutex
	pending   map[string]func()
	cancelled []string
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{pending: make(map[string]func())}
}

func (m *mockScheduler) Schedule(key string, delay time.Duration, callback func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pending[key] = callback
}

func (m *mockScheduler) Cancel(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.pending, key)
	m.cancelled = append(m.cancelled, key)
}

// firePending runs and clears every pending callback.
func (m *mockScheduler) firePending() {
	m.mutex.Lock()
	callbacks := make([]func(), 0, len(m.pending))
	for k, cb := range m.pending {
		callbacks = append(callbacks, cb)
		delete(m.pending, k)
	}
	m.mutex.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

func (m *mockScheduler) pendingCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pending)
}

// stubWords is a deterministic word source.
type stubWords struct {
	choices []string
	reroll  string
}

func (s *stubWords) Pick(n int) []string {
	return append([]string(nil), s.choices...)
}

func (s *stubWords) Reroll(exclude string) string {
	return s.reroll
}

func newTestRoom() (*Room, *mockBroadcaster, *mockScheduler) {
	b := &mockBroadcaster{}
	s := newMockScheduler()
	w := &stubWords{choices: []string{"Cat", "House", "Rocket"}, reroll: "Robot"}
	return NewRoom("test_room", DefaultSettings(), w, s, b, nil), b, s
}

// seedRoom joins players a (host), b, c in order.
func seedRoom(t *testing.T, r *Room, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := r.Join(id, "Player "+id, "sess-"+id); err != nil {
			t.Fatalf("join %s failed: %v", id, err)
		}
	}
}

func TestJoin_FirstPlayerBecomesHost(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b")

	state := r.Snapshot()
	if len(state.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(state.Players))
	}
	if !state.Players[0].IsHost {
		t.Error("first player should be host")
	}
	if state.Players[1].IsHost {
		t.Error("second player should not be host")
	}
}

func TestJoin_ReconnectDoesNotDuplicate(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b")

	// Give a some score, then drop and rejoin.
	r.Snapshot() // sanity only
	r.state.FindPlayer("a").Score = 5

	if empty := r.Disconnect("sess-a"); empty {
		t.Fatal("room should not be empty after one disconnect")
	}

	if err := r.Join("a", "Renamed", "sess-a2"); err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}

	state := r.Snapshot()
	if len(state.Players) != 2 {
		t.Fatalf("rejoin duplicated roster entry: %d players", len(state.Players))
	}
	p := state.FindPlayer("a")
	if !p.IsConnected {
		t.Error("rejoined player should be connected")
	}
	if p.Name != "Renamed" {
		t.Errorf("rejoin should refresh name, got %q", p.Name)
	}
	if p.Score != 5 {
		t.Errorf("rejoin must not reset score, got %d", p.Score)
	}
	if p.SessionID != "sess-a2" {
		t.Errorf("rejoin should refresh session, got %q", p.SessionID)
	}
}

func TestJoin_NameValidation(t *testing.T) {
	r, _, _ := newTestRoom()

	if err := r.Join("a", "   ", "sess-a"); err != ErrEmptyName {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	if err := r.Join("b", "a really long artist name", "sess-b"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if got := r.Snapshot().FindPlayer("b").Name; len(got) != 15 {
		t.Errorf("expected name truncated to 15 chars, got %q (%d)", got, len(got))
	}
}

func TestJoin_MultibyteNameTruncation(t *testing.T) {
	r, _, _ := newTestRoom()

	// 5 emoji is 20 bytes but only 5 characters; nothing to truncate.
	if err := r.Join("a", "🎨🎨🎨🎨🎨", "sess-a"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if got := r.Snapshot().FindPlayer("a").Name; got != "🎨🎨🎨🎨🎨" {
		t.Errorf("emoji name mangled: %q", got)
	}

	if err := r.Join("b", "アアアアアアアアアアアアアアアアアア", "sess-b"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	got := r.Snapshot().FindPlayer("b").Name
	if !utf8.ValidString(got) {
		t.Errorf("truncated name is invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 15 {
		t.Errorf("expected 15 characters after truncation, got %d (%q)", n, got)
	}
}

func TestStartRound_Validation(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a")

	// Only one connected player.
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != ErrNeedMorePlayers {
		t.Errorf("expected ErrNeedMorePlayers, got %v", err)
	}

	seedRoom(t, r, "b")

	// Non-host caller.
	if err := r.Apply("b", Intent{Type: IntentStartRound}); err != ErrNotHost {
		t.Errorf("expected ErrNotHost, got %v", err)
	}

	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("start_round failed: %v", err)
	}

	state := r.Snapshot()
	if state.Phase != models.PhasePicking {
		t.Errorf("expected PICKING, got %s", state.Phase)
	}
	if len(state.SelectableWords) != 3 {
		t.Errorf("expected 3 word choices, got %d", len(state.SelectableWords))
	}

	// start_round is not legal mid-round.
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != ErrBadPhase {
		t.Errorf("expected ErrBadPhase, got %v", err)
	}
}

func TestStartRound_GuesserRotation(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "c", "a", "b") // join order differs from id order on purpose

	if err := r.Apply("c", Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("start_round failed: %v", err)
	}

	// No previous guesser: rotation begins at index 0 of the id-sorted roster.
	state := r.Snapshot()
	if state.GuesserID != "a" {
		t.Errorf("expected guesser a, got %s", state.GuesserID)
	}

	guessers := 0
	for _, p := range state.Players {
		if p.IsGuesser {
			guessers++
		}
	}
	if guessers != 1 {
		t.Errorf("expected exactly one guesser, got %d", guessers)
	}
}

// playRound drives a three-player room (a guesser, b and c drawers) to the
// GUESSING phase.
func playRound(t *testing.T, r *Room) {
	t.Helper()
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("start_round failed: %v", err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatalf("pick_word failed: %v", err)
	}
	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img-b"}); err != nil {
		t.Fatalf("finish_drawing b failed: %v", err)
	}
	if err := r.Apply("c", Intent{Type: IntentFinishDrawing, Drawing: "img-c"}); err != nil {
		t.Fatalf("finish_drawing c failed: %v", err)
	}
}

func TestRoundTrip_AllDrawersFinish(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)

	state := r.Snapshot()
	if state.Phase != models.PhaseGuessing {
		t.Fatalf("expected GUESSING, got %s", state.Phase)
	}
	if state.RevealOrder != 0 {
		t.Errorf("expected revealOrder 0, got %d", state.RevealOrder)
	}

	drawers := state.Drawers()
	if len(drawers) != 2 {
		t.Fatalf("expected 2 drawers, got %d", len(drawers))
	}
	if drawers[0].ID != "b" || drawers[1].ID != "c" {
		t.Errorf("drawers not in finish order: %s, %s", drawers[0].ID, drawers[1].ID)
	}
	if drawers[0].DrawingOrder != 1 || drawers[1].DrawingOrder != 2 {
		t.Errorf("drawing orders wrong: %d, %d", drawers[0].DrawingOrder, drawers[1].DrawingOrder)
	}
	if drawers[0].DrawingData != "img-b" {
		t.Errorf("drawing payload not attached: %q", drawers[0].DrawingData)
	}
}

func TestPickWord_Validation(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b")

	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != ErrBadPhase {
		t.Errorf("expected ErrBadPhase before round start, got %v", err)
	}

	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("start_round failed: %v", err)
	}

	if err := r.Apply("b", Intent{Type: IntentPickWord, Word: "Cat"}); err != ErrNotGuesser {
		t.Errorf("expected ErrNotGuesser, got %v", err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Submarine"}); err != ErrWordNotOffered {
		t.Errorf("expected ErrWordNotOffered, got %v", err)
	}

	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatalf("pick_word failed: %v", err)
	}

	state := r.Snapshot()
	if state.Phase != models.PhaseDrawing {
		t.Errorf("expected DRAWING, got %s", state.Phase)
	}
	if state.CurrentWord != "Cat" {
		t.Errorf("expected current word Cat, got %s", state.CurrentWord)
	}
	if state.SelectableWords != nil {
		t.Error("selectable words should be cleared after picking")
	}
}

func TestFinishDrawing_Validation(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Apply("a", Intent{Type: IntentFinishDrawing}); err != ErrGuesserCantDraw {
		t.Errorf("expected ErrGuesserCantDraw, got %v", err)
	}
	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != ErrAlreadyFinished {
		t.Errorf("expected ErrAlreadyFinished, got %v", err)
	}
	if err := r.Apply("nobody", Intent{Type: IntentFinishDrawing}); err != ErrPlayerNotFound {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestScoring_CorrectAtRevealZero(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)

	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: true}); err != nil {
		t.Fatalf("guess_result failed: %v", err)
	}

	state := r.Snapshot()
	if got := state.FindPlayer("a").Score; got != 3 {
		t.Errorf("guesser should gain 3 stars, got %d", got)
	}
	if got := state.FindPlayer("b").Score; got != 3 {
		t.Errorf("first drawer should gain 3 stars, got %d", got)
	}
	if got := state.FindPlayer("c").Score; got != 0 {
		t.Errorf("unrevealed drawer should gain nothing, got %d", got)
	}
	if state.WinnerID != "a" {
		t.Errorf("expected winner a, got %s", state.WinnerID)
	}
	if state.Phase != models.PhaseGuessing {
		t.Errorf("phase should remain GUESSING, got %s", state.Phase)
	}
}

func TestScoring_CorrectAtRevealTwo(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c", "d")

	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"b", "c", "d"} {
		if err := r.Apply(id, Intent{Type: IntentFinishDrawing, Drawing: "img-" + id}); err != nil {
			t.Fatal(err)
		}
	}

	// Two wrong guesses walk revealOrder to the last drawing.
	for i := 0; i < 2; i++ {
		if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: false}); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.Snapshot().RevealOrder; got != 2 {
		t.Fatalf("expected revealOrder 2, got %d", got)
	}

	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: true}); err != nil {
		t.Fatal(err)
	}

	state := r.Snapshot()
	if got := state.FindPlayer("a").Score; got != 1 {
		t.Errorf("guesser should gain 1 star at reveal 2, got %d", got)
	}
	if got := state.FindPlayer("d").Score; got != 1 {
		t.Errorf("third drawer should gain 1 star, got %d", got)
	}
	if got := state.FindPlayer("b").Score + state.FindPlayer("c").Score; got != 0 {
		t.Errorf("earlier drawers should gain nothing, got %d", got)
	}
}

func TestGuess_IncorrectWalksRevealsThenNoWinner(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)

	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: false}); err != nil {
		t.Fatal(err)
	}
	state := r.Snapshot()
	if state.RevealOrder != 1 {
		t.Errorf("expected revealOrder 1, got %d", state.RevealOrder)
	}
	if state.WinnerID != "" {
		t.Errorf("round should not be resolved yet, winner=%s", state.WinnerID)
	}

	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: false}); err != nil {
		t.Fatal(err)
	}
	state = r.Snapshot()
	if state.WinnerID != models.NoWinner {
		t.Errorf("expected NONE winner, got %s", state.WinnerID)
	}
	for _, p := range state.Players {
		if p.Score != 0 {
			t.Errorf("player %s should have no score, got %d", p.ID, p.Score)
		}
	}

	// Resolved round rejects further guesses.
	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: true}); err != ErrRoundResolved {
		t.Errorf("expected ErrRoundResolved, got %v", err)
	}
}

func TestGuess_WrongRole(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)

	if err := r.Apply("b", Intent{Type: IntentGuessResult, Correct: true}); err != ErrNotGuesser {
		t.Errorf("expected ErrNotGuesser, got %v", err)
	}
}

func TestNextRound_RotatesGuesser(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)

	// Unresolved round: host may not restart yet.
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != ErrBadPhase {
		t.Errorf("expected ErrBadPhase, got %v", err)
	}

	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("next round failed: %v", err)
	}

	state := r.Snapshot()
	if state.GuesserID != "b" {
		t.Errorf("expected guesser to rotate to b, got %s", state.GuesserID)
	}
	if state.Phase != models.PhasePicking {
		t.Errorf("expected PICKING, got %s", state.Phase)
	}
	if state.WinnerID != "" {
		t.Error("winner should be cleared on new round")
	}
	for _, p := range state.Players {
		if p.HasFinishedDrawing || p.DrawingOrder != 0 || p.DrawingData != "" {
			t.Errorf("player %s drawing state not reset", p.ID)
		}
	}
	// Scores survive across rounds.
	if got := state.FindPlayer("a").Score; got != 3 {
		t.Errorf("score should persist across rounds, got %d", got)
	}
}

func TestNextRound_PreviousGuesserGone(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)
	if err := r.Apply("a", Intent{Type: IntentGuessResult, Correct: true}); err != nil {
		t.Fatal(err)
	}

	// Guesser (and host) leaves outright; host migrates.
	if empty := r.Leave("a"); empty {
		t.Fatal("room should not be empty")
	}

	state := r.Snapshot()
	host := ""
	for _, p := range state.Players {
		if p.IsHost {
			host = p.ID
		}
	}
	if host == "" {
		t.Fatal("host did not migrate")
	}

	if err := r.Apply(host, Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("start_round failed: %v", err)
	}
	// Previous guesser absent: rotation restarts at the id-sorted head.
	if got := r.Snapshot().GuesserID; got != "b" {
		t.Errorf("expected guesser b, got %s", got)
	}
}

func TestReroll_RestartsDrawingSubRound(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Apply("b", Intent{Type: IntentRerollWord}); err != ErrNotGuesser {
		t.Errorf("expected ErrNotGuesser, got %v", err)
	}
	if err := r.Apply("a", Intent{Type: IntentRerollWord}); err != nil {
		t.Fatalf("reroll failed: %v", err)
	}

	state := r.Snapshot()
	if state.CurrentWord != "Robot" {
		t.Errorf("expected rerolled word, got %s", state.CurrentWord)
	}
	if state.Phase != models.PhaseDrawing {
		t.Errorf("reroll must stay in DRAWING, got %s", state.Phase)
	}
	if state.GuesserID != "a" {
		t.Errorf("reroll must not change guesser, got %s", state.GuesserID)
	}
	if state.FindPlayer("b").HasFinishedDrawing {
		t.Error("reroll should reset finished drawings")
	}
	if state.IsBoardLocked || state.RevealOrder != 0 {
		t.Error("reroll should reset lock and reveal order")
	}
}

func TestAutoLock_SchedulesAfterSecondFinish(t *testing.T) {
	r, b, sched := newTestRoom()
	seedRoom(t, r, "a", "b", "c", "d")
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}
	if sched.pendingCount() != 0 {
		t.Fatal("a single finished drawer must not schedule the lock")
	}

	if err := r.Apply("c", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}
	if sched.pendingCount() != 1 {
		t.Fatal("two finished drawers should schedule the lock")
	}

	before := b.count()
	sched.firePending()
	state := r.Snapshot()
	if !state.IsBoardLocked {
		t.Error("board should be locked after the debounce fires")
	}
	if b.count() != before+1 {
		t.Error("lock should broadcast the new state")
	}
}

func TestAutoLock_StaleCallbackIsNoOp(t *testing.T) {
	r, _, sched := newTestRoom()
	seedRoom(t, r, "a", "b", "c", "d")
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("c", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}

	// Grab the pending callback, then reroll so it becomes stale.
	sched.mutex.Lock()
	var stale func()
	for _, cb := range sched.pending {
		stale = cb
	}
	sched.mutex.Unlock()
	if stale == nil {
		t.Fatal("lock was not scheduled")
	}

	if err := r.Apply("a", Intent{Type: IntentRerollWord}); err != nil {
		t.Fatal(err)
	}
	if len(sched.cancelled) == 0 {
		t.Error("reroll should cancel the pending lock")
	}

	stale()
	if r.Snapshot().IsBoardLocked {
		t.Error("a stale lock callback must not lock the board")
	}
}

func TestAutoLock_CancelledWhenAllFinish(t *testing.T) {
	r, _, sched := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	playRound(t, r)

	if r.Snapshot().Phase != models.PhaseGuessing {
		t.Fatal("expected GUESSING")
	}
	sched.firePending()
	if r.Snapshot().IsBoardLocked {
		t.Error("entering GUESSING must not leave a live lock timer")
	}
}

func TestHostMigration_OnDisconnect(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")

	if empty := r.Disconnect("sess-a"); empty {
		t.Fatal("room should not be empty")
	}

	state := r.Snapshot()
	if state.FindPlayer("a") == nil {
		t.Fatal("disconnect must keep the roster entry")
	}
	if state.FindPlayer("a").IsConnected {
		t.Error("player a should be marked disconnected")
	}

	hosts := 0
	for _, p := range state.Players {
		if p.IsHost && p.IsConnected {
			hosts++
		}
	}
	if hosts != 1 {
		t.Errorf("expected exactly one connected host, got %d", hosts)
	}
	if state.FindPlayer("b") == nil || !state.FindPlayer("b").IsHost {
		t.Error("host should migrate to the first connected player in roster order")
	}
}

func TestRoomEmpty_WhenAllDisconnect(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b")

	if empty := r.Disconnect("sess-a"); empty {
		t.Fatal("one player still connected")
	}
	if empty := r.Disconnect("sess-b"); !empty {
		t.Error("room with zero connected players should be eligible for deletion")
	}
}

func TestLeave_RemovesFromRoster(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b")

	if empty := r.Leave("a"); empty {
		t.Fatal("room should not be empty")
	}

	state := r.Snapshot()
	if state.FindPlayer("a") != nil {
		t.Error("explicit leave must remove the roster entry")
	}
	if !state.FindPlayer("b").IsHost {
		t.Error("host should migrate on leave")
	}
}

func TestLeave_GuesserAbandonsRound(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}

	// The guesser walks out mid-DRAWING.
	if empty := r.Leave("a"); empty {
		t.Fatal("room should not be empty")
	}

	state := r.Snapshot()
	if state.Phase != models.PhaseLobby {
		t.Fatalf("expected round abandoned back to LOBBY, got %s", state.Phase)
	}
	if state.CurrentWord != "" {
		t.Error("abandoned round must clear the word")
	}
	for _, p := range state.Players {
		if p.IsGuesser || p.HasFinishedDrawing {
			t.Errorf("player %s keeps stale round flags", p.ID)
		}
	}

	// The room is not stuck: the migrated host can start the next round,
	// and rotation restarts because the old guesser is gone.
	if err := r.Apply("b", Intent{Type: IntentStartRound}); err != nil {
		t.Fatalf("start_round after abandonment failed: %v", err)
	}
	if got := r.Snapshot().GuesserID; got != "b" {
		t.Errorf("expected rotation to restart at %q, got %q", "b", got)
	}
}

func TestRejectedIntent_NoBroadcast(t *testing.T) {
	r, b, _ := newTestRoom()
	seedRoom(t, r, "a", "b")

	before := b.count()
	if err := r.Apply("b", Intent{Type: IntentStartRound}); err == nil {
		t.Fatal("expected rejection")
	}
	if err := r.Apply("a", Intent{Type: "set_state"}); err != ErrUnknownIntent {
		t.Errorf("expected ErrUnknownIntent, got %v", err)
	}
	if b.count() != before {
		t.Error("rejected intents must not broadcast")
	}
}

func TestJoin_MidRoundBecomesDrawer(t *testing.T) {
	r, _, _ := newTestRoom()
	seedRoom(t, r, "a", "b", "c")
	if err := r.Apply("a", Intent{Type: IntentStartRound}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("a", Intent{Type: IntentPickWord, Word: "Cat"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply("b", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}

	seedRoom(t, r, "d")

	state := r.Snapshot()
	if state.FindPlayer("d").IsGuesser {
		t.Error("late joiner must not become guesser")
	}
	if state.Phase != models.PhaseDrawing {
		t.Errorf("late join must not advance phase, got %s", state.Phase)
	}

	// The round now waits for the late joiner as well.
	if err := r.Apply("c", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}
	if got := r.Snapshot().Phase; got != models.PhaseDrawing {
		t.Errorf("expected DRAWING until late joiner finishes, got %s", got)
	}
	if err := r.Apply("d", Intent{Type: IntentFinishDrawing, Drawing: "img"}); err != nil {
		t.Fatal(err)
	}
	if got := r.Snapshot().Phase; got != models.PhaseGuessing {
		t.Errorf("expected GUESSING, got %s", got)
	}
}
