// game/errors.go
package game

import "errors"

// Intent rejections. All are recoverable: the intent is dropped, the room
// state is untouched and nothing is broadcast.
var (
	ErrNotHost         = errors.New("caller is not the room host")
	ErrNotGuesser      = errors.New("caller is not the current guesser")
	ErrBadPhase        = errors.New("intent not valid in current phase")
	ErrWordNotOffered  = errors.New("word is not among the offered choices")
	ErrPlayerNotFound  = errors.New("player not found in room")
	ErrRoomNotFound    = errors.New("room not found")
	ErrAlreadyFinished = errors.New("player already submitted a drawing")
	ErrGuesserCantDraw = errors.New("guesser cannot submit a drawing")
	ErrRoundResolved   = errors.New("round already resolved")
	ErrNeedMorePlayers = errors.New("not enough connected players")
	ErrEmptyName       = errors.New("player name is empty")
	ErrUnknownIntent   = errors.New("unknown intent type")
)
