// game/intents.go
package game

// Intent is the tagged variant carried by a state-intent packet. Each type
// uses a fixed subset of the fields; everything else is ignored. The server
// only ever accepts these named intents and recomputes state itself, never a
// client-constructed snapshot.
type Intent struct {
	Type    string `json:"type"`
	Word    string `json:"word,omitempty"`    // pick_word
	Drawing string `json:"drawing,omitempty"` // finish_drawing payload, opaque
	Correct bool   `json:"correct"`           // guess_result
}

const (
	IntentStartRound    = "start_round"
	IntentPickWord      = "pick_word"
	IntentFinishDrawing = "finish_drawing"
	IntentRerollWord    = "reroll_word"
	IntentGuessResult   = "guess_result"
)

// Validate checks the tag and its required fields before the intent reaches
// the state machine.
func (i Intent) Validate() error {
	switch i.Type {
	case IntentStartRound, IntentFinishDrawing, IntentRerollWord, IntentGuessResult:
		return nil
	case IntentPickWord:
		if i.Word == "" {
			return ErrWordNotOffered
		}
		return nil
	default:
		return ErrUnknownIntent
	}
}
