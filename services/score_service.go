// services/score_service.go
package services

import (
	"github.com/extratha/fake-catch-sketch/logger"
	"github.com/extratha/fake-catch-sketch/models"
	"github.com/extratha/fake-catch-sketch/persistence"
)

// ScoreService records resolved rounds and keeps lifetime star totals. It
// implements the round sink the state machine hands resolved rounds to.
type ScoreService struct {
	db persistence.Database
}

func NewScoreService(db persistence.Database) *ScoreService {
	return &ScoreService{db: db}
}

// RoundResolved persists the round outcome. Called off the room's writer
// goroutine; failures are logged, never surfaced to gameplay.
func (s *ScoreService) RoundResolved(state *models.GameState, word string, points int) {
	roster := make(map[string]interface{}, len(state.Players))
	for _, p := range state.Players {
		roster[p.ID] = map[string]interface{}{
			"name":  p.Name,
			"score": p.Score,
		}
	}

	record := &models.GormRoundRecord{
		RoomID:      state.RoomID,
		Word:        word,
		GuesserID:   state.GuesserID,
		WinnerID:    state.WinnerID,
		RevealOrder: state.RevealOrder,
		Points:      points,
		Players:     roster,
	}
	if err := s.db.SaveRound(record); err != nil {
		logger.Log.Errorf("failed to save round record for room %s: %v", state.RoomID, err)
	}

	for _, p := range state.Players {
		if err := s.db.RecordRoundPlayed(p.ID, p.Name); err != nil {
			logger.Log.Errorf("failed to record round for player %s: %v", p.ID, err)
		}
	}

	if state.WinnerID == models.NoWinner {
		return
	}

	// Stars go to the guesser and the drawer whose image cracked the round.
	guesser := state.FindPlayer(state.GuesserID)
	if guesser != nil {
		if err := s.db.AwardStars(guesser.ID, guesser.Name, int64(points), true); err != nil {
			logger.Log.Errorf("failed to award stars to guesser %s: %v", guesser.ID, err)
		}
	}
	drawers := state.Drawers()
	if state.RevealOrder < len(drawers) {
		d := drawers[state.RevealOrder]
		if err := s.db.AwardStars(d.ID, d.Name, int64(points), false); err != nil {
			logger.Log.Errorf("failed to award stars to drawer %s: %v", d.ID, err)
		}
	}
}

// GetPlayerStats 获取玩家统计
func (s *ScoreService) GetPlayerStats(playerID string) (*models.PlayerStats, error) {
	return s.db.GetPlayerStats(playerID)
}

// TopPlayers returns the all-time star leaderboard.
func (s *ScoreService) TopPlayers(limit int) ([]models.GormPlayerTotal, error) {
	return s.db.TopPlayers(limit)
}
