// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormPlayerTotal 玩家累计数据模型. Lifetime star totals per durable player
// identity; updated each time a round resolves.
type GormPlayerTotal struct {
	gorm.Model
	PlayerID     string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	Stars        int64  `gorm:"default:0"`
	RoundsPlayed int    `gorm:"default:0"`
	RoundsWon    int    `gorm:"default:0"`
}

// GormRoundRecord 回合记录模型. One row per resolved round; Players holds
// the roster snapshot at resolution time as jsonb.
type GormRoundRecord struct {
	gorm.Model
	RoomID      string                 `gorm:"index;not null"`
	Word        string                 `gorm:"not null"`
	GuesserID   string                 `gorm:"not null"`
	WinnerID    string                 `gorm:"not null"` // "NONE" when nobody scored
	RevealOrder int                    `gorm:"default:0"`
	Points      int                    `gorm:"default:0"`
	Players     map[string]interface{} `gorm:"type:jsonb"`
}

// PlayerStats 玩家统计信息
type PlayerStats struct {
	TotalStars   int64 `json:"total_stars"`
	RoundsPlayed int   `json:"rounds_played"`
	RoundsWon    int   `json:"rounds_won"`
}
