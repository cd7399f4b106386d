// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/extratha/fake-catch-sketch/models"
)

// Database 数据库接口. Round history and lifetime star totals only; live
// room state never touches storage.
type Database interface {
	SaveRound(record *models.GormRoundRecord) error
	AwardStars(playerID, name string, stars int64, won bool) error
	RecordRoundPlayed(playerID, name string) error
	GetPlayerStats(playerID string) (*models.PlayerStats, error)
	TopPlayers(limit int) ([]models.GormPlayerTotal, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
