// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/extratha/fake-catch-sketch/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormPlayerTotal{}, &models.GormRoundRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveRound 保存回合记录
func (g *GormPostgreSQL) SaveRound(record *models.GormRoundRecord) error {
	return g.db.Create(record).Error
}

// AwardStars upserts the player's lifetime totals in one transaction.
func (g *GormPostgreSQL) AwardStars(playerID, name string, stars int64, won bool) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var total models.GormPlayerTotal
		err := tx.Where("player_id = ?", playerID).First(&total).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			total = models.GormPlayerTotal{PlayerID: playerID, Name: name}
			if err := tx.Create(&total).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":  name,
			"stars": gorm.Expr("stars + ?", stars),
		}
		if won {
			updates["rounds_won"] = gorm.Expr("rounds_won + 1")
		}
		return tx.Model(&total).Updates(updates).Error
	})
}

// RecordRoundPlayed bumps the played counter, creating the row if needed.
func (g *GormPostgreSQL) RecordRoundPlayed(playerID, name string) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var total models.GormPlayerTotal
		err := tx.Where("player_id = ?", playerID).First(&total).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			total = models.GormPlayerTotal{PlayerID: playerID, Name: name}
			if err := tx.Create(&total).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return tx.Model(&total).Updates(map[string]interface{}{
			"name":          name,
			"rounds_played": gorm.Expr("rounds_played + 1"),
		}).Error
	})
}

// GetPlayerStats 获取玩家统计信息
func (g *GormPostgreSQL) GetPlayerStats(playerID string) (*models.PlayerStats, error) {
	var total models.GormPlayerTotal
	err := g.db.Where("player_id = ?", playerID).First(&total).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.PlayerStats{
		TotalStars:   total.Stars,
		RoundsPlayed: total.RoundsPlayed,
		RoundsWon:    total.RoundsWon,
	}, nil
}

// TopPlayers 获取累计星星最多的玩家
func (g *GormPostgreSQL) TopPlayers(limit int) ([]models.GormPlayerTotal, error) {
	var totals []models.GormPlayerTotal
	err := g.db.Order("stars DESC").Limit(limit).Find(&totals).Error
	return totals, err
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
