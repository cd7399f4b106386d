// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/extratha/fake-catch-sketch/models"
)

// PostgreSQL is the plain database/sql implementation of Database, for
// deployments that prefer hand-written SQL over the ORM.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS player_totals (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(64) UNIQUE NOT NULL,
            name VARCHAR(64) NOT NULL,
            stars BIGINT DEFAULT 0,
            rounds_played INT DEFAULT 0,
            rounds_won INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS round_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(64) NOT NULL,
            word VARCHAR(255) NOT NULL,
            guesser_id VARCHAR(64) NOT NULL,
            winner_id VARCHAR(64) NOT NULL,
            reveal_order INT DEFAULT 0,
            points INT DEFAULT 0,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	return err
}

func (p *PostgreSQL) SaveRound(record *models.GormRoundRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(`
        INSERT INTO round_records (room_id, word, guesser_id, winner_id, reveal_order, points, players)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, record.RoomID, record.Word, record.GuesserID, record.WinnerID, record.RevealOrder, record.Points, players)
	return err
}

func (p *PostgreSQL) AwardStars(playerID, name string, stars int64, won bool) error {
	wonDelta := 0
	if won {
		wonDelta = 1
	}
	_, err := p.db.Exec(`
        INSERT INTO player_totals (player_id, name, stars, rounds_won)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (player_id) DO UPDATE SET
            name = EXCLUDED.name,
            stars = player_totals.stars + EXCLUDED.stars,
            rounds_won = player_totals.rounds_won + EXCLUDED.rounds_won,
            updated_at = CURRENT_TIMESTAMP
    `, playerID, name, stars, wonDelta)
	return err
}

func (p *PostgreSQL) RecordRoundPlayed(playerID, name string) error {
	_, err := p.db.Exec(`
        INSERT INTO player_totals (player_id, name, rounds_played)
        VALUES ($1, $2, 1)
        ON CONFLICT (player_id) DO UPDATE SET
            name = EXCLUDED.name,
            rounds_played = player_totals.rounds_played + 1,
            updated_at = CURRENT_TIMESTAMP
    `, playerID, name)
	return err
}

func (p *PostgreSQL) GetPlayerStats(playerID string) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := p.db.QueryRow(`
        SELECT stars, rounds_played, rounds_won FROM player_totals WHERE player_id = $1
    `, playerID).Scan(&stats.TotalStars, &stats.RoundsPlayed, &stats.RoundsWon)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (p *PostgreSQL) TopPlayers(limit int) ([]models.GormPlayerTotal, error) {
	rows, err := p.db.Query(`
        SELECT player_id, name, stars, rounds_played, rounds_won
        FROM player_totals ORDER BY stars DESC LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.GormPlayerTotal
	for rows.Next() {
		var t models.GormPlayerTotal
		if err := rows.Scan(&t.PlayerID, &t.Name, &t.Stars, &t.RoundsPlayed, &t.RoundsWon); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
