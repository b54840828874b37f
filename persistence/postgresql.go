// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动
	"github.com/wfunc/teenpatti/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL 数据库实现 (database/sql + lib/pq)
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

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
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
        CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) UNIQUE NOT NULL,
            host_id TEXT NOT NULL,
            min_bet NUMERIC(12,2) NOT NULL,
            max_bet NUMERIC(12,2),
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS round_results (
            id SERIAL PRIMARY KEY,
            round_id VARCHAR(36) UNIQUE NOT NULL,
            room_code VARCHAR(16) NOT NULL,
            winner_id TEXT NOT NULL,
            pot NUMERIC(12,2) NOT NULL,
            results JSONB NOT NULL,
            player_bets JSONB,
            player_names JSONB,
            played_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_round_results_room_code ON round_results(room_code);
        CREATE INDEX IF NOT EXISTS idx_round_results_played_at ON round_results(played_at);
    `)
	return err
}

// SaveRoom 保存房间元数据
func (p *PostgreSQL) SaveRoom(rec models.RoomRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
        INSERT INTO rooms (room_code, host_id, min_bet, max_bet, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (room_code) DO NOTHING
    `
	_, err := p.db.ExecContext(ctx, query, rec.RoomCode, rec.HostID, rec.MinBet, rec.MaxBet, rec.CreatedAt)
	return err
}

// SaveRoundResult 保存对局结果
func (p *PostgreSQL) SaveRoundResult(rec models.RoundRecord) error {
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return err
	}
	bets, err := json.Marshal(rec.PlayerBets)
	if err != nil {
		return err
	}
	names, err := json.Marshal(rec.PlayerNames)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
        INSERT INTO round_results (round_id, room_code, winner_id, pot, results, player_bets, player_names, played_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (round_id) DO NOTHING
    `
	_, err = p.db.ExecContext(ctx, query,
		rec.RoundID, rec.RoomCode, rec.WinnerID, rec.Pot,
		results, bets, names, rec.PlayedAt)
	return err
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
