// models/models.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/state"
)

// RoomRecord is the room metadata written once at creation.
type RoomRecord struct {
	RoomCode  string              `json:"room_id"`
	HostID    string              `json:"host_uid"`
	MinBet    decimal.Decimal     `json:"min_bet"`
	MaxBet    decimal.NullDecimal `json:"max_bet"`
	CreatedAt time.Time           `json:"created_at"`
}

// RoundRecord is a finalized round, keyed by RoundID.
type RoundRecord struct {
	RoundID     string                     `json:"round_id"`
	RoomCode    string                     `json:"room_id"`
	WinnerID    string                     `json:"winner_uid"`
	Pot         decimal.Decimal            `json:"pot"`
	Results     map[string]decimal.Decimal `json:"results"`
	PlayerBets  map[string]decimal.Decimal `json:"player_bets"`
	PlayerNames map[string]string          `json:"player_names"`
	PlayedAt    time.Time                  `json:"played_at"`
}

// NewRoundRecord copies a resolved round for storage.
func NewRoundRecord(roomCode string, res state.Result) RoundRecord {
	rec := RoundRecord{
		RoundID:     res.RoundID,
		RoomCode:    roomCode,
		WinnerID:    res.WinnerID,
		Pot:         res.Pot,
		Results:     make(map[string]decimal.Decimal, len(res.Results)),
		PlayerBets:  make(map[string]decimal.Decimal, len(res.PlayerBets)),
		PlayerNames: make(map[string]string, len(res.PlayerNames)),
		PlayedAt:    res.Timestamp,
	}
	for k, v := range res.Results {
		rec.Results[k] = v
	}
	for k, v := range res.PlayerBets {
		rec.PlayerBets[k] = v
	}
	for k, v := range res.PlayerNames {
		rec.PlayerNames[k] = v
	}
	return rec
}
