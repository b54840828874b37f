// models/gorm_models.go
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// GormRoom 房间元数据
type GormRoom struct {
	ID        uint                `gorm:"primaryKey"`
	RoomCode  string              `gorm:"uniqueIndex;size:16;not null"`
	HostID    string              `gorm:"not null"`
	MinBet    decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	MaxBet    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	CreatedAt time.Time
}

func (GormRoom) TableName() string { return "rooms" }

// GormRoundResult 对局结果
type GormRoundResult struct {
	ID          uint            `gorm:"primaryKey"`
	RoundID     string          `gorm:"uniqueIndex;size:36;not null"`
	RoomCode    string          `gorm:"index;size:16;not null"`
	WinnerID    string          `gorm:"not null"`
	Pot         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Results     datatypes.JSON  `gorm:"type:jsonb;not null"`
	PlayerBets  datatypes.JSON  `gorm:"type:jsonb"`
	PlayerNames datatypes.JSON  `gorm:"type:jsonb"`
	PlayedAt    time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time
}

func (GormRoundResult) TableName() string { return "round_results" }

// ToGormRoom converts the record into its table row.
func (r RoomRecord) ToGormRoom() GormRoom {
	return GormRoom{
		RoomCode:  r.RoomCode,
		HostID:    r.HostID,
		MinBet:    r.MinBet,
		MaxBet:    r.MaxBet,
		CreatedAt: r.CreatedAt,
	}
}

// ToGormRoundResult converts the record into its table row.
func (r RoundRecord) ToGormRoundResult() (GormRoundResult, error) {
	results, err := json.Marshal(r.Results)
	if err != nil {
		return GormRoundResult{}, err
	}
	bets, err := json.Marshal(r.PlayerBets)
	if err != nil {
		return GormRoundResult{}, err
	}
	names, err := json.Marshal(r.PlayerNames)
	if err != nil {
		return GormRoundResult{}, err
	}
	return GormRoundResult{
		RoundID:     r.RoundID,
		RoomCode:    r.RoomCode,
		WinnerID:    r.WinnerID,
		Pot:         r.Pot,
		Results:     datatypes.JSON(results),
		PlayerBets:  datatypes.JSON(bets),
		PlayerNames: datatypes.JSON(names),
		PlayedAt:    r.PlayedAt,
	}, nil
}
