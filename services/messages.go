package services

import (
	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/room"
	"github.com/wfunc/teenpatti/settlement"
	"github.com/wfunc/teenpatti/state"
)

// Inbound payloads.

type CreateRoomRequest struct {
	HostID string              `json:"hostId"`
	Name   string              `json:"name"`
	MinBet decimal.Decimal     `json:"minBet"`
	MaxBet decimal.NullDecimal `json:"maxBet"`
}

type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// HostRequest covers start-game, next-round and end-session.
type HostRequest struct {
	RoomCode string `json:"roomCode"`
	HostID   string `json:"hostId"`
}

// PlayerRequest covers pack, show and leave-session.
type PlayerRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type PlaceBetRequest struct {
	RoomCode string          `json:"roomCode"`
	PlayerID string          `json:"playerId"`
	Amount   decimal.Decimal `json:"amount"`
}

type DeclareWinnerRequest struct {
	RoomCode string `json:"roomCode"`
	HostID   string `json:"hostId"`
	WinnerID string `json:"winnerId"`
	// RoundID optionally names the round so a redelivered declaration is
	// recognised and dropped.
	RoundID string `json:"roundId,omitempty"`
}

type ReorderTurnsRequest struct {
	RoomCode string   `json:"roomCode"`
	HostID   string   `json:"hostId"`
	NewOrder []string `json:"newOrder"`
}

type ChangeMinBetRequest struct {
	RoomCode  string          `json:"roomCode"`
	HostID    string          `json:"hostId"`
	NewMinBet decimal.Decimal `json:"newMinBet"`
}

// Outbound payloads.

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedPayload struct {
	RoomCode string    `json:"roomId"`
	Room     room.View `json:"room"`
}

type RoomJoinedPayload struct {
	Room       room.View `json:"room"`
	Rejoining  bool      `json:"rejoining"`
	Spectating bool      `json:"spectating"`
}

type RoomUpdatedPayload struct {
	Room room.View `json:"room"`
}

type SpectatingPayload struct{}

type GameStartedPayload struct {
	Room       room.View   `json:"room"`
	RoundState state.Round `json:"roundState"`
}

type RoundUpdatedPayload struct {
	RoundState  state.Round `json:"roundState"`
	CurrentTurn string      `json:"currentTurn"`
}

type ShowCalledPayload struct {
	ByPlayerID string          `json:"byUid"`
	ShowCost   decimal.Decimal `json:"showCost"`
}

type RoundEndedPayload struct {
	Result      state.Result                `json:"result"`
	Settlement  []settlement.Transaction    `json:"settlement"`
	PlayerNames map[string]string           `json:"playerNames"`
	Players     map[string]room.PlayerStats `json:"players"`
	AutoWin     bool                        `json:"autoWin,omitempty"`
}

type HostChangedPayload struct {
	NewHostID string    `json:"newHostUid"`
	Room      room.View `json:"room"`
}

type SessionEndedPayload struct {
	Summary room.Summary `json:"sessionSummary"`
}

func roundUpdated(r state.Round) RoundUpdatedPayload {
	return RoundUpdatedPayload{RoundState: r, CurrentTurn: r.CurrentTurn()}
}
