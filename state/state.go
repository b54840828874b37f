// Package state is the betting round state machine. A Round is a plain value:
// every transition validates first and then returns a modified copy, so a
// rejected action never leaves a partially applied round behind.
package state

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PlayerStatus is a participant's standing within one round.
type PlayerStatus string

const (
	StatusActive PlayerStatus = "active"
	StatusPacked PlayerStatus = "packed"
	StatusShow   PlayerStatus = "show"
)

// Phase of a round. A room with no round is in the lobby.
type Phase string

const (
	PhaseActive      Phase = "active"
	PhaseShowPending Phase = "show_pending"
	PhaseResolved    Phase = "resolved"
)

var (
	ErrInsufficientPlayers = errors.New("at least 2 players are required")
	ErrInvalidBetAmount    = errors.New("invalid bet amount")
	ErrNotYourTurn         = errors.New("it's not your turn yet")
	ErrPlayerNotActive     = errors.New("player is not active")
	ErrShowAlreadyCalled   = errors.New("show has already been called")
	ErrInvalidTurnOrder    = errors.New("turn order must list every active player exactly once")
	ErrUnknownPlayer       = errors.New("player is not part of this round")
)

// Round is one hand from ante to winner declaration.
//
// Invariants: Pot equals the sum of PlayerBets, CurrentMinBet never
// decreases.
type Round struct {
	// ID is assigned by the room when the round is dealt and keys the
	// result for deduplication and storage.
	ID               string                     `json:"roundId"`
	Pot              decimal.Decimal            `json:"pot"`
	CurrentMinBet    decimal.Decimal            `json:"currentMinBet"`
	PlayerBets       map[string]decimal.Decimal `json:"playerBets"`
	PlayerStatus     map[string]PlayerStatus    `json:"playerStatus"`
	TurnOrder        []string                   `json:"turnOrder"`
	CurrentTurnIndex int                        `json:"currentTurnIndex"`
	ShowCalledBy     string                     `json:"showCalledBy,omitempty"`
}

// Phase reports whether the round still accepts bets.
func (r Round) Phase() Phase {
	if r.ShowCalledBy != "" {
		return PhaseShowPending
	}
	return PhaseActive
}

// ActivePlayers returns the active participants in turn order.
func (r Round) ActivePlayers() []string {
	active := make([]string, 0, len(r.TurnOrder))
	for _, id := range r.TurnOrder {
		if r.PlayerStatus[id] == StatusActive {
			active = append(active, id)
		}
	}
	return active
}

// CurrentTurn returns the id of the player to act, or "" if nobody is active.
// It is derived from TurnOrder on every call so that packs and reorders can
// never leave a stale pointer at a folded player.
func (r Round) CurrentTurn() string {
	active := r.ActivePlayers()
	if len(active) == 0 {
		return ""
	}
	return active[r.CurrentTurnIndex%len(active)]
}

func (r Round) clone() Round {
	c := r
	c.PlayerBets = make(map[string]decimal.Decimal, len(r.PlayerBets))
	for k, v := range r.PlayerBets {
		c.PlayerBets[k] = v
	}
	c.PlayerStatus = make(map[string]PlayerStatus, len(r.PlayerStatus))
	for k, v := range r.PlayerStatus {
		c.PlayerStatus[k] = v
	}
	c.TurnOrder = append([]string(nil), r.TurnOrder...)
	return c
}

// Clone returns a deep copy safe to hand to other goroutines.
func (r Round) Clone() Round {
	return r.clone()
}
