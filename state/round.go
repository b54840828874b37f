package state

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/money"
)

// Start deals a new round. Every player pays minBet up front and turns follow
// the order of playerIDs.
func Start(playerIDs []string, minBet decimal.Decimal) (Round, error) {
	if len(playerIDs) < 2 {
		return Round{}, ErrInsufficientPlayers
	}
	if !minBet.IsPositive() {
		return Round{}, fmt.Errorf("%w: ante must be positive", ErrInvalidBetAmount)
	}

	ante := money.Round(minBet)
	r := Round{
		Pot:           money.Mul(ante, len(playerIDs)),
		CurrentMinBet: ante,
		PlayerBets:    make(map[string]decimal.Decimal, len(playerIDs)),
		PlayerStatus:  make(map[string]PlayerStatus, len(playerIDs)),
		TurnOrder:     append([]string(nil), playerIDs...),
	}
	for _, id := range playerIDs {
		r.PlayerBets[id] = ante
		r.PlayerStatus[id] = StatusActive
	}
	return r, nil
}

// checkTurn runs the legality checks shared by bet, pack and show.
func (r Round) checkTurn(playerID string) error {
	if r.ShowCalledBy != "" {
		return ErrShowAlreadyCalled
	}
	if r.PlayerStatus[playerID] != StatusActive {
		return ErrPlayerNotActive
	}
	if r.CurrentTurn() != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// PlaceBet adds a fresh contribution of amount for the player whose turn it
// is. Calling at the current minimum still pays again; a larger amount
// becomes the new minimum.
func PlaceBet(r Round, playerID string, amount decimal.Decimal) (Round, error) {
	if err := r.checkTurn(playerID); err != nil {
		return r, err
	}
	amt := money.Round(amount)
	if !amt.IsPositive() {
		return r, ErrInvalidBetAmount
	}
	if amt.LessThan(r.CurrentMinBet) {
		return r, fmt.Errorf("%w: bet must be at least %s", ErrInvalidBetAmount, r.CurrentMinBet)
	}

	next := r.clone()
	next.Pot = money.Add(next.Pot, amt)
	next.PlayerBets[playerID] = money.Add(next.PlayerBets[playerID], amt)
	if amt.GreaterThan(next.CurrentMinBet) {
		next.CurrentMinBet = amt
	}
	next.CurrentTurnIndex = (next.CurrentTurnIndex + 1) % len(next.ActivePlayers())
	return next, nil
}

// Pack folds the current player. When exactly one active player remains
// their id is returned as the automatic winner; resolving the round is left
// to the caller.
func Pack(r Round, playerID string) (Round, string, error) {
	if err := r.checkTurn(playerID); err != nil {
		return r, "", err
	}

	next := r.clone()
	next.PlayerStatus[playerID] = StatusPacked

	remaining := next.ActivePlayers()
	if len(remaining) == 1 {
		return next, remaining[0], nil
	}
	next.CurrentTurnIndex = next.CurrentTurnIndex % len(remaining)
	return next, "", nil
}

// Show forces the showdown. The caller pays currentMinBet once for every
// other active player; there is no balance check because only debt is
// tracked. The returned cost is what was added to the pot.
func Show(r Round, playerID string) (Round, decimal.Decimal, error) {
	if err := r.checkTurn(playerID); err != nil {
		return r, decimal.Zero, err
	}

	cost := money.Mul(r.CurrentMinBet, len(r.ActivePlayers())-1)

	next := r.clone()
	next.Pot = money.Add(next.Pot, cost)
	next.PlayerBets[playerID] = money.Add(next.PlayerBets[playerID], cost)
	next.PlayerStatus[playerID] = StatusShow
	next.ShowCalledBy = playerID
	return next, cost, nil
}

// ReorderTurns replaces the turn order and restarts it from the first active
// player. Packed players may be omitted, but every active player must be
// listed exactly once and nobody outside the round may be added. Active
// players named in sitOut may be left out as well; they are packed.
func ReorderTurns(r Round, newOrder []string, sitOut ...string) (Round, error) {
	seen := make(map[string]bool, len(newOrder))
	for _, id := range newOrder {
		if _, ok := r.PlayerStatus[id]; !ok || seen[id] {
			return r, ErrInvalidTurnOrder
		}
		seen[id] = true
	}
	sittingOut := make(map[string]bool, len(sitOut))
	for _, id := range sitOut {
		sittingOut[id] = true
	}

	var dropped []string
	for id, status := range r.PlayerStatus {
		if status != StatusActive || seen[id] {
			continue
		}
		if !sittingOut[id] {
			return r, ErrInvalidTurnOrder
		}
		dropped = append(dropped, id)
	}

	next := r.clone()
	for _, id := range dropped {
		next.PlayerStatus[id] = StatusPacked
	}
	next.TurnOrder = append([]string(nil), newOrder...)
	next.CurrentTurnIndex = 0
	if next.ShowCalledBy == "" && len(next.ActivePlayers()) == 0 {
		return r, ErrInvalidTurnOrder
	}
	return next, nil
}

// Result is the immutable outcome of a resolved round. Results sum to zero.
type Result struct {
	RoundID     string                     `json:"roundId"`
	WinnerID    string                     `json:"winnerId"`
	Pot         decimal.Decimal            `json:"pot"`
	Results     map[string]decimal.Decimal `json:"results"`
	PlayerBets  map[string]decimal.Decimal `json:"playerBets"`
	PlayerNames map[string]string          `json:"playerNames,omitempty"`
	Timestamp   time.Time                  `json:"timestamp"`
}

// Resolve computes the winner's gain and everyone else's loss from the final
// bets. It does not modify r and does not check who is asking; host
// authority is enforced by the room.
func Resolve(r Round, winnerID string) (Result, error) {
	if _, ok := r.PlayerBets[winnerID]; !ok {
		return Result{}, ErrUnknownPlayer
	}

	res := Result{
		RoundID:    r.ID,
		WinnerID:   winnerID,
		Pot:        r.Pot,
		Results:    make(map[string]decimal.Decimal, len(r.PlayerBets)),
		PlayerBets: make(map[string]decimal.Decimal, len(r.PlayerBets)),
	}
	for id, bet := range r.PlayerBets {
		res.PlayerBets[id] = bet
		if id == winnerID {
			res.Results[id] = money.Sub(r.Pot, bet)
		} else {
			res.Results[id] = money.Round(bet.Neg())
		}
	}
	return res, nil
}
