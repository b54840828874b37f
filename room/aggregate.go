package room

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/money"
	"github.com/wfunc/teenpatti/state"
)

// RecordRound folds a resolved round into the session totals, appends it to
// the history and moves the room to settlement. A round id seen before is
// ignored and false is returned, so redelivered results count once.
func (r *Room) RecordRound(res state.Result) bool {
	if res.RoundID != "" {
		if _, dup := r.counted[res.RoundID]; dup {
			logger.Log.Warnw("round already counted", "room", r.Code, "round", res.RoundID)
			return false
		}
		r.counted[res.RoundID] = struct{}{}
	}

	for id, net := range res.Results {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		p.TotalNet = money.Add(p.TotalNet, net)
		p.RoundsPlayed++
		if id == res.WinnerID {
			p.Wins++
		}
	}

	r.History = append(r.History, res)
	r.CurrentRound = nil
	if err := r.setStatus(StatusSettlement); err != nil {
		logger.Log.Warnw("round recorded outside play", "room", r.Code, "status", r.Status, "error", err)
	}
	return true
}

// PlayerSummary is one line of the end-of-session leaderboard. TotalWon and
// TotalLost are recomputed from the history rather than from TotalNet.
type PlayerSummary struct {
	PlayerID  string          `json:"uid"`
	Name      string          `json:"name"`
	TotalNet  decimal.Decimal `json:"totalNet"`
	Wins      int             `json:"wins"`
	Rounds    int             `json:"rounds"`
	WinRate   decimal.Decimal `json:"winRate"`
	TotalWon  decimal.Decimal `json:"totalWon"`
	TotalLost decimal.Decimal `json:"totalLost"`
}

// Summary is produced when the host ends the session.
type Summary struct {
	RoomCode    string          `json:"roomId"`
	PlayerStats []PlayerSummary `json:"playerStats"`
	TotalRounds int             `json:"totalRounds"`
}

// EndSession closes the room for good and returns the final standings,
// ordered by TotalNet, biggest winner first. Calling it again returns the
// same standings.
func (r *Room) EndSession() Summary {
	stats := make([]PlayerSummary, 0, len(r.Players))
	for _, p := range r.Players {
		won, lost := decimal.Zero, decimal.Zero
		for _, res := range r.History {
			net, ok := res.Results[p.PlayerID]
			if !ok {
				continue
			}
			if net.IsPositive() {
				won = won.Add(net)
			} else {
				lost = lost.Add(net.Abs())
			}
		}

		winRate := decimal.Zero
		if p.RoundsPlayed > 0 {
			winRate = decimal.NewFromInt(int64(p.Wins)).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(int64(p.RoundsPlayed))).
				Round(1)
		}

		stats = append(stats, PlayerSummary{
			PlayerID:  p.PlayerID,
			Name:      p.Name,
			TotalNet:  p.TotalNet,
			Wins:      p.Wins,
			Rounds:    p.RoundsPlayed,
			WinRate:   winRate,
			TotalWon:  money.Round(won),
			TotalLost: money.Round(lost),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].TotalNet.Cmp(stats[j].TotalNet); c != 0 {
			return c > 0
		}
		return stats[i].PlayerID < stats[j].PlayerID
	})

	r.CurrentRound = nil
	if err := r.setStatus(StatusEnded); err != nil {
		logger.Log.Warnw("ending session", "room", r.Code, "error", err)
	}
	return Summary{RoomCode: r.Code, PlayerStats: stats, TotalRounds: len(r.History)}
}

// Counted reports whether a round id has already been recorded.
func (r *Room) Counted(roundID string) bool {
	_, ok := r.counted[roundID]
	return ok
}
