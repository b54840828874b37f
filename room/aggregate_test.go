package room

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/state"
)

func playedRoom(t *testing.T) *Room {
	t.Helper()
	r := newTestRoom(t)
	r.Join("p1", "Player 1")
	r.Join("p2", "Player 2")
	if _, err := r.StartRound(); err != nil {
		t.Fatal(err)
	}
	return r
}

func result(id, winner string, nets map[string]float64) state.Result {
	res := state.Result{RoundID: id, WinnerID: winner, Results: map[string]decimal.Decimal{}}
	for k, v := range nets {
		res.Results[k] = amount(v)
	}
	return res
}

func TestRecordRound(t *testing.T) {
	r := playedRoom(t)

	ok := r.RecordRound(result("r1", "host", map[string]float64{"host": 5, "p1": -4, "p2": -1}))
	if !ok {
		t.Fatal("First delivery should be recorded")
	}
	if r.Status != StatusSettlement || r.CurrentRound != nil {
		t.Errorf("Expected settlement with no round, got %s", r.Status)
	}

	host := r.Players["host"]
	if !host.TotalNet.Equal(amount(5)) || host.Wins != 1 || host.RoundsPlayed != 1 {
		t.Errorf("Unexpected host stats %+v", host)
	}
	p1 := r.Players["p1"]
	if !p1.TotalNet.Equal(amount(-4)) || p1.Wins != 0 || p1.RoundsPlayed != 1 {
		t.Errorf("Unexpected p1 stats %+v", p1)
	}
	if len(r.History) != 1 {
		t.Errorf("Expected one round in history, got %d", len(r.History))
	}
}

func TestRecordRound_DuplicateIgnored(t *testing.T) {
	r := playedRoom(t)
	res := result("r1", "p1", map[string]float64{"host": -1, "p1": 2, "p2": -1})

	r.RecordRound(res)
	if r.RecordRound(res) {
		t.Error("Duplicate delivery should report false")
	}

	if p1 := r.Players["p1"]; !p1.TotalNet.Equal(amount(2)) || p1.Wins != 1 || p1.RoundsPlayed != 1 {
		t.Errorf("Duplicate changed totals: %+v", p1)
	}
	if len(r.History) != 1 {
		t.Errorf("Duplicate appended to history: %d entries", len(r.History))
	}
}

func TestEndSession(t *testing.T) {
	r := playedRoom(t)
	r.RecordRound(result("r1", "host", map[string]float64{"host": 5, "p1": -4, "p2": -1}))
	r.StartRound()
	r.RecordRound(result("r2", "p1", map[string]float64{"host": -3, "p1": 6, "p2": -3}))

	summary := r.EndSession()

	if r.Status != StatusEnded {
		t.Errorf("Expected ended, got %s", r.Status)
	}
	if summary.TotalRounds != 2 || summary.RoomCode != r.Code {
		t.Errorf("Unexpected summary header %+v", summary)
	}

	order := []string{"host", "p1", "p2"}
	for i, want := range order {
		if summary.PlayerStats[i].PlayerID != want {
			t.Fatalf("Expected %s at position %d, got %+v", want, i, summary.PlayerStats)
		}
	}

	host := summary.PlayerStats[0]
	if !host.TotalNet.Equal(amount(2)) || !host.TotalWon.Equal(amount(5)) || !host.TotalLost.Equal(amount(3)) {
		t.Errorf("Unexpected host breakdown %+v", host)
	}
	if !host.WinRate.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected 50%% win rate, got %s", host.WinRate)
	}
	p2 := summary.PlayerStats[2]
	if !p2.TotalWon.IsZero() || !p2.TotalLost.Equal(amount(4)) || !p2.WinRate.IsZero() {
		t.Errorf("Unexpected p2 breakdown %+v", p2)
	}

	again := r.EndSession()
	if len(again.PlayerStats) != 3 || again.TotalRounds != 2 {
		t.Errorf("Ending twice should return the same standings, got %+v", again)
	}
}
