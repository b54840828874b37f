package state

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/money"
)

func d(f float64) decimal.Decimal { return money.FromFloat(f) }

func assertAmount(t *testing.T, what string, got decimal.Decimal, want float64) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s: expected %v, got %s", what, want, got)
	}
}

func assertPotInvariant(t *testing.T, r Round) {
	t.Helper()
	if !money.Sum(r.PlayerBets).Equal(r.Pot) {
		t.Errorf("pot %s does not equal sum of bets %s", r.Pot, money.Sum(r.PlayerBets))
	}
}

func startABC(t *testing.T) Round {
	t.Helper()
	r, err := Start([]string{"A", "B", "C"}, d(1))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return r
}

func TestStart(t *testing.T) {
	r := startABC(t)

	assertAmount(t, "pot", r.Pot, 3)
	assertAmount(t, "currentMinBet", r.CurrentMinBet, 1)
	for _, id := range []string{"A", "B", "C"} {
		assertAmount(t, "bet "+id, r.PlayerBets[id], 1)
		if r.PlayerStatus[id] != StatusActive {
			t.Errorf("expected %s to be active, got %s", id, r.PlayerStatus[id])
		}
	}
	if r.CurrentTurn() != "A" {
		t.Errorf("expected A to act first, got %s", r.CurrentTurn())
	}
	if r.Phase() != PhaseActive {
		t.Errorf("expected active phase, got %s", r.Phase())
	}
}

func TestStart_InsufficientPlayers(t *testing.T) {
	for _, ids := range [][]string{nil, {"A"}} {
		if _, err := Start(ids, d(1)); !errors.Is(err, ErrInsufficientPlayers) {
			t.Errorf("Start(%v): expected ErrInsufficientPlayers, got %v", ids, err)
		}
	}
}

func TestFullRoundScenario(t *testing.T) {
	r := startABC(t)

	// A calls at the minimum: a fresh contribution, minimum unchanged.
	r, err := PlaceBet(r, "A", d(1))
	if err != nil {
		t.Fatalf("A call failed: %v", err)
	}
	assertAmount(t, "pot after call", r.Pot, 4)
	assertAmount(t, "A bet", r.PlayerBets["A"], 2)
	assertAmount(t, "min after call", r.CurrentMinBet, 1)
	if r.CurrentTurn() != "B" {
		t.Fatalf("expected B's turn, got %s", r.CurrentTurn())
	}

	r, err = PlaceBet(r, "B", d(3))
	if err != nil {
		t.Fatalf("B raise failed: %v", err)
	}
	assertAmount(t, "pot after raise", r.Pot, 7)
	assertAmount(t, "B bet", r.PlayerBets["B"], 4)
	assertAmount(t, "min after raise", r.CurrentMinBet, 3)
	if r.CurrentTurn() != "C" {
		t.Fatalf("expected C's turn, got %s", r.CurrentTurn())
	}

	r, winner, err := Pack(r, "C")
	if err != nil {
		t.Fatalf("C pack failed: %v", err)
	}
	if winner != "" {
		t.Fatalf("no auto-win expected with two players left, got %s", winner)
	}
	if r.CurrentTurn() != "A" {
		t.Fatalf("expected A's turn after pack, got %s", r.CurrentTurn())
	}

	r, cost, err := Show(r, "A")
	if err != nil {
		t.Fatalf("A show failed: %v", err)
	}
	assertAmount(t, "show cost", cost, 3)
	assertAmount(t, "pot after show", r.Pot, 10)
	assertAmount(t, "A bet after show", r.PlayerBets["A"], 5)
	if r.Phase() != PhaseShowPending || r.ShowCalledBy != "A" {
		t.Fatalf("expected show pending by A, got phase %s by %q", r.Phase(), r.ShowCalledBy)
	}
	assertPotInvariant(t, r)

	res, err := Resolve(r, "A")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	assertAmount(t, "A result", res.Results["A"], 5)
	assertAmount(t, "B result", res.Results["B"], -4)
	assertAmount(t, "C result", res.Results["C"], -1)
	if !money.Sum(res.Results).IsZero() {
		t.Errorf("results must sum to zero, got %s", money.Sum(res.Results))
	}
}

func TestPlaceBet_Rejections(t *testing.T) {
	r := startABC(t)

	tests := []struct {
		name   string
		player string
		amount float64
		want   error
	}{
		{"out of turn", "B", 1, ErrNotYourTurn},
		{"unknown player", "Z", 1, ErrPlayerNotActive},
		{"zero", "A", 0, ErrInvalidBetAmount},
		{"negative", "A", -2, ErrInvalidBetAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := PlaceBet(r, tt.player, d(tt.amount))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			assertAmount(t, "pot unchanged", next.Pot, 3)
		})
	}

	r, _ = PlaceBet(r, "A", d(5))
	if _, err := PlaceBet(r, "B", d(4)); !errors.Is(err, ErrInvalidBetAmount) {
		t.Errorf("bet below current minimum should fail, got %v", err)
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	r := startABC(t)
	if _, err := PlaceBet(r, "A", d(2)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Pack(r, "A"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Show(r, "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := ReorderTurns(r, []string{"C", "B", "A"}); err != nil {
		t.Fatal(err)
	}

	assertAmount(t, "pot", r.Pot, 3)
	assertAmount(t, "A bet", r.PlayerBets["A"], 1)
	if r.PlayerStatus["A"] != StatusActive || r.ShowCalledBy != "" || r.TurnOrder[0] != "A" {
		t.Errorf("input round was mutated: %+v", r)
	}
}

func TestPack_AutoWin(t *testing.T) {
	r, _ := Start([]string{"A", "B"}, d(2))

	r, winner, err := Pack(r, "A")
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if winner != "B" {
		t.Fatalf("expected auto-win for B, got %q", winner)
	}

	res, err := Resolve(r, winner)
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, "B result", res.Results["B"], 2)
	assertAmount(t, "A result", res.Results["A"], -2)
}

func TestPack_TurnAlwaysOnActivePlayer(t *testing.T) {
	ids := []string{"A", "B", "C", "D", "E"}
	r, _ := Start(ids, d(1))

	// Walk the table folding every second player to act.
	for i := 0; len(r.ActivePlayers()) > 1; i++ {
		cur := r.CurrentTurn()
		var err error
		if i%2 == 0 {
			r, err = PlaceBet(r, cur, r.CurrentMinBet)
		} else {
			var winner string
			r, winner, err = Pack(r, cur)
			if winner != "" {
				break
			}
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if r.PlayerStatus[r.CurrentTurn()] != StatusActive {
			t.Fatalf("step %d: turn points at non-active player %s", i, r.CurrentTurn())
		}
		assertPotInvariant(t, r)
	}
}

func TestShow_BlocksFurtherActions(t *testing.T) {
	r := startABC(t)
	r, cost, err := Show(r, "A")
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, "show cost", cost, 2)

	if _, err := PlaceBet(r, "B", d(1)); !errors.Is(err, ErrShowAlreadyCalled) {
		t.Errorf("bet after show: expected ErrShowAlreadyCalled, got %v", err)
	}
	if _, _, err := Pack(r, "B"); !errors.Is(err, ErrShowAlreadyCalled) {
		t.Errorf("pack after show: expected ErrShowAlreadyCalled, got %v", err)
	}
	if _, _, err := Show(r, "B"); !errors.Is(err, ErrShowAlreadyCalled) {
		t.Errorf("second show: expected ErrShowAlreadyCalled, got %v", err)
	}
}

func TestReorderTurns(t *testing.T) {
	r := startABC(t)
	r, _ = PlaceBet(r, "A", d(1))

	next, err := ReorderTurns(r, []string{"C", "A", "B"})
	if err != nil {
		t.Fatalf("ReorderTurns failed: %v", err)
	}
	if next.CurrentTurnIndex != 0 || next.CurrentTurn() != "C" {
		t.Errorf("expected C to act after reorder, got %s (index %d)", next.CurrentTurn(), next.CurrentTurnIndex)
	}

	bad := [][]string{
		{"A", "B"},
		{"A", "B", "C", "C"},
		{"A", "B", "C", "X"},
	}
	for _, order := range bad {
		if _, err := ReorderTurns(r, order); !errors.Is(err, ErrInvalidTurnOrder) {
			t.Errorf("ReorderTurns(%v): expected ErrInvalidTurnOrder, got %v", order, err)
		}
	}

	// A packed player may be dropped from the order.
	r, _, _ = Pack(r, "B")
	if _, err := ReorderTurns(r, []string{"C", "A"}); err != nil {
		t.Errorf("dropping a packed player should be allowed: %v", err)
	}
}

func TestReorderTurns_SitOut(t *testing.T) {
	r := startABC(t)

	next, err := ReorderTurns(r, []string{"B", "C"}, "A")
	if err != nil {
		t.Fatalf("ReorderTurns failed: %v", err)
	}
	if next.PlayerStatus["A"] != StatusPacked {
		t.Errorf("a player left out while sitting out should be packed, got %s", next.PlayerStatus["A"])
	}
	if next.CurrentTurn() != "B" || len(next.ActivePlayers()) != 2 {
		t.Errorf("expected B to act with two active players, got %s %v", next.CurrentTurn(), next.ActivePlayers())
	}
	if r.PlayerStatus["A"] != StatusActive {
		t.Error("input round was mutated")
	}

	// Sitting out only excuses the named players.
	if _, err := ReorderTurns(r, []string{"C"}, "A"); !errors.Is(err, ErrInvalidTurnOrder) {
		t.Errorf("expected ErrInvalidTurnOrder when B is missing, got %v", err)
	}
	if _, err := ReorderTurns(r, nil, "A", "B", "C"); !errors.Is(err, ErrInvalidTurnOrder) {
		t.Errorf("expected ErrInvalidTurnOrder when nobody is left to act, got %v", err)
	}
}

func TestResolve_CarriesRoundID(t *testing.T) {
	r := startABC(t)
	r.ID = "round-42"
	res, err := Resolve(r, "A")
	if err != nil {
		t.Fatal(err)
	}
	if res.RoundID != "round-42" {
		t.Errorf("expected result for round-42, got %q", res.RoundID)
	}
}

func TestResolve_UnknownWinner(t *testing.T) {
	r := startABC(t)
	if _, err := Resolve(r, "Z"); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("expected ErrUnknownPlayer, got %v", err)
	}
}

func TestResolve_FractionalAmountsSumToZero(t *testing.T) {
	r, _ := Start([]string{"A", "B", "C"}, d(0.33))
	r, _ = PlaceBet(r, "A", d(0.335))
	r, _ = PlaceBet(r, "B", d(1.111))
	r, _, _ = Show(r, "C")

	res, err := Resolve(r, "B")
	if err != nil {
		t.Fatal(err)
	}
	if sum := money.Sum(res.Results); sum.Abs().GreaterThan(d(0.01)) {
		t.Errorf("results should sum to zero within a cent, got %s", sum)
	}
}
