package monitor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor("test")

	m.IncMessagesReceived("place-bet")
	m.IncMessagesReceived("place-bet")
	m.IncMessagesReceived("pack")
	m.IncRejected("NotYourTurn")
	m.IncRoundsResolved()
	m.SetActiveRooms(3)
	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	m.ObserveMessageLatency(2 * time.Millisecond)

	if got := testutil.ToFloat64(m.metrics.MessagesReceived.WithLabelValues("place-bet")); got != 2 {
		t.Errorf("Expected 2 place-bet messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.metrics.RejectedActions.WithLabelValues("NotYourTurn")); got != 1 {
		t.Errorf("Expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.metrics.ActiveRooms); got != 3 {
		t.Errorf("Expected 3 active rooms, got %v", got)
	}
	if got := testutil.ToFloat64(m.metrics.OnlinePlayers); got != 1 {
		t.Errorf("Expected 1 online player, got %v", got)
	}
	if m.RequestCount() != 3 {
		t.Errorf("Expected request count 3, got %d", m.RequestCount())
	}
}

func TestNewMonitor_Independent(t *testing.T) {
	// Each monitor owns its registry, so building two must not panic.
	a := NewMonitor("a")
	b := NewMonitor("a")
	a.IncRoundsResolved()
	if got := testutil.ToFloat64(b.metrics.RoundsResolved); got != 0 {
		t.Errorf("Monitors should not share counters, got %v", got)
	}
	if a.Handler() == nil {
		t.Error("Handler should not be nil")
	}
}
