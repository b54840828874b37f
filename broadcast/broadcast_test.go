package broadcast

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/session"
)

// MockConnection records sent packets.
type MockConnection struct {
	mutex sync.Mutex
	sent  []uint16
	fail  bool
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.fail {
		return errors.New("broken pipe")
	}
	m.sent = append(m.sent, msgID)
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestRoomBroadcaster(t *testing.T) {
	sessions := session.NewManager()

	alice, bob, other, broken := &MockConnection{}, &MockConnection{}, &MockConnection{}, &MockConnection{fail: true}
	add := func(id, room, player string, conn *MockConnection) {
		s := session.NewSession(id, conn)
		s.Bind(room, player)
		sessions.Add(s)
	}
	add("s1", "ROOM01", "alice", alice)
	add("s2", "ROOM01", "bob", bob)
	add("s3", "ROOM02", "carol", other)
	add("s4", "ROOM01", "dave", broken)

	b := NewRoomBroadcaster(sessions)

	if err := BroadcastJSON(b, "ROOM01", network.MsgTypeRoomUpdated, map[string]string{"roomId": "ROOM01"}); err != nil {
		t.Fatalf("broadcast should not fail on a broken session: %v", err)
	}
	if err := b.SendToPlayer("ROOM01", "bob", network.MsgTypeError, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	if len(alice.sent) != 1 || alice.sent[0] != network.MsgTypeRoomUpdated {
		t.Errorf("alice should get the broadcast only, got %v", alice.sent)
	}
	if len(bob.sent) != 2 || bob.sent[1] != network.MsgTypeError {
		t.Errorf("bob should get broadcast and error, got %v", bob.sent)
	}
	if len(other.sent) != 0 {
		t.Errorf("other rooms must not receive the broadcast, got %v", other.sent)
	}
}
