package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/config"
	"github.com/wfunc/teenpatti/monitor"
	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/room"
	"github.com/wfunc/teenpatti/services"
)

func newTestServer(t *testing.T) (*GameServer, *httptest.Server) {
	t.Helper()
	rooms := room.NewRoomManager()
	mon := monitor.NewMonitor("test")
	game := services.NewGameService(rooms, nil, mon)

	s := NewGameServer(config.ServerConfig{}, game, mon)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Shutdown(context.Background())
		ts.Close()
		rooms.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, msgID uint16, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil skips packets until one with msgID arrives and decodes it into v.
func readUntil(t *testing.T, conn *websocket.Conn, msgID uint16, v interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", network.MsgName(msgID), err)
		}
		packet, err := network.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if packet.MsgID != msgID {
			continue
		}
		if err := json.Unmarshal(packet.Data, v); err != nil {
			t.Fatalf("unmarshal %s: %v", network.MsgName(msgID), err)
		}
		return
	}
}

func TestGameServer_RoomOverWebsocket(t *testing.T) {
	_, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)

	write(t, host, network.MsgTypeCreateRoom, services.CreateRoomRequest{HostID: "host", Name: "Hana", MinBet: decimal.NewFromInt(1)})
	var created services.RoomCreatedPayload
	readUntil(t, host, network.MsgTypeRoomCreated, &created)
	if len(created.RoomCode) != 6 || created.Room.HostID != "host" {
		t.Fatalf("unexpected room-created %+v", created)
	}

	write(t, host, network.MsgTypeStartGame, services.HostRequest{RoomCode: created.RoomCode, HostID: "host"})
	var rejected services.ErrorPayload
	readUntil(t, host, network.MsgTypeError, &rejected)
	if rejected.Code != "InsufficientPlayers" {
		t.Errorf("expected InsufficientPlayers, got %+v", rejected)
	}

	write(t, guest, network.MsgTypeJoinRoom, services.JoinRoomRequest{RoomCode: created.RoomCode, PlayerID: "guest", Name: "Gita"})
	var joined services.RoomJoinedPayload
	readUntil(t, guest, network.MsgTypeRoomJoined, &joined)
	var updated services.RoomUpdatedPayload
	readUntil(t, host, network.MsgTypeRoomUpdated, &updated)
	if len(updated.Room.Players) != 2 {
		t.Fatalf("host should see both players, got %+v", updated.Room.Players)
	}

	write(t, host, network.MsgTypeStartGame, services.HostRequest{RoomCode: created.RoomCode, HostID: "host"})
	var started services.GameStartedPayload
	readUntil(t, guest, network.MsgTypeGameStarted, &started)
	if !started.RoundState.Pot.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected pot 2, got %s", started.RoundState.Pot)
	}

	// Dropping the guest connection counts as leaving.
	guest.Close()
	readUntil(t, host, network.MsgTypeRoomUpdated, &updated)
	if updated.Room.Players["guest"].Active {
		t.Errorf("guest should be marked disconnected, got %+v", updated.Room.Players["guest"])
	}
}

func TestGameServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestGameServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	s.monitor.IncRejected("NotHost")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "test_actions_rejected_total") {
		t.Errorf("metrics output missing rejected counter:\n%s", rec.Body.String())
	}
}

func TestGameServer_LeaverSeesOwnLeave(t *testing.T) {
	_, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)

	write(t, host, network.MsgTypeCreateRoom, services.CreateRoomRequest{HostID: "host", MinBet: decimal.NewFromInt(1)})
	var created services.RoomCreatedPayload
	readUntil(t, host, network.MsgTypeRoomCreated, &created)
	write(t, guest, network.MsgTypeJoinRoom, services.JoinRoomRequest{RoomCode: created.RoomCode, PlayerID: "guest"})
	var joined services.RoomJoinedPayload
	readUntil(t, guest, network.MsgTypeRoomJoined, &joined)

	write(t, host, network.MsgTypeLeaveSession, services.PlayerRequest{RoomCode: created.RoomCode, PlayerID: "host"})
	var changed services.HostChangedPayload
	readUntil(t, host, network.MsgTypeHostChanged, &changed)
	if changed.NewHostID != "guest" {
		t.Errorf("expected guest to take over, got %+v", changed)
	}
	readUntil(t, guest, network.MsgTypeHostChanged, &changed)
}
