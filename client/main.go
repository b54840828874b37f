package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/services"
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

const usage = `commands: start | next | bet <amount> | pack | show | winner <id> | order <id,id,...> | minbet <amount> | leave | end`

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	player := flag.String("player", "", "player id")
	name := flag.String("name", "", "display name")
	code := flag.String("room", "", "room code to join; empty creates a room")
	minBet := flag.String("minbet", "1", "minimum bet when creating a room")
	flag.Parse()
	if *player == "" {
		log.Fatal("-player is required")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	roomCode := make(chan string, 1)
	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			if packet.MsgID == network.MsgTypeRoomCreated {
				var created services.RoomCreatedPayload
				if json.Unmarshal(packet.Data, &created) == nil {
					roomCode <- created.RoomCode
				}
			}
			log.Printf("<- %s: %s", network.MsgName(packet.MsgID), packet.Data)
		}
	}()

	if *code == "" {
		amount, err := decimal.NewFromString(*minBet)
		if err != nil {
			log.Fatalf("bad -minbet: %v", err)
		}
		if err := send(c, network.MsgTypeCreateRoom, services.CreateRoomRequest{HostID: *player, Name: *name, MinBet: amount}); err != nil {
			log.Fatalf("Write error: %v", err)
		}
		select {
		case *code = <-roomCode:
			log.Printf("Created room %s", *code)
		case <-time.After(5 * time.Second):
			log.Fatal("no room-created reply")
		}
	} else if err := send(c, network.MsgTypeJoinRoom, services.JoinRoomRequest{RoomCode: *code, PlayerID: *player, Name: *name}); err != nil {
		log.Fatalf("Write error: %v", err)
	}

	log.Println(usage)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := send(c, network.MsgTypeHeartbeat, struct{}{}); err != nil {
				log.Println("Write error:", err)
				return
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line := <-lines:
			msgID, payload, ok := command(*code, *player, line)
			if !ok {
				log.Println(usage)
				continue
			}
			if err := send(c, msgID, payload); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

// command turns a typed line into an outbound message.
func command(code, player, line string) (uint16, interface{}, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, false
	}
	host := services.HostRequest{RoomCode: code, HostID: player}
	self := services.PlayerRequest{RoomCode: code, PlayerID: player}

	switch fields[0] {
	case "start":
		return network.MsgTypeStartGame, host, true
	case "next":
		return network.MsgTypeNextRound, host, true
	case "end":
		return network.MsgTypeEndSession, host, true
	case "pack":
		return network.MsgTypePack, self, true
	case "show":
		return network.MsgTypeShow, self, true
	case "leave":
		return network.MsgTypeLeaveSession, self, true
	}

	if len(fields) != 2 {
		return 0, nil, false
	}
	switch fields[0] {
	case "bet":
		amount, err := decimal.NewFromString(fields[1])
		if err != nil {
			return 0, nil, false
		}
		return network.MsgTypePlaceBet, services.PlaceBetRequest{RoomCode: code, PlayerID: player, Amount: amount}, true
	case "minbet":
		amount, err := decimal.NewFromString(fields[1])
		if err != nil {
			return 0, nil, false
		}
		return network.MsgTypeChangeMinBet, services.ChangeMinBetRequest{RoomCode: code, HostID: player, NewMinBet: amount}, true
	case "winner":
		return network.MsgTypeDeclareWinner, services.DeclareWinnerRequest{RoomCode: code, HostID: player, WinnerID: fields[1]}, true
	case "order":
		return network.MsgTypeReorderTurns, services.ReorderTurnsRequest{RoomCode: code, HostID: player, NewOrder: strings.Split(fields[1], ",")}, true
	}
	return 0, nil, false
}
