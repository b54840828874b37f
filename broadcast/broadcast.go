// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"

	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/session"
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	SendToPlayer(roomCode, playerID string, msgID uint16, data []byte) error
}

// RoomBroadcaster fans messages out to the sessions bound to a room.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoom(roomCode) {
		if err := s.Send(msgID, data); err != nil {
			// 发送失败的连接由读循环负责清理
			logger.Log.Debugw("broadcast send failed", "room", roomCode, "session", s.GetID(), "error", err)
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) SendToPlayer(roomCode, playerID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByPlayer(roomCode, playerID) {
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Debugw("player send failed", "room", roomCode, "player", playerID, "error", err)
			continue
		}
	}
	return nil
}

// BroadcastJSON marshals payload and broadcasts it to the room.
func BroadcastJSON(b Broadcaster, roomCode string, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.BroadcastToRoom(roomCode, msgID, data)
}
