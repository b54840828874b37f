package network

// Inbound actions.
const (
	MsgTypeHeartbeat     = 1
	MsgTypeCreateRoom    = 101
	MsgTypeJoinRoom      = 102
	MsgTypeStartGame     = 103
	MsgTypePlaceBet      = 104
	MsgTypePack          = 105
	MsgTypeShow          = 106
	MsgTypeDeclareWinner = 107
	MsgTypeReorderTurns  = 108
	MsgTypeChangeMinBet  = 109
	MsgTypeNextRound     = 110
	MsgTypeLeaveSession  = 111
	MsgTypeEndSession    = 112
)

// Outbound events.
const (
	MsgTypeError        = 200
	MsgTypeRoomCreated  = 201
	MsgTypeRoomJoined   = 202
	MsgTypeSpectating   = 203
	MsgTypeRoomUpdated  = 204
	MsgTypeGameStarted  = 205
	MsgTypeRoundUpdated = 206
	MsgTypeShowCalled   = 207
	MsgTypeRoundEnded   = 208
	MsgTypeHostChanged  = 209
	MsgTypeSessionEnded = 210
)

var msgNames = map[uint16]string{
	MsgTypeHeartbeat:     "heartbeat",
	MsgTypeCreateRoom:    "create-room",
	MsgTypeJoinRoom:      "join-room",
	MsgTypeStartGame:     "start-game",
	MsgTypePlaceBet:      "place-bet",
	MsgTypePack:          "pack",
	MsgTypeShow:          "show",
	MsgTypeDeclareWinner: "declare-winner",
	MsgTypeReorderTurns:  "reorder-turns",
	MsgTypeChangeMinBet:  "change-min-bet",
	MsgTypeNextRound:     "next-round",
	MsgTypeLeaveSession:  "leave-session",
	MsgTypeEndSession:    "end-session",

	MsgTypeError:        "error",
	MsgTypeRoomCreated:  "room-created",
	MsgTypeRoomJoined:   "room-joined",
	MsgTypeSpectating:   "spectating",
	MsgTypeRoomUpdated:  "room-updated",
	MsgTypeGameStarted:  "game-started",
	MsgTypeRoundUpdated: "round-updated",
	MsgTypeShowCalled:   "show-called",
	MsgTypeRoundEnded:   "round-ended",
	MsgTypeHostChanged:  "host-changed",
	MsgTypeSessionEnded: "session-ended",
}

// MsgName returns the event name for a message id, or "unknown".
func MsgName(id uint16) string {
	if name, ok := msgNames[id]; ok {
		return name
	}
	return "unknown"
}
