package services

import (
	"errors"

	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/room"
	"github.com/wfunc/teenpatti/state"
)

var ErrBadRequest = errors.New("malformed request")

var errorCodes = []struct {
	err  error
	code string
}{
	{room.ErrRoomNotFound, "RoomNotFound"},
	{room.ErrRoomEnded, "RoomEnded"},
	{room.ErrNotHost, "NotHost"},
	{room.ErrNoActiveRound, "NoActiveRound"},
	{room.ErrRoundInProgress, "RoundInProgress"},
	{room.ErrInvalidMinBet, "InvalidMinBet"},
	{room.ErrRoundMismatch, "RoundMismatch"},
	{state.ErrNotYourTurn, "NotYourTurn"},
	{state.ErrPlayerNotActive, "PlayerNotActive"},
	{state.ErrShowAlreadyCalled, "ShowAlreadyCalled"},
	{state.ErrInvalidBetAmount, "InvalidBetAmount"},
	{state.ErrInsufficientPlayers, "InsufficientPlayers"},
	{state.ErrInvalidTurnOrder, "InvalidTurnOrder"},
	{state.ErrUnknownPlayer, "UnknownPlayer"},
	{ErrBadRequest, "BadRequest"},
}

// ErrorCode maps an action error to the code sent on the wire.
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "Internal"
}

// ErrorMessage builds the unicast error payload.
func ErrorMessage(err error) Message {
	return Message{
		MsgID:   network.MsgTypeError,
		Payload: ErrorPayload{Code: ErrorCode(err), Message: err.Error()},
	}
}
