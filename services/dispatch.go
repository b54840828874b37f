package services

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/state"
)

// Dispatch decodes an inbound packet body and runs the matching action,
// delivering its reply through out. Unknown message ids return
// ErrBadRequest.
func (s *GameService) Dispatch(msgID uint16, data []byte, out Outbox) (Reply, error) {
	switch msgID {
	case network.MsgTypeCreateRoom:
		var req CreateRoomRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		return s.CreateRoom(req, out)
	case network.MsgTypeJoinRoom:
		var req JoinRoomRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		return s.JoinRoom(req, out)
	case network.MsgTypeStartGame, network.MsgTypeNextRound, network.MsgTypeEndSession:
		var req HostRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		switch msgID {
		case network.MsgTypeStartGame:
			return s.StartGame(req, out)
		case network.MsgTypeNextRound:
			return s.NextRound(req, out)
		default:
			return s.EndSession(req, out)
		}
	case network.MsgTypePlaceBet:
		var req PlaceBetRequest
		if err := json.Unmarshal(data, &req); err != nil {
			// A non-numeric amount is the usual cause.
			return Reply{}, fmt.Errorf("%w: %v", state.ErrInvalidBetAmount, err)
		}
		return s.PlaceBet(req, out)
	case network.MsgTypePack, network.MsgTypeShow, network.MsgTypeLeaveSession:
		var req PlayerRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		switch msgID {
		case network.MsgTypePack:
			return s.Pack(req, out)
		case network.MsgTypeShow:
			return s.Show(req, out)
		default:
			return s.Leave(req, out)
		}
	case network.MsgTypeDeclareWinner:
		var req DeclareWinnerRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		return s.DeclareWinner(req, out)
	case network.MsgTypeReorderTurns:
		var req ReorderTurnsRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		return s.ReorderTurns(req, out)
	case network.MsgTypeChangeMinBet:
		var req ChangeMinBetRequest
		if err := decode(data, &req); err != nil {
			return Reply{}, err
		}
		return s.ChangeMinBet(req, out)
	default:
		return Reply{}, fmt.Errorf("%w: unknown message %d", ErrBadRequest, msgID)
	}
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
