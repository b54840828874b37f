// services/game_service.go
package services

import (
	"time"

	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/models"
	"github.com/wfunc/teenpatti/money"
	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/room"
	"github.com/wfunc/teenpatti/settlement"
	"github.com/wfunc/teenpatti/state"
)

// Message is one outbound event before encoding.
type Message struct {
	MsgID   uint16
	Payload interface{}
}

// Reply is what an action produces: messages for the sender only and
// messages for everyone in RoomCode. Bind is set after create/join, when the
// sending connection starts speaking for PlayerID; Unbind after a leave.
type Reply struct {
	RoomCode  string
	PlayerID  string
	Bind      bool
	Unbind    bool
	Unicast   []Message
	Broadcast []Message
}

func (r *Reply) unicast(id uint16, payload interface{}) {
	r.Unicast = append(r.Unicast, Message{MsgID: id, Payload: payload})
}

func (r *Reply) broadcast(id uint16, payload interface{}) {
	r.Broadcast = append(r.Broadcast, Message{MsgID: id, Payload: payload})
}

// Outbox delivers a reply on behalf of the connection that sent the action.
// Deliver is called from inside the room job, so replies for one room are
// delivered in exactly the order the room applied them. Implementations
// must not block.
type Outbox interface {
	Deliver(reply Reply)
}

// Recorder receives finalized rooms and rounds. Implementations must not
// block; persistence.AsyncWriter is the production one.
type Recorder interface {
	SaveRoom(rec models.RoomRecord) error
	SaveRoundResult(rec models.RoundRecord) error
}

// Metrics counts round outcomes.
type Metrics interface {
	IncRoundsResolved()
	IncDuplicateRounds()
}

type nopRecorder struct{}

func (nopRecorder) SaveRoom(models.RoomRecord) error        { return nil }
func (nopRecorder) SaveRoundResult(models.RoundRecord) error { return nil }

type nopMetrics struct{}

func (nopMetrics) IncRoundsResolved()  {}
func (nopMetrics) IncDuplicateRounds() {}

// GameService applies inbound actions to rooms. Every action runs inside
// the target room's Exec, so actions for one room apply strictly in the
// order they arrive and validation always happens before mutation.
type GameService struct {
	rooms    *room.Manager
	recorder Recorder
	metrics  Metrics
	now      func() time.Time
}

func NewGameService(rooms *room.Manager, recorder Recorder, metrics Metrics) *GameService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &GameService{
		rooms:    rooms,
		recorder: recorder,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Rooms exposes the room store for read-only callers such as the admin RPC.
func (s *GameService) Rooms() *room.Manager {
	return s.rooms
}

// exec runs fn on the goroutine of the room named by reply.RoomCode. When fn
// succeeds the reply is handed to out before the room takes its next job.
func (s *GameService) exec(reply *Reply, out Outbox, fn func(r *room.Room) error) error {
	r, err := s.rooms.Lookup(reply.RoomCode)
	if err != nil {
		return err
	}
	return r.Exec(func(r *room.Room) error {
		if err := fn(r); err != nil {
			return err
		}
		if out != nil {
			out.Deliver(*reply)
		}
		return nil
	})
}

func newReply(code string) Reply {
	return Reply{RoomCode: room.NormalizeCode(code)}
}

func (s *GameService) CreateRoom(req CreateRoomRequest, out Outbox) (Reply, error) {
	if req.HostID == "" {
		return Reply{}, ErrBadRequest
	}
	r, err := s.rooms.CreateRoom(req.HostID, req.Name, req.MinBet, req.MaxBet)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{RoomCode: r.Code, PlayerID: req.HostID, Bind: true}
	err = s.exec(&reply, out, func(r *room.Room) error {
		reply.unicast(network.MsgTypeRoomCreated, RoomCreatedPayload{RoomCode: r.Code, Room: r.Snapshot()})
		s.save("room", s.recorder.SaveRoom(models.RoomRecord{
			RoomCode:  r.Code,
			HostID:    r.HostID,
			MinBet:    r.MinBet,
			MaxBet:    r.MaxBet,
			CreatedAt: r.CreatedAt,
		}))
		return nil
	})
	logger.Log.Infow("room created", "room", reply.RoomCode, "host", req.HostID)
	return reply, err
}

func (s *GameService) JoinRoom(req JoinRoomRequest, out Outbox) (Reply, error) {
	if req.PlayerID == "" {
		return Reply{}, ErrBadRequest
	}

	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		rejoining, spectating, err := r.Join(req.PlayerID, req.Name)
		if err != nil {
			return err
		}

		view := r.Snapshot()
		reply.PlayerID = req.PlayerID
		reply.Bind = true
		reply.unicast(network.MsgTypeRoomJoined, RoomJoinedPayload{Room: view, Rejoining: rejoining, Spectating: spectating})
		if spectating {
			reply.unicast(network.MsgTypeSpectating, SpectatingPayload{})
		}
		// Replay the hand in progress to the (re)connecting player.
		if view.CurrentRound != nil {
			reply.unicast(network.MsgTypeRoundUpdated, roundUpdated(*view.CurrentRound))
		}
		reply.broadcast(network.MsgTypeRoomUpdated, RoomUpdatedPayload{Room: view})
		return nil
	})
	return reply, err
}

// startRound backs both start-game and next-round; only the latter deals
// spectators in.
func (s *GameService) startRound(req HostRequest, promote bool, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		if err := r.RequireHost(req.HostID); err != nil {
			return err
		}
		if r.Status == room.StatusEnded {
			return room.ErrRoomEnded
		}
		if promote {
			r.PromoteSpectators()
		}
		round, err := r.StartRound()
		if err != nil {
			return err
		}

		reply.broadcast(network.MsgTypeGameStarted, GameStartedPayload{Room: r.Snapshot(), RoundState: round.Clone()})
		logger.Log.Infow("round started", "room", r.Code, "round", round.ID, "players", round.TurnOrder)
		return nil
	})
	return reply, err
}

func (s *GameService) StartGame(req HostRequest, out Outbox) (Reply, error) {
	return s.startRound(req, false, out)
}

func (s *GameService) NextRound(req HostRequest, out Outbox) (Reply, error) {
	return s.startRound(req, true, out)
}

// actingRound returns the live round after checking that playerID is not
// sitting it out.
func actingRound(r *room.Room, playerID string) (state.Round, error) {
	round, err := r.Round()
	if err != nil {
		return round, err
	}
	return round, r.CanAct(playerID)
}

func (s *GameService) PlaceBet(req PlaceBetRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		round, err := actingRound(r, req.PlayerID)
		if err != nil {
			return err
		}
		next, err := state.PlaceBet(round, req.PlayerID, req.Amount)
		if err != nil {
			return err
		}
		r.SetRound(next)
		reply.broadcast(network.MsgTypeRoundUpdated, roundUpdated(next.Clone()))
		return nil
	})
	return reply, err
}

func (s *GameService) Pack(req PlayerRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		round, err := actingRound(r, req.PlayerID)
		if err != nil {
			return err
		}
		next, winner, err := state.Pack(round, req.PlayerID)
		if err != nil {
			return err
		}
		return s.applyRound(r, next, winner, &reply)
	})
	return reply, err
}

// applyRound stores next and, when only winner is left standing, resolves
// the round on the spot.
func (s *GameService) applyRound(r *room.Room, next state.Round, winner string, reply *Reply) error {
	if winner != "" {
		ended, err := s.resolve(r, next, winner)
		if err != nil {
			return err
		}
		reply.broadcast(network.MsgTypeRoundUpdated, roundUpdated(next.Clone()))
		ended.AutoWin = true
		reply.broadcast(network.MsgTypeRoundEnded, ended)
		return nil
	}
	r.SetRound(next)
	reply.broadcast(network.MsgTypeRoundUpdated, roundUpdated(next.Clone()))
	return nil
}

func (s *GameService) Show(req PlayerRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		round, err := actingRound(r, req.PlayerID)
		if err != nil {
			return err
		}
		next, cost, err := state.Show(round, req.PlayerID)
		if err != nil {
			return err
		}
		r.SetRound(next)
		reply.broadcast(network.MsgTypeRoundUpdated, roundUpdated(next.Clone()))
		reply.broadcast(network.MsgTypeShowCalled, ShowCalledPayload{ByPlayerID: req.PlayerID, ShowCost: cost})
		return nil
	})
	return reply, err
}

// DeclareWinner resolves the live round. A declaration naming a round that
// was already counted, or arriving right after a resolution without naming
// a round, is a redelivery and is dropped without a reply.
func (s *GameService) DeclareWinner(req DeclareWinnerRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		if err := r.RequireHost(req.HostID); err != nil {
			return err
		}
		redelivered := r.Counted(req.RoundID) ||
			(req.RoundID == "" && r.CurrentRound == nil && r.Status == room.StatusSettlement)
		if redelivered {
			logger.Log.Infow("duplicate winner declaration dropped", "room", r.Code, "round", req.RoundID)
			s.metrics.IncDuplicateRounds()
			return nil
		}

		round, err := r.Round()
		if err != nil {
			return err
		}
		if req.RoundID != "" && req.RoundID != round.ID {
			return room.ErrRoundMismatch
		}
		ended, err := s.resolve(r, round, req.WinnerID)
		if err != nil {
			return err
		}
		reply.broadcast(network.MsgTypeRoundEnded, ended)
		return nil
	})
	return reply, err
}

// resolve computes the result, records it in the session and hands it to
// the recorder. Must run inside r.Exec.
func (s *GameService) resolve(r *room.Room, round state.Round, winner string) (RoundEndedPayload, error) {
	res, err := state.Resolve(round, winner)
	if err != nil {
		return RoundEndedPayload{}, err
	}
	res.Timestamp = s.now()
	res.PlayerNames = r.PlayerNames()

	if r.RecordRound(res) {
		s.metrics.IncRoundsResolved()
		s.save("round", s.recorder.SaveRoundResult(models.NewRoundRecord(r.Code, res)))
	} else {
		s.metrics.IncDuplicateRounds()
	}
	logger.Log.Infow("round resolved", "room", r.Code, "round", res.RoundID, "winner", winner, "pot", res.Pot)

	return RoundEndedPayload{
		Result:      res,
		Settlement:  settlement.Settle(res.Results, res.PlayerNames),
		PlayerNames: res.PlayerNames,
		Players:     r.PlayersCopy(),
	}, nil
}

// ReorderTurns sets a new turn order. Spectators who still hold a seat may
// be left out of it, which packs them; this is how the host moves past a
// player who reconnected mid-round.
func (s *GameService) ReorderTurns(req ReorderTurnsRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		if err := r.RequireHost(req.HostID); err != nil {
			return err
		}
		round, err := r.Round()
		if err != nil {
			return err
		}
		next, err := state.ReorderTurns(round, req.NewOrder, r.SittingOut()...)
		if err != nil {
			return err
		}

		var winner string
		if active := next.ActivePlayers(); len(active) == 1 && next.ShowCalledBy == "" {
			winner = active[0]
		}
		return s.applyRound(r, next, winner, &reply)
	})
	return reply, err
}

func (s *GameService) ChangeMinBet(req ChangeMinBetRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		if err := r.RequireHost(req.HostID); err != nil {
			return err
		}
		if err := r.ChangeMinBet(money.Round(req.NewMinBet)); err != nil {
			return err
		}
		reply.broadcast(network.MsgTypeRoomUpdated, RoomUpdatedPayload{Room: r.Snapshot()})
		return nil
	})
	return reply, err
}

// Leave handles both leave-session and a dropped connection.
func (s *GameService) Leave(req PlayerRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	reply.PlayerID = req.PlayerID
	reply.Unbind = true
	err := s.exec(&reply, out, func(r *room.Room) error {
		hostChanged, newHost := r.Leave(req.PlayerID)
		view := r.Snapshot()
		if hostChanged {
			reply.broadcast(network.MsgTypeHostChanged, HostChangedPayload{NewHostID: newHost, Room: view})
			logger.Log.Infow("host changed", "room", r.Code, "host", newHost)
		} else {
			reply.broadcast(network.MsgTypeRoomUpdated, RoomUpdatedPayload{Room: view})
		}
		return nil
	})
	return reply, err
}

func (s *GameService) EndSession(req HostRequest, out Outbox) (Reply, error) {
	reply := newReply(req.RoomCode)
	err := s.exec(&reply, out, func(r *room.Room) error {
		if err := r.RequireHost(req.HostID); err != nil {
			return err
		}
		summary := r.EndSession()
		reply.broadcast(network.MsgTypeSessionEnded, SessionEndedPayload{Summary: summary})
		logger.Log.Infow("session ended", "room", r.Code, "rounds", summary.TotalRounds)
		return nil
	})
	return reply, err
}

// save logs a recorder error; in-memory state is already final.
func (s *GameService) save(what string, err error) {
	if err != nil {
		logger.Log.Warnw("persisting "+what+" failed", "error", err)
	}
}
