package server

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/teenpatti/broadcast"
	"github.com/wfunc/teenpatti/config"
	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/monitor"
	"github.com/wfunc/teenpatti/network"
	"github.com/wfunc/teenpatti/rpc"
	"github.com/wfunc/teenpatti/services"
	"github.com/wfunc/teenpatti/session"
	"github.com/wfunc/teenpatti/timer"
)

const (
	sampleInterval  = 5 * time.Second
	timerResolution = 100 * time.Millisecond
)

type GameServer struct {
	cfg            config.ServerConfig
	upgrader       websocket.Upgrader
	game           *services.GameService
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	monitor        *monitor.Monitor
	timers         *timer.Manager
	rpcServer      *rpc.Server
	httpServer     *http.Server
	mux            *http.ServeMux
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

func NewGameServer(cfg config.ServerConfig, game *services.GameService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		game:           game,
		sessionManager: session.NewManager(),
		monitor:        mon,
		timers:         timer.NewManager(timerResolution),
		mux:            http.NewServeMux(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", mon.Handler())
	s.mux.Handle("/debug/vars", expvar.Handler())

	s.timers.Every(sampleInterval, s.sample)
	if hb := s.heartbeat(); hb > 0 {
		s.timers.Every(hb, s.sweepIdle)
	}
	return s
}

// Handler is the HTTP surface: websocket, health, metrics and expvar.
func (s *GameServer) Handler() http.Handler {
	return s.mux
}

func (s *GameServer) heartbeat() time.Duration {
	return time.Duration(s.cfg.HeartbeatSeconds) * time.Second
}

// Start runs the admin RPC listener and serves HTTP until Shutdown.
func (s *GameServer) Start() error {
	rpcServer, err := rpc.NewServer(s.cfg.RPCAddress, s.game.Rooms())
	if err != nil {
		return err
	}
	s.rpcServer = rpcServer
	go s.rpcServer.Start()

	s.httpServer = &http.Server{Addr: s.cfg.HTTPAddress, Handler: s.mux}
	logger.Log.Infof("Game server listening on %s", s.cfg.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting work. Open connections are closed so their read
// loops run the usual leave handling.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		s.timers.Stop()
		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}
	})
	return err
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"rooms":    s.game.Rooms().Count(),
		"sessions": s.sessionManager.Count(),
	})
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.NewString(), conn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()
	if hb := s.heartbeat(); hb > 0 {
		conn.SetHeartbeat(hb)
	}

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.disconnect(sess)
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	sess.Touch()
	s.monitor.IncMessagesReceived(network.MsgName(packet.MsgID))
	defer func() { s.monitor.ObserveMessageLatency(time.Since(start)) }()

	if packet.MsgID == network.MsgTypeHeartbeat {
		return
	}

	if _, err := s.game.Dispatch(packet.MsgID, packet.Data, s.outbox(sess)); err != nil {
		code := services.ErrorCode(err)
		s.monitor.IncRejected(code)
		logger.Log.Debugw("action rejected", "session", sess.GetID(), "msg", network.MsgName(packet.MsgID), "code", code, "error", err)
		s.send(sess, services.ErrorMessage(err))
	}
}

// sessionOutbox delivers replies for actions sent over one session. It runs
// inside the room job, and every send only queues a frame, so delivery
// keeps the room's order without holding the room up.
type sessionOutbox struct {
	server  *GameServer
	session *session.Session
}

func (s *GameServer) outbox(sess *session.Session) services.Outbox {
	return sessionOutbox{server: s, session: sess}
}

// Deliver binds the session, sends the unicast messages to it, broadcasts
// to the room and only then applies an unbind, so a leaving player still
// sees the update their leave caused.
func (o sessionOutbox) Deliver(reply services.Reply) {
	if reply.Bind {
		o.session.Bind(reply.RoomCode, reply.PlayerID)
	}
	for _, m := range reply.Unicast {
		o.server.send(o.session, m)
	}
	for _, m := range reply.Broadcast {
		if err := broadcast.BroadcastJSON(o.server.broadcaster, reply.RoomCode, m.MsgID, m.Payload); err != nil {
			logger.Log.Errorw("broadcast failed", "room", reply.RoomCode, "msg", network.MsgName(m.MsgID), "error", err)
		}
	}
	if reply.Unbind {
		o.session.Unbind()
	}
}

func (s *GameServer) send(sess *session.Session, m services.Message) {
	data, err := json.Marshal(m.Payload)
	if err != nil {
		logger.Log.Errorw("encoding message failed", "msg", network.MsgName(m.MsgID), "error", err)
		return
	}
	if err := sess.Send(m.MsgID, data); err != nil {
		logger.Log.Debugw("send failed", "session", sess.GetID(), "error", err)
	}
}

// disconnect runs leave-session for the player a dropped connection spoke
// for, unless that player is still connected through another session.
func (s *GameServer) disconnect(sess *session.Session) {
	code, playerID := sess.Unbind()
	if code == "" || len(s.sessionManager.GetByPlayer(code, playerID)) > 0 {
		return
	}
	if _, err := s.game.Leave(services.PlayerRequest{RoomCode: code, PlayerID: playerID}, s.outbox(sess)); err != nil {
		logger.Log.Debugw("leave on disconnect", "room", code, "player", playerID, "error", err)
	}
}

func (s *GameServer) sample() {
	s.monitor.SetActiveRooms(s.game.Rooms().Count())
}

// sweepIdle closes connections that sent nothing for two heartbeats.
func (s *GameServer) sweepIdle() {
	cutoff := time.Now().Add(-2 * s.heartbeat())
	for _, sess := range s.sessionManager.Idle(cutoff) {
		logger.Log.Infow("closing idle session", "session", sess.GetID())
		sess.Close()
	}
}
