package rpc

import (
	"encoding/json"
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/room"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
	server   *rpc.Server
}

// NewServer listens on addr and registers a read-only RoomService over rooms.
func NewServer(addr string, rooms *room.Manager) (*Server, error) {
	server := rpc.NewServer()
	if err := server.Register(NewRoomService(rooms)); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
		server:   server,
	}, nil
}

// Addr is the address actually bound, useful with port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start accepts connections until Stop is called.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.server.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// RoomService exposes room snapshots to operators. It never mutates a room.
type RoomService struct {
	rooms *room.Manager
}

func NewRoomService(rooms *room.Manager) *RoomService {
	return &RoomService{rooms: rooms}
}

type GetRoomArgs struct {
	Code string
}

// GetRoomReply carries the room as JSON so callers need no Go types.
type GetRoomReply struct {
	Room []byte
}

func (rs *RoomService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, err := rs.rooms.Lookup(args.Code)
	if err != nil {
		return err
	}

	var view room.View
	if err := r.Exec(func(r *room.Room) error {
		view = r.Snapshot()
		return nil
	}); err != nil {
		return err
	}

	reply.Room, err = json.Marshal(view)
	return err
}

// ListRoomsArgs.Status, when set, keeps only rooms in that status.
type ListRoomsArgs struct {
	Status string
}

type RoomInfo struct {
	Code    string
	Status  string
	HostID  string
	Players int
	Rounds  int
}

type ListRoomsReply struct {
	Rooms []RoomInfo
}

// ListRooms summarises every room, in code order. Rooms closed while the
// listing runs are skipped.
func (rs *RoomService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, code := range rs.rooms.Codes() {
		r, ok := rs.rooms.GetRoom(code)
		if !ok {
			continue
		}
		var info RoomInfo
		err := r.Exec(func(r *room.Room) error {
			info = RoomInfo{
				Code:    r.Code,
				Status:  string(r.Status),
				HostID:  r.HostID,
				Players: len(r.Players),
				Rounds:  len(r.History),
			}
			return nil
		})
		if err != nil || (args.Status != "" && info.Status != args.Status) {
			continue
		}
		reply.Rooms = append(reply.Rooms, info)
	}
	return nil
}
