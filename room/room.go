// room/room.go
package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/logger"
	"github.com/wfunc/teenpatti/state"
)

// Status is the lifecycle stage of a room.
type Status string

const (
	StatusLobby      Status = "lobby"
	StatusPlaying    Status = "playing"
	StatusSettlement Status = "settlement"
	StatusEnded      Status = "ended"
)

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomEnded            = errors.New("session has ended")
	ErrRoomClosed           = errors.New("room is closed")
	ErrNotHost              = errors.New("only the host can do that")
	ErrNoActiveRound        = errors.New("no round in progress")
	ErrRoundInProgress      = errors.New("a round is already in progress")
	ErrInvalidMinBet        = errors.New("minimum bet must be a positive amount")
	ErrTransitionNotAllowed = errors.New("room status transition not allowed")
	ErrRoundMismatch        = errors.New("round id does not match the round in progress")
)

// transitions lists the statuses reachable from each status.
var transitions = map[Status][]Status{
	StatusLobby:      {StatusPlaying, StatusEnded},
	StatusPlaying:    {StatusSettlement, StatusEnded},
	StatusSettlement: {StatusPlaying, StatusEnded},
}

// PlayerStats is a player's standing over the whole session.
type PlayerStats struct {
	PlayerID     string          `json:"uid"`
	Name         string          `json:"name"`
	TotalNet     decimal.Decimal `json:"totalNet"`
	Wins         int             `json:"wins"`
	RoundsPlayed int             `json:"rounds"`
	Active       bool            `json:"active"`
	Spectating   bool            `json:"spectating"`
}

// Room is one hosted session. Its fields may only be touched from inside
// Exec, which runs every job on the room's own goroutine in arrival order.
type Room struct {
	Code         string
	HostID       string
	MinBet       decimal.Decimal
	MaxBet       decimal.NullDecimal
	Status       Status
	Players      map[string]*PlayerStats
	CurrentRound *state.Round
	History      []state.Result
	CreatedAt    time.Time

	joinOrder  []string
	counted    map[string]struct{}
	pick       func(n int) int
	newRoundID func() string

	mailbox   chan func()
	closeChan chan struct{}
	closeOnce sync.Once
}

const mailboxSize = 64

// NewRoom creates a room in the lobby with the host as its only player and
// starts its mailbox loop.
func NewRoom(code, hostID, hostName string, minBet decimal.Decimal, maxBet decimal.NullDecimal) *Room {
	r := &Room{
		Code:       code,
		HostID:     hostID,
		MinBet:     minBet,
		MaxBet:     maxBet,
		Status:     StatusLobby,
		Players:    make(map[string]*PlayerStats),
		CreatedAt:  time.Now(),
		counted:    make(map[string]struct{}),
		pick:       rand.IntN,
		newRoundID: uuid.NewString,
		mailbox:    make(chan func(), mailboxSize),
		closeChan:  make(chan struct{}),
	}
	r.addPlayer(hostID, hostName, false)

	go r.loop()
	return r
}

// loop is the room's single consumer.
func (r *Room) loop() {
	for {
		select {
		case job := <-r.mailbox:
			job()
		case <-r.closeChan:
			return
		}
	}
}

// Exec runs fn on the room goroutine and waits for it. Jobs never overlap, so
// fn sees and leaves the room in a consistent state. fn must not call Exec on
// the same room.
func (r *Room) Exec(fn func(*Room) error) error {
	done := make(chan error, 1)
	job := func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Log.Errorf("room %s: job panicked: %v", r.Code, p)
				done <- fmt.Errorf("room %s: internal error", r.Code)
			}
		}()
		done <- fn(r)
	}

	select {
	case r.mailbox <- job:
	case <-r.closeChan:
		return ErrRoomClosed
	}

	select {
	case err := <-done:
		return err
	case <-r.closeChan:
		return ErrRoomClosed
	}
}

// Close stops the mailbox loop. Pending Exec calls return ErrRoomClosed.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.closeChan) })
}

func (r *Room) setStatus(to Status) error {
	if r.Status == to {
		return nil
	}
	for _, allowed := range transitions[r.Status] {
		if allowed == to {
			r.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, r.Status, to)
}

func (r *Room) addPlayer(id, name string, spectating bool) *PlayerStats {
	p := &PlayerStats{PlayerID: id, Name: name, Active: true, Spectating: spectating}
	r.Players[id] = p
	r.joinOrder = append(r.joinOrder, id)
	return p
}

// RequireHost fails with ErrNotHost unless playerID is the current host.
func (r *Room) RequireHost(playerID string) error {
	if r.HostID != playerID {
		return ErrNotHost
	}
	return nil
}

// Join adds a player or marks a known one connected again. Anyone arriving
// while a round is being played sits it out as a spectator.
func (r *Room) Join(playerID, name string) (rejoining, spectating bool, err error) {
	if r.Status == StatusEnded {
		return false, false, ErrRoomEnded
	}

	midRound := r.Status == StatusPlaying
	if p, ok := r.Players[playerID]; ok {
		p.Active = true
		p.Spectating = midRound
		if name != "" {
			p.Name = name
		}
		return true, p.Spectating, nil
	}

	r.addPlayer(playerID, name, midRound)
	return false, midRound, nil
}

// Leave marks the player disconnected. If the host left, a new host is drawn
// at random from the players still connected; with nobody left the room
// stays orphaned under the old host.
func (r *Room) Leave(playerID string) (hostChanged bool, newHostID string) {
	p, ok := r.Players[playerID]
	if !ok {
		return false, ""
	}
	p.Active = false

	if r.HostID != playerID {
		return false, ""
	}

	var remaining []string
	for _, id := range r.joinOrder {
		if id != playerID && r.Players[id].Active {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return false, ""
	}
	r.HostID = remaining[r.pick(len(remaining))]
	return true, r.HostID
}

// PromoteSpectators deals every connected spectator into the next round.
func (r *Room) PromoteSpectators() {
	for _, p := range r.Players {
		if p.Active && p.Spectating {
			p.Spectating = false
		}
	}
}

// EligiblePlayerIDs returns connected, non-spectating players in join order.
func (r *Room) EligiblePlayerIDs() []string {
	ids := make([]string, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		if p := r.Players[id]; p.Active && !p.Spectating {
			ids = append(ids, id)
		}
	}
	return ids
}

// StartRound deals a round for the eligible players at the current minimum.
func (r *Room) StartRound() (state.Round, error) {
	if r.Status == StatusEnded {
		return state.Round{}, ErrRoomEnded
	}
	if r.CurrentRound != nil {
		return state.Round{}, ErrRoundInProgress
	}

	round, err := state.Start(r.EligiblePlayerIDs(), r.MinBet)
	if err != nil {
		return state.Round{}, err
	}
	if err := r.setStatus(StatusPlaying); err != nil {
		return state.Round{}, err
	}
	round.ID = r.newRoundID()
	r.CurrentRound = &round
	return round, nil
}

// CanAct fails with state.ErrPlayerNotActive for a spectator. A player who
// reconnects mid-round keeps a seat in the round but sits it out.
func (r *Room) CanAct(playerID string) error {
	if p, ok := r.Players[playerID]; ok && p.Spectating {
		return state.ErrPlayerNotActive
	}
	return nil
}

// SittingOut lists the spectators, in join order.
func (r *Room) SittingOut() []string {
	var ids []string
	for _, id := range r.joinOrder {
		if r.Players[id].Spectating {
			ids = append(ids, id)
		}
	}
	return ids
}

// Round returns the round in progress.
func (r *Room) Round() (state.Round, error) {
	if r.Status == StatusEnded {
		return state.Round{}, ErrRoomEnded
	}
	if r.CurrentRound == nil {
		return state.Round{}, ErrNoActiveRound
	}
	return *r.CurrentRound, nil
}

// SetRound stores the outcome of a successful round transition.
func (r *Room) SetRound(round state.Round) {
	r.CurrentRound = &round
}

// ChangeMinBet sets the ante used from the next round on.
func (r *Room) ChangeMinBet(v decimal.Decimal) error {
	if r.Status == StatusEnded {
		return ErrRoomEnded
	}
	if !v.IsPositive() {
		return ErrInvalidMinBet
	}
	r.MinBet = v
	return nil
}

// PlayerNames maps player id to display name.
func (r *Room) PlayerNames() map[string]string {
	names := make(map[string]string, len(r.Players))
	for id, p := range r.Players {
		names[id] = p.Name
	}
	return names
}

// View is a detached copy of a room, safe to serialise after Exec returns.
type View struct {
	Code         string                 `json:"roomId"`
	HostID       string                 `json:"hostUid"`
	MinBet       decimal.Decimal        `json:"minBet"`
	MaxBet       decimal.NullDecimal    `json:"maxBet"`
	Status       Status                 `json:"status"`
	Players      map[string]PlayerStats `json:"players"`
	CurrentRound *state.Round           `json:"currentRound"`
	RoundCount   int                    `json:"roundCount"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// Snapshot copies the room for broadcasting or replay to a reconnecting
// player.
func (r *Room) Snapshot() View {
	v := View{
		Code:       r.Code,
		HostID:     r.HostID,
		MinBet:     r.MinBet,
		MaxBet:     r.MaxBet,
		Status:     r.Status,
		Players:    r.PlayersCopy(),
		RoundCount: len(r.History),
		CreatedAt:  r.CreatedAt,
	}
	if r.CurrentRound != nil {
		round := r.CurrentRound.Clone()
		v.CurrentRound = &round
	}
	return v
}

// PlayersCopy returns the roster by value.
func (r *Room) PlayersCopy() map[string]PlayerStats {
	out := make(map[string]PlayerStats, len(r.Players))
	for id, p := range r.Players {
		out[id] = *p
	}
	return out
}
