package room

import (
	"crypto/rand"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/money"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Manager is the in-process room store. Rooms are never reaped; ended rooms
// stay addressable so late joiners get ErrRoomEnded instead of
// ErrRoomNotFound.
type Manager struct {
	rooms   map[string]*Room
	mutex   sync.RWMutex
	newCode func() string
}

// NewRoomManager creates an empty store.
func NewRoomManager() *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		newCode: randomCode,
	}
}

func randomCode() string {
	buf := make([]byte, codeLength)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// NormalizeCode upper-cases and trims a user supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom allocates a fresh code, retrying on collision, and registers a
// room hosted by hostID.
func (m *Manager) CreateRoom(hostID, hostName string, minBet decimal.Decimal, maxBet decimal.NullDecimal) (*Room, error) {
	minBet = money.Round(minBet)
	if !minBet.IsPositive() {
		return nil, ErrInvalidMinBet
	}
	if maxBet.Valid {
		maxBet.Decimal = money.Round(maxBet.Decimal)
		if !maxBet.Decimal.IsPositive() {
			maxBet = decimal.NullDecimal{}
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := m.newCode()
	for _, taken := m.rooms[code]; taken; _, taken = m.rooms[code] {
		code = m.newCode()
	}

	room := NewRoom(code, hostID, hostName, minBet, maxBet)
	m.rooms[code] = room
	return room, nil
}

// GetRoom looks a room up by code.
func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[NormalizeCode(code)]
	return room, exists
}

// Lookup is GetRoom returning ErrRoomNotFound.
func (m *Manager) Lookup(code string) (*Room, error) {
	room, ok := m.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom stops and forgets a room.
func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code = NormalizeCode(code)
	if room, exists := m.rooms[code]; exists {
		room.Close()
		delete(m.rooms, code)
	}
}

// Codes lists every known room code, sorted.
func (m *Manager) Codes() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	codes := make([]string, 0, len(m.rooms))
	for code := range m.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Count returns the number of rooms held.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Close stops every room loop.
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for code, room := range m.rooms {
		room.Close()
		delete(m.rooms, code)
	}
}
