// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/teenpatti/network"
)

// Session is one websocket connection. Once the client creates or joins a
// room the session is bound to that player and room.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time
	playerID   string
	roomCode   string
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Bind attaches the session to a player in a room.
func (s *Session) Bind(roomCode, playerID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomCode = roomCode
	s.playerID = playerID
}

// Unbind detaches the session and returns what it was bound to.
func (s *Session) Unbind() (roomCode, playerID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	roomCode, playerID = s.roomCode, s.playerID
	s.roomCode, s.playerID = "", ""
	return
}

// Binding returns the bound room code and player id, empty if unbound.
func (s *Session) Binding() (roomCode, playerID string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode, s.playerID
}

func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) IdleSince() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.LastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns every open session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// GetByRoom returns every session bound to roomCode.
func (m *Manager) GetByRoom(roomCode string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if code, _ := session.Binding(); code == roomCode {
			result = append(result, session)
		}
	}
	return result
}

// GetByPlayer returns the sessions a player has open in roomCode.
func (m *Manager) GetByPlayer(roomCode, playerID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if code, id := session.Binding(); code == roomCode && id == playerID {
			result = append(result, session)
		}
	}
	return result
}

// Idle returns sessions that have not been active since cutoff.
func (m *Manager) Idle(cutoff time.Time) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.IdleSince().Before(cutoff) {
			result = append(result, session)
		}
	}
	return result
}
