package session

import (
	"context"
	"sync"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Turn is one utterance in a call's dialogue history. Immutable once appended.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// MaxHistory bounds the dialogue window kept per call; older turns are
// dropped so the most recent MaxHistory remain in order.
const MaxHistory = 12

// Session holds the conversation state for one live call, keyed by the
// telephony provider's call SID.
type Session struct {
	CallSID        string    `json:"call_sid"`
	CampaignID     string    `json:"campaign_id"`
	History        []Turn    `json:"history"`
	SilenceCount   int       `json:"silence_count"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Manager owns all live call sessions. Mutations against a call SID with no
// session are safe no-ops: the provider can deliver webhooks for calls we
// already tore down.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	locks       map[string]*sync.Mutex
	idleTimeout time.Duration
	onExpire    func(*Session)
}

func NewManager(idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = 5 * time.Minute
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		locks:       make(map[string]*sync.Mutex),
		idleTimeout: idleTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create registers a session seeded with the campaign greeting as the first
// assistant turn. An existing session for the same SID is replaced.
func (m *Manager) Create(callSID, campaignID, greeting string) *Session {
	now := time.Now().UTC()
	s := &Session{
		CallSID:        callSID,
		CampaignID:     campaignID,
		History:        []Turn{{Role: RoleAssistant, Content: greeting}},
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[callSID] = s
	return clone(s)
}

func (m *Manager) Get(callSID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[callSID]
	if !ok {
		return nil, false
	}
	return clone(s), true
}

// Delete removes a session, reporting whether one existed.
func (m *Manager) Delete(callSID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[callSID]
	delete(m.sessions, callSID)
	delete(m.locks, callSID)
	return ok
}

// AppendTurn appends to a session's history, keeping the MaxHistory most
// recent turns. Returns false if the session is gone.
func (m *Manager) AppendTurn(callSID string, role Role, content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callSID]
	if !ok {
		return false
	}
	s.History = append(s.History, Turn{Role: role, Content: content})
	if n := len(s.History); n > MaxHistory {
		s.History = s.History[n-MaxHistory:]
	}
	s.LastActivityAt = time.Now().UTC()
	return true
}

// RecordSilence increments the consecutive-silence counter and returns the
// new value. The counter never resets on a successful utterance. Returns 0
// if the session is gone.
func (m *Manager) RecordSilence(callSID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[callSID]
	if !ok {
		return 0
	}
	s.SilenceCount++
	s.LastActivityAt = time.Now().UTC()
	return s.SilenceCount
}

// History returns a snapshot of the session's dialogue window.
func (m *Manager) History(callSID string) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[callSID]
	if !ok {
		return nil
	}
	out := make([]Turn, len(s.History))
	copy(out, s.History)
	return out
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LockCall serializes gather cycles for one call. The provider is expected to
// deliver webhooks for a call one at a time; this enforces it anyway so the
// silence counter and history ordering stay correct under duplicate delivery.
func (m *Manager) LockCall(callSID string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[callSID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[callSID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// StartJanitor evicts sessions idle past the configured timeout. A call that
// never receives a completion callback must not leak memory forever.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictIdle()
			}
		}
	}()
}

func (m *Manager) evictIdle() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for sid, s := range m.sessions {
		if now.Sub(s.LastActivityAt) < m.idleTimeout {
			continue
		}
		expired = append(expired, clone(s))
		delete(m.sessions, sid)
		delete(m.locks, sid)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	c.History = make([]Turn, len(s.History))
	copy(c.History, s.History)
	return &c
}
