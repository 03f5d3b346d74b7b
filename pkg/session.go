package pkg

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ykjam/azulgw/pkg/azul/request"
)

type SessionState string

const (
	SessionStateInitiated        SessionState = "INITIATED"
	SessionStateMethodPending    SessionState = "METHOD_PENDING"
	SessionStateChallengePending SessionState = "CHALLENGE_PENDING"
	SessionStateApproved         SessionState = "APPROVED"
	SessionStateDeclined         SessionState = "DECLINED"
	SessionStateError            SessionState = "ERROR"
)

// IsTerminal reports whether the session reached its final state.
func (s SessionState) IsTerminal() bool {
	return s == SessionStateApproved || s == SessionStateDeclined || s == SessionStateError
}

// SessionData is the mutable state of one in-flight 3-D Secure transaction.
type SessionData struct {
	// AzulOrderId may be empty right after initiation when the gateway
	// response omitted it, lookups must tolerate that.
	AzulOrderId string `json:"azul_order_id,omitempty"`
	// TermUrl is the exact callback url sent to the gateway, correlation
	// parameter included. It is echoed unchanged into challenge forms.
	TermUrl               string              `json:"term_url,omitempty"`
	MethodNotificationUrl string              `json:"method_notification_url,omitempty"`
	State                 SessionState        `json:"state"`
	Transaction           request.Transaction `json:"transaction"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

type SessionStore interface {
	// Create stores the session and returns its freshly generated id.
	Create(data SessionData) string
	// Get returns false for unknown and expired ids alike.
	Get(sessionId string) (SessionData, bool)
	// Update applies mutate atomically with respect to concurrent updates
	// of the same session. Returns false when the session does not exist.
	Update(sessionId string, mutate func(*SessionData)) bool
	// FindByOrderId scans for the session holding the given gateway order
	// id. Needed by the method notification path which is keyed by order.
	FindByOrderId(azulOrderId string) (string, SessionData, bool)
}

type memorySessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]SessionData
}

// NewMemorySessionStore returns a mutex guarded in-memory store. Sessions
// older than ttl behave exactly like sessions that never existed.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]SessionData),
	}
}

func (m *memorySessionStore) expired(data SessionData, now time.Time) bool {
	return now.Sub(data.CreatedAt) > m.ttl
}

func (m *memorySessionStore) Create(data SessionData) string {
	sessionId := uuid.New().String()
	now := time.Now()
	data.CreatedAt = now
	data.UpdatedAt = now
	m.mu.Lock()
	// opportunistic sweep, keeps the map from growing unbounded without
	// a janitor goroutine
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
		}
	}
	m.sessions[sessionId] = data
	m.mu.Unlock()
	return sessionId
}

func (m *memorySessionStore) Get(sessionId string) (SessionData, bool) {
	m.mu.RLock()
	data, ok := m.sessions[sessionId]
	m.mu.RUnlock()
	if !ok || m.expired(data, time.Now()) {
		return SessionData{}, false
	}
	return data, true
}

func (m *memorySessionStore) Update(sessionId string, mutate func(*SessionData)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[sessionId]
	if !ok || m.expired(data, time.Now()) {
		return false
	}
	mutate(&data)
	data.UpdatedAt = time.Now()
	m.sessions[sessionId] = data
	return true
}

func (m *memorySessionStore) FindByOrderId(azulOrderId string) (string, SessionData, bool) {
	if azulOrderId == "" {
		return "", SessionData{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	for id, data := range m.sessions {
		if data.AzulOrderId == azulOrderId && !m.expired(data, now) {
			return id, data, true
		}
	}
	return "", SessionData{}, false
}
