package designer

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/xelth-com/poslabel/internal/label"
)

// ErrSessionNotFound is returned for an unknown, closed or evicted session id.
var ErrSessionNotFound = errors.New("designer session not found")

type entry struct {
	mu      sync.Mutex
	session *Session
	// used is the last access time in unix nanoseconds.
	used atomic.Int64
}

// Manager hosts designer sessions for concurrent clients. Each session is
// used by one goroutine at a time.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	// MaxSessions caps open sessions. Opening one more evicts the least
	// recently used. Zero means no cap.
	MaxSessions int
	now         func() time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*entry), now: time.Now}
}

func (m *Manager) touch(e *entry) {
	e.used.Store(m.now().UnixNano())
}

// Open starts a session on a private copy of t.
func (m *Manager) Open(t *label.Template, onChange func(*label.Template)) *Session {
	s := NewSession(t.Clone(), onChange)
	s.ID = uuid.NewString()
	e := &entry{session: s}
	m.touch(e)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = e
	if m.MaxSessions > 0 && len(m.sessions) > m.MaxSessions {
		oldest := lo.MinBy(lo.Entries(m.sessions), func(a, b lo.Entry[string, *entry]) bool {
			return a.Value.used.Load() < b.Value.used.Load()
		})
		if oldest.Key != s.ID {
			delete(m.sessions, oldest.Key)
			log.Printf("🧹 Designer: evicted session %s (limit %d)", oldest.Key, m.MaxSessions)
		}
	}
	return s
}

// Do runs fn with exclusive access to the session.
func (m *Manager) Do(id string, fn func(*Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m.touch(e)
	return fn(e.session)
}

// Close forgets a session.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// IDs lists open session ids.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Keys(m.sessions)
}

// Sweep closes sessions idle for longer than maxIdle and returns their ids.
func (m *Manager) Sweep(maxIdle time.Duration) []string {
	cutoff := m.now().Add(-maxIdle).UnixNano()
	m.mu.Lock()
	defer m.mu.Unlock()
	var evicted []string
	for id, e := range m.sessions {
		if e.used.Load() < cutoff {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Run sweeps idle sessions until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(max(maxIdle/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := m.Sweep(maxIdle); len(evicted) > 0 {
				log.Printf("🧹 Designer: closed %d idle session(s)", len(evicted))
			}
		}
	}
}
