package cart

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSessionCapacity = 10000
	DefaultSessionIdle     = 30 * time.Minute
)

// Sessions hands out one Engine per browsing session, loading it from the
// store on first use. Engines are a cache over the stored snapshot: idle or
// least recently used ones are dropped and reloaded on the next Get, except
// while pinned.
type Sessions struct {
	mu      sync.Mutex
	store   Store
	engines *expirable.LRU[string, *Engine]
	pinned  map[string]*Engine
}

// NewSessions keeps at most capacity engines resident, each for idle after
// its last use. Non-positive values fall back to the defaults.
func NewSessions(store Store, capacity int, idle time.Duration) *Sessions {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Sessions{
		store:   store,
		engines: expirable.NewLRU[string, *Engine](capacity, nil, idle),
		pinned:  make(map[string]*Engine),
	}
}

// Key is the snapshot key for a session's cart.
func Key(sessionID string) string {
	return "cart:" + sessionID
}

// Get returns the engine for sessionID, creating it if needed.
func (s *Sessions) Get(sessionID string) *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(sessionID)
}

func (s *Sessions) getLocked(sessionID string) *Engine {
	if e, ok := s.pinned[sessionID]; ok {
		s.engines.Add(sessionID, e)
		return e
	}
	if e, ok := s.engines.Get(sessionID); ok {
		// Get does not extend the entry's lifetime; Add does.
		s.engines.Add(sessionID, e)
		return e
	}
	e := New(s.store, Key(sessionID))
	s.engines.Add(sessionID, e)
	return e
}

// Pin returns the session's engine and keeps it resident until Unpin.
func (s *Sessions) Pin(sessionID string) *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.getLocked(sessionID)
	s.pinned[sessionID] = e
	return e
}

// Unpin hands the engine back to the idle clock.
func (s *Sessions) Unpin(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pinned[sessionID]; ok {
		delete(s.pinned, sessionID)
		s.engines.Add(sessionID, e)
	}
}

// Forget drops the in-memory engine unless it is pinned. The stored snapshot
// is kept and reloaded by the next Get.
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pinned[sessionID]; ok {
		return
	}
	s.engines.Remove(sessionID)
}

// Len counts resident engines, pinned ones included.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.engines.Len()
	for id := range s.pinned {
		if !s.engines.Contains(id) {
			n++
		}
	}
	return n
}
