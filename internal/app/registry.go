package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"huddle/internal/core"
	"huddle/internal/domain"
)

type sessionEntry struct {
	Session *domain.Session
	Conn    core.SignalConnection
}

// Registry is the single source of truth for who is online. Keyed by
// connectionID; deviceKey is NOT unique across entries (a reconnect may
// coexist briefly with its stale predecessor).
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ConnID]*sessionEntry
	order   []domain.ConnID
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ConnID]*sessionEntry)}
}

// Register stores a fresh session for the connection. An existing
// entry for the same connectionID is overwritten silently; the
// transport guarantees connectionIDs are unique per live connection.
func (r *Registry) Register(id domain.ConnID, deviceKey, name string, conn core.SignalConnection) *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := domain.NewSession(id, deviceKey, name)
	if _, ok := r.entries[id]; !ok {
		r.order = append(r.order, id)
	}
	r.entries[id] = &sessionEntry{Session: s, Conn: conn}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("name", name).Msg("registered session")
	return s
}

func (r *Registry) Lookup(id domain.ConnID) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[id]; ok {
		return e.Session, true
	}
	return nil, false
}

// Conn returns the live transport endpoint for a connection.
func (r *Registry) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Remove drops the session and reports whether one existed. Removing
// an unknown connectionID is a no-op, not an error.
func (r *Registry) Remove(id domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("removed session")
	return true
}

// Snapshot returns all current sessions in insertion order. The slice
// is freshly allocated; callers may not mutate the sessions.
func (r *Registry) Snapshot() []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].Session)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
