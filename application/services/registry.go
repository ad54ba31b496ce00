package services

import (
	"sort"
	"sync"

	"linkscope-backend/pkg/errors"
)

// sessionRegistry is the concurrent map of open sessions. The registry lock
// only guards membership; per-session state has its own mutex.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*Session)}
}

func (r *sessionRegistry) add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID()]; exists {
		return errors.NewConflictError("investigation '" + s.ID() + "' already open")
	}
	r.sessions[s.ID()] = s
	return nil
}

func (r *sessionRegistry) get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("investigation '" + id + "'")
	}
	return s, nil
}

func (r *sessionRegistry) remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return errors.NewNotFoundError("investigation '" + id + "'")
	}
	delete(r.sessions, id)
	return nil
}

// all returns the open sessions in stable id order.
func (r *sessionRegistry) all() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
