package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Session is everything the BFF keeps for one signed-in user. It lives until
// sign-out or until it has been idle for longer than the registry's TTL.
type Session struct {
	UserID string
	Lists  *GearLists
	Locks  *ListLocks

	synced   atomic.Bool
	lastSeen atomic.Int64
}

// MarkSynced returns true exactly once per session, for the caller that
// should push the identity to the user store.
func (s *Session) MarkSynced() bool {
	return s.synced.CompareAndSwap(false, true)
}

// ResetSynced lets a failed sync be retried on the next request.
func (s *Session) ResetSynced() {
	s.synced.Store(false)
}

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*Session{}, now: time.Now}
}

// Session returns the user's session, creating it on first use.
func (r *Registry) Session(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = &Session{UserID: userID, Lists: NewGearLists(), Locks: NewListLocks()}
		r.sessions[userID] = s
	}
	s.lastSeen.Store(r.now().UnixNano())
	return s
}

// End tears the session down, dropping its cached lists.
func (r *Registry) End(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	return ok
}

// Sweep removes sessions idle for longer than maxIdle and returns how many.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Load() < cutoff {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
