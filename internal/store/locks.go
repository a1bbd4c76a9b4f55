package store

import "sync"

// ListLocks serialises mutations per list id so two requests against the
// same list cannot interleave their read-modify-write.
type ListLocks struct {
	mu    sync.Mutex
	locks map[string]*listLock
}

type listLock struct {
	mu   sync.Mutex
	refs int
}

func NewListLocks() *ListLocks {
	return &ListLocks{locks: map[string]*listLock{}}
}

// Lock blocks until the list is free and returns the matching unlock.
func (l *ListLocks) Lock(listID string) func() {
	l.mu.Lock()
	lk, ok := l.locks[listID]
	if !ok {
		lk = &listLock{}
		l.locks[listID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, listID)
		}
		l.mu.Unlock()
	}
}

func (l *ListLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
