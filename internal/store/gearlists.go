package store

import (
	"errors"
	"fmt"
	"sync"

	"gearplanner/internal/gear"
)

var (
	ErrNotFound    = errors.New("gear list not found")
	ErrInvalidList = errors.New("gear list failed validation")
	ErrStale       = errors.New("gear list is older than the cached copy")
)

// GearLists caches one user's gear lists. Every list is validated on the way
// in, and callers always receive copies.
type GearLists struct {
	mu     sync.RWMutex
	lists  []gear.GearList
	loaded bool
}

func NewGearLists() *GearLists {
	return &GearLists{}
}

// GetGearListByID reports a cache miss with ok=false; callers fetch remotely.
func (s *GearLists) GetGearListByID(id string) (gear.GearList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.lists[i].Clone(), true
	}
	return gear.GearList{}, false
}

// SetUserGearLists replaces the whole cache. Nothing changes if any list is
// invalid.
func (s *GearLists) SetUserGearLists(lists []gear.GearList) error {
	next := make([]gear.GearList, 0, len(lists))
	for _, list := range lists {
		if err := list.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidList, err)
		}
		next = append(next, list.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = next
	s.loaded = true
	return nil
}

// AddGearList appends a newly created list. A list with the same id is
// replaced instead, so ids stay unique.
func (s *GearLists) AddGearList(list gear.GearList) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidList, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(list.ID); i >= 0 {
		s.lists[i] = list.Clone()
		return nil
	}
	s.lists = append(s.lists, list.Clone())
	return nil
}

// ReplaceGearList swaps in the server's copy of a list wholesale. When both
// copies carry a version and the incoming one is older, the cached copy is
// kept and ErrStale is returned.
func (s *GearLists) ReplaceGearList(list gear.GearList) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidList, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(list.ID)
	if i < 0 {
		s.lists = append(s.lists, list.Clone())
		return nil
	}
	cached := s.lists[i]
	if cached.Version > 0 && list.Version > 0 && list.Version < cached.Version {
		return ErrStale
	}
	s.lists[i] = list.Clone()
	return nil
}

func (s *GearLists) RemoveGearList(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.lists = append(s.lists[:i:i], s.lists[i+1:]...)
	return true
}

// UserGearLists returns the cached lists in insertion order.
func (s *GearLists) UserGearLists() []gear.GearList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gear.GearList, len(s.lists))
	for i, list := range s.lists {
		out[i] = list.Clone()
	}
	return out
}

// Loaded reports whether the full set has been fetched at least once.
func (s *GearLists) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *GearLists) index(id string) int {
	for i := range s.lists {
		if s.lists[i].ID == id {
			return i
		}
	}
	return -1
}
