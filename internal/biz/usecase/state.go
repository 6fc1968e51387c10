package usecase

import (
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

// ListenerState owns the event cache and the mute log dedup maps.
// Both are guarded by one mutex so a cache write and a dedup check never interleave.
type ListenerState struct {
	mu     sync.Mutex
	events *cache.Cache
	dedup  *domain.DedupTracker
}

// NewListenerState creates empty listener state
func NewListenerState() *ListenerState {
	return &ListenerState{
		// entries live until the platform removes the notification
		events: cache.New(cache.NoExpiration, 0),
		dedup:  domain.NewDedupTracker(),
	}
}

// Post inserts the event, overwriting any earlier posting with the same id
func (s *ListenerState) Post(event *domain.NotificationEvent) {
	stored := *event
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events.Set(stored.ID, &stored, cache.NoExpiration)
}

// Remove deletes the event, reporting whether it was present
func (s *ListenerState) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events.Get(id); !ok {
		return false
	}
	s.events.Delete(id)
	return true
}

// Lookup returns a copy of the cached event
func (s *ListenerState) Lookup(id string) (*domain.NotificationEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.events.Get(id)
	if !ok {
		return nil, false
	}
	event := *v.(*domain.NotificationEvent)
	return &event, true
}

// Len returns the number of cached events
func (s *ListenerState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.ItemCount()
}

// AcceptLogEntry checks the fingerprints against the dedup window and marks them when accepted.
// It returns false for a duplicate.
func (s *ListenerState) AcceptLogEntry(fp domain.Fingerprints, nowMs int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dedup.IsDuplicate(fp, nowMs) {
		return false
	}
	s.dedup.Mark(fp, nowMs)
	return true
}
