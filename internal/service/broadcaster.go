package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/metrics"
)

const defaultSubscriberBuffer = 64

// Subscription is a live feed of accepted mute log entries
type Subscription struct {
	ID   string
	Name string
	C    <-chan domain.MuteLogEntry
}

// Broadcaster fans accepted mute log entries out to live subscribers.
// Publish never blocks: a subscriber whose buffer is full misses the entry.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[string]*subscriber
	buffer  int
	metrics *metrics.Metrics
}

type subscriber struct {
	name string
	ch   chan domain.MuteLogEntry
}

// NewBroadcaster creates a broadcaster; buffer <= 0 uses the default size
func NewBroadcaster(buffer int, m *metrics.Metrics) *Broadcaster {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:    make(map[string]*subscriber),
		buffer:  buffer,
		metrics: m,
	}
}

// Subscribe registers a new subscriber
func (b *Broadcaster) Subscribe(name string) *Subscription {
	sub := &subscriber{name: name, ch: make(chan domain.MuteLogEntry, b.buffer)}
	id := uuid.NewString()

	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	return &Subscription{ID: id, Name: name, C: sub.ch}
}

// Unsubscribe detaches a subscriber and closes its channel. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish delivers the entry to every subscriber that has room
func (b *Broadcaster) Publish(entry domain.MuteLogEntry) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- entry:
		default:
			b.metrics.Dropped(sub.name)
		}
	}
}

// Count returns the number of live subscribers
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches every subscriber
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
