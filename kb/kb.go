package kb

import (
	"sync"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/core"
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventSnapshotUpdated EventType = iota
)

// Snapshot is the result of one forwarding computation tick.
type Snapshot struct {
	ComputedAt   time.Time
	SinceEpochNs int64
	Algorithm    string

	FState      core.ForwardingState
	Topological core.TopologicalState
	Bandwidth   core.BandwidthState
}

// Event is emitted to subscribers when a new snapshot lands.
type Event struct {
	Type     EventType
	Snapshot Snapshot
}

// ForwardingStore is an in-memory, thread-safe holder for the latest
// computed forwarding state. The engine writes one snapshot per tick;
// the export service and other consumers read the latest.
type ForwardingStore struct {
	mu sync.RWMutex

	latest *Snapshot
	subs   []func(Event)
}

// NewForwardingStore constructs an empty store.
func NewForwardingStore() *ForwardingStore {
	return &ForwardingStore{}
}

// Update replaces the latest snapshot and notifies subscribers.
// Subscribers are invoked synchronously outside the lock.
func (s *ForwardingStore) Update(snap Snapshot) {
	s.mu.Lock()
	s.latest = &snap
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	ev := Event{Type: EventSnapshotUpdated, Snapshot: snap}
	for _, fn := range subs {
		fn(ev)
	}
}

// Latest returns the most recent snapshot, if any.
func (s *ForwardingStore) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}

// Subscribe registers a callback invoked on every snapshot update.
func (s *ForwardingStore) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
