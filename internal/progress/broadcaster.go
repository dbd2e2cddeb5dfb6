// Package progress implements the broadcast channel that fans out
// orchestrator events to any number of live observers and retains the
// latest snapshot for late subscribers. State is process-memory only:
// best effort, lost on restart.
package progress

import (
	"log"
	"sync"
)

// EventType tags the three orchestrator event kinds.
type EventType string

const (
	EventSearching EventType = "searching"
	EventFound     EventType = "found"
	EventSummary   EventType = "summary"
)

// Event is one orchestrator progress update.
type Event struct {
	Type          EventType `json:"type"`
	FirmName      string    `json:"firmName,omitempty"`
	Inserted      int       `json:"inserted"`
	Skipped       int       `json:"skipped"`
	TotalInserted int       `json:"grandTotalInserted"`
	TotalSkipped  int       `json:"grandTotalSkipped"`
}

// Snapshot is the current progress state: the most recently published
// event (nil before the first run) plus whether a run is in flight.
type Snapshot struct {
	Progress    *Event `json:"progress"`
	IsSearching bool   `json:"isSearching"`
}

// subscriber buffer; a subscriber that falls this far behind is dropped
// rather than backpressuring the publisher.
const subscriberBuffer = 16

// Broadcaster owns the snapshot and subscriber set. Create one at process
// start, pass it by reference, and Close it at shutdown.
type Broadcaster struct {
	mu      sync.Mutex
	current Snapshot
	subs    map[chan Snapshot]struct{}
	closed  bool
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Snapshot]struct{})}
}

// Publish stores event as the current progress and fans the new snapshot
// out to every live subscriber.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.Progress = &event
	b.fanOut()
}

// SetSearching flips the in-flight flag and fans the snapshot out. The
// retained event is left as is so late subscribers still see the last
// known progress.
func (b *Broadcaster) SetSearching(searching bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.IsSearching = searching
	b.fanOut()
}

// Snapshot returns the current progress state.
func (b *Broadcaster) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Subscribe registers a new observer. The returned channel immediately
// carries the current snapshot, then every subsequent change, until cancel
// is called or the subscriber is dropped for falling behind. The channel
// is closed when the subscription ends.
func (b *Broadcaster) Subscribe() (<-chan Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	ch <- b.current

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.drop(ch)
	}
	return ch, cancel
}

// Close tears the broadcaster down, closing every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

// fanOut delivers the current snapshot to every subscriber without ever
// blocking: a subscriber whose buffer is full is pruned. Callers hold b.mu.
func (b *Broadcaster) fanOut() {
	for ch := range b.subs {
		select {
		case ch <- b.current:
		default:
			log.Printf("[progress] Dropping slow subscriber (buffer full)")
			b.drop(ch)
		}
	}
}

// drop removes and closes a subscriber channel if still registered.
// Callers hold b.mu.
func (b *Broadcaster) drop(ch chan Snapshot) {
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}
