// Package notifier fans out data-change events to the open dashboard streams.
package notifier

import (
	"sync"
	"time"
)

// Reason says why the data may have changed.
type Reason string

// Reasons for an Event.
const (
	// ReasonFileChanged means a watched data file was written, renamed or removed.
	ReasonFileChanged Reason = "file_changed"
	// ReasonScheduled means the refresh schedule purged the table cache.
	ReasonScheduled Reason = "scheduled"
)

// Event describes one change. Path is empty for scheduled refreshes.
type Event struct {
	Reason Reason
	Path   string
	At     time.Time
}

// Notifier broadcasts events to all subscribed listeners.
// Each listener holds at most one pending event; a newer event replaces an
// unread one, since listeners re-render from the engine anyway.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	sent      uint64
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends ev to all listeners without blocking.
func (n *Notifier) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent++

	for ch := range n.listeners {
		select {
		case ch <- ev:
			continue
		default:
		}
		// Drop the stale event and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// Listeners returns the number of subscribed listeners.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Sent returns the number of broadcasts so far.
func (n *Notifier) Sent() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sent
}
