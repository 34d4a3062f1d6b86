// Package events fans newly ingested code records out to live stream
// listeners.
package events

import (
	"sync"

	"github.com/hxabcd/sms-code-sync/internal/domain"
)

// queueSize bounds each listener's undelivered backlog.
const queueSize = 10

// Listener is one subscriber's receive handle. Its channel is closed when
// the listener is unsubscribed or dropped on overflow.
type Listener struct {
	ch chan domain.CodeRecord
}

// C returns the channel new records arrive on.
func (l *Listener) C() <-chan domain.CodeRecord { return l.ch }

// Broadcaster delivers each published record to every active listener.
// Publish never blocks: a listener whose queue is full is dropped, its
// channel closed, so a stalled consumer cannot hold back the publisher or
// other listeners.
type Broadcaster struct {
	mu        sync.Mutex
	listeners map[*Listener]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[*Listener]struct{})}
}

// Subscribe registers a new listener with a bounded queue.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{ch: make(chan domain.CodeRecord, queueSize)}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe deregisters l and closes its channel. Idempotent.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[l]; ok {
		delete(b.listeners, l)
		close(l.ch)
	}
}

// Publish enqueues rec for every listener without blocking. A listener
// whose queue is full is treated as dead and removed immediately.
func (b *Broadcaster) Publish(rec domain.CodeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for l := range b.listeners {
		select {
		case l.ch <- rec:
		default:
			delete(b.listeners, l)
			close(l.ch)
		}
	}
}

// Len returns the number of active listeners.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
