// Package events carries the "progress changed" notifications that used to
// be an ambient set of global callbacks. Subscribers get an explicit channel
// and a cancel func, so lifecycle is visible at the call site.
package events

import (
	"sync"
	"time"

	"dealdesk/pkg/types"
)

type ProgressChanged struct {
	UserID      string
	Role        types.Role
	StepID      int
	CurrentStep int
	At          time.Time
}

type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ProgressChanged
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan ProgressChanged)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; after cancel the channel is closed.
func (b *Bus) Subscribe(buffer int) (<-chan ProgressChanged, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan ProgressChanged, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish fans the event out to every subscriber. Delivery is best effort: a
// subscriber with a full buffer misses the event rather than blocking the
// mutation that produced it.
func (b *Bus) Publish(ev ProgressChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
