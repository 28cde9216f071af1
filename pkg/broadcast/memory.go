package broadcast

import (
	"context"
	"sync"

	"github.com/vango-dev/authsync/pkg/authstate"
)

// MemoryBus connects in-process contexts. Each Join returns a
// MemoryChannel; a snapshot published on one member is delivered
// synchronously to every other member's handlers, never back to the
// publisher. Useful for tests and single-process multi-registry setups.
type MemoryBus struct {
	mu      sync.Mutex
	members map[int]*MemoryChannel
	next    int
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		members: make(map[int]*MemoryChannel),
	}
}

// Join attaches a new context to the bus.
func (b *MemoryBus) Join() *MemoryChannel {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := &MemoryChannel{
		bus:      b,
		id:       b.next,
		handlers: make(map[int]func(authstate.Snapshot)),
	}
	b.members[b.next] = ch
	b.next++
	return ch
}

func (b *MemoryBus) relay(from int, snap authstate.Snapshot) {
	b.mu.Lock()
	targets := make([]*MemoryChannel, 0, len(b.members))
	for id, member := range b.members {
		if id != from {
			targets = append(targets, member)
		}
	}
	b.mu.Unlock()

	for _, member := range targets {
		member.deliver(snap)
	}
}

func (b *MemoryBus) leave(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.members, id)
}

// MemoryChannel is one context's handle on a MemoryBus.
type MemoryChannel struct {
	bus *MemoryBus
	id  int

	mu       sync.Mutex
	handlers map[int]func(authstate.Snapshot)
	nextSub  int
	closed   bool
}

// Publish delivers snap to every other member of the bus.
func (c *MemoryChannel) Publish(ctx context.Context, snap authstate.Snapshot) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil
	}
	c.bus.relay(c.id, snap)
	return nil
}

// OnReceive registers handler for snapshots from other members.
func (c *MemoryChannel) OnReceive(handler func(authstate.Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.handlers[id] = handler
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.handlers, id)
			c.mu.Unlock()
		})
	}
}

// Close detaches from the bus.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.handlers = map[int]func(authstate.Snapshot){}
	c.mu.Unlock()

	c.bus.leave(c.id)
	return nil
}

func (c *MemoryChannel) deliver(snap authstate.Snapshot) {
	c.mu.Lock()
	fns := make([]func(authstate.Snapshot), 0, len(c.handlers))
	for _, fn := range c.handlers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
