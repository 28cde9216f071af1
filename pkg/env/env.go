package env

import (
	"sync"
	"time"
)

// Clock abstracts time so tests can control LastUpdated stamps and idle
// timers deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock advanced explicitly. For tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Document is the host document capability: the global payload slot, the
// meta-tag fallback, and the ready signal dispatched after slot
// assignment. Implementations must be safe for concurrent use.
type Document interface {
	// GlobalSlot returns the raw JSON assigned to the well-known global
	// slot, or ok=false when the slot is empty or was stripped.
	GlobalSlot() (raw []byte, ok bool)

	// MetaContent returns the content attribute of the named meta tag.
	MetaContent(name string) (content string, ok bool)

	// SubscribeReady registers fn for the single-fire ready signal that
	// follows a global-slot assignment. The returned cancel removes the
	// registration; calling it more than once is a no-op.
	SubscribeReady(fn func(detail []byte)) (cancel func())
}

// Capabilities bundles the host facilities a bridge needs.
type Capabilities struct {
	Clock Clock
	Doc   Document
}

// WithDefaults fills unset capabilities with standard implementations:
// the system clock and an empty in-memory document.
func (c Capabilities) WithDefaults() Capabilities {
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Doc == nil {
		c.Doc = NewMemoryDocument()
	}
	return c
}
