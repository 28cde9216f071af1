// Package trigger provides the external trigger sources for onVisible
// and onIdle islands. A trigger is nothing more than a call into "begin
// hydration for island X": the sources carry no auth logic and no
// payload beyond the island identity.
package trigger

import (
	"sync"
	"time"
)

// Hydrator is the narrow surface a trigger source calls into.
// *bridge.Bridge satisfies it.
type Hydrator interface {
	// TriggerHydration begins hydration for the source's island.
	TriggerHydration()

	// ID identifies the island. For logging only.
	ID() string
}

// VisibilitySource fires hydration the first time its island becomes
// visible. Visibility pulses come from the host (the IntersectionObserver
// equivalent); repeat pulses are ignored.
type VisibilitySource struct {
	h    Hydrator
	once sync.Once
}

// NewVisibilitySource wires a visibility trigger to h.
func NewVisibilitySource(h Hydrator) *VisibilitySource {
	return &VisibilitySource{h: h}
}

// Visible reports a visibility pulse. The first pulse triggers
// hydration; later pulses are no-ops.
func (v *VisibilitySource) Visible() {
	v.once.Do(v.h.TriggerHydration)
}

// IdleSource fires hydration after a quiet period with no activity
// pulses, approximating requestIdleCallback for non-browser hosts.
type IdleSource struct {
	h     Hydrator
	quiet time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

// NewIdleSource wires an idle trigger to h and starts the quiet timer.
func NewIdleSource(h Hydrator, quiet time.Duration) *IdleSource {
	s := &IdleSource{h: h, quiet: quiet}
	s.timer = time.AfterFunc(quiet, s.fire)
	return s
}

// Activity reports host activity, pushing the quiet deadline out. After
// the source has fired or been stopped, pulses are no-ops.
func (s *IdleSource) Activity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.fired {
		return
	}
	s.timer.Reset(s.quiet)
}

// Stop cancels the source without firing. Idempotent.
func (s *IdleSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.timer.Stop()
}

func (s *IdleSource) fire() {
	s.mu.Lock()
	if s.stopped || s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	s.mu.Unlock()

	s.h.TriggerHydration()
}
