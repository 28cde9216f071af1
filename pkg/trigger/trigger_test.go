package trigger

import (
	"sync/atomic"
	"testing"
	"time"
)

type fakeHydrator struct {
	triggers int32
}

func (f *fakeHydrator) TriggerHydration() { atomic.AddInt32(&f.triggers, 1) }
func (f *fakeHydrator) ID() string        { return "island-test" }

func (f *fakeHydrator) count() int32 { return atomic.LoadInt32(&f.triggers) }

func TestVisibilityFiresOnce(t *testing.T) {
	h := &fakeHydrator{}
	src := NewVisibilitySource(h)

	if h.count() != 0 {
		t.Fatal("triggered before any pulse")
	}
	src.Visible()
	src.Visible()
	src.Visible()

	if got := h.count(); got != 1 {
		t.Errorf("triggered %d times, want 1", got)
	}
}

func TestIdleFiresAfterQuietPeriod(t *testing.T) {
	h := &fakeHydrator{}
	src := NewIdleSource(h, 30*time.Millisecond)
	defer src.Stop()

	if h.count() != 0 {
		t.Fatal("triggered immediately")
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.count(); got != 1 {
		t.Errorf("triggered %d times, want 1", got)
	}

	// A pulse after firing is a no-op.
	src.Activity()
	time.Sleep(50 * time.Millisecond)
	if got := h.count(); got != 1 {
		t.Errorf("triggered %d times after post-fire activity", got)
	}
}

func TestIdleActivityDefersFiring(t *testing.T) {
	h := &fakeHydrator{}
	src := NewIdleSource(h, 60*time.Millisecond)
	defer src.Stop()

	// Keep pulsing inside the quiet window; the trigger must not fire.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		src.Activity()
	}
	if got := h.count(); got != 0 {
		t.Fatalf("triggered %d times during activity", got)
	}

	// Go quiet; now it fires.
	deadline := time.Now().Add(2 * time.Second)
	for h.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.count(); got != 1 {
		t.Errorf("triggered %d times after quiet period, want 1", got)
	}
}

func TestIdleStop(t *testing.T) {
	h := &fakeHydrator{}
	src := NewIdleSource(h, 20*time.Millisecond)

	src.Stop()
	src.Stop() // idempotent
	time.Sleep(60 * time.Millisecond)

	if got := h.count(); got != 0 {
		t.Errorf("stopped source triggered %d times", got)
	}
}
