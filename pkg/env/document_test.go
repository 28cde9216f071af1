package env

import (
	"testing"
	"time"
)

func TestMemoryDocumentSlot(t *testing.T) {
	doc := NewMemoryDocument()

	if _, ok := doc.GlobalSlot(); ok {
		t.Fatal("empty document should have no slot")
	}

	doc.AssignGlobalSlot([]byte(`{"user":null}`))
	raw, ok := doc.GlobalSlot()
	if !ok {
		t.Fatal("slot not readable after assignment")
	}
	if string(raw) != `{"user":null}` {
		t.Errorf("slot = %q", raw)
	}

	doc.ClearGlobalSlot()
	if _, ok := doc.GlobalSlot(); ok {
		t.Error("slot should be gone after ClearGlobalSlot")
	}
}

func TestMemoryDocumentReadyDispatch(t *testing.T) {
	doc := NewMemoryDocument()

	var got [][]byte
	cancel := doc.SubscribeReady(func(detail []byte) {
		got = append(got, detail)
	})

	doc.AssignGlobalSlot([]byte("a"))
	if len(got) != 1 || string(got[0]) != "a" {
		t.Fatalf("got %q, want one dispatch of %q", got, "a")
	}

	// Cancel is idempotent and stops delivery.
	cancel()
	cancel()
	doc.AssignGlobalSlot([]byte("b"))
	if len(got) != 1 {
		t.Errorf("canceled subscriber received %d dispatches", len(got))
	}
}

func TestMemoryDocumentMeta(t *testing.T) {
	doc := NewMemoryDocument()

	if _, ok := doc.MetaContent("authsync:user"); ok {
		t.Fatal("unset meta should not be present")
	}
	doc.SetMeta("authsync:user", "%7B%7D")
	content, ok := doc.MetaContent("authsync:user")
	if !ok || content != "%7B%7D" {
		t.Errorf("MetaContent = %q, %v", content, ok)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	if !clock.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", clock.Now(), start)
	}
	clock.Advance(time.Minute)
	if !clock.Now().Equal(start.Add(time.Minute)) {
		t.Errorf("Now = %v after Advance", clock.Now())
	}
}
