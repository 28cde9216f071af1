package wait

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/env"
	"github.com/vango-dev/authsync/pkg/payload"
)

func encodedDoc(t *testing.T) *env.MemoryDocument {
	t.Helper()
	doc := env.NewMemoryDocument()
	p := payload.New(&authstate.User{ID: "u1"}, &authstate.Session{ID: "s1"}, time.Now())
	if err := payload.EncodeInto(doc, p); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestForPayloadImmediate(t *testing.T) {
	doc := encodedDoc(t)

	start := time.Now()
	p, err := ForPayload(context.Background(), doc, time.Second)
	if err != nil {
		t.Fatalf("ForPayload: %v", err)
	}
	if p == nil || p.User.ID != "u1" {
		t.Errorf("payload = %+v", p)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("already-readable payload took %v", elapsed)
	}
}

func TestForPayloadReadyEventWins(t *testing.T) {
	doc := env.NewMemoryDocument()
	p := payload.New(&authstate.User{ID: "u1"}, nil, time.Now())

	go func() {
		time.Sleep(20 * time.Millisecond)
		if err := payload.EncodeInto(doc, p); err != nil {
			panic(err)
		}
	}()

	// Poll far slower than the ready signal so only the event can win
	// inside the deadline window.
	got, err := ForPayload(context.Background(), doc, time.Second,
		WithPollInterval(10*time.Second))
	if err != nil {
		t.Fatalf("ForPayload: %v", err)
	}
	if got == nil || got.User.ID != "u1" {
		t.Errorf("payload = %+v", got)
	}
}

func TestForPayloadPollFallback(t *testing.T) {
	// The payload appears without any ready signal firing (meta tags
	// only); the poll must find it.
	doc := env.NewMemoryDocument()

	go func() {
		time.Sleep(20 * time.Millisecond)
		doc.SetMeta(payload.MetaTimestamp, "1724587200000")
	}()

	got, err := ForPayload(context.Background(), doc, time.Second,
		WithPollInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("ForPayload: %v", err)
	}
	if got == nil || got.Timestamp != 1724587200000 {
		t.Errorf("payload = %+v", got)
	}
}

func TestForPayloadTimeout(t *testing.T) {
	doc := env.NewMemoryDocument()

	start := time.Now()
	p, err := ForPayload(context.Background(), doc, 50*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if p != nil {
		t.Errorf("payload = %+v on timeout", p)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("timed out after %v, earlier than the deadline", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("timed out after %v, far past the deadline", elapsed)
	}
}

func TestForPayloadContextCancel(t *testing.T) {
	doc := env.NewMemoryDocument()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := ForPayload(ctx, doc, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestForPayloadConcurrentCallers(t *testing.T) {
	// One caller's timers/listeners must not leak into another's: a
	// short-deadline caller times out while a long-deadline caller still
	// receives the payload.
	doc := env.NewMemoryDocument()
	p := payload.New(&authstate.User{ID: "u1"}, nil, time.Now())

	var wg sync.WaitGroup
	wg.Add(2)

	var shortErr error
	go func() {
		defer wg.Done()
		_, shortErr = ForPayload(context.Background(), doc, 20*time.Millisecond)
	}()

	var longPayload *payload.Payload
	var longErr error
	go func() {
		defer wg.Done()
		longPayload, longErr = ForPayload(context.Background(), doc, 2*time.Second)
	}()

	time.Sleep(100 * time.Millisecond)
	if err := payload.EncodeInto(doc, p); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	if !errors.Is(shortErr, ErrTimeout) {
		t.Errorf("short caller err = %v, want ErrTimeout", shortErr)
	}
	if longErr != nil || longPayload == nil {
		t.Errorf("long caller got (%+v, %v)", longPayload, longErr)
	}
}
