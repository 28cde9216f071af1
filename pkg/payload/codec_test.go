package payload

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/env"
)

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func testPayload() Payload {
	return New(
		&authstate.User{ID: "u1", Email: "u1@example.com", Created: testNow.Add(-24 * time.Hour)},
		&authstate.Session{ID: "s1", UserID: "u1", Created: testNow.Add(-time.Hour), Expires: testNow.Add(time.Hour)},
		testNow,
	)
}

func TestEncodeGlobalSlotFragment(t *testing.T) {
	frag, err := EncodeGlobalSlot(testPayload())
	if err != nil {
		t.Fatalf("EncodeGlobalSlot: %v", err)
	}
	if !strings.Contains(frag, "window."+GlobalSlotName+"=") {
		t.Errorf("fragment missing slot assignment: %s", frag)
	}
	if !strings.Contains(frag, ReadyEventName) {
		t.Errorf("fragment missing ready event dispatch: %s", frag)
	}
	// The ready dispatch must follow the assignment.
	if strings.Index(frag, GlobalSlotName+"=") > strings.Index(frag, ReadyEventName) {
		t.Error("ready event dispatched before slot assignment")
	}
	if strings.Contains(frag, "</scr") && strings.Count(frag, "</script>") != 1 {
		t.Error("unescaped close tag inside script body")
	}
}

func TestEncodeIntoReadRoundTrip(t *testing.T) {
	doc := env.NewMemoryDocument()
	want := testPayload()

	if err := EncodeInto(doc, want); err != nil {
		t.Fatalf("EncodeInto: %v", err)
	}

	got := Read(doc)
	if got == nil {
		t.Fatal("Read returned nil after encode")
	}
	if got.User.ID != "u1" || got.Session.ID != "s1" {
		t.Errorf("got user=%v session=%v", got.User, got.Session)
	}
	if got.Timestamp != want.Timestamp {
		t.Errorf("Timestamp = %d, want %d", got.Timestamp, want.Timestamp)
	}
	if !got.Session.Expires.Equal(want.Session.Expires) {
		t.Errorf("session expiry = %v, want %v", got.Session.Expires, want.Session.Expires)
	}
}

func TestReadIdempotent(t *testing.T) {
	doc := env.NewMemoryDocument()
	if err := EncodeInto(doc, testPayload()); err != nil {
		t.Fatal(err)
	}

	first := Read(doc)
	second := Read(doc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two reads differ: %+v vs %+v", first, second)
	}
}

func TestReadMetaFallback(t *testing.T) {
	doc := env.NewMemoryDocument()
	if err := EncodeInto(doc, testPayload()); err != nil {
		t.Fatal(err)
	}
	// Strip the global slot; only the meta trio remains.
	doc.ClearGlobalSlot()

	got := Read(doc)
	if got == nil {
		t.Fatal("Read returned nil with meta trio present")
	}
	if got.User == nil || got.User.ID != "u1" {
		t.Errorf("fallback user = %+v", got.User)
	}
	if got.Session == nil || got.Session.ID != "s1" {
		t.Errorf("fallback session = %+v", got.Session)
	}
	if got.Timestamp != testNow.UnixMilli() {
		t.Errorf("fallback timestamp = %d", got.Timestamp)
	}
	// Date reconstruction from the RFC 3339 strings.
	if !got.Session.Created.Equal(testNow.Add(-time.Hour)) {
		t.Errorf("session created = %v", got.Session.Created)
	}
}

func TestReadMetaNullUserSession(t *testing.T) {
	doc := env.NewMemoryDocument()
	doc.SetMeta(MetaUser, url.QueryEscape("null"))
	doc.SetMeta(MetaSession, url.QueryEscape("null"))
	doc.SetMeta(MetaTimestamp, url.QueryEscape(strconv.FormatInt(testNow.UnixMilli(), 10)))

	got := Read(doc)
	if got == nil {
		t.Fatal("signed-out payload should still decode")
	}
	if got.User != nil || got.Session != nil {
		t.Errorf("want nil user/session, got %+v / %+v", got.User, got.Session)
	}
}

func TestReadAbsence(t *testing.T) {
	if got := Read(env.NewMemoryDocument()); got != nil {
		t.Errorf("empty document should read as absence, got %+v", got)
	}
}

func TestReadMalformedIsAbsence(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*env.MemoryDocument)
	}{
		{"non-JSON slot", func(d *env.MemoryDocument) {
			d.AssignGlobalSlot([]byte("not json"))
		}},
		{"slot missing timestamp", func(d *env.MemoryDocument) {
			d.AssignGlobalSlot([]byte(`{"user":null,"session":null}`))
		}},
		{"meta bad percent encoding", func(d *env.MemoryDocument) {
			d.SetMeta(MetaTimestamp, "%zz")
		}},
		{"meta non-numeric timestamp", func(d *env.MemoryDocument) {
			d.SetMeta(MetaTimestamp, url.QueryEscape("soon"))
		}},
		{"meta malformed user", func(d *env.MemoryDocument) {
			d.SetMeta(MetaTimestamp, url.QueryEscape("1724587200000"))
			d.SetMeta(MetaUser, url.QueryEscape("{broken"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := env.NewMemoryDocument()
			tt.setup(doc)
			if got := Read(doc); got != nil {
				t.Errorf("malformed embedding decoded to %+v, want nil", got)
			}
		})
	}
}

func TestSlotMalformedFallsBackToMeta(t *testing.T) {
	doc := env.NewMemoryDocument()
	if err := EncodeInto(doc, testPayload()); err != nil {
		t.Fatal(err)
	}
	doc.AssignGlobalSlot([]byte("garbage"))

	got := Read(doc)
	if got == nil || got.User == nil || got.User.ID != "u1" {
		t.Errorf("expected meta fallback after malformed slot, got %+v", got)
	}
}
