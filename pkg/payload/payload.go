package payload

import (
	"time"

	"github.com/vango-dev/authsync/pkg/authstate"
)

// Well-known embedding locations. The namespace is stable: changing it
// orphans payloads rendered by older server builds.
const (
	// GlobalSlotName is the global variable the encoded payload is
	// assigned to.
	GlobalSlotName = "__AUTHSYNC_STATE__"

	// ReadyEventName is the single-fire event dispatched immediately
	// after the global-slot assignment, carrying the payload as detail.
	ReadyEventName = "authsync:ready"

	// Meta tag names of the fallback trio.
	MetaUser      = "authsync:user"
	MetaSession   = "authsync:session"
	MetaTimestamp = "authsync:timestamp"
)

// Payload is the wire/DOM artifact handed from the rendering side to the
// booting side. It is produced once per server render, is read-only, and
// is idempotently re-readable until a fresh page boot replaces it.
type Payload struct {
	User      *authstate.User    `json:"user"`
	Session   *authstate.Session `json:"session"`
	Timestamp int64              `json:"timestamp"`
	IslandID  string             `json:"islandId,omitempty"`
}

// New builds a payload for the given sanitized user/session, stamped at
// now.
func New(user *authstate.User, session *authstate.Session, now time.Time) Payload {
	return Payload{
		User:      user,
		Session:   session,
		Timestamp: now.UnixMilli(),
	}
}

// Time returns the payload timestamp as a time.Time.
func (p Payload) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}
