package authstate

import "time"

// Snapshot is the cross-context form of a resolved state: what the
// broadcaster applies to sibling islands and publishes to other tabs.
// Timestamp is integer milliseconds since the epoch, matching the wire
// format of the hydration payload.
type Snapshot struct {
	User            *User    `json:"user"`
	Session         *Session `json:"session"`
	IsAuthenticated bool     `json:"isAuthenticated"`
	Timestamp       int64    `json:"timestamp"`
}

// SnapshotOf captures the broadcastable portion of st.
func SnapshotOf(st State) Snapshot {
	return Snapshot{
		User:            st.User,
		Session:         st.Session,
		IsAuthenticated: st.IsAuthenticated,
		Timestamp:       st.LastUpdated.UnixMilli(),
	}
}

// Time returns the snapshot timestamp as a time.Time.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// ApplySnapshot returns the Partial that installs s as an island's new
// resolved state. The full snapshot wins: user, session, and the
// authenticated flag are assigned directly, loading stops, and any stale
// error is cleared.
func ApplySnapshot(s Snapshot) Partial {
	return Partial{
		SetUser:         true,
		User:            s.User,
		SetSession:      true,
		Session:         s.Session,
		IsAuthenticated: Bool(s.IsAuthenticated),
		IsLoading:       Bool(false),
		SetErr:          true,
		Err:             nil,
	}
}
