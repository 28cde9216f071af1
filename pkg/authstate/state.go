package authstate

import "time"

// User is the sanitized authenticated principal exposed to islands.
// Only fields safe for page embedding are present; tokens and raw
// provider records never appear here.
type User struct {
	ID       string    `json:"id"`
	Email    string    `json:"email,omitempty"`
	Name     string    `json:"name,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
	Created  time.Time `json:"createdAt"`
}

// Session is the sanitized session record paired with a User.
// Date fields round-trip through the wire as RFC 3339 strings.
type Session struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId,omitempty"`
	Status  string    `json:"status,omitempty"`
	Created time.Time `json:"createdAt"`
	Expires time.Time `json:"expireAt"`
}

// State is one island's view of the current authentication.
type State struct {
	// User is the signed-in principal, nil when unknown or signed out.
	User *User

	// Session is the active session, nil when unknown or signed out.
	Session *Session

	// IsLoading reports an in-flight hydration. A stale Err may coexist
	// with a fresh loading attempt.
	IsLoading bool

	// IsAuthenticated is user != nil && session != nil on default
	// mutation paths; the server-hydration path may set it directly.
	IsAuthenticated bool

	// Err is the most recent resolution failure, nil when none.
	Err error

	// LastUpdated is non-decreasing across any sequence of mutations
	// within one island.
	LastUpdated time.Time
}

// Empty returns the initial state for an island with no pre-known data.
func Empty() State {
	return State{}
}

// FromServerData returns the initial state for an island constructed with
// user/session already known from the same render pass. When both are
// present the island starts authenticated and not loading.
func FromServerData(user *User, session *Session) State {
	return State{
		User:            user,
		Session:         session,
		IsAuthenticated: user != nil && session != nil,
	}
}

// Partial is a partial state mutation applied by Merge. Nil pointer fields
// leave the current value untouched. SetUser, SetSession, and SetErr
// distinguish "assign nil" from "leave alone".
type Partial struct {
	SetUser bool
	User    *User

	SetSession bool
	Session    *Session

	IsLoading *bool

	// IsAuthenticated, when non-nil, is assigned directly instead of
	// being recomputed from user/session presence.
	IsAuthenticated *bool

	SetErr bool
	Err    error
}

// Bool returns a pointer to b, for Partial literals.
func Bool(b bool) *bool { return &b }

// Merge applies p to cur and returns the next state, stamped at now.
// LastUpdated never goes backwards: a now earlier than cur.LastUpdated
// keeps the existing stamp.
func Merge(cur State, p Partial, now time.Time) State {
	next := cur
	if p.SetUser {
		next.User = p.User
	}
	if p.SetSession {
		next.Session = p.Session
	}
	if p.IsLoading != nil {
		next.IsLoading = *p.IsLoading
	}
	if p.SetErr {
		next.Err = p.Err
	}
	switch {
	case p.IsAuthenticated != nil:
		next.IsAuthenticated = *p.IsAuthenticated
	case p.SetUser || p.SetSession:
		next.IsAuthenticated = next.User != nil && next.Session != nil
	}
	next.LastUpdated = stampAfter(cur.LastUpdated, now)
	return next
}

func stampAfter(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
