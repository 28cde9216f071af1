// Package authstate defines the canonical auth snapshot shared by every
// island on a page.
//
// State is the per-island view of "who is signed in". Mutations go through
// Merge, which stamps a non-decreasing LastUpdated and recomputes
// IsAuthenticated from user/session presence unless the mutation supplies
// the flag directly (the server-hydration path is allowed to do that).
//
// Snapshot is the cross-context form of a resolved State: the value that is
// broadcast to sibling islands and published to other tabs. Timestamps on
// Snapshot are integer milliseconds because it travels on the wire.
package authstate
