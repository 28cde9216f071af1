// Package payload implements the hydration payload codec: the server →
// client handoff of the auth snapshot.
//
// The encode path produces two equivalent embeddings: a single JSON blob
// assigned to the well-known global slot (followed by a single-fire ready
// event), and a percent-encoded meta-tag trio used as a fallback when the
// global slot is unavailable or was stripped.
//
// The decode path (Read) tries the global slot first, then the meta trio.
// Malformed embeddings are swallowed and treated as absence; absence is a
// valid, meaningful state (unauthenticated/unknown), never an error.
package payload
