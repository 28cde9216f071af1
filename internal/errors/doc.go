// Package errors provides structured, coded errors for authsync's
// operator-facing boundaries: the CLI, server startup, and channel
// setup.
//
// # Error Categories
//
// Errors are organized into categories:
//   - hydration: island hydration and registry errors
//   - decode: embedded payload decode errors
//   - channel: cross-context channel errors (websocket, blob store)
//   - timeout: bounded-wait expiry
//   - config: authsync.json and environment configuration errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "A040") that maps to a short
// message and a detailed explanation.
//
// # Usage
//
//	err := errors.New("A081").
//	    WithSuggestion(`set "channel" to memory, websocket, or blob`)
//	errors.PrintError(err)
//
// Note that hydration failures inside an island never surface through
// this package at runtime: they are recorded in the island's auth
// state and delivered to subscribers as data.
package errors
