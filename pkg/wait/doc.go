// Package wait provides the bounded wait primitive for the hydration
// payload: block until the payload is readable, racing the document's
// ready signal against a low-frequency poll, under a timeout.
//
// The poll guards against the ready signal having been dispatched before
// the listener was attached. Whichever source settles first cancels the
// others. Each call owns its own listener, ticker, and timer, so
// independent concurrent callers never interfere.
package wait
