// Package broadcast provides the cross-context channel that carries
// resolved auth snapshots between tabs/processes of the same deployment.
//
// The subsystem is agnostic to the transport: Channel is satisfied by an
// in-process bus (MemoryBus, the BroadcastChannel equivalent), a
// websocket relay (Hub + DialWS), and a blob-store polling fallback
// (BlobChannel) for hosts with only key/value storage. Publishing never
// echoes back to the publisher; delivery between contexts is best-effort
// and unordered, with convergence left to last-write-wins on the snapshot
// timestamps.
package broadcast
