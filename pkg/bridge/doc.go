// Package bridge implements the island registry, the per-island
// hydration bridge, and the state broadcaster.
//
// A Registry owns every island record on a page; it is the single source
// of truth for "does this island still exist" and the only component
// allowed to mutate a record. UI code holds a Bridge, created per island
// by Registry.NewBridge, exposing read/subscribe/force-hydrate/identify
// operations and nothing else.
//
// Hydration is strategy-gated. Immediate reads block until the resolver
// answers; lazy reads trigger hydration in the background and return the
// current snapshot; onVisible/onIdle islands hydrate only when an
// external trigger source calls TriggerHydration. However many callers
// ask concurrently, an island resolves at most once at a time: later
// requests join the in-flight attempt. A failed resolution is recorded in
// the island's state and leaves it pending so a later trigger retries.
//
// Every mutation fans out through the broadcaster: the island's own
// subscribers (each isolated against panics), sibling hydrated islands
// when cross-island sync is on, and the cross-context channel when
// cross-tab sync is on. Convergence across contexts is last-write-wins on
// LastUpdated.
package bridge
