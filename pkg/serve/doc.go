// Package serve provides the demo HTTP surface for authsync: an index
// page with the server-rendered hydration payload embedded both ways
// (global slot script and meta-tag fallback), the /sync websocket
// endpoint relaying snapshots between contexts, /healthz, and
// Prometheus metrics at /metrics.
//
// The page markup is deliberately minimal. Its job is to show the
// embedding contract: meta tags in head, island containers in body,
// and the slot script last so the ready event fires after the islands
// exist.
package serve
