package bridge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/authsync/pkg/authstate"
)

type scope int

const (
	// scopeLocal notifies only the island's own subscribers. Used for
	// transitional mutations (loading started, resolution failed).
	scopeLocal scope = iota

	// scopePropagate additionally fans the resolved snapshot out to
	// sibling hydrated islands and, when enabled, the cross-context
	// channel.
	scopePropagate
)

// Notify merges partial into the island's state and broadcasts the
// result. Exposed for UI code that mutates auth state directly (sign-out
// buttons and the like); hydration uses the same path internally.
func (r *Registry) Notify(islandID string, partial authstate.Partial) {
	r.notify(islandID, partial, scopePropagate)
}

// fanout is one island's notification batch: the state it settled on and
// a defensive copy of its subscriber set. The copy means a subscriber
// that mutates subscriptions mid-notify cannot corrupt iteration.
type fanout struct {
	islandID string
	state    authstate.State
	fns      []func(authstate.State)
}

func (r *Registry) notify(id string, p authstate.Partial, sc scope) {
	r.notifyApply(id, p, sc, nil)
}

// notifyApply merges partial into the island's state and fans the result
// out. pre, when non-nil, runs on the island inside the same critical
// section as the merge: status transitions and the state they produce
// become visible to readers atomically. Reports whether the island was
// still live.
func (r *Registry) notifyApply(id string, p authstate.Partial, sc scope, pre func(*island)) bool {
	_, span := r.tracer.Start(context.Background(), "authsync.broadcast",
		trace.WithAttributes(
			attribute.String("island.id", id),
			attribute.Bool("broadcast.propagate", sc == scopePropagate),
		))
	defer span.End()

	now := r.caps.Clock.Now()

	r.mu.Lock()
	isl, ok := r.islands[id]
	if !ok || isl.status == statusDestroyed {
		r.mu.Unlock()
		return false
	}
	if pre != nil {
		pre(isl)
	}

	isl.state = authstate.Merge(isl.state, p, now)
	local := fanout{islandID: id, state: isl.state, fns: subscriberSnapshot(isl)}
	snap := authstate.SnapshotOf(isl.state)

	var siblings []fanout
	if sc == scopePropagate && isl.crossIsland {
		// Siblings absorb the resolved full snapshot, not the partial,
		// each re-stamped on its own LastUpdated.
		apply := authstate.ApplySnapshot(snap)
		for otherID, other := range r.islands {
			if other == isl || !other.hydrated || other.status == statusDestroyed {
				continue
			}
			other.state = authstate.Merge(other.state, apply, now)
			siblings = append(siblings, fanout{
				islandID: otherID,
				state:    other.state,
				fns:      subscriberSnapshot(other),
			})
		}
	}
	publish := sc == scopePropagate && isl.crossTab && r.channel != nil
	r.mu.Unlock()

	r.invoke(local)
	r.metrics.BroadcastsTotal.WithLabelValues("local").Inc()

	for _, f := range siblings {
		r.invoke(f)
	}
	if len(siblings) > 0 {
		r.metrics.BroadcastsTotal.WithLabelValues("island").Add(float64(len(siblings)))
	}

	if publish {
		if err := r.channel.Publish(context.Background(), snap); err != nil {
			r.logger.Error("cross-tab publish failed", "island", id, "error", err)
		} else {
			r.metrics.BroadcastsTotal.WithLabelValues("tab").Inc()
		}
	}
	return true
}

// applyRemote re-enters the local notify path for a snapshot published
// by another context. There is no republish: convergence is symmetric
// without echo loops.
func (r *Registry) applyRemote(snap authstate.Snapshot) {
	// A sibling context's clock may run ahead; never stamp an island
	// behind the snapshot it just absorbed.
	now := r.caps.Clock.Now()
	if st := snap.Time(); st.After(now) {
		now = st
	}
	apply := authstate.ApplySnapshot(snap)

	r.mu.Lock()
	var targets []fanout
	for id, isl := range r.islands {
		if !isl.crossTab || isl.status == statusDestroyed {
			continue
		}
		isl.state = authstate.Merge(isl.state, apply, now)
		targets = append(targets, fanout{
			islandID: id,
			state:    isl.state,
			fns:      subscriberSnapshot(isl),
		})
	}
	r.mu.Unlock()

	for _, f := range targets {
		r.invoke(f)
	}
	if len(targets) > 0 {
		r.metrics.BroadcastsTotal.WithLabelValues("local").Add(float64(len(targets)))
	}
}

func subscriberSnapshot(isl *island) []func(authstate.State) {
	fns := make([]func(authstate.State), 0, len(isl.subscribers))
	for _, fn := range isl.subscribers {
		fns = append(fns, fn)
	}
	return fns
}

// invoke delivers one island's notification with per-callback panic
// isolation: a panicking subscriber is logged and counted, the mutation
// stays committed, and every other subscriber is still notified.
func (r *Registry) invoke(f fanout) {
	for _, fn := range f.fns {
		func() {
			defer func() {
				if v := recover(); v != nil {
					r.metrics.SubscriberPanicsTotal.Inc()
					r.logger.Error("subscriber panicked",
						"island", f.islandID, "panic", v)
				}
			}()
			fn(f.state)
		}()
	}
}
