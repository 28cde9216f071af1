package bridge

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/authsync/pkg/authstate"
)

var settled = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// beginHydrationLocked starts hydration for isl if none is running and
// returns a channel closed when the attempt settles. A hydrating island
// returns its in-flight channel (the caller joins the running attempt); a
// hydrated or destroyed island returns an already-closed channel.
// Callers hold r.mu.
func (r *Registry) beginHydrationLocked(isl *island) <-chan struct{} {
	switch isl.status {
	case statusHydrating:
		return isl.inFlight
	case statusHydrated, statusDestroyed:
		return settled
	}

	done := make(chan struct{})
	isl.status = statusHydrating
	isl.inFlight = done
	go r.runHydration(isl.id, isl.strategy, done)
	return done
}

// runHydration performs one resolution for the island. Not cancellable
// once started: joiners wait on done rather than racing their own
// contexts against the resolver.
func (r *Registry) runHydration(id string, strategy Strategy, done chan struct{}) {
	defer close(done)

	r.notify(id, authstate.Partial{IsLoading: authstate.Bool(true)}, scopeLocal)

	ctx, span := r.tracer.Start(context.Background(), "authsync.hydrate",
		trace.WithAttributes(
			attribute.String("island.id", id),
			attribute.String("island.strategy", string(strategy)),
		))
	defer span.End()

	start := time.Now()
	res, err := r.resolver.ResolveCurrentAuthState(ctx)
	r.metrics.HydrationDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())

	if err != nil {
		r.mu.Lock()
		isl, ok := r.islands[id]
		if !ok || isl.status == statusDestroyed {
			// Torn down while awaiting the resolver; drop the result.
			r.mu.Unlock()
			return
		}
		// Back to pending: a later trigger retries. The failure lives
		// in the island's state, never in a raised error.
		isl.status = statusPending
		isl.inFlight = nil
		r.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		r.metrics.HydrationsTotal.WithLabelValues(string(strategy), "error").Inc()
		r.logger.Error("hydration failed", "island", id, "error", err)

		r.notify(id, authstate.Partial{
			IsLoading: authstate.Bool(false),
			SetErr:    true,
			Err:       err,
		}, scopeLocal)
		return
	}

	// The status flip and the resolved state must land in one critical
	// section: a reader that observes statusHydrated and skips the wait
	// must also observe the resolved state.
	live := r.notifyApply(id, authstate.Partial{
		SetUser:         true,
		User:            res.User,
		SetSession:      true,
		Session:         res.Session,
		IsAuthenticated: authstate.Bool(res.IsAuthenticated),
		IsLoading:       authstate.Bool(res.IsLoading),
		SetErr:          true,
		Err:             res.Err,
	}, scopePropagate, func(isl *island) {
		isl.status = statusHydrated
		isl.hydrated = true
		isl.inFlight = nil
	})
	if !live {
		// Torn down while awaiting the resolver; drop the result.
		return
	}

	r.metrics.HydrationsTotal.WithLabelValues(string(strategy), "ok").Inc()
}
