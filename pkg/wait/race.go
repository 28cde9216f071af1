package wait

import (
	"context"

	"github.com/vango-dev/authsync/pkg/payload"
)

// source is one contestant in a race: it blocks until it settles with a
// result or its context is canceled. A source must not settle spuriously;
// it either produces a payload, a real failure, or its context's error.
type source func(ctx context.Context) (*payload.Payload, error)

type outcome struct {
	p   *payload.Payload
	err error
}

// race runs every source and returns the first settled outcome. The
// remaining sources are canceled and their results discarded.
func race(ctx context.Context, sources ...source) (*payload.Payload, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so losers never block on send after the winner returns.
	results := make(chan outcome, len(sources))
	for _, src := range sources {
		src := src
		go func() {
			p, err := src(raceCtx)
			results <- outcome{p: p, err: err}
		}()
	}

	first := <-results
	return first.p, first.err
}
