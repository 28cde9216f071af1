package wait

import (
	"context"
	"errors"
	"time"

	"github.com/vango-dev/authsync/pkg/env"
	"github.com/vango-dev/authsync/pkg/metrics"
	"github.com/vango-dev/authsync/pkg/payload"
)

// ErrTimeout is returned when no payload became readable before the
// deadline. It is distinct from absence: a caller that sees ErrTimeout
// knows the wait expired, not that the page rendered without a payload.
var ErrTimeout = errors.New("authsync: wait for payload timed out")

// DefaultPollInterval is the low-frequency poll used as the ready-signal
// fallback.
const DefaultPollInterval = 150 * time.Millisecond

// Option configures a single ForPayload call.
type Option func(*config)

type config struct {
	pollInterval time.Duration
	metrics      *metrics.Metrics
}

// WithPollInterval sets the poll frequency. Default: DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithMetrics records wait timeouts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// ForPayload blocks until the hydration payload is readable on doc, or
// until timeout elapses, whichever comes first. If the payload is already
// readable it returns immediately. The call is single-shot: the listener,
// poll ticker, and timer it creates are torn down before it returns.
//
// Returns ErrTimeout on deadline, ctx.Err() on cancellation.
func ForPayload(ctx context.Context, doc env.Document, timeout time.Duration, opts ...Option) (*payload.Payload, error) {
	cfg := config{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	if p := payload.Read(doc); p != nil {
		return p, nil
	}

	p, err := race(ctx,
		readySource(doc),
		pollSource(doc, cfg.pollInterval),
		timeoutSource(timeout),
	)
	if errors.Is(err, ErrTimeout) && cfg.metrics != nil {
		cfg.metrics.WaitTimeoutsTotal.Inc()
	}
	return p, err
}

// readySource settles when the document's ready signal fires with a
// decodable payload.
func readySource(doc env.Document) source {
	return func(ctx context.Context) (*payload.Payload, error) {
		fired := make(chan []byte, 1)
		cancel := doc.SubscribeReady(func(detail []byte) {
			select {
			case fired <- detail:
			default:
			}
		})
		defer cancel()

		for {
			select {
			case detail := <-fired:
				if p, ok := payload.Decode(detail); ok {
					return p, nil
				}
				// Malformed detail: the slot itself may still be fine.
				if p := payload.Read(doc); p != nil {
					return p, nil
				}
				// Keep waiting; the poll or the timer will settle.
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}

// pollSource settles when a periodic re-read of the document finds a
// payload.
func pollSource(doc env.Document, interval time.Duration) source {
	return func(ctx context.Context) (*payload.Payload, error) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if p := payload.Read(doc); p != nil {
					return p, nil
				}
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}

// timeoutSource settles with ErrTimeout after the deadline.
func timeoutSource(timeout time.Duration) source {
	return func(ctx context.Context) (*payload.Payload, error) {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-timer.C:
			return nil, ErrTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
