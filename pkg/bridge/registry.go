package bridge

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/broadcast"
	"github.com/vango-dev/authsync/pkg/env"
	"github.com/vango-dev/authsync/pkg/metrics"
)

// Strategy governs when an island hydrates.
type Strategy string

const (
	// StrategyImmediate hydrates on the first read or subscription; the
	// reader blocks until the resolver answers.
	StrategyImmediate Strategy = "immediate"

	// StrategyLazy hydrates on the first read or subscription without
	// blocking; the read returns the current (possibly stale) snapshot.
	StrategyLazy Strategy = "lazy"

	// StrategyOnVisible hydrates only when a visibility trigger fires.
	StrategyOnVisible Strategy = "onVisible"

	// StrategyOnIdle hydrates only when an idle trigger fires.
	StrategyOnIdle Strategy = "onIdle"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyImmediate, StrategyLazy, StrategyOnVisible, StrategyOnIdle:
		return true
	}
	return false
}

type status int

const (
	statusPending status = iota
	statusHydrating
	statusHydrated
	statusDestroyed
)

// island is the registry-owned record for one mounted fragment. Only the
// registry mutates it, always under the registry mutex.
type island struct {
	id       string
	strategy Strategy

	state       authstate.State
	subscribers map[int]func(authstate.State)
	nextSub     int

	hydrated bool
	status   status

	// inFlight is closed when the current hydration settles; nil when
	// none is running. Joiners wait on it instead of starting a second
	// resolution.
	inFlight chan struct{}

	crossIsland bool
	crossTab    bool
}

// Registry owns every island on a page load. It is injectable rather
// than a module-level singleton so tests construct isolated registries
// per case.
type Registry struct {
	mu      sync.Mutex
	islands map[string]*island
	closed  bool

	caps     env.Capabilities
	resolver Resolver
	channel  broadcast.Channel
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	channelCancel func()
	seq           uint64
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCapabilities injects the host capability object. Unset fields are
// filled with defaults (system clock, empty in-memory document).
func WithCapabilities(caps env.Capabilities) RegistryOption {
	return func(r *Registry) {
		r.caps = caps
	}
}

// WithChannel attaches the cross-context channel used for cross-tab
// sync. Snapshots received on it re-enter the local notify path.
func WithChannel(ch broadcast.Channel) RegistryOption {
	return func(r *Registry) {
		r.channel = ch
	}
}

// WithLogger sets the registry's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics sets the instruments to record on. Default:
// metrics.Default().
func WithMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates an empty registry resolving through resolver.
func NewRegistry(resolver Resolver, opts ...RegistryOption) *Registry {
	r := &Registry{
		islands:  make(map[string]*island),
		resolver: resolver,
		logger:   slog.Default(),
		tracer:   otel.Tracer("authsync"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.caps = r.caps.WithDefaults()
	if r.metrics == nil {
		r.metrics = metrics.Default()
	}
	if r.channel != nil {
		r.channelCancel = r.channel.OnReceive(r.applyRemote)
	}
	return r
}

// Capabilities returns the host capability object the registry was built
// with.
func (r *Registry) Capabilities() env.Capabilities {
	return r.caps
}

// Len reports the number of live islands.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.islands)
}

// Close is the host teardown hook (page/tab unload): every island is
// destroyed and the channel subscription is dropped. Further operations
// on any bridge of this registry are inert.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	n := len(r.islands)
	for _, isl := range r.islands {
		isl.status = statusDestroyed
		isl.subscribers = nil
	}
	r.islands = make(map[string]*island)
	cancel := r.channelCancel
	r.channelCancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.metrics.ActiveIslands.Sub(float64(n))
	return nil
}

// destroy removes one island. Called from Bridge.Destroy on component
// teardown; removal happens exactly once.
func (r *Registry) destroy(id string) {
	r.mu.Lock()
	isl, ok := r.islands[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	isl.status = statusDestroyed
	isl.subscribers = nil
	delete(r.islands, id)
	r.mu.Unlock()

	r.metrics.ActiveIslands.Dec()
}

// newID generates a fresh island id, never reused while the registry
// entry lives. The random suffix keeps ids distinct across contexts.
func (r *Registry) newID() string {
	n := atomic.AddUint64(&r.seq, 1)
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic("bridge: rand: " + err.Error())
	}
	return fmt.Sprintf("island-%d-%s", n, hex.EncodeToString(b))
}
