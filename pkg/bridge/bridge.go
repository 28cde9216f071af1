package bridge

import (
	"context"
	"sync"

	"github.com/vango-dev/authsync/pkg/authstate"
)

// Options configure one island's bridge.
type Options struct {
	// Strategy gates when hydration runs. Default: StrategyImmediate.
	Strategy Strategy

	// InitialUser/InitialSession are pre-known from the same render
	// pass. When both are present the island starts authenticated and
	// not loading.
	InitialUser    *authstate.User
	InitialSession *authstate.Session

	// CrossIslandSync propagates this island's resolved mutations to
	// every other hydrated island in the registry.
	CrossIslandSync bool

	// CrossTabSync additionally publishes resolved mutations on the
	// registry's cross-context channel.
	CrossTabSync bool
}

// Bridge is the per-island façade handed to UI code. It holds only the
// island id and registry accessors; the registry owns the record.
type Bridge struct {
	id  string
	reg *Registry
}

// NewBridge creates a fresh island record and returns its bridge.
func (r *Registry) NewBridge(opts Options) *Bridge {
	if opts.Strategy == "" {
		opts.Strategy = StrategyImmediate
	}

	id := r.newID()
	isl := &island{
		id:          id,
		strategy:    opts.Strategy,
		state:       authstate.FromServerData(opts.InitialUser, opts.InitialSession),
		subscribers: make(map[int]func(authstate.State)),
		status:      statusPending,
		crossIsland: opts.CrossIslandSync,
		crossTab:    opts.CrossTabSync,
	}
	isl.state.LastUpdated = r.caps.Clock.Now()

	r.mu.Lock()
	if r.closed {
		// Registry already torn down: the bridge is valid but inert.
		isl.status = statusDestroyed
		r.mu.Unlock()
		return &Bridge{id: id, reg: r}
	}
	r.islands[id] = isl
	r.mu.Unlock()

	r.metrics.ActiveIslands.Inc()
	return &Bridge{id: id, reg: r}
}

// ID returns the island identifier.
func (b *Bridge) ID() string { return b.id }

// GetAuthState returns the island's auth snapshot according to its
// strategy. Immediate islands that have not hydrated block until the
// resolver answers (or ctx is canceled); lazy islands trigger hydration
// in the background and return the current snapshot; onVisible/onIdle
// islands never hydrate from a read. Resolution failures are expressed
// in State.Err, not as a returned error; the only returned error is
// ctx.Err().
func (b *Bridge) GetAuthState(ctx context.Context) (authstate.State, error) {
	r := b.reg
	r.mu.Lock()
	isl, ok := r.islands[b.id]
	if !ok {
		r.mu.Unlock()
		return authstate.State{}, nil
	}

	switch isl.strategy {
	case StrategyImmediate:
		if isl.status == statusPending || isl.status == statusHydrating {
			done := r.beginHydrationLocked(isl)
			r.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return b.current(), ctx.Err()
			}
			return b.current(), nil
		}
	case StrategyLazy:
		if isl.status == statusPending {
			r.beginHydrationLocked(isl)
		}
	}

	st := isl.state
	r.mu.Unlock()
	return st, nil
}

// Subscribe registers cb for every subsequent state notification on this
// island. For immediate and lazy strategies a pending island begins
// hydrating; cb observes the result when it settles. The returned
// unsubscribe removes cb by identity; calling it more than once, or
// after the island was destroyed, is a no-op.
func (b *Bridge) Subscribe(cb func(authstate.State)) (unsubscribe func()) {
	r := b.reg
	r.mu.Lock()
	isl, ok := r.islands[b.id]
	if !ok {
		r.mu.Unlock()
		return func() {}
	}

	subID := isl.nextSub
	isl.nextSub++
	isl.subscribers[subID] = cb

	if isl.status == statusPending &&
		(isl.strategy == StrategyImmediate || isl.strategy == StrategyLazy) {
		r.beginHydrationLocked(isl)
	}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			if cur, ok := r.islands[b.id]; ok && cur.subscribers != nil {
				delete(cur.subscribers, subID)
			}
			r.mu.Unlock()
		})
	}
}

// HydrateWithServerData installs user/session already known as server
// truth, without consulting the resolver. The island becomes hydrated and
// the result fans out like any resolved mutation. An in-flight
// resolution, if any, still completes and applies over this — last write
// wins.
func (b *Bridge) HydrateWithServerData(user *authstate.User, session *authstate.Session) {
	r := b.reg
	r.mu.Lock()
	isl, ok := r.islands[b.id]
	if !ok {
		r.mu.Unlock()
		return
	}
	if isl.status != statusHydrating {
		isl.status = statusHydrated
	}
	isl.hydrated = true
	r.mu.Unlock()

	r.notify(b.id, authstate.Partial{
		SetUser:         true,
		User:            user,
		SetSession:      true,
		Session:         session,
		IsAuthenticated: authstate.Bool(user != nil && session != nil),
		IsLoading:       authstate.Bool(false),
		SetErr:          true,
		Err:             nil,
	}, scopePropagate)
}

// TriggerHydration begins hydration for this island regardless of
// strategy. Trigger sources (visibility, idle) call this; it carries no
// payload beyond the island identity, is idempotent, and joins any
// in-flight attempt instead of starting a second one.
func (b *Bridge) TriggerHydration() {
	r := b.reg
	r.mu.Lock()
	if isl, ok := r.islands[b.id]; ok {
		r.beginHydrationLocked(isl)
	}
	r.mu.Unlock()
}

// Destroy removes the island from the registry on host-signaled
// teardown. Removal happens exactly once; every later operation on this
// bridge is inert.
func (b *Bridge) Destroy() {
	b.reg.destroy(b.id)
}

func (b *Bridge) current() authstate.State {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()
	if isl, ok := b.reg.islands[b.id]; ok {
		return isl.state
	}
	return authstate.State{}
}
