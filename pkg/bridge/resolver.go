package bridge

import (
	"context"

	"github.com/vango-dev/authsync/pkg/authstate"
)

// Resolver is the identity/session collaborator: the single async
// operation hydration consults. Any returned error means "resolution
// failed"; it is captured into the island's state, never propagated past
// the bridge.
type Resolver interface {
	ResolveCurrentAuthState(ctx context.Context) (Resolution, error)
}

// Resolution is the resolver's answer.
type Resolution struct {
	User    *authstate.User
	Session *authstate.Session

	// IsAuthenticated is server truth and is applied directly, even
	// when it could be recomputed from User/Session presence.
	IsAuthenticated bool

	// IsLoading is carried through for providers that report a still-
	// settling state; normally false.
	IsLoading bool

	// Err is a provider-reported soft error accompanying otherwise
	// usable data.
	Err error
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(ctx context.Context) (Resolution, error)

// ResolveCurrentAuthState calls f.
func (f ResolverFunc) ResolveCurrentAuthState(ctx context.Context) (Resolution, error) {
	return f(ctx)
}
