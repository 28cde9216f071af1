package broadcast

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/vango-dev/authsync/pkg/authstate"
)

// Channel publishes resolved auth snapshots to sibling contexts and
// delivers theirs. Implementations must be safe for concurrent use and
// must not deliver a context's own publications back to it.
type Channel interface {
	// Publish sends snap to every other context on the channel.
	Publish(ctx context.Context, snap authstate.Snapshot) error

	// OnReceive registers handler for snapshots published by other
	// contexts. The returned cancel removes the registration; calling
	// it more than once is a no-op.
	OnReceive(handler func(authstate.Snapshot)) (cancel func())

	// Close detaches from the channel. Publish and delivery stop.
	Close() error
}

// originID returns a random identifier distinguishing this context from
// its siblings on a shared medium.
func originID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("broadcast: rand: " + err.Error())
	}
	return hex.EncodeToString(b)
}
