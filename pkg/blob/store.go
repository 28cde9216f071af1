// Package blob defines the opaque key/value blob store the host
// environment exposes. The subsystem never assumes exclusive access to a
// store: other contexts (tabs, processes) may change any key at any time.
package blob

import "context"

// Store is an opaque blob store. Implementations must be safe for
// concurrent use and must tolerate concurrent writers.
type Store interface {
	// Save persists data under key, overwriting any existing value.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves the value for key.
	// Returns (nil, nil) when the key doesn't exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrStoreClosed is returned when operations are attempted on a closed
// store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "blob store is closed"
}
