package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/blob"
)

// DefaultBlobPollInterval is how often BlobChannel re-reads its key.
const DefaultBlobPollInterval = 500 * time.Millisecond

// envelope is the blob-store representation of one publication. Origin
// lets a context skip its own writes; Seq orders publications from
// concurrent writers (last write wins on the shared key).
type envelope struct {
	Origin   string             `json:"origin"`
	Seq      int64              `json:"seq"`
	Snapshot authstate.Snapshot `json:"snapshot"`
}

// BlobChannel is the storage-event fallback Channel: publications go
// through a shared blob-store key that every context polls. It tolerates
// concurrent writers; an overwritten publication is simply lost, which is
// acceptable under the last-write-wins convergence model.
type BlobChannel struct {
	store  blob.Store
	key    string
	origin string
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[int]func(authstate.Snapshot)
	nextSub  int
	lastSeq  int64
	closed   bool

	done chan struct{}
}

// BlobChannelOption configures a BlobChannel.
type BlobChannelOption func(*blobChannelConfig)

type blobChannelConfig struct {
	pollInterval time.Duration
	logger       *slog.Logger
}

// WithBlobPollInterval sets the poll frequency.
// Default: DefaultBlobPollInterval.
func WithBlobPollInterval(d time.Duration) BlobChannelOption {
	return func(c *blobChannelConfig) {
		c.pollInterval = d
	}
}

// WithBlobLogger sets the channel's logger. Default: slog.Default().
func WithBlobLogger(logger *slog.Logger) BlobChannelOption {
	return func(c *blobChannelConfig) {
		c.logger = logger
	}
}

// NewBlobChannel creates a channel over store at key and starts polling.
func NewBlobChannel(store blob.Store, key string, opts ...BlobChannelOption) *BlobChannel {
	cfg := blobChannelConfig{
		pollInterval: DefaultBlobPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &BlobChannel{
		store:    store,
		key:      key,
		origin:   originID(),
		logger:   cfg.logger,
		handlers: make(map[int]func(authstate.Snapshot)),
		done:     make(chan struct{}),
	}
	go c.pollLoop(cfg.pollInterval)
	return c
}

// Publish writes snap to the shared key.
func (c *BlobChannel) Publish(ctx context.Context, snap authstate.Snapshot) error {
	seq := time.Now().UnixNano()
	raw, err := json.Marshal(envelope{
		Origin:   c.origin,
		Seq:      seq,
		Snapshot: snap,
	})
	if err != nil {
		return fmt.Errorf("broadcast: encode envelope: %w", err)
	}

	if err := c.store.Save(ctx, c.key, raw); err != nil {
		return fmt.Errorf("broadcast: publish: %w", err)
	}

	// Our own write advances lastSeq so the poll never redelivers it.
	// Only after the save lands: a failed publish must not make the poll
	// skip sibling publications carrying earlier sequence numbers.
	c.mu.Lock()
	if seq > c.lastSeq {
		c.lastSeq = seq
	}
	c.mu.Unlock()
	return nil
}

// OnReceive registers handler for publications from other contexts.
func (c *BlobChannel) OnReceive(handler func(authstate.Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.handlers[id] = handler
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.handlers, id)
			c.mu.Unlock()
		})
	}
}

// Close stops polling. The blob store itself stays open; it is owned by
// the caller.
func (c *BlobChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	return nil
}

func (c *BlobChannel) pollLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.poll()
		case <-c.done:
			return
		}
	}
}

func (c *BlobChannel) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Warn("blob channel poll failed", "key", c.key, "error", err)
		return
	}
	if raw == nil {
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("blob channel dropping malformed envelope", "error", err)
		return
	}

	c.mu.Lock()
	if env.Origin == c.origin || env.Seq <= c.lastSeq {
		c.mu.Unlock()
		return
	}
	c.lastSeq = env.Seq
	fns := make([]func(authstate.Snapshot), 0, len(c.handlers))
	for _, fn := range c.handlers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(env.Snapshot)
	}
}
