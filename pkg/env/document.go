package env

import "sync"

// MemoryDocument is an in-memory Document for non-browser hosts and
// tests. The write half (AssignGlobalSlot, SetMeta) stands in for the
// codec's encode path; AssignGlobalSlot dispatches the ready signal to
// subscribers exactly as the page embedding would.
type MemoryDocument struct {
	mu      sync.Mutex
	slot    []byte
	hasSlot bool
	meta    map[string]string
	subs    map[int]func([]byte)
	nextSub int
}

// NewMemoryDocument returns an empty document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		meta: make(map[string]string),
		subs: make(map[int]func([]byte)),
	}
}

// GlobalSlot returns the current slot contents.
func (d *MemoryDocument) GlobalSlot() ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasSlot {
		return nil, false
	}
	raw := make([]byte, len(d.slot))
	copy(raw, d.slot)
	return raw, true
}

// MetaContent returns the content of the named meta tag.
func (d *MemoryDocument) MetaContent(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	content, ok := d.meta[name]
	return content, ok
}

// SubscribeReady registers fn for the ready signal.
func (d *MemoryDocument) SubscribeReady(fn func(detail []byte)) func() {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
		})
	}
}

// AssignGlobalSlot stores raw in the global slot and fires the ready
// signal once, carrying raw as the detail.
func (d *MemoryDocument) AssignGlobalSlot(raw []byte) {
	d.mu.Lock()
	d.slot = make([]byte, len(raw))
	copy(d.slot, raw)
	d.hasSlot = true

	// Snapshot subscribers so a handler subscribing or canceling during
	// dispatch cannot corrupt iteration.
	fns := make([]func([]byte), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	detail := make([]byte, len(raw))
	copy(detail, raw)
	d.mu.Unlock()

	for _, fn := range fns {
		fn(detail)
	}
}

// SetMeta sets the content of the named meta tag.
func (d *MemoryDocument) SetMeta(name, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meta[name] = content
}

// ClearGlobalSlot empties the slot, simulating a host that stripped the
// inline script.
func (d *MemoryDocument) ClearGlobalSlot() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slot = nil
	d.hasSlot = false
}
