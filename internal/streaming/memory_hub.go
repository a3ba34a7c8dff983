package streaming

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultChannelBuffer = 64

// MemoryHub fans run events out to in-process subscribers over buffered
// channels. Publish never blocks: an event for a subscriber whose buffer is
// full is dropped and counted.
type MemoryHub struct {
	buffer int

	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	next    uint64
	dropped atomic.Uint64
}

type subscriber struct {
	ch     chan Event
	filter Filter
}

// NewMemoryHub creates a hub with the default per-subscriber buffer.
func NewMemoryHub() *MemoryHub {
	return NewMemoryHubSize(defaultChannelBuffer)
}

// NewMemoryHubSize creates a hub whose subscriptions buffer n events.
func NewMemoryHubSize(n int) *MemoryHub {
	if n < 1 {
		n = 1
	}
	return &MemoryHub{buffer: n, subs: make(map[uint64]*subscriber)}
}

func (h *MemoryHub) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers a filtered subscription. The cancel function removes it
// and closes the channel; calling it again is a no-op.
func (h *MemoryHub) Subscribe(ctx context.Context, filter Filter) (<-chan Event, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	sub := &subscriber{ch: make(chan Event, h.buffer), filter: filter}

	h.mu.Lock()
	h.next++
	id := h.next
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(sub.ch)
			h.mu.Unlock()
		})
	}, nil
}

// Len returns the number of active subscriptions.
func (h *MemoryHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// fell behind.
func (h *MemoryHub) Dropped() uint64 {
	return h.dropped.Load()
}

var _ Hub = (*MemoryHub)(nil)
