// Package bus provides subscriber-channel fan-out for engine events.
// Channels are buffered and events are dropped rather than ever blocking the
// publishing goroutine.
package bus

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// #region bus

// Bus fans values out to subscriber channels.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	buffer  int
	closed  bool
	emitted atomic.Uint64
	dropped atomic.Uint64
}

// New creates a bus whose subscriber channels hold up to buffer values.
func New[T any](buffer int) *Bus[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus[T]{buffer: buffer}
}

// Subscribe returns a channel receiving every published value until the bus
// closes or the subscriber falls behind its buffer.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus[T]) Unsubscribe(ch <-chan T) {
	if ch == nil {
		return
	}
	target := reflect.ValueOf(ch).Pointer()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if reflect.ValueOf(sub).Pointer() == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish delivers v to every subscriber without blocking; a full subscriber
// drops the value.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.emitted.Add(1)
	for _, sub := range b.subs {
		select {
		case sub <- v:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Publishing after Close is a no-op.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// Stats returns publish/drop counters.
func (b *Bus[T]) Stats() (emitted, dropped uint64) {
	return b.emitted.Load(), b.dropped.Load()
}

// #endregion bus
