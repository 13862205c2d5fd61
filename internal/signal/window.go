package signal

import "time"

// #region window

// Window is a fixed-capacity ring buffer holding the recent history for one
// source. Older samples are overwritten; nothing is ever persisted.
type Window[T Sample] struct {
	buf  []T
	head int // index of the oldest element
	size int
}

// NewWindow creates a window holding at most capacity samples.
// Capacity below 1 is treated as 1.
func NewWindow[T Sample](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[T]{buf: make([]T, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (w *Window[T]) Push(s T) {
	if w.size < len(w.buf) {
		w.buf[(w.head+w.size)%len(w.buf)] = s
		w.size++
		return
	}
	w.buf[w.head] = s
	w.head = (w.head + 1) % len(w.buf)
}

// Len returns the number of samples currently held.
func (w *Window[T]) Len() int { return w.size }

// Cap returns the window capacity.
func (w *Window[T]) Cap() int { return len(w.buf) }

// Samples returns the held samples oldest-first. The slice is a copy; the
// window's internal order is unaffected.
func (w *Window[T]) Samples() []T {
	out := make([]T, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// Latest returns the most recent sample, if any.
func (w *Window[T]) Latest() (T, bool) {
	var zero T
	if w.size == 0 {
		return zero, false
	}
	return w.buf[(w.head+w.size-1)%len(w.buf)], true
}

// CountSince counts samples at or after t, scanning newest-first so cost is
// proportional to the trailing span, bounded by the window capacity.
func (w *Window[T]) CountSince(t time.Time) int {
	n := 0
	for i := w.size - 1; i >= 0; i-- {
		if w.buf[(w.head+i)%len(w.buf)].At().Before(t) {
			break
		}
		n++
	}
	return n
}

// #endregion window
