// Package window defines the generic window-buffering abstraction: a
// timestamp-keyed buffer of not-yet-emitted records, a read-only watermark
// view, and the policy interface deciding when buffered records become an
// emitted window.
package window

import (
	"weir/weir"
)

// Buffer is a timestamp-keyed store of pending records. Insertion order is
// preserved within a timestamp and repeated stores append. A buffer has a
// single logical owner and no internal synchronization.
type Buffer[T weir.Time[T], D any] interface {
	// Timestamps returns the distinct buffered timestamps, unordered.
	Timestamps() []T
	// Store appends data under t, creating the entry when absent.
	Store(t T, data []D)
	// Remove detaches and returns the whole entry for t. A present
	// timestamp always maps to at least one datum; removal never leaves an
	// empty entry behind.
	Remove(t T) ([]D, bool)
}

// MapBuffer is the default map-backed Buffer.
type MapBuffer[T weir.Time[T], D any] map[T][]D

func NewMapBuffer[T weir.Time[T], D any]() MapBuffer[T, D] {
	return MapBuffer[T, D]{}
}

func (b MapBuffer[T, D]) Timestamps() []T {
	times := make([]T, 0, len(b))
	for t := range b {
		times = append(times, t)
	}
	return times
}

func (b MapBuffer[T, D]) Store(t T, data []D) {
	if len(data) == 0 {
		return
	}
	b[t] = append(b[t], data...)
}

func (b MapBuffer[T, D]) Remove(t T) ([]D, bool) {
	data, ok := b[t]
	if ok {
		delete(b, t)
	}
	return data, ok
}
