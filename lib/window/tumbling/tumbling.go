// Package tumbling implements fixed-size, non-overlapping windows over a
// logical time axis. Boundaries tile the axis at multiples of the size;
// each boundary closes once the watermark has fully passed it and is never
// revisited.
package tumbling

import (
	"fmt"
	"sort"

	"weir/lib/window"
	"weir/weir"
)

type Tumbling[T weir.Time[T], D any] struct {
	size   weir.Summary[T]
	buffer window.Buffer[T, D]

	// emitTime is the next boundary to close; unset until the first record
	// arrives or an initial time is given.
	emitTime T
	armed    bool

	// maxTime is the greatest timestamp observed, for the data-driven
	// readiness fallback on hosts without frontier tracking.
	maxTime   T
	seenMax   bool
	dataReady bool
}

type Option[T weir.Time[T], D any] func(*Tumbling[T, D])

// WithInitialTime arms the first boundary from t instead of waiting for the
// first record.
func WithInitialTime[T weir.Time[T], D any](t T) Option[T, D] {
	return func(w *Tumbling[T, D]) {
		w.arm(t)
	}
}

// WithBuffer substitutes the backing store.
func WithBuffer[T weir.Time[T], D any](b window.Buffer[T, D]) Option[T, D] {
	return func(w *Tumbling[T, D]) {
		w.buffer = b
	}
}

// WithDataReadiness enables the fallback readiness test for hosts without
// frontier tracking: when TryEmit is called with a nil watermark, a
// boundary is ready once the greatest observed timestamp strictly exceeds
// it. A non-nil watermark stays authoritative.
func WithDataReadiness[T weir.Time[T], D any]() Option[T, D] {
	return func(w *Tumbling[T, D]) {
		w.dataReady = true
	}
}

func New[T weir.Time[T], D any](size weir.Summary[T], options ...Option[T, D]) *Tumbling[T, D] {
	w := &Tumbling[T, D]{
		size:   size,
		buffer: window.NewMapBuffer[T, D](),
	}
	for _, option := range options {
		option(w)
	}
	return w
}

func (w *Tumbling[T, D]) Buffer() window.Buffer[T, D] {
	return w.buffer
}

func (w *Tumbling[T, D]) OnNewData(t T, _ []D) {
	if !w.armed {
		w.arm(t)
	}
	if !w.seenMax || w.maxTime.Less(t) {
		w.maxTime = t
		w.seenMax = true
	}
}

func (w *Tumbling[T, D]) TryEmit(watermark window.Watermark[T]) (T, weir.Batch[T, D], bool) {
	var none T
	if !w.armed {
		return none, nil, false
	}
	if !w.ready(watermark) {
		return none, nil, false
	}

	boundary := w.emitTime
	var ready []T
	for _, t := range w.buffer.Timestamps() {
		if t.Less(boundary) {
			ready = append(ready, t)
		}
	}
	batch := w.take(ready)
	w.arm(boundary)
	return boundary, batch, true
}

// Drain closes out the buffer: every remaining record regardless of the
// boundary, ascending by timestamp, tagged with the current boundary.
func (w *Tumbling[T, D]) Drain() (T, weir.Batch[T, D], bool) {
	var none T
	if !w.armed || len(w.buffer.Timestamps()) == 0 {
		return none, nil, false
	}
	boundary := w.emitTime
	batch := w.take(w.buffer.Timestamps())
	return boundary, batch, true
}

func (w *Tumbling[T, D]) ready(watermark window.Watermark[T]) bool {
	if watermark != nil {
		return !watermark.LessEqual(w.emitTime)
	}
	return w.dataReady && w.seenMax && w.emitTime.Less(w.maxTime)
}

// take removes the given buffered entries and flattens them ascending by
// timestamp, insertion order within one.
func (w *Tumbling[T, D]) take(ready []T) weir.Batch[T, D] {
	sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })

	var batch weir.Batch[T, D]
	for _, t := range ready {
		data, ok := w.buffer.Remove(t)
		if !ok {
			panic(fmt.Sprintf("tumbling: buffered timestamp %v vanished", t))
		}
		for _, datum := range data {
			batch = append(batch, weir.Record[T, D]{Time: t, Datum: datum})
		}
	}
	return batch
}

func (w *Tumbling[T, D]) arm(t T) {
	w.emitTime = w.advance(t)
	w.armed = true
}

func (w *Tumbling[T, D]) advance(t T) T {
	next, ok := w.size.Results(t)
	if !ok {
		panic(fmt.Sprintf("tumbling: size cannot advance past %v", t))
	}
	return next
}
