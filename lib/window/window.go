package window

import (
	"weir/weir"
)

// Watermark is a read-only view over an input's progress frontier, the only
// surface a policy may use to judge emission safety. LessEqual(t) true
// means a record at or below t may still arrive; policies never mutate it.
type Watermark[T weir.Time[T]] interface {
	LessThan(t T) bool
	LessEqual(t T) bool
}

// Window is a windowing policy over buffered records. Implementations
// decide, from the watermark and the buffered timestamps alone, which
// records are safe to emit; there is no global clock.
type Window[T weir.Time[T], D any] interface {
	// Buffer exposes the policy's backing store. Ingestion goes through
	// Give/GiveVec, which invoke OnNewData before storing.
	Buffer() Buffer[T, D]

	// OnNewData is the pre-store hook, e.g. to lazily arm the first emit
	// boundary from the first observed time. It must not emit.
	OnNewData(t T, data []D)

	// TryEmit returns the next closed window: its boundary and the buffered
	// records strictly below it, ascending by timestamp. ok is false while
	// the watermark has not fully passed the boundary. Repeat calls without
	// new data or further progress return false.
	TryEmit(watermark Watermark[T]) (T, weir.Batch[T, D], bool)
}

// Drainer is the optional completion hook: called once when upstream is
// permanently exhausted, it surrenders every remaining buffered record
// regardless of the boundary, so a final partial window is not lost.
type Drainer[T weir.Time[T], D any] interface {
	Drain() (T, weir.Batch[T, D], bool)
}

// Give ingests one record. Never emits, never fails.
func Give[T weir.Time[T], D any](w Window[T, D], t T, datum D) {
	GiveVec(w, t, []D{datum})
}

// GiveVec ingests a batch of records sharing one timestamp.
func GiveVec[T weir.Time[T], D any](w Window[T, D], t T, data []D) {
	if len(data) == 0 {
		return
	}
	w.OnNewData(t, data)
	w.Buffer().Store(t, data)
}
