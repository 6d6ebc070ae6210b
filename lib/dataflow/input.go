package dataflow

import (
	"weir/lib/progress"
	"weir/weir"
)

type pending[T weir.Time[T], D any] struct {
	time T
	data []D
}

// Input is the upstream edge of one operator: a queue of timestamped record
// batches plus the progress frontier for the times still to come. All
// methods run on the worker goroutine.
type Input[T weir.Time[T], D any] struct {
	epoch   T
	tracker *progress.Tracker[T]
	queue   []pending[T, D]
	closed  bool
}

func NewInput[T weir.Time[T], D any](initial T) *Input[T, D] {
	return &Input[T, D]{
		epoch:   initial,
		tracker: progress.NewTracker(initial),
	}
}

// Send queues a record batch at the current epoch.
func (in *Input[T, D]) Send(data ...D) {
	in.SendAt(in.epoch, data...)
}

// SendAt queues a record batch at time t. t may lie below the frontier:
// the protocol promise is the watermark's, and a violation surfaces as a
// late record the windowing policy folds into a later window.
func (in *Input[T, D]) SendAt(t T, data ...D) {
	if in.closed {
		panic("dataflow: send on a closed input")
	}
	if len(data) == 0 {
		return
	}
	in.queue = append(in.queue, pending[T, D]{time: t, data: data})
}

// AdvanceTo moves the epoch to t, promising that every further Send carries
// a time of at least t. Monotonic.
func (in *Input[T, D]) AdvanceTo(t T) {
	in.tracker.Advance(t)
	in.epoch = t
}

// Close marks the input permanently exhausted; its frontier empties.
func (in *Input[T, D]) Close() {
	in.closed = true
	in.tracker.Close()
}

// Time returns the current epoch.
func (in *Input[T, D]) Time() T {
	return in.epoch
}

// Frontier snapshots the input's progress.
func (in *Input[T, D]) Frontier() progress.Frontier[T] {
	return in.tracker.Snapshot()
}

// Recv pops the oldest queued batch; ok is false when nothing is queued.
func (in *Input[T, D]) Recv() (T, []D, bool) {
	if len(in.queue) == 0 {
		var none T
		return none, nil, false
	}
	head := in.queue[0]
	in.queue = in.queue[1:]
	return head.time, head.data, true
}
