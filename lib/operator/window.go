// Package operator bridges windowing policies to the dataflow substrate.
package operator

import (
	"weir/lib/dataflow"
	"weir/lib/log"
	"weir/lib/progress"
	"weir/lib/window"
	"weir/weir"
)

// WindowOperator drives one windowing policy over one upstream edge. Per
// tick it forwards the available input to the policy, asks it for a closed
// window against the live frontier, stashes any result under a safe output
// time, and flushes stash entries whose time the frontier has passed. The
// retained capability is downgraded forward on every emission and released
// for good once upstream is exhausted.
type WindowOperator[T weir.Time[T], D any] struct {
	name   string
	logger weir.Logger

	policy      window.Window[T, D]
	drainOnDone bool

	input  *dataflow.Input[T, D]
	output *dataflow.Stream[T, weir.Batch[T, D]]

	capability  *progress.Capability[T]
	notificator *progress.Notificator[T]
	stash       map[T]weir.Batch[T, D]
	done        bool
}

// Window attaches a windowing operator to input and returns its downstream
// stream of completed window batches. drainOnDone controls whether a final
// partial window is surrendered when upstream completes.
func Window[T weir.Time[T], D any](
	worker *dataflow.Worker,
	input *dataflow.Input[T, D],
	name string,
	policy window.Window[T, D],
	drainOnDone bool,
) *dataflow.Stream[T, weir.Batch[T, D]] {
	o := &WindowOperator[T, D]{
		name:        name,
		logger:      log.Named("operator." + name),
		policy:      policy,
		drainOnDone: drainOnDone,
		input:       input,
		output:      dataflow.NewStream[T, weir.Batch[T, D]](input.Time()),
		capability:  progress.NewCapability(input.Time()),
		notificator: progress.NewNotificator[T](),
		stash:       map[T]weir.Batch[T, D]{},
	}
	worker.Register(o.OnTick)
	return o.output
}

// OnTick runs one cooperative scheduling invocation.
func (o *WindowOperator[T, D]) OnTick() {
	if o.done {
		return
	}
	frontier := o.input.Frontier()

	// Queued batches survive the input's close, so ingestion runs even on
	// the terminal tick or a closing window would lose them.
	o.ingest()

	if frontier.Empty() {
		o.drain()
	} else if boundary, batch, ok := o.policy.TryEmit(frontier); ok {
		at := o.capability.Delayed(boundary)
		o.capability.Downgrade(at)
		if len(batch) > 0 {
			o.stashAt(at, batch)
		}
	}

	o.flush(frontier)

	if frontier.Empty() {
		o.capability.Release()
		o.done = true
		o.output.SetFrontier(progress.Closed[T]())
		o.logger.Infow("upstream exhausted, operator terminal.")
		return
	}
	o.output.SetFrontier(o.held(frontier))
}

// ingest forwards every currently available upstream batch to the policy.
func (o *WindowOperator[T, D]) ingest() {
	for {
		t, data, ok := o.input.Recv()
		if !ok {
			return
		}
		window.GiveVec(o.policy, t, data)
	}
}

// drain surrenders the final partial window, if enabled and supported.
func (o *WindowOperator[T, D]) drain() {
	if !o.drainOnDone {
		return
	}
	drainer, ok := o.policy.(window.Drainer[T, D])
	if !ok {
		return
	}
	if boundary, batch, ok := drainer.Drain(); ok && len(batch) > 0 {
		o.logger.Debugw("draining final window.", "boundary", boundary, "records", len(batch))
		o.stashAt(o.capability.Delayed(boundary), batch)
	}
}

// stashAt appends batch to the pending output at time t, registering the
// one-shot notification on first data.
func (o *WindowOperator[T, D]) stashAt(t T, batch weir.Batch[T, D]) {
	if _, exists := o.stash[t]; !exists {
		o.notificator.NotifyAt(t)
	}
	o.stash[t] = append(o.stash[t], batch...)
}

// flush emits every stash entry whose registered time the frontier has now
// fully passed, then prunes entries left empty.
func (o *WindowOperator[T, D]) flush(frontier progress.Frontier[T]) {
	for _, t := range o.notificator.Drain(frontier) {
		if batch, ok := o.stash[t]; ok {
			delete(o.stash, t)
			o.output.Emit(t, batch)
		}
	}
	for t, batch := range o.stash {
		if len(batch) == 0 {
			delete(o.stash, t)
		}
	}
}

// held is the operator's output frontier: the lesser of the retained
// capability and the input frontier.
func (o *WindowOperator[T, D]) held(frontier progress.Frontier[T]) progress.Frontier[T] {
	at := o.capability.Time()
	if min, ok := frontier.Min(); ok && min.Less(at) {
		at = min
	}
	return progress.NewFrontier(at)
}
