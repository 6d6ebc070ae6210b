// Package dataflow is the cooperative, single-threaded scheduling substrate
// operators run on: a step executor, typed input edges with progress
// tracking, and output streams with frontier observation. One Worker and
// everything attached to it belong to a single goroutine; a tick runs to
// completion without preemption or blocking.
package dataflow

// Worker drives a set of operator activations. Each Step invokes every
// registered tick exactly once, in registration order.
type Worker struct {
	ticks []func()
}

func NewWorker() *Worker {
	return &Worker{}
}

// Register adds an operator activation. Operators register themselves at
// construction time.
func (w *Worker) Register(tick func()) {
	w.ticks = append(w.ticks, tick)
}

// Step runs one cooperative scheduling round.
func (w *Worker) Step() {
	for _, tick := range w.ticks {
		tick()
	}
}

// StepWhile steps until cond turns false. cond is re-evaluated after every
// round, so drive loops like "step while the probe lags the input" work.
func (w *Worker) StepWhile(cond func() bool) {
	for cond() {
		w.Step()
	}
}
