package dataflow

import (
	"weir/lib/progress"
	"weir/weir"
)

// Stream is the downstream handle an operator emits into. Subscribers are
// invoked synchronously, on the worker goroutine, in subscription order.
type Stream[T weir.Time[T], D any] struct {
	handlers []func(t T, datum D)
	frontier progress.Frontier[T]
}

func NewStream[T weir.Time[T], D any](initial T) *Stream[T, D] {
	return &Stream[T, D]{frontier: progress.NewFrontier(initial)}
}

// Inspect subscribes a handler to everything emitted on the stream.
func (s *Stream[T, D]) Inspect(handler func(t T, datum D)) *Stream[T, D] {
	s.handlers = append(s.handlers, handler)
	return s
}

// Emit delivers one datum at time t to every subscriber.
func (s *Stream[T, D]) Emit(t T, datum D) {
	for _, handler := range s.handlers {
		handler(t, datum)
	}
}

// SetFrontier publishes the owning operator's output frontier. Only the
// owner calls this, once per tick.
func (s *Stream[T, D]) SetFrontier(f progress.Frontier[T]) {
	s.frontier = f
}

// Frontier returns the last published output frontier.
func (s *Stream[T, D]) Frontier() progress.Frontier[T] {
	return s.frontier
}

// Probe returns a frontier observer for drive loops.
func (s *Stream[T, D]) Probe() *Probe[T] {
	return &Probe[T]{snapshot: func() progress.Frontier[T] { return s.frontier }}
}

// Probe observes a stream's output frontier without seeing its data.
type Probe[T weir.Time[T]] struct {
	snapshot func() progress.Frontier[T]
}

// LessThan reports whether the probed stream may still produce output
// strictly below t.
func (p *Probe[T]) LessThan(t T) bool {
	f := p.snapshot()
	return f.LessThan(t)
}

// Done reports whether the probed stream is finished for good.
func (p *Probe[T]) Done() bool {
	return p.snapshot().Empty()
}
