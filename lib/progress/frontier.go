// Package progress implements the progress-tracking primitives the
// windowing driver consumes: an immutable frontier snapshot, a monotonic
// tracker behind it, a linearly-used output capability, and a one-shot
// notification registry.
//
// A frontier is the lower bound on timestamps an input may still produce.
// Under a total order it holds at most one element; an empty frontier means
// the input is exhausted and nothing further can arrive.
package progress

import (
	"fmt"

	"weir/weir"
)

// Frontier is a read-only snapshot of an input's progress. The zero value
// is the closed (empty) frontier.
type Frontier[T weir.Time[T]] struct {
	min T
	set bool
}

// NewFrontier returns a frontier holding the single element t.
func NewFrontier[T weir.Time[T]](t T) Frontier[T] {
	return Frontier[T]{min: t, set: true}
}

// Closed returns the empty frontier: no timestamp can arrive anymore.
func Closed[T weir.Time[T]]() Frontier[T] {
	return Frontier[T]{}
}

// Empty reports whether nothing at all can still arrive.
func (f Frontier[T]) Empty() bool {
	return !f.set
}

// Min returns the frontier element; ok is false on an empty frontier.
func (f Frontier[T]) Min() (T, bool) {
	return f.min, f.set
}

// LessEqual reports whether the input may still produce a record at or
// below t. A time t is "passed" exactly when LessEqual(t) is false.
func (f Frontier[T]) LessEqual(t T) bool {
	return f.set && !t.Less(f.min)
}

// LessThan is the strict variant: whether something strictly below t may
// still arrive.
func (f Frontier[T]) LessThan(t T) bool {
	return f.set && f.min.Less(t)
}

// Tracker is the mutable side of a frontier, owned by the input edge. It
// only ever advances; moving backwards is a protocol violation and panics.
type Tracker[T weir.Time[T]] struct {
	frontier Frontier[T]
}

func NewTracker[T weir.Time[T]](initial T) *Tracker[T] {
	return &Tracker[T]{frontier: NewFrontier(initial)}
}

// Advance moves the frontier to t.
func (k *Tracker[T]) Advance(t T) {
	if k.frontier.Empty() {
		panic("progress: advance on a closed frontier")
	}
	if t.Less(k.frontier.min) {
		panic(fmt.Sprintf("progress: frontier moved backwards, %v -> %v", k.frontier.min, t))
	}
	k.frontier.min = t
}

// Close empties the frontier, promising no further input. Terminal.
func (k *Tracker[T]) Close() {
	k.frontier = Closed[T]()
}

// Snapshot returns the current frontier as an immutable view.
func (k *Tracker[T]) Snapshot() Frontier[T] {
	return k.frontier
}
