package weir

import (
	"math"
	"time"
)

// Time is the constraint for logical timestamps flowing through the engine.
// A timestamp type implements it over itself, e.g. LogicalTime is a
// Time[LogicalTime]. Equality is plain ==, ordering comes from Less.
type Time[T any] interface {
	comparable
	Less(T) bool
}

// Summary computes the window boundary that follows a given time. Results
// reports false when no boundary can be represented (overflow or a
// degenerate step); callers treat that as a fatal configuration error.
type Summary[T any] interface {
	Results(T) (T, bool)
}

// Record pairs a datum with the timestamp it was ingested under.
type Record[T Time[T], D any] struct {
	Time  T
	Datum D
}

// Batch is an emitted window's content, ascending by timestamp with
// insertion order preserved among equal timestamps.
type Batch[T Time[T], D any] []Record[T, D]

// LogicalTime is a dataflow epoch counter.
type LogicalTime int64

func (t LogicalTime) Less(other LogicalTime) bool {
	return t < other
}

// Step advances a LogicalTime to the next multiple of the step, so windows
// tile the axis at 0, S, 2S, ... regardless of where the first record lands.
type Step int64

func (s Step) Results(t LogicalTime) (LogicalTime, bool) {
	if s <= 0 {
		return 0, false
	}
	if int64(t) > math.MaxInt64-int64(s) {
		return 0, false
	}
	next := (int64(t)/int64(s) + 1) * int64(s)
	if int64(t) < 0 && int64(t)%int64(s) != 0 {
		next -= int64(s)
	}
	return LogicalTime(next), true
}

// EventTime is wall-clock event time. The wrapped time.Time is normalized
// to UTC with the monotonic reading stripped so values are usable as map
// keys and compare with ==.
type EventTime struct {
	time.Time
}

func NewEventTime(t time.Time) EventTime {
	return EventTime{t.Round(0).UTC()}
}

func (t EventTime) Less(other EventTime) bool {
	return t.Time.Before(other.Time)
}

// Interval advances an EventTime to the end of the fixed interval that
// contains it, the same left-inclusive right-exclusive alignment Truncate
// gives.
type Interval time.Duration

func (i Interval) Results(t EventTime) (EventTime, bool) {
	if i <= 0 {
		return EventTime{}, false
	}
	d := time.Duration(i)
	return NewEventTime(t.Time.Truncate(d).Add(d)), true
}
