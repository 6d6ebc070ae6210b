package weir

import (
	"time"
)

// Event is the concrete datum carried by the component layer. It is not
// thread safe.
type Event struct {
	Meta    map[string]any `json:"meta"`
	Message any            `json:"message"`
	Time    time.Time      `json:"time"`
}

const (
	// MetaType marks control events; regular records leave it unset.
	MetaType = "type"
	// TypeWatermark marks an event whose Time is a progress promise: the
	// source guarantees no later record below that time.
	TypeWatermark = "watermark"
	// MetaBoundary carries the closing boundary on emitted window events.
	MetaBoundary = "boundary"
)

// IsWatermark reports whether the event is a watermark control event.
func (e *Event) IsWatermark() bool {
	if e.Meta == nil {
		return false
	}
	t, ok := e.Meta[MetaType]
	return ok && t == TypeWatermark
}

// NewWatermark builds a watermark control event for the given time.
func NewWatermark(t time.Time) *Event {
	return &Event{
		Meta: map[string]any{MetaType: TypeWatermark},
		Time: t,
	}
}
