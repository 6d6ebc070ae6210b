package progress

import (
	"fmt"

	"weir/weir"
)

// Capability is the permission, and obligation, to emit output no earlier
// than its current time. One operator holds at most one; it is downgraded
// forward as emission times are committed and released exactly once at
// termination. Use after release is a programming error and panics.
type Capability[T weir.Time[T]] struct {
	time     T
	released bool
}

func NewCapability[T weir.Time[T]](t T) *Capability[T] {
	return &Capability[T]{time: t}
}

// Time returns the earliest time output may still be produced at.
func (c *Capability[T]) Time() T {
	c.check()
	return c.time
}

// Delayed derives an output time from the token: t itself when t is not
// earlier than the token, otherwise the token's own time.
func (c *Capability[T]) Delayed(t T) T {
	c.check()
	if t.Less(c.time) {
		return c.time
	}
	return t
}

// Downgrade commits the token to t. Forward-only: the operator can never
// again emit at an earlier time.
func (c *Capability[T]) Downgrade(t T) {
	c.check()
	if t.Less(c.time) {
		panic(fmt.Sprintf("progress: capability downgrade moved backwards, %v -> %v", c.time, t))
	}
	c.time = t
}

// Release permanently discards the token.
func (c *Capability[T]) Release() {
	c.check()
	c.released = true
}

// Released reports whether the token has been discarded.
func (c *Capability[T]) Released() bool {
	return c.released
}

func (c *Capability[T]) check() {
	if c.released {
		panic("progress: use of a released capability")
	}
}
