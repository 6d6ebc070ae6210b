package progress

import (
	"sort"

	"weir/weir"
)

// Notificator collects "call me back once the frontier has passed t"
// requests and delivers each registered time at most once.
type Notificator[T weir.Time[T]] struct {
	pending map[T]struct{}
}

func NewNotificator[T weir.Time[T]]() *Notificator[T] {
	return &Notificator[T]{pending: map[T]struct{}{}}
}

// NotifyAt registers a one-shot notification for t. Re-registering an
// already pending time is a no-op.
func (n *Notificator[T]) NotifyAt(t T) {
	n.pending[t] = struct{}{}
}

// Pending returns the number of undelivered registrations.
func (n *Notificator[T]) Pending() int {
	return len(n.pending)
}

// Drain removes and returns, in ascending order, every registered time the
// frontier has fully passed. On an empty frontier everything fires.
func (n *Notificator[T]) Drain(frontier Frontier[T]) []T {
	var ready []T
	for t := range n.pending {
		if !frontier.LessEqual(t) {
			ready = append(ready, t)
		}
	}
	for _, t := range ready {
		delete(n.pending, t)
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })
	return ready
}
