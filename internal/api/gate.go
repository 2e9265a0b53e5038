package api

import (
	"context"
	"errors"
)

// ErrGateSaturated is returned by Acquire when the bounded wait queue is
// already full and the caller should be rejected instead of queued.
var ErrGateSaturated = errors.New("admission gate saturated")

// gate is a counting semaphore with a bounded wait queue. At most capacity
// callers hold a slot at once; up to queueDepth more may wait for one.
// Arrivals beyond that fail fast rather than piling up without limit.
type gate struct {
	slots   chan struct{} // one token per concurrent holder
	waiting chan struct{} // holders plus queued waiters
}

func newGate(capacity, queueDepth int) *gate {
	if capacity < 1 {
		capacity = 1
	}
	if queueDepth < 0 {
		queueDepth = 0
	}
	return &gate{
		slots:   make(chan struct{}, capacity),
		waiting: make(chan struct{}, capacity+queueDepth),
	}
}

// Acquire claims a slot, blocking while the gate is full. It returns
// ErrGateSaturated immediately when the wait queue is full, or ctx.Err()
// when the caller gives up while queued. A nil return must be paired with
// exactly one Release.
func (g *gate) Acquire(ctx context.Context) error {
	select {
	case g.waiting <- struct{}{}:
	default:
		return ErrGateSaturated
	}

	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		<-g.waiting
		return ctx.Err()
	}
}

// Release frees the slot claimed by a successful Acquire.
func (g *gate) Release() {
	<-g.slots
	<-g.waiting
}
