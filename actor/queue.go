package actor

import "github.com/gammazero/deque"

// taskQueue is the private, per-actor FIFO view over the inbox. It is
// never touched by any goroutine other than the owning actor.
type taskQueue struct {
	urgent deque.Deque[*Envelope]
	normal deque.Deque[*Envelope]
}

// refill reaps the inbox's pending LIFO stack, reverses it into arrival
// order, and appends each envelope to the lane matching its priority.
// Called whenever both lanes are empty and the next envelope is needed.
func (q *taskQueue) refill(ib *Inbox) {
	if q.urgent.Len() != 0 || q.normal.Len() != 0 {
		return
	}
	stack := ib.Reap()
	if stack == nil {
		return
	}
	// stack is newest-first (LIFO); collect then push in reverse so the
	// lanes end up oldest-first (FIFO).
	var batch []*Envelope
	for e := stack; e != nil; {
		next := e.next
		e.next = nil
		batch = append(batch, e)
		e = next
	}
	for i := len(batch) - 1; i >= 0; i-- {
		e := batch[i]
		if e.IsHighPriority() {
			q.urgent.PushBack(e)
		} else {
			q.normal.PushBack(e)
		}
	}
}

// pop refills if necessary, then removes and returns the next envelope:
// urgent lane first, then normal. Returns nil if both lanes are empty
// after refill.
func (q *taskQueue) pop(ib *Inbox) *Envelope {
	q.refill(ib)
	if q.urgent.Len() != 0 {
		return q.urgent.PopFront()
	}
	if q.normal.Len() != 0 {
		return q.normal.PopFront()
	}
	return nil
}

// peekAsync refills if necessary and returns the front of whichever lane
// is non-empty (urgent first), without removing it.
func (q *taskQueue) peekAsync(ib *Inbox) *Envelope {
	q.refill(ib)
	if q.urgent.Len() != 0 {
		return q.urgent.Front()
	}
	if q.normal.Len() != 0 {
		return q.normal.Front()
	}
	return nil
}

// peekResponse refills if necessary and scans both lanes, urgent then
// normal, for the envelope whose id answers the given request id. The
// envelope is not removed.
func (q *taskQueue) peekResponse(ib *Inbox, request MessageID) *Envelope {
	q.refill(ib)
	for i := 0; i < q.urgent.Len(); i++ {
		if e := q.urgent.At(i); e.ID.matches(request) {
			return e
		}
	}
	for i := 0; i < q.normal.Len(); i++ {
		if e := q.normal.At(i); e.ID.matches(request) {
			return e
		}
	}
	return nil
}

// pushFront re-inserts a stashed envelope at the head of the lane
// matching its priority, used to preserve FIFO order among skipped
// messages.
func (q *taskQueue) pushFront(e *Envelope) {
	if e.IsHighPriority() {
		q.urgent.PushFront(e)
	} else {
		q.normal.PushFront(e)
	}
}

// size refills before reporting, since the reported size must include
// stashed inbox contents.
func (q *taskQueue) size(ib *Inbox) int {
	q.refill(ib)
	return q.urgent.Len() + q.normal.Len()
}

// drain empties both lanes plus the inbox stack, passing every envelope
// through f, and returns the count processed. Idempotent: draining an
// already-empty, already-closed queue does nothing.
func (q *taskQueue) drain(ib *Inbox, f func(*Envelope)) int {
	count := 0
	ib.Close(func(e *Envelope) {
		f(e)
		count++
	})
	for q.urgent.Len() != 0 {
		f(q.urgent.PopFront())
		count++
	}
	for q.normal.Len() != 0 {
		f(q.normal.PopFront())
		count++
	}
	return count
}
