package clock

import (
	"container/heap"
	"sync"
	"time"

	"github.com/lguibr/actorcore/actor"
	"go.uber.org/zap"
)

// actionHeap is a binary min-heap over pendingAction.at, giving the real
// clock's goroutine O(log n) insertion and O(log n) extraction of the
// next-due action instead of scanning a list on every tick.
type actionHeap []*pendingAction

func (h actionHeap) Len() int            { return len(h) }
func (h actionHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h actionHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *actionHeap) Push(x interface{}) { *h = append(*h, x.(*pendingAction)) }
func (h *actionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Real is the production Clock: a single goroutine drains a min-heap of
// pending actions, parking on a timer reset to the next deadline.
type Real struct {
	logger *zap.Logger

	mu   sync.Mutex
	heap actionHeap

	wake      chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewReal starts a Real clock's background goroutine. logger may be nil.
func NewReal(logger *zap.Logger) *Real {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Real{
		logger:  logger,
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
	go r.run()
	return r
}

// Now returns the current wall-clock time.
func (r *Real) Now() time.Time { return time.Now() }

// Schedule runs f once, at or after at.
func (r *Real) Schedule(at time.Time, f Action) Disposable {
	pa := &pendingAction{at: at, f: f}
	r.push(pa)
	return pa
}

// SchedulePeriodically runs f repeatedly, starting at firstRun.
func (r *Real) SchedulePeriodically(firstRun time.Time, f Action, period time.Duration) Disposable {
	pa := &pendingAction{at: firstRun, period: period, f: f}
	r.push(pa)
	return pa
}

// ScheduleMessage enqueues payload into target's mailbox at or after at.
func (r *Real) ScheduleMessage(at time.Time, target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any) Disposable {
	pa := &pendingAction{at: at}
	pa.f = func() { deliver(target, sched, sender, payload) }
	r.push(pa)
	return pa
}

// SchedulePeriodicMessage enqueues payload into target's mailbox
// repeatedly, honoring policy once target stalls.
func (r *Real) SchedulePeriodicMessage(firstRun time.Time, target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any, period time.Duration, policy StallPolicy) Disposable {
	pa := &pendingAction{at: firstRun, period: period}
	pa.f = func() {
		if !deliver(target, sched, sender, payload) && policy == StallFail {
			pa.Dispose()
		}
	}
	r.push(pa)
	return pa
}

func (r *Real) push(pa *pendingAction) {
	r.mu.Lock()
	heap.Push(&r.heap, pa)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// run is the clock's single worker goroutine: it sleeps until the
// earliest pending deadline, wakes early whenever a new (possibly
// earlier) action is pushed, and exits when Close is called.
func (r *Real) run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		wait := r.nextWait()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
			r.fireDue()
		case <-r.wake:
			continue
		case <-r.closeCh:
			return
		}
	}
}

func (r *Real) nextWait() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.heap) > 0 && r.heap[0].Disposed() {
		heap.Pop(&r.heap)
	}
	if len(r.heap) == 0 {
		return time.Hour
	}
	wait := time.Until(r.heap[0].at)
	if wait < 0 {
		return 0
	}
	return wait
}

func (r *Real) fireDue() {
	now := time.Now()
	var due []*pendingAction
	r.mu.Lock()
	for len(r.heap) > 0 && !r.heap[0].at.After(now) {
		pa := heap.Pop(&r.heap).(*pendingAction)
		if !pa.Disposed() {
			due = append(due, pa)
		}
	}
	r.mu.Unlock()

	for _, pa := range due {
		pa.f()
		if pa.period > 0 && !pa.Disposed() {
			pa.at = pa.at.Add(pa.period)
			r.push(pa)
		}
	}
}

// Close stops the clock's worker goroutine. Pending one-shot actions are
// dropped; Close does not wait for in-flight callbacks.
func (r *Real) Close() {
	r.closeOnce.Do(func() { close(r.closeCh) })
}
