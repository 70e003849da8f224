// Package clock schedules one-shot and periodic work, either as plain
// callbacks or as messages delivered into an actor's mailbox at a future
// point in time.
package clock

import (
	"time"

	"github.com/lguibr/actorcore/actor"
)

// StallPolicy controls how a periodic message schedule reacts when its
// target has become unreachable (the weak reference no longer upgrades,
// or the mailbox has closed).
type StallPolicy uint8

const (
	// StallFail disposes the schedule on the first stalled delivery.
	StallFail StallPolicy = iota
	// StallSkip silently skips the stalled run and keeps the schedule
	// alive for the next period.
	StallSkip
)

// Action is a callback run on the clock's own goroutine. It must return
// quickly: it blocks every other due action behind it.
type Action func()

// Disposable cancels a scheduled action or message. Safe to call more
// than once, and from any goroutine; satisfies actor.Disposable.
type Disposable interface {
	Dispose()
	Disposed() bool
}

// Clock schedules actions and actor messages for execution at or after a
// future point in time. Real is the production implementation; Test is a
// virtual clock for deterministic tests.
type Clock interface {
	// Now returns the clock's current notion of time.
	Now() time.Time

	// Schedule runs f once, at or after at.
	Schedule(at time.Time, f Action) Disposable

	// SchedulePeriodically runs f repeatedly, starting at firstRun and
	// then every period. A non-positive period disables repetition after
	// the first run.
	SchedulePeriodically(firstRun time.Time, f Action, period time.Duration) Disposable

	// ScheduleMessage enqueues payload into target's mailbox at or after
	// at. sender is attached to the delivered envelope (may be nil).
	ScheduleMessage(at time.Time, target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any) Disposable

	// SchedulePeriodicMessage enqueues payload into target's mailbox
	// repeatedly, starting at firstRun and then every period, honoring
	// policy when target has stalled (become unreachable, or its mailbox
	// has closed).
	SchedulePeriodicMessage(firstRun time.Time, target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any, period time.Duration, policy StallPolicy) Disposable
}

// deliver enqueues payload into target's mailbox, upgrading the weak
// reference just long enough to do so. Reports whether delivery
// succeeded: false means the target is gone or its mailbox is closed.
func deliver(target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any) bool {
	control, ok := target.Upgrade()
	if !ok {
		return false
	}
	defer control.Release()
	body := control.Body()
	if body == nil {
		return false
	}
	return body.Enqueue(actor.NewEnvelope(sender, actor.AsyncID, nil, payload), sched)
}
