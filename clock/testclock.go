package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/lguibr/actorcore/actor"
)

// testEpoch is the Test clock's starting point: one nanosecond after the
// zero time, matching the original test clock's convention of never
// reporting the platform's literal epoch as "now" (so a caller can always
// tell "never scheduled" apart from "scheduled at time zero").
var testEpoch = time.Unix(0, 1)

// Test is a virtual clock for deterministic tests: time only moves when
// AdvanceTime, TriggerTimeout, or TriggerTimeouts is called, never on its
// own. Pending actions are kept sorted by time point, stably re-sorted on
// every insert — adequate for test-scale schedules, and it keeps ties
// broken by insertion order the way a stable multimap iteration would.
type Test struct {
	mu      sync.Mutex
	current time.Time
	actions []*pendingAction
}

// NewTest returns a Test clock with current time set to testEpoch.
func NewTest() *Test {
	return &Test{current: testEpoch}
}

// Now returns the clock's current virtual time.
func (t *Test) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Schedule runs f once, the next time the virtual clock reaches at.
func (t *Test) Schedule(at time.Time, f Action) Disposable {
	pa := &pendingAction{at: at, f: f}
	t.insert(pa)
	return pa
}

// SchedulePeriodically runs f repeatedly, starting at firstRun.
func (t *Test) SchedulePeriodically(firstRun time.Time, f Action, period time.Duration) Disposable {
	pa := &pendingAction{at: firstRun, period: period, f: f}
	t.insert(pa)
	return pa
}

// ScheduleMessage enqueues payload into target's mailbox once the virtual
// clock reaches at.
func (t *Test) ScheduleMessage(at time.Time, target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any) Disposable {
	pa := &pendingAction{at: at}
	pa.f = func() { deliver(target, sched, sender, payload) }
	t.insert(pa)
	return pa
}

// SchedulePeriodicMessage enqueues payload into target's mailbox
// repeatedly, honoring policy once target stalls.
func (t *Test) SchedulePeriodicMessage(firstRun time.Time, target actor.WeakRef, sched *actor.Scheduler, sender *actor.ControlBlock, payload any, period time.Duration, policy StallPolicy) Disposable {
	pa := &pendingAction{at: firstRun, period: period}
	pa.f = func() {
		if !deliver(target, sched, sender, payload) && policy == StallFail {
			pa.Dispose()
		}
	}
	t.insert(pa)
	return pa
}

func (t *Test) insert(pa *pendingAction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions = append(t.actions, pa)
	sort.SliceStable(t.actions, func(i, j int) bool {
		return t.actions[i].at.Before(t.actions[j].at)
	})
}

// HasPendingTimeout reports whether at least one scheduled action has not
// been disposed.
func (t *Test) HasPendingTimeout() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, pa := range t.actions {
		if !pa.Disposed() {
			return true
		}
	}
	return false
}

// NextTimeout returns the time point of the earliest pending action.
// Precondition: HasPendingTimeout().
func (t *Test) NextTimeout() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, pa := range t.actions {
		if !pa.Disposed() {
			return pa.at
		}
	}
	return t.current
}

// TriggerTimeout fires the single earliest pending action, regardless of
// its time point, and advances current time to match unless current is
// already later. Reports whether an action was triggered.
func (t *Test) TriggerTimeout() bool {
	pa, ok := t.takeEarliest()
	if !ok {
		return false
	}
	t.runAndMaybeReschedule(pa)
	return true
}

// TriggerTimeouts fires every currently pending action, regardless of
// time point, and advances current time to the latest one triggered
// unless current is already later. Returns the number triggered. Actions
// inserted as a side effect of firing (including periodic reschedules)
// are not triggered by this call.
func (t *Test) TriggerTimeouts() int {
	t.mu.Lock()
	due := make([]*pendingAction, 0, len(t.actions))
	for _, pa := range t.actions {
		if !pa.Disposed() {
			due = append(due, pa)
		}
	}
	t.actions = t.actions[:0]
	t.mu.Unlock()

	for _, pa := range due {
		t.runAndMaybeReschedule(pa)
	}
	return len(due)
}

// AdvanceTime moves current forward by x and fires every action now due,
// in time order, advancing current incrementally as it goes (so an
// action scheduled by another due action at a time within the advanced
// window also fires). Returns the number of actions triggered.
func (t *Test) AdvanceTime(x time.Duration) int {
	t.mu.Lock()
	target := t.current.Add(x)
	t.mu.Unlock()

	triggered := 0
	for {
		t.mu.Lock()
		var next *pendingAction
		for _, pa := range t.actions {
			if pa.Disposed() {
				continue
			}
			if pa.at.After(target) {
				continue
			}
			if next == nil || pa.at.Before(next.at) {
				next = pa
			}
		}
		t.mu.Unlock()
		if next == nil {
			break
		}
		t.runAndMaybeReschedule(next)
		triggered++
	}

	t.mu.Lock()
	if t.current.Before(target) {
		t.current = target
	}
	t.mu.Unlock()
	return triggered
}

func (t *Test) takeEarliest() (*pendingAction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, pa := range t.actions {
		if pa.Disposed() {
			continue
		}
		t.actions = append(t.actions[:i], t.actions[i+1:]...)
		return pa, true
	}
	return nil, false
}

func (t *Test) remove(target *pendingAction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, pa := range t.actions {
		if pa == target {
			t.actions = append(t.actions[:i], t.actions[i+1:]...)
			return
		}
	}
}

func (t *Test) runAndMaybeReschedule(pa *pendingAction) {
	t.remove(pa)
	if pa.Disposed() {
		return
	}
	t.mu.Lock()
	if t.current.Before(pa.at) {
		t.current = pa.at
	}
	t.mu.Unlock()

	pa.f()

	if pa.period > 0 && !pa.Disposed() {
		pa.at = pa.at.Add(pa.period)
		t.insert(pa)
	}
}
