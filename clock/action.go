package clock

import (
	"sync/atomic"
	"time"
)

// pendingAction is one scheduled entry, shared by Real and Test: a time
// point, an optional repeat period, the callback to run, and a disposed
// flag checked before every run.
type pendingAction struct {
	at       time.Time
	period   time.Duration
	f        Action
	disposed atomic.Bool
}

func (p *pendingAction) Dispose()       { p.disposed.Store(true) }
func (p *pendingAction) Disposed() bool { return p.disposed.Load() }
