package actor

import "time"

// Clock is the minimal surface System needs from a clock implementation,
// kept tiny here to avoid the actor package depending on the clock
// package (which depends on actor for WeakRef/ControlBlock/Scheduler).
// The clock package's Real and Test types both satisfy this structurally.
type Clock interface {
	Now() time.Time
}
