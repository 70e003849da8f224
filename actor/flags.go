package actor

import "sync/atomic"

// Flag is a single testable bit in an actor's flag set.
type Flag uint32

const (
	// FlagHidden excludes the actor from the shutdown barrier's count.
	FlagHidden Flag = 1 << iota
	// FlagRegistered means the running-actor registry is counting this actor.
	FlagRegistered
	// FlagInitialized is set once the actor's producer has returned.
	FlagInitialized
	// FlagBlocking marks an actor that uses a blocking receive loop.
	FlagBlocking
	// FlagDetached marks an actor that owns a dedicated OS/goroutine thread.
	FlagDetached
	// FlagTerminated is set exactly once, by Cleanup.
	FlagTerminated
	// FlagShuttingDown names the shutting-down state. Nothing in this
	// module sets it: Cleanup marks termination with FlagTerminated alone.
	FlagShuttingDown
	// FlagInactive names an actor parked outside the scheduler. Nothing in
	// this module sets it.
	FlagInactive
)

// Flags is an atomic bitset. Every mutation is an atomic CAS, so bits may
// be set from any goroutine: FlagTerminated, for one, is set by Cleanup,
// which also runs off the owner's goroutine via ControlBlock.Release.
type Flags struct {
	bits atomic.Uint32
}

// Has tests whether f is set.
func (fl *Flags) Has(f Flag) bool {
	return fl.bits.Load()&uint32(f) != 0
}

// Set turns f on.
func (fl *Flags) Set(f Flag) {
	for {
		old := fl.bits.Load()
		if old&uint32(f) != 0 {
			return
		}
		if fl.bits.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

// Clear turns f off.
func (fl *Flags) Clear(f Flag) {
	for {
		old := fl.bits.Load()
		if old&uint32(f) == 0 {
			return
		}
		if fl.bits.CompareAndSwap(old, old&^uint32(f)) {
			return
		}
	}
}

// SetIfUnset sets f and reports whether this call was the one that set it
// (false if it was already set). Used by Cleanup/on_unreachable to make
// the terminated transition exactly-once.
func (fl *Flags) SetIfUnset(f Flag) bool {
	for {
		old := fl.bits.Load()
		if old&uint32(f) != 0 {
			return false
		}
		if fl.bits.CompareAndSwap(old, old|uint32(f)) {
			return true
		}
	}
}
