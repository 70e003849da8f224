package actor

// ResumeResult is the outcome of one Resumable.Resume call.
type ResumeResult uint8

const (
	// ResumeLater means the quantum was exhausted but the mailbox still
	// has work; the scheduler should re-enqueue the resumable.
	ResumeLater ResumeResult = iota
	// ResumeAwaitingMessage means the mailbox emptied and the resumable
	// transitioned to the blocked state; it will be re-submitted the
	// next time a push observes that transition.
	ResumeAwaitingMessage
	// ResumeDone means the actor terminated and its mailbox is closed;
	// the scheduler drops its reference.
	ResumeDone
)

// Resumable is anything the scheduler can run for one cooperative
// quantum. *Body is the only implementation in this module, but the
// interface lets the scheduler stay agnostic of actor internals.
type Resumable interface {
	Resume(sched *Scheduler, maxThroughput int) ResumeResult
}
