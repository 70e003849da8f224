package actor

// Mailbox combines the lock-free inbox with FIFO priority lanes and
// tracks a three-state machine: open (accepting, reader running), blocked
// (accepting, reader waiting), and closed (rejecting, draining). All
// methods except Enqueue and Close are single-threaded: only the owning
// actor may call them.
type Mailbox struct {
	inbox *Inbox
	tasks taskQueue
}

// NewMailbox returns an open, empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{inbox: NewInbox()}
}

// Enqueue pushes an envelope into the mailbox. Safe to call from any
// goroutine. Mirrors Inbox.Push's result exactly: PushUnblockedReader
// tells the caller it is the unique waker responsible for resuming the
// actor.
func (m *Mailbox) Enqueue(e *Envelope) PushResult {
	return m.inbox.Push(e)
}

// PopFront returns the next envelope in priority order (urgent lane
// first), refilling from the inbox as needed. Owner-only.
func (m *Mailbox) PopFront() *Envelope {
	return m.tasks.pop(m.inbox)
}

// PeekAsync returns, without removing, the front envelope of whichever
// lane is non-empty (urgent first). Owner-only.
func (m *Mailbox) PeekAsync() *Envelope {
	return m.tasks.peekAsync(m.inbox)
}

// PeekResponse scans both lanes for the envelope answering request,
// without removing it. Owner-only.
func (m *Mailbox) PeekResponse(request MessageID) *Envelope {
	return m.tasks.peekResponse(m.inbox, request)
}

// PushFront re-stashes an envelope at the head of its priority lane.
// Owner-only; used to skip a message while preserving FIFO order among
// skipped envelopes.
func (m *Mailbox) PushFront(e *Envelope) {
	m.tasks.pushFront(e)
}

// Size reports the number of pending envelopes, including ones still on
// the lock-free inbox. Owner-only (triggers a refill).
func (m *Mailbox) Size() int {
	return m.tasks.size(m.inbox)
}

// TryBlock marks the mailbox blocked: the owner is about to wait for new
// messages. Returns false if the mailbox was not in the open-and-empty
// state (e.g. something was pushed in the meantime, or it is closed).
// Owner-only.
func (m *Mailbox) TryBlock() bool {
	return m.inbox.TryBlock()
}

// TryUnblock reverses TryBlock. Owner-only.
func (m *Mailbox) TryUnblock() bool {
	return m.inbox.TryUnblock()
}

// Closed reports whether Close has already run.
func (m *Mailbox) Closed() bool {
	return m.inbox.Closed()
}

// Close drains both priority lanes and the inbox, passing every envelope
// through bounce, and returns the number of envelopes drained. Idempotent.
func (m *Mailbox) Close(bounce func(*Envelope)) int {
	return m.tasks.drain(m.inbox, bounce)
}
