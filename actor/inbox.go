package actor

import "sync/atomic"

// PushResult is the outcome of Inbox.Push.
type PushResult uint8

const (
	// PushSuccess means the envelope was linked into the stack normally.
	PushSuccess PushResult = iota
	// PushUnblockedReader means the push observed a blocked reader and is
	// now responsible for waking it; the caller is the unique waker.
	PushUnblockedReader
	// PushQueueClosed means the inbox had already been closed; the
	// envelope was not linked in and must be bounced by the caller.
	PushQueueClosed
)

// Inbox is a lock-free, intrusive, multi-producer single-consumer LIFO
// stack of envelopes. Exactly one actor — the owner — may call TakeHead,
// TryBlock, TryUnblock, or Close; any number of other goroutines may call
// Push concurrently.
//
// The head holds either a real *Envelope (the stack top), or one of two
// sentinel pointers distinguishing "empty" from "closed"; a third
// sentinel distinguishes "blocked" (owner waiting) from "empty". Sentinels
// are addresses of fields on the Inbox itself, so they can never alias a
// real envelope.
type Inbox struct {
	head atomic.Pointer[Envelope]

	emptyTag   Envelope
	blockedTag Envelope
	closedTag  Envelope
}

// NewInbox returns an inbox in the open, empty state.
func NewInbox() *Inbox {
	ib := &Inbox{}
	ib.head.Store(ib.empty())
	return ib
}

func (ib *Inbox) empty() *Envelope   { return &ib.emptyTag }
func (ib *Inbox) blocked() *Envelope { return &ib.blockedTag }
func (ib *Inbox) closed() *Envelope  { return &ib.closedTag }

func (ib *Inbox) isTag(p *Envelope) bool {
	return p == ib.empty() || p == ib.blocked() || p == ib.closed()
}

// Push links a new envelope onto the stack. Safe for concurrent callers.
func (ib *Inbox) Push(e *Envelope) PushResult {
	for {
		head := ib.head.Load()
		if head == ib.closed() {
			return PushQueueClosed
		}
		if head == ib.empty() || head == ib.blocked() {
			e.next = nil
		} else {
			e.next = head
		}
		if ib.head.CompareAndSwap(head, e) {
			if head == ib.blocked() {
				return PushUnblockedReader
			}
			return PushSuccess
		}
	}
}

// Empty reports whether the inbox is open and has nothing pending.
// Precondition: not closed and not blocked.
func (ib *Inbox) Empty() bool {
	return ib.head.Load() == ib.empty()
}

// Closed reports whether Close has been called.
func (ib *Inbox) Closed() bool {
	return ib.head.Load() == ib.closed()
}

// Blocked reports whether the owner has marked itself waiting.
func (ib *Inbox) Blocked() bool {
	return ib.head.Load() == ib.blocked()
}

// TryBlock attempts the empty -> blocked transition. Owner-only.
func (ib *Inbox) TryBlock() bool {
	return ib.head.CompareAndSwap(ib.empty(), ib.blocked())
}

// TryUnblock attempts the blocked -> empty transition. Owner-only.
func (ib *Inbox) TryUnblock() bool {
	return ib.head.CompareAndSwap(ib.blocked(), ib.empty())
}

// TakeHead atomically swaps the head to newHead (empty or closed) and
// returns the envelope that was on top of the stack, or nil if the stack
// held only a sentinel. Owner-only.
func (ib *Inbox) TakeHead(newHead *Envelope) *Envelope {
	for {
		head := ib.head.Load()
		if head == newHead {
			return nil
		}
		if ib.head.CompareAndSwap(head, newHead) {
			if ib.isTag(head) {
				return nil
			}
			return head
		}
	}
}

// Reap is TakeHead(empty): the usual refill path.
func (ib *Inbox) Reap() *Envelope {
	return ib.TakeHead(ib.empty())
}

// Close transitions the inbox to closed and applies f to every envelope
// that was pending, in LIFO order as stored (newest first). Owner-only, idempotent: closing an already-closed inbox is a
// no-op and f is not invoked again.
func (ib *Inbox) Close(f func(*Envelope)) {
	if ib.Closed() {
		return
	}
	head := ib.TakeHead(ib.closed())
	for head != nil {
		next := head.next
		head.next = nil
		f(head)
		head = next
	}
}
