package actor

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Actor is the user-supplied message handler. Receive is invoked once per
// envelope that reaches the current behaviour. Responses and ExitMessages
// never reach it: responses go only to the awaited/multiplexed response
// registries, ExitMessages only to the exit handling.
type Actor interface {
	Receive(ctx *Context, msg any) Directive
}

// PreStarter is an optional hook invoked once, after the body is fully
// wired but before the first envelope is processed.
type PreStarter interface {
	PreStart(ctx *Context)
}

// Cleaner is an optional hook invoked with the termination reason as the
// last step of Cleanup.
type Cleaner interface {
	OnCleanup(reason error)
}

// Body is the actor body: flags, attachables, links, the behaviour
// stack, and cleanup. It implements Resumable so the scheduler can run
// it directly.
type Body struct {
	control *ControlBlock
	mailbox *Mailbox
	system  *System
	user    Actor

	flags Flags

	mu          sync.Mutex // guards attachables, links, exitHandler below
	attachables attachList
	links       map[Address]WeakRef
	exitHandler ExitHandler

	behaviors   behaviorStack
	awaited     []awaitedEntry
	multiplexed map[uint64]multiplexEntry

	requestCounter atomic.Uint64

	quitRequested bool
	quitReason    error

	// wake is signalled instead of being submitted to the shared worker
	// pool when this body is detached: a detached actor owns a single
	// dedicated goroutine, and submitting it to the pool as well would let
	// two goroutines call Resume concurrently.
	wake chan struct{}
}

func newBody(control *ControlBlock, user Actor, system *System) *Body {
	b := &Body{
		control:     control,
		mailbox:     NewMailbox(),
		system:      system,
		user:        user,
		multiplexed: make(map[uint64]multiplexEntry),
		wake:        make(chan struct{}, 1),
	}
	b.behaviors.push(func(ctx *Context, msg any) Directive {
		return b.user.Receive(ctx, msg)
	})
	control.setBody(b)
	return b
}

func (b *Body) terminated() bool { return b.flags.Has(FlagTerminated) }

// wakeChan exposes the detached-wake signal to the scheduler's detached
// run loop. Only meaningful when FlagDetached is set.
func (b *Body) wakeChan() <-chan struct{} { return b.wake }

// nextRequestID hands out a fresh request MessageID of the given
// category, unique per actor.
func (b *Body) nextRequestID(cat Category) MessageID {
	return NewRequestID(cat, b.requestCounter.Add(1))
}

func (b *Body) awaitResponse(request MessageID, handler ResponseHandler, timeout Disposable) {
	if timeout == nil {
		timeout = NoTimeout
	}
	b.awaited = append(b.awaited, awaitedEntry{request: request, handler: handler, timeout: timeout})
}

func (b *Body) multiplexResponse(request MessageID, handler ResponseHandler, timeout Disposable) {
	if timeout == nil {
		timeout = NoTimeout
	}
	b.multiplexed[request.RequestNumber()] = multiplexEntry{request: request, handler: handler, timeout: timeout}
}

// Enqueue pushes e into the mailbox and, if this push is the one that
// wakes a blocked reader, submits the body to sched as a resumable.
// Returns false (and bounces e) if the mailbox was already closed.
func (b *Body) Enqueue(e *Envelope, sched *Scheduler) bool {
	switch b.mailbox.Enqueue(e) {
	case PushUnblockedReader:
		if b.flags.Has(FlagDetached) {
			select {
			case b.wake <- struct{}{}:
			default:
			}
		} else if sched != nil {
			sched.submit(b)
		}
		return true
	case PushSuccess:
		return true
	default: // PushQueueClosed
		newBouncer(ErrQueueClosed, sched).apply(e)
		return false
	}
}

// Resume is the scheduler's entry point. It pops envelopes up to
// maxThroughput and invokes the current behaviour (or a matching
// response handler) on each.
func (b *Body) Resume(sched *Scheduler, maxThroughput int) ResumeResult {
	ctx := &Context{self: b, sched: sched, sys: b.system}

	processed := 0
	var skipped []*Envelope
	for maxThroughput <= 0 || processed < maxThroughput {
		e := b.mailbox.PopFront()
		if e == nil {
			break
		}
		ctx.envelope = e
		directive := b.safeInvoke(ctx, e)
		if directive == Skipped {
			skipped = append(skipped, e)
			continue
		}
		if directive == Dropped {
			if b.system != nil {
				b.system.logger.Warn("envelope dropped",
					zap.Stringer("actor", b.control.Address()),
					zap.Uint64("message_id", uint64(e.ID)),
				)
			}
		}
		processed++
		if b.quitRequested {
			break
		}
	}
	for i := len(skipped) - 1; i >= 0; i-- {
		b.mailbox.PushFront(skipped[i])
	}

	if b.quitRequested {
		reason := b.quitReason
		b.quitRequested = false
		b.Cleanup(reason, sched)
	}
	if b.terminated() {
		return ResumeDone
	}
	if b.mailbox.Size() == 0 && b.mailbox.TryBlock() {
		return ResumeAwaitingMessage
	}
	return ResumeLater
}

// safeInvoke runs invoke under panic recovery: a panicking behaviour
// never crashes the worker running it. The panic is logged and turned
// into a quit request carrying the panic value as the termination
// reason, so links and cleanup still fire normally.
func (b *Body) safeInvoke(ctx *Context, e *Envelope) (directive Directive) {
	defer func() {
		if r := recover(); r != nil {
			if b.system != nil {
				b.system.logger.Error("actor panicked",
					zap.Stringer("actor", b.control.Address()),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}
			b.quitRequested = true
			b.quitReason = errors.Errorf("panic: %v", r)
			directive = Consumed
		}
	}()
	return b.invoke(ctx, e)
}

// invoke dispatches a single envelope: responses first try the awaited
// stack, then the multiplexed registry, and a response neither of them
// claims is dropped; an ExitMessage goes to handleExit; anything else
// goes to the current behaviour.
func (b *Body) invoke(ctx *Context, e *Envelope) Directive {
	if e.ID.IsResponse() {
		if d, applicable := b.tryAwaited(ctx, e); applicable {
			return d
		}
		if d, applicable := b.tryMultiplexed(ctx, e); applicable {
			return d
		}
		return Dropped
	}
	if em, ok := e.Payload.(ExitMessage); ok {
		return b.handleExit(ctx, em)
	}
	behavior := b.behaviors.top()
	if behavior == nil {
		return Dropped
	}
	return behavior(ctx, e.Payload)
}

func (b *Body) tryAwaited(ctx *Context, e *Envelope) (Directive, bool) {
	n := len(b.awaited)
	if n == 0 {
		return Dropped, false
	}
	top := b.awaited[n-1]
	if !e.ID.matches(top.request) {
		return Skipped, true
	}
	b.awaited = b.awaited[:n-1]
	top.timeout.Dispose()
	top.handler(ctx, e.Payload, e.ID.Category() == ErrorResponse)
	return Consumed, true
}

func (b *Body) tryMultiplexed(ctx *Context, e *Envelope) (Directive, bool) {
	key := (^e.ID.RequestNumber()) & numberMask
	entry, ok := b.multiplexed[key]
	if !ok {
		return Dropped, false
	}
	delete(b.multiplexed, key)
	entry.timeout.Dispose()
	entry.handler(ctx, e.Payload, e.ID.Category() == ErrorResponse)
	return Consumed, true
}

// handleExit applies the default link-exit policy unless an
// ExitHandler has been installed and downgrades it.
func (b *Body) handleExit(ctx *Context, em ExitMessage) Directive {
	b.mu.Lock()
	handler := b.exitHandler
	b.mu.Unlock()
	if handler != nil && handler(ctx, em) {
		return Consumed
	}
	b.quitRequested = true
	b.quitReason = em.Reason
	return Consumed
}

// SetExitHandler installs a handler that may downgrade incoming exit
// messages to ordinary handling instead of terminating the actor.
func (b *Body) SetExitHandler(h ExitHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exitHandler = h
}

// onUnreachable runs when the strong count drops to zero without a prior
// Cleanup call. It synthesises a cleanup with ErrNotExited to preserve
// link-propagation semantics, then closes the mailbox.
func (b *Body) onUnreachable() {
	b.Cleanup(ErrNotExited, nil)
}

// Cleanup is idempotent and thread-safe. It walks the attachable list,
// notifies link partners, forces the mailbox closed
// (bouncing its contents), decrements the running-actor registry, and
// finally invokes the user's OnCleanup hook if present.
func (b *Body) Cleanup(reason error, sched *Scheduler) {
	if !b.flags.SetIfUnset(FlagTerminated) {
		return
	}

	b.mu.Lock()
	b.attachables.runAll(reason)
	partners := make([]WeakRef, 0, len(b.links))
	for _, w := range b.links {
		partners = append(partners, w)
	}
	b.links = nil
	b.mu.Unlock()

	self := b.control
	for _, w := range partners {
		if target, ok := w.Upgrade(); ok {
			if pb := target.Body(); pb != nil {
				pb.Enqueue(NewEnvelope(self, AsyncID, nil, ExitMessage{Source: self.Address(), Reason: reason}), sched)
			}
			target.Release()
		}
		w.Release()
	}

	b.mailbox.Close(newBouncer(reason, sched).apply)

	if b.flags.Has(FlagRegistered) && b.system != nil {
		b.system.deregister(self.Address())
	}

	if cl, ok := b.user.(Cleaner); ok {
		cl.OnCleanup(reason)
	}
}
