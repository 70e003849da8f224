package actor

import "github.com/pkg/errors"

// Sentinel errors for the core error taxonomy. These are values, never
// exceptions: behaviours and mailbox operations return them instead of
// panicking.
var (
	// ErrQueueClosed is the reason Body.Enqueue bounces an envelope with
	// when the target mailbox has already been closed (Enqueue itself
	// returns false). The envelope is bounced, not delivered.
	ErrQueueClosed = errors.New("actorcore: mailbox closed")

	// ErrUnexpectedMessage marks a message for which the current
	// behaviour has no handler.
	ErrUnexpectedMessage = errors.New("actorcore: unexpected message")

	// ErrRequestTimeout names a pending awaited or multiplexed response
	// that timed out. The runtime never produces it: the timeout
	// Disposable given to Request/RequestMultiplexed is only disposed when
	// the response arrives, and no error-response is sent on expiry.
	ErrRequestTimeout = errors.New("actorcore: request timed out")

	// ErrBouncedMessage names a request that was enqueued into a closed
	// mailbox. The bouncer does not use it: a bounced request's
	// error-response carries ErrQueueClosed or the actor's exit reason.
	ErrBouncedMessage = errors.New("actorcore: message bounced")

	// ErrActorExited names an operation against an actor whose strong
	// reference count has already reached zero. No operation returns it:
	// an envelope sent to such an actor is bounced with ErrQueueClosed.
	ErrActorExited = errors.New("actorcore: actor exited")

	// ErrNotExited is the synthetic cleanup reason used by on_unreachable
	// when an actor's strong count drops to zero without a prior call to
	// Cleanup.
	ErrNotExited = errors.New("actorcore: actor became unreachable")

	// ErrSchedulerStopped names a scheduler that has already shut down. No
	// operation returns it: a resumable submitted after Stop is discarded
	// without an error.
	ErrSchedulerStopped = errors.New("actorcore: scheduler stopped")
)
