package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoer replies to every request with the same payload, and records
// every message it sees.
type echoer struct {
	mu       sync.Mutex
	received []any
}

func (e *echoer) Receive(ctx *Context, msg any) Directive {
	e.mu.Lock()
	e.received = append(e.received, msg)
	e.mu.Unlock()
	if ctx.MessageID().IsRequest() {
		ctx.Reply(msg)
	}
	return Consumed
}

// clientFunc adapts a PreStart-only closure into a spawnable Actor, for
// tests that only need to fire something off when the actor starts.
type clientFunc func(ctx *Context)

func (f clientFunc) PreStart(ctx *Context)         { f(ctx) }
func (clientFunc) Receive(*Context, any) Directive { return Dropped }

// behaviorActor lets a bare function value satisfy Actor.
type behaviorActor func(ctx *Context, msg any) Directive

func (b behaviorActor) Receive(ctx *Context, msg any) Directive { return b(ctx, msg) }

func newRunningSystem(t *testing.T) *System {
	t.Helper()
	sys := NewSystem(DefaultConfig())
	sys.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sys.Shutdown(ctx)
	})
	return sys
}

func TestSystem_RequestReplyRoundTrip(t *testing.T) {
	sys := newRunningSystem(t)

	target := sys.Spawn(func(*System, Address) Actor { return &echoer{} }, SpawnOptions{})

	type reply struct {
		msg     any
		isError bool
	}
	replies := make(chan reply, 1)

	sys.Spawn(func(*System, Address) Actor {
		return clientFunc(func(ctx *Context) {
			ctx.Request(target, "ping", NoTimeout, func(_ *Context, msg any, isError bool) {
				replies <- reply{msg: msg, isError: isError}
			})
		})
	}, SpawnOptions{})

	select {
	case r := <-replies:
		assert.Equal(t, "ping", r.msg)
		assert.False(t, r.isError)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestSystem_ClosedMailboxBouncesRequestAsErrorResponse(t *testing.T) {
	sys := newRunningSystem(t)

	target := sys.Spawn(func(*System, Address) Actor {
		return behaviorActor(func(ctx *Context, msg any) Directive {
			ctx.Quit(nil)
			return Consumed
		})
	}, SpawnOptions{})

	sys.Spawn(func(*System, Address) Actor {
		return clientFunc(func(ctx *Context) {
			ctx.Send(target, "wake") // drives target through one Resume, then it quits
		})
	}, SpawnOptions{})

	// Give the target a moment to terminate, then fire a request at its
	// now-closed mailbox.
	time.Sleep(50 * time.Millisecond)

	type reply struct {
		msg     any
		isError bool
	}
	replies := make(chan reply, 1)

	sys.Spawn(func(*System, Address) Actor {
		return clientFunc(func(ctx *Context) {
			ctx.Request(target, "late", NoTimeout, func(_ *Context, msg any, isError bool) {
				replies <- reply{msg: msg, isError: isError}
			})
		})
	}, SpawnOptions{})

	select {
	case r := <-replies:
		assert.True(t, r.isError)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bounced error-response")
	}
}

func TestSystem_LinkPropagatesExit(t *testing.T) {
	sys := newRunningSystem(t)

	exitSeen := make(chan ExitMessage, 1)

	target := sys.Spawn(func(*System, Address) Actor {
		return behaviorActor(func(ctx *Context, msg any) Directive {
			ctx.Quit(ErrNotExited)
			return Consumed
		})
	}, SpawnOptions{})

	linked := sys.Spawn(func(*System, Address) Actor {
		return behaviorActor(func(ctx *Context, msg any) Directive {
			return Consumed
		})
	}, SpawnOptions{})
	// ExitMessages never reach the behaviour; they go to the exit handler,
	// which observes this one and then lets the default policy apply.
	linked.Body().SetExitHandler(func(_ *Context, em ExitMessage) bool {
		exitSeen <- em
		return false
	})

	ctxLink := &Context{self: linked.Body(), sched: sys.Scheduler(), sys: sys}
	ctxLink.Link(target)
	ctxLink.Send(target, "wake")

	select {
	case em := <-exitSeen:
		require.Equal(t, target.Address(), em.Source)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for exit propagation")
	}
}

func TestSystem_MaxActorsBoundsAdmission(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxActors = 1
	sys := NewSystem(cfg)
	sys.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sys.Shutdown(ctx)
	}()

	first := sys.Spawn(func(*System, Address) Actor { return &echoer{} }, SpawnOptions{})
	require.NotNil(t, first)

	blockedCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := sys.SpawnContext(blockedCtx, func(*System, Address) Actor { return &echoer{} }, SpawnOptions{})
	assert.Error(t, err, "second spawn must block while the cap is held")

	first.Body().Cleanup(nil, sys.Scheduler())

	freeCtx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	second, err := sys.SpawnContext(freeCtx, func(*System, Address) Actor { return &echoer{} }, SpawnOptions{})
	require.NoError(t, err, "admission slot must be released on deregister")
	assert.NotNil(t, second)
}
