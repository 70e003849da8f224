package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicker struct{ n int }

func (p *panicker) Receive(ctx *Context, msg any) Directive {
	p.n++
	if p.n == 2 {
		panic("boom")
	}
	return Consumed
}

func TestBody_PanicIsRecoveredAndTerminatesTheActor(t *testing.T) {
	control := newControlBlock(Address{ID: 10})
	body := newBody(control, &panicker{}, nil)
	body.flags.Set(FlagInitialized)

	body.Enqueue(NewEnvelope(nil, AsyncID, nil, "one"), nil)
	body.Enqueue(NewEnvelope(nil, AsyncID, nil, "two"), nil)

	result := body.Resume(nil, -1)
	assert.Equal(t, ResumeDone, result, "the panicking envelope must terminate the actor, not the worker")
	assert.True(t, body.terminated())
}

type skipOnce struct {
	skipped bool
	order   []string
}

func (s *skipOnce) Receive(ctx *Context, msg any) Directive {
	text := msg.(string)
	if text == "skip-me" && !s.skipped {
		s.skipped = true
		return Skipped
	}
	s.order = append(s.order, text)
	return Consumed
}

func TestBody_SkippedEnvelopeIsRestashedAtLaneHead(t *testing.T) {
	control := newControlBlock(Address{ID: 11})
	actorImpl := &skipOnce{}
	body := newBody(control, actorImpl, nil)
	body.flags.Set(FlagInitialized)

	body.Enqueue(NewEnvelope(nil, AsyncID, nil, "skip-me"), nil)
	body.Enqueue(NewEnvelope(nil, AsyncID, nil, "second"), nil)

	body.Resume(nil, -1) // first pass: "skip-me" is skipped, "second" is consumed
	body.Resume(nil, -1) // second pass: the re-stashed "skip-me" is finally consumed

	require.Equal(t, []string{"second", "skip-me"}, actorImpl.order)
}

func TestBody_EnqueueAfterCleanupBounces(t *testing.T) {
	control := newControlBlock(Address{ID: 12})
	body := newBody(control, &panicker{}, nil)
	body.Cleanup(nil, nil)

	ok := body.Enqueue(NewEnvelope(nil, NewRequestID(Normal, 1), nil, "x"), nil)
	assert.False(t, ok)
}
