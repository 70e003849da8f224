package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeWithID(payload any, id MessageID) *Envelope {
	return &Envelope{Payload: payload, ID: id}
}

func TestMailbox_UrgentOvertakesNormal(t *testing.T) {
	mb := NewMailbox()
	require.Equal(t, PushSuccess, mb.Enqueue(envelopeWithID("normal-1", AsyncID)))
	require.Equal(t, PushSuccess, mb.Enqueue(envelopeWithID("urgent-1", NewRequestID(Urgent, 1))))
	require.Equal(t, PushSuccess, mb.Enqueue(envelopeWithID("normal-2", AsyncID)))

	assert.Equal(t, "urgent-1", mb.PopFront().Payload)
	assert.Equal(t, "normal-1", mb.PopFront().Payload)
	assert.Equal(t, "normal-2", mb.PopFront().Payload)
	assert.Nil(t, mb.PopFront())
}

func TestMailbox_PushFrontPreservesSkipOrder(t *testing.T) {
	mb := NewMailbox()
	mb.Enqueue(envelopeWithID("a", AsyncID))
	mb.Enqueue(envelopeWithID("b", AsyncID))

	first := mb.PopFront()
	second := mb.PopFront()
	assert.Equal(t, "a", first.Payload)
	assert.Equal(t, "b", second.Payload)

	// Re-stash in reverse pop order, as Resume's skip path does.
	mb.PushFront(second)
	mb.PushFront(first)

	assert.Equal(t, "a", mb.PopFront().Payload)
	assert.Equal(t, "b", mb.PopFront().Payload)
}

func TestMailbox_SizeIncludesUnrefilledInboxContents(t *testing.T) {
	mb := NewMailbox()
	mb.Enqueue(envelopeWithID(1, AsyncID))
	mb.Enqueue(envelopeWithID(2, AsyncID))
	assert.Equal(t, 2, mb.Size())
}

func TestMailbox_CloseBouncesPendingAcrossBothLanes(t *testing.T) {
	mb := NewMailbox()
	mb.Enqueue(envelopeWithID("urgent", NewRequestID(Urgent, 1)))
	mb.Enqueue(envelopeWithID("normal", AsyncID))
	// Force the urgent envelope into the lane queue, leaving "late" on the
	// raw inbox stack, so Close must drain both.
	mb.PopFront()
	mb.PushFront(envelopeWithID("urgent", NewRequestID(Urgent, 1)))
	mb.Enqueue(envelopeWithID("late", AsyncID))

	var bounced []any
	n := mb.Close(func(e *Envelope) { bounced = append(bounced, e.Payload) })
	assert.Equal(t, 3, n)
	assert.ElementsMatch(t, []any{"urgent", "normal", "late"}, bounced)
	assert.True(t, mb.Closed())
}

func TestMailbox_PeekResponseFindsAcrossLanes(t *testing.T) {
	mb := NewMailbox()
	request := NewRequestID(Normal, 7)
	mb.Enqueue(envelopeWithID("other", AsyncID))
	mb.Enqueue(envelopeWithID("reply", request.ResponseTo()))

	found := mb.PeekResponse(request)
	require.NotNil(t, found)
	assert.Equal(t, "reply", found.Payload)
	// Peek must not remove it.
	assert.Equal(t, 2, mb.Size())
}
