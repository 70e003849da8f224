package actor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbox_PushReportsBlockedReaderExactlyOnce(t *testing.T) {
	ib := NewInbox()
	require.True(t, ib.TryBlock())

	var wg sync.WaitGroup
	results := make(chan PushResult, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ib.Push(&Envelope{})
		}()
	}
	wg.Wait()
	close(results)

	unblockers := 0
	for r := range results {
		if r == PushUnblockedReader {
			unblockers++
		}
	}
	assert.Equal(t, 1, unblockers, "exactly one concurrent push must observe the blocked->active transition")
}

func TestInbox_PushAfterCloseBounces(t *testing.T) {
	ib := NewInbox()
	ib.Close(func(*Envelope) {})
	assert.Equal(t, PushQueueClosed, ib.Push(&Envelope{}))
}

func TestInbox_CloseIsIdempotent(t *testing.T) {
	ib := NewInbox()
	ib.Push(&Envelope{Payload: "a"})

	var drained []any
	ib.Close(func(e *Envelope) { drained = append(drained, e.Payload) })
	ib.Close(func(e *Envelope) { drained = append(drained, e.Payload) })

	assert.Equal(t, []any{"a"}, drained)
}

func TestInbox_TryBlockRequiresEmpty(t *testing.T) {
	ib := NewInbox()
	ib.Push(&Envelope{})
	assert.False(t, ib.TryBlock(), "TryBlock must fail once something is pending")
}
