package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlBlock_ReleaseFiresOnUnreachableExactlyOnce(t *testing.T) {
	cb := newControlBlock(Address{ID: 1})
	calls := 0
	body := &Body{control: cb, mailbox: NewMailbox(), user: behaviorActor(func(*Context, any) Directive { return Consumed })}
	body.attachables.add(AttachableFunc(func(error) { calls++ }))
	cb.setBody(body)

	cb.Retain() // strong = 2
	cb.Release()
	assert.Equal(t, 0, calls, "must not fire while another strong ref remains")

	cb.Release()
	assert.Equal(t, 1, calls)

	// A further Release below zero must never re-fire cleanup.
	cb.strong.Store(0)
	cb.Release()
	assert.Equal(t, 1, calls)
}

func TestWeakRef_UpgradeFailsAfterStrongReachesZero(t *testing.T) {
	cb := newControlBlock(Address{ID: 2})
	body := &Body{control: cb, mailbox: NewMailbox(), user: behaviorActor(func(*Context, any) Directive { return Consumed })}
	cb.setBody(body)

	weak := cb.RetainWeak()
	upgraded, ok := weak.Upgrade()
	require.True(t, ok)
	upgraded.Release()

	cb.Release() // drops the original strong ref to zero
	_, ok = weak.Upgrade()
	assert.False(t, ok)
	assert.Equal(t, cb.Address(), weak.Address(), "address stays valid after the body is gone")
}

func TestControlBlock_RetainIncrementsStrongCount(t *testing.T) {
	cb := newControlBlock(Address{ID: 3})
	assert.EqualValues(t, 1, cb.StrongCount())
	cb.Retain()
	assert.EqualValues(t, 2, cb.StrongCount())
}
