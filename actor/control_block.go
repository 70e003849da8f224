package actor

import "sync/atomic"

// ControlBlock is the actor control block. It carries the
// actor's identity and two atomic reference counts: strong governs the
// liveness of the actor's Body, weak governs the liveness of the control
// block itself. Strong reaching zero fires on_unreachable cleanup on the
// body; weak reaching zero simply lets Go's GC reclaim the block (there is
// no manual deallocation step to mirror here).
type ControlBlock struct {
	Addr Address

	strong atomic.Int64
	weak   atomic.Int64

	unreachableOnce atomic.Bool
	body            atomic.Pointer[Body]
}

// newControlBlock returns a control block with one strong and one weak
// reference already held by the caller.
func newControlBlock(addr Address) *ControlBlock {
	cb := &ControlBlock{Addr: addr}
	cb.strong.Store(1)
	cb.weak.Store(1)
	return cb
}

// Address returns the (id, node) identity.
func (cb *ControlBlock) Address() Address { return cb.Addr }

// StrongCount returns the current strong reference count.
func (cb *ControlBlock) StrongCount() int64 { return cb.strong.Load() }

// WeakCount returns the current weak reference count.
func (cb *ControlBlock) WeakCount() int64 { return cb.weak.Load() }

func (cb *ControlBlock) setBody(b *Body) { cb.body.Store(b) }

// Body returns the actor body attached to this control block, or nil if
// it has not been attached yet.
func (cb *ControlBlock) Body() *Body { return cb.body.Load() }

// Retain duplicates an already-held strong handle: the caller must
// already own a strong reference (the common case: sending a copy of a
// handle to another actor).
func (cb *ControlBlock) Retain() *ControlBlock {
	cb.strong.Add(1)
	return cb
}

// Release drops one strong reference. When the count reaches zero, and
// only the first time this happens, on_unreachable fires on the attached
// body.
func (cb *ControlBlock) Release() {
	if cb.strong.Add(-1) == 0 {
		if cb.unreachableOnce.CompareAndSwap(false, true) {
			if b := cb.Body(); b != nil {
				b.onUnreachable()
			}
		}
	}
}

// WeakRef is a handle that owns only the control block, not the actor
// body. It must be upgraded to a strong ControlBlock reference before the
// body can be used.
type WeakRef struct {
	cb *ControlBlock
}

// RetainWeak hands out a new weak reference.
func (cb *ControlBlock) RetainWeak() WeakRef {
	cb.weak.Add(1)
	return WeakRef{cb: cb}
}

// Release drops this weak reference.
func (w WeakRef) Release() {
	w.cb.weak.Add(-1)
}

// Address returns the identity of the referenced actor, valid even if the
// actor itself is gone.
func (w WeakRef) Address() Address {
	return w.cb.Addr
}

// Upgrade attempts to produce a new strong handle. It fails if the strong
// count has already reached zero.
func (w WeakRef) Upgrade() (*ControlBlock, bool) {
	for {
		cur := w.cb.strong.Load()
		if cur == 0 {
			return nil, false
		}
		if w.cb.strong.CompareAndSwap(cur, cur+1) {
			return w.cb, true
		}
	}
}
