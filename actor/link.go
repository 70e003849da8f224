package actor

// ExitMessage is delivered to an actor when one of its link partners
// terminates. The default handler terminates the receiver with the same
// reason; an actor may install an ExitHandler to downgrade it to normal
// handling instead.
type ExitMessage struct {
	Source Address
	Reason error
}

// ExitHandler inspects an incoming ExitMessage and reports whether it
// handled it (true: treat as handled, actor keeps running; false: fall
// through to the default "terminate with the same reason" behaviour).
type ExitHandler func(ctx *Context, msg ExitMessage) bool

// linkAddrLess gives a total order over addresses so that two bodies'
// mutexes can always be acquired low-to-high, preventing deadlock when
// linking/unlinking concurrently from both ends.
func linkAddrLess(a, b Address) bool {
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	return a.Node.String() < b.Node.String()
}

// linkTo establishes a bidirectional link between a and b, taking both
// bodies' mutexes in address order. A link to self or a duplicate link
// is a no-op.
func linkTo(a, b *Body) {
	if a == b || a.control.Address() == b.control.Address() {
		return
	}
	first, second := a, b
	if !linkAddrLess(a.control.Address(), b.control.Address()) {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	defer second.mu.Unlock()
	defer first.mu.Unlock()

	if a.terminated() || b.terminated() {
		return
	}
	if a.links == nil {
		a.links = make(map[Address]WeakRef)
	}
	if b.links == nil {
		b.links = make(map[Address]WeakRef)
	}
	if _, exists := a.links[b.control.Address()]; !exists {
		a.links[b.control.Address()] = b.control.RetainWeak()
	}
	if _, exists := b.links[a.control.Address()]; !exists {
		b.links[a.control.Address()] = a.control.RetainWeak()
	}
}

// unlinkFrom removes a bidirectional link, taking both mutexes in
// address order. Unlinking a non-existent link is a no-op.
func unlinkFrom(a, b *Body) {
	if a == b {
		return
	}
	first, second := a, b
	if !linkAddrLess(a.control.Address(), b.control.Address()) {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	defer second.mu.Unlock()
	defer first.mu.Unlock()

	if w, ok := a.links[b.control.Address()]; ok {
		w.Release()
		delete(a.links, b.control.Address())
	}
	if w, ok := b.links[a.control.Address()]; ok {
		w.Release()
		delete(b.links, a.control.Address())
	}
}
