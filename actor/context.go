package actor

import "time"

// Context is passed to a Behavior for each envelope it processes. It
// exposes the current message's provenance and lets the behaviour reply,
// forward, switch behaviours, or register response handlers.
type Context struct {
	self      *Body
	sched     *Scheduler
	sys       *System
	envelope  *Envelope
}

// Self returns the control block of the actor processing this message.
func (c *Context) Self() *ControlBlock { return c.self.control }

// Sender returns the sender of the current message, or nil if it had
// none (e.g. it originated from the clock or from outside the system).
func (c *Context) Sender() *ControlBlock { return c.envelope.Sender }

// MessageID returns the id of the message currently being processed.
func (c *Context) MessageID() MessageID { return c.envelope.ID }

// System returns the System the actor is running under.
func (c *Context) System() *System { return c.sys }

// Become pushes a new behaviour on top of the actor's behaviour stack.
func (c *Context) Become(b Behavior) { c.self.behaviors.push(b) }

// Unbecome pops back to the previous behaviour. A no-op if there is only
// one behaviour on the stack.
func (c *Context) Unbecome() {
	if len(c.self.behaviors.frames) > 1 {
		c.self.behaviors.pop()
	}
}

// Reply answers the current message: if its forwarding stack is
// non-empty, the value is sent to the popped top stage; otherwise it goes
// to Sender. The reply's id preserves the original request correlation.
func (c *Context) Reply(payload any) {
	e := c.envelope
	replyID := e.ID
	if e.ID.IsRequest() {
		replyID = e.ID.ResponseTo()
	}
	target, stages, ok := e.nextForwardingTarget()
	if !ok {
		target = e.Sender
	}
	if target == nil {
		return
	}
	if body := target.Body(); body != nil {
		body.Enqueue(NewEnvelope(c.self.control, replyID, stages, payload), c.sched)
	}
}

// ReplyError answers the current request with an error-response.
func (c *Context) ReplyError(reason error) {
	e := c.envelope
	if !e.ID.IsRequest() {
		return
	}
	target := e.Sender
	if target == nil {
		return
	}
	if body := target.Body(); body != nil {
		body.Enqueue(NewEnvelope(c.self.control, e.ID.ErrorResponseTo(), nil, reason), c.sched)
	}
}

// Forward re-sends the current message to target, pushing this actor onto
// the forwarding stack so a later Reply from target is delivered to this
// actor rather than to the original sender.
func (c *Context) Forward(target *ControlBlock) {
	e := c.envelope
	body := target.Body()
	if body == nil {
		return
	}
	fwd := NewEnvelope(e.Sender, e.ID, append(append(Stages{}, e.Stages...), c.self.control), e.Payload)
	body.Enqueue(fwd, c.sched)
}

// Send delivers payload to target as a new asynchronous message.
func (c *Context) Send(target *ControlBlock, payload any) bool {
	body := target.Body()
	if body == nil {
		return false
	}
	return body.Enqueue(NewEnvelope(c.self.control, AsyncID, nil, payload), c.sched)
}

// Request delivers payload to target as a request and registers handler
// to be invoked against the response. Responses are matched against the
// awaited stack with strict stack discipline: the most recently awaited
// id must match the next incoming response.
func (c *Context) Request(target *ControlBlock, payload any, timeout Disposable, handler ResponseHandler) bool {
	id := c.self.nextRequestID(Normal)
	body := target.Body()
	if body == nil {
		return false
	}
	// Registered before the enqueue even if it fails: a closed target
	// bounces the request back as an error-response, which this handler
	// then receives.
	c.self.awaitResponse(id, handler, timeout)
	return body.Enqueue(NewEnvelope(c.self.control, id, nil, payload), c.sched)
}

// RequestMultiplexed is like Request but registers the handler in the
// multiplexed registry: responses dispatch in arrival order, not
// matching order.
func (c *Context) RequestMultiplexed(target *ControlBlock, payload any, timeout Disposable, handler ResponseHandler) bool {
	id := c.self.nextRequestID(Normal)
	body := target.Body()
	if body == nil {
		return false
	}
	c.self.multiplexResponse(id, handler, timeout)
	return body.Enqueue(NewEnvelope(c.self.control, id, nil, payload), c.sched)
}

// Link establishes a bidirectional link with other.
func (c *Context) Link(other *ControlBlock) {
	if ob := other.Body(); ob != nil {
		linkTo(c.self, ob)
	}
}

// Unlink removes a bidirectional link with other.
func (c *Context) Unlink(other *ControlBlock) {
	if ob := other.Body(); ob != nil {
		unlinkFrom(c.self, ob)
	}
}

// Attach registers a cleanup callback and returns a token Detach can use
// to remove it before it fires.
func (c *Context) Attach(a Attachable) Attachable {
	c.self.mu.Lock()
	defer c.self.mu.Unlock()
	return c.self.attachables.add(a)
}

// Detach removes a previously attached callback. Returns false if it had
// already fired or was never attached.
func (c *Context) Detach(tok Attachable) bool {
	c.self.mu.Lock()
	defer c.self.mu.Unlock()
	return c.self.attachables.remove(tok)
}

// Quit terminates the actor with the given reason once the current
// envelope finishes processing.
func (c *Context) Quit(reason error) {
	c.self.quitReason = reason
	c.self.quitRequested = true
}

// nextForwardingTarget pops the top forwarding stage, if any.
func (e *Envelope) nextForwardingTarget() (*ControlBlock, Stages, bool) {
	if cb, ok := e.Stages.pop(); ok {
		return cb, e.Stages, true
	}
	return nil, nil, false
}

// Now returns the current time as seen by the system's Clock, or the
// wall-clock time if none was configured — letting behaviours stay
// agnostic of whether they're running under a virtual test clock.
func (c *Context) Now() time.Time {
	if c.sys != nil && c.sys.Clock() != nil {
		return c.sys.Clock().Now()
	}
	return time.Now()
}
