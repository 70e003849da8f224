package actor

// bouncer is constructed from a failure reason and applied to every
// envelope that could not be delivered. If the envelope carries a
// request id, a synthetic error-response is routed back to the sender;
// otherwise the envelope is discarded silently.
type bouncer struct {
	reason    error
	scheduler *Scheduler
}

func newBouncer(reason error, sched *Scheduler) *bouncer {
	return &bouncer{reason: reason, scheduler: sched}
}

func (b *bouncer) apply(e *Envelope) {
	if !e.ID.IsRequest() || e.Sender == nil {
		return
	}
	reply := NewEnvelope(nil, e.ID.ErrorResponseTo(), nil, b.reason)
	senderBody := e.Sender.Body()
	if senderBody == nil {
		return
	}
	senderBody.Enqueue(reply, b.scheduler)
}
