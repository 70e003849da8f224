package actor

import "time"

// Category classifies a MessageID.
type Category uint8

const (
	// Normal is a fire-and-forget or un-awaited request message.
	Normal Category = iota
	// Urgent messages preempt Normal messages at dequeue time.
	Urgent
	// Response marks a message answering an earlier request.
	Response
	// ErrorResponse marks a response carrying a failure instead of a value.
	ErrorResponse
)

// requestNumber bits: category occupies the top 2 bits, the remaining 62
// bits carry a monotonically increasing request counter. A response's
// request counter is the one's complement of its originating request's
// counter, mirroring CAF's message_id encoding.
const (
	categoryShift = 62
	categoryMask  = uint64(0b11) << categoryShift
	numberMask    = ^categoryMask
)

// MessageID packs a Category and a request number into a single 64-bit
// value. The zero value is the async id used by fire-and-forget sends.
type MessageID uint64

// AsyncID is the id carried by asynchronous (non-request) messages.
const AsyncID MessageID = 0

// NewRequestID builds a request id of category Normal or Urgent with the
// given request number.
func NewRequestID(cat Category, number uint64) MessageID {
	return MessageID((uint64(cat) << categoryShift) | (number & numberMask))
}

// Category extracts the category bits.
func (m MessageID) Category() Category {
	return Category(uint64(m) >> categoryShift)
}

// IsRequest reports whether this id expects a response.
func (m MessageID) IsRequest() bool {
	return m != AsyncID && (m.Category() == Normal || m.Category() == Urgent)
}

// IsResponse reports whether this id answers an earlier request.
func (m MessageID) IsResponse() bool {
	cat := m.Category()
	return cat == Response || cat == ErrorResponse
}

// IsHighPriority reports whether this id belongs to the urgent lane.
func (m MessageID) IsHighPriority() bool {
	return m.Category() == Urgent
}

// RequestNumber returns the raw counter bits, independent of category.
func (m MessageID) RequestNumber() uint64 {
	return uint64(m) & numberMask
}

// ResponseTo derives the response id (category Response) that answers this
// request id: the request number is complemented, matching CAF's
// "response id carries the complement of the request number".
func (m MessageID) ResponseTo() MessageID {
	return MessageID((uint64(Response) << categoryShift) | (^uint64(m) & numberMask))
}

// ErrorResponseTo derives the error-response id answering this request id.
func (m MessageID) ErrorResponseTo() MessageID {
	return MessageID((uint64(ErrorResponse) << categoryShift) | (^uint64(m) & numberMask))
}

// matches reports whether a response id answers the given request id.
func (m MessageID) matches(request MessageID) bool {
	return m.RequestNumber() == (^request.RequestNumber() & numberMask)
}

// Stages is the forwarding stack: stages[len-1] is the next hop for a
// behaviour's return value; an empty stack routes the value back to
// Sender.
type Stages []*ControlBlock

// pop returns and removes the last stage, or (nil, false) if empty.
func (s *Stages) pop() (*ControlBlock, bool) {
	n := len(*s)
	if n == 0 {
		return nil, false
	}
	top := (*s)[n-1]
	*s = (*s)[:n-1]
	return top, true
}

// Envelope is the unit of transport between actors. It is immovable once
// enqueued; ownership transfers from sender to receiver and it is never
// processed twice.
type Envelope struct {
	Sender      *ControlBlock
	ID          MessageID
	Stages      Stages
	Payload     any
	EnqueueTime time.Time

	next *Envelope // intrusive LIFO link, owned by the inbox
}

// NewEnvelope allocates a new envelope ready for enqueueing.
func NewEnvelope(sender *ControlBlock, id MessageID, stages Stages, payload any) *Envelope {
	return &Envelope{
		Sender:      sender,
		ID:          id,
		Stages:      stages,
		Payload:     payload,
		EnqueueTime: time.Now(),
	}
}

// IsHighPriority reports whether this envelope belongs in the urgent lane.
func (e *Envelope) IsHighPriority() bool {
	return e.ID.IsHighPriority()
}

// SecondsSinceEnqueue mirrors CAF's mailbox_element::seconds_since_enqueue.
func (e *Envelope) SecondsSinceEnqueue() float64 {
	return time.Since(e.EnqueueTime).Seconds()
}
