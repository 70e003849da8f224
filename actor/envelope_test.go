package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageID_ResponseRoundTrip(t *testing.T) {
	req := NewRequestID(Normal, 42)
	assert.True(t, req.IsRequest())
	assert.False(t, req.IsResponse())

	resp := req.ResponseTo()
	assert.True(t, resp.IsResponse())
	assert.True(t, resp.matches(req))

	errResp := req.ErrorResponseTo()
	assert.Equal(t, ErrorResponse, errResp.Category())
	assert.True(t, errResp.matches(req))
}

func TestMessageID_UrgentIsHighPriority(t *testing.T) {
	urgent := NewRequestID(Urgent, 1)
	normal := NewRequestID(Normal, 1)
	assert.True(t, urgent.IsHighPriority())
	assert.False(t, normal.IsHighPriority())
}

func TestMessageID_AsyncIsNeitherRequestNorResponse(t *testing.T) {
	assert.False(t, AsyncID.IsRequest())
	assert.False(t, AsyncID.IsResponse())
}

func TestStages_PopIsLIFO(t *testing.T) {
	a, b := &ControlBlock{}, &ControlBlock{}
	stages := Stages{a, b}

	top, ok := stages.pop()
	assert.True(t, ok)
	assert.Same(t, b, top)

	top, ok = stages.pop()
	assert.True(t, ok)
	assert.Same(t, a, top)

	_, ok = stages.pop()
	assert.False(t, ok)
}
