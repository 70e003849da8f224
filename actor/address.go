package actor

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// ID is a process-wide unique actor identifier. Zero is reserved to mean
// "invalid".
type ID uint64

// InvalidID is the reserved zero value meaning "no actor".
const InvalidID ID = 0

// NodeID names the host process an actor lives on. A single actorcore
// System generates one NodeID at boot; it never changes for the life of
// the process.
type NodeID uuid.UUID

// String renders the node id the way the rest of the pack renders uuids.
func (n NodeID) String() string {
	return uuid.UUID(n).String()
}

// NewNodeID returns a fresh, random node identity.
func NewNodeID() NodeID {
	return NodeID(uuid.New())
}

// Address is the (id, node) pair used for equality, hashing, and printing
// of an actor handle. Two addresses are equal iff both fields match.
type Address struct {
	ID   ID
	Node NodeID
}

// Valid reports whether the address names a real actor.
func (a Address) Valid() bool {
	return a.ID != InvalidID
}

func (a Address) String() string {
	return fmt.Sprintf("actor#%d@%s", uint64(a.ID), a.Node.String())
}

// idGenerator hands out process-wide unique actor ids starting at 1.
type idGenerator struct {
	counter atomic.Uint64
}

func (g *idGenerator) next() ID {
	return ID(g.counter.Add(1))
}
