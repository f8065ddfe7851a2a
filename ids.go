package nodle

// NodeId is an opaque, stable identifier for a node within one Graph Store
// lifetime. NodeId zero is never assigned to a live node; it is used as the
// "provisional" id a factory produces before Store.AddNode assigns the real one.
type NodeId uint64

// PortIndex identifies a port within a single node and direction. It is not
// unique across nodes or across input/output within the same node.
type PortIndex int

// Direction distinguishes input ports (consumers) from output ports (producers).
type Direction uint8

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// idCounter assigns fresh NodeIds. Never reused within a Store's lifetime,
// per spec.md §3. Not atomic: the core is single-threaded cooperative (§5).
type idCounter struct {
	next NodeId
}

// nextID returns a fresh, never-before-issued NodeId.
func (c *idCounter) nextID() NodeId {
	c.next++
	return c.next
}
