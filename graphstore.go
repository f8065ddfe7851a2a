package nodle

import (
	"fmt"
	"os"
)

// Store is the authoritative in-memory representation of one graph level
// (spec.md §4.1). A subgraph node's Node.Subgraph is itself a *Store.
type Store struct {
	ids         idCounter
	nodes       map[NodeId]*Node
	connections []Connection // order is used for deterministic test iteration only
	subscribers []GraphSubscriber

	debug bool
}

// NewStore creates an empty Graph Store.
func NewStore() *Store {
	return &Store{nodes: make(map[NodeId]*Node)}
}

// SetDebug enables stderr tracing of mutations, mirroring the teacher's
// opt-in Scene.debug convention (see debug.go).
func (s *Store) SetDebug(enabled bool) { s.debug = enabled }

func (s *Store) logf(format string, args ...any) {
	if s.debug {
		_, _ = fmt.Fprintf(os.Stderr, "[nodle/graphstore] "+format+"\n", args...)
	}
}

// Subscribe registers a subscriber that receives every GraphEvent emitted by
// this Store, synchronously, before the mutating call returns (spec.md §5).
func (s *Store) Subscribe(sub GraphSubscriber) {
	s.subscribers = append(s.subscribers, sub)
}

func (s *Store) emit(evt GraphEvent) {
	for _, sub := range s.subscribers {
		sub.OnGraphEvent(evt)
	}
}

// Node returns the node with the given id, or ok=false if it does not exist.
func (s *Store) Node(id NodeId) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// NodeIDs returns every node id currently in the store. Iteration order is
// not observable / not guaranteed (spec.md §3).
func (s *Store) NodeIDs() []NodeId {
	ids := make([]NodeId, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of nodes currently in the store.
func (s *Store) Len() int { return len(s.nodes) }

// Connections returns the ordered connection list. The order is stable and
// used for deterministic test iteration, but carries no semantic meaning
// (spec.md §3).
func (s *Store) Connections() []Connection {
	out := make([]Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

// AddNode inserts node, assigning it a fresh NodeId, marking it Dirty, and
// emitting NodeAdded. node.Parameters is initialized to an empty map if nil.
func (s *Store) AddNode(node *Node) NodeId {
	id := s.ids.nextID()
	node.id = id
	node.state = NodeDirty
	if node.Parameters == nil {
		node.Parameters = make(map[string]NodeData)
	}
	s.nodes[id] = node
	s.logf("AddNode %d (%s)", id, node.TypeId)
	s.emit(GraphEvent{Kind: EventNodeAdded, NodeId: id})
	return id
}

// RemoveNode removes the node and cascades to every connection referencing
// it, emitting ConnectionRemoved for each before NodeRemoved (spec.md §3
// "Lifecycles"). No-op (no event emitted) if the node does not exist.
func (s *Store) RemoveNode(id NodeId) {
	if _, ok := s.nodes[id]; !ok {
		return
	}

	// Cascade: remove connections touching this node, highest index first so
	// indices of earlier connections stay valid while we remove.
	for i := len(s.connections) - 1; i >= 0; i-- {
		c := s.connections[i]
		if c.FromNode == id || c.ToNode == id {
			s.removeConnectionAt(i)
		}
	}

	delete(s.nodes, id)
	s.logf("RemoveNode %d", id)
	s.emit(GraphEvent{Kind: EventNodeRemoved, NodeId: id})
}

// AddConnection validates and inserts conn. If replace is true and the input
// port is already occupied (and does not allow multiple), the existing
// connection is removed first and the new one added atomically; otherwise
// occupancy is reported as ErrInputOccupied (spec.md §4.1).
func (s *Store) AddConnection(conn Connection, replace bool) error {
	from, ok := s.nodes[conn.FromNode]
	if !ok {
		return fmt.Errorf("nodle: add connection: %w: node %d", ErrUnknownNode, conn.FromNode)
	}
	to, ok := s.nodes[conn.ToNode]
	if !ok {
		return fmt.Errorf("nodle: add connection: %w: node %d", ErrUnknownNode, conn.ToNode)
	}

	outPort, ok := from.OutputPort(conn.FromOutput)
	if !ok {
		return fmt.Errorf("nodle: add connection: %w: output %d on node %d", ErrPortOutOfRange, conn.FromOutput, conn.FromNode)
	}
	inPort, ok := to.InputPort(conn.ToInput)
	if !ok {
		return fmt.Errorf("nodle: add connection: %w: input %d on node %d", ErrPortOutOfRange, conn.ToInput, conn.ToNode)
	}

	if outPort.Direction != DirectionOutput || inPort.Direction != DirectionInput {
		return fmt.Errorf("nodle: add connection: %w", ErrDirectionMismatch)
	}

	if !outPort.Type.AssignableTo(inPort.Type) {
		return fmt.Errorf("nodle: add connection: %w: %s -> %s", ErrTypeMismatch, outPort.Type, inPort.Type)
	}

	// Occupancy: scan every connection into the same input for an exact
	// duplicate first — an AllowMultiple input can carry more than one
	// connection, so the duplicate could be the second or later one, not
	// just the first match findInputConnection would see.
	if s.findDuplicateConnection(conn) >= 0 {
		// Exact duplicate: treat as already-occupied, no state change.
		return fmt.Errorf("nodle: add connection: %w", ErrInputOccupied)
	}
	existingIdx := s.findInputConnection(conn.ToNode, conn.ToInput)
	if existingIdx >= 0 && !inPort.AllowMultiple && !replace {
		return fmt.Errorf("nodle: add connection: %w", ErrInputOccupied)
	}

	// Checked before any replaced connection is removed, so a rejected
	// connection leaves the store unchanged.
	if s.wouldCycle(conn) {
		return fmt.Errorf("nodle: add connection: %w", ErrWouldCycle)
	}

	if existingIdx >= 0 && !inPort.AllowMultiple {
		s.removeConnectionAt(existingIdx)
	}

	s.connections = append(s.connections, conn)
	s.logf("AddConnection %d:%d -> %d:%d", conn.FromNode, conn.FromOutput, conn.ToNode, conn.ToInput)
	s.emit(GraphEvent{Kind: EventConnectionAdded, Connection: conn})
	return nil
}

// RemoveConnection removes the connection at index, or is a no-op if index
// is out of range.
func (s *Store) RemoveConnection(index int) {
	if index < 0 || index >= len(s.connections) {
		return
	}
	s.removeConnectionAt(index)
}

// removeConnectionAt removes s.connections[index] and emits
// ConnectionRemoved. Caller must have validated the index.
func (s *Store) removeConnectionAt(index int) {
	conn := s.connections[index]
	s.connections = append(s.connections[:index], s.connections[index+1:]...)
	s.logf("RemoveConnection %d:%d -> %d:%d", conn.FromNode, conn.FromOutput, conn.ToNode, conn.ToInput)
	s.emit(GraphEvent{Kind: EventConnectionRemoved, Connection: conn})
}

// SetParameter updates a node's parameter value and emits ParameterChanged.
func (s *Store) SetParameter(id NodeId, name string, value NodeData) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("nodle: set parameter: %w: node %d", ErrUnknownNode, id)
	}
	if n.Parameters == nil {
		n.Parameters = make(map[string]NodeData)
	}
	n.Parameters[name] = value
	s.emit(GraphEvent{Kind: EventParameterChanged, NodeId: id})
	return nil
}

// findInputConnection returns the index of the connection terminating at
// (node, input), or -1 if none exists. When multiple are permitted this
// returns the first found; callers that need all of them should use InputsOf.
func (s *Store) findInputConnection(node NodeId, input PortIndex) int {
	for i, c := range s.connections {
		if c.ToNode == node && c.ToInput == input {
			return i
		}
	}
	return -1
}

// findDuplicateConnection returns the index of an existing connection whose
// four endpoints (FromNode, FromOutput, ToNode, ToInput) exactly match
// conn, or -1 if none does. Unlike findInputConnection it scans every
// connection terminating at conn's input rather than stopping at the first
// match, since an AllowMultiple input can hold several connections and the
// duplicate may not be the first one.
func (s *Store) findDuplicateConnection(conn Connection) int {
	for i, c := range s.connections {
		if c.ToNode == conn.ToNode && c.ToInput == conn.ToInput && c.sameEndpoints(conn) {
			return i
		}
	}
	return -1
}

// InputsOf returns every connection terminating at one of node's input ports.
func (s *Store) InputsOf(node NodeId) []Connection {
	var out []Connection
	for _, c := range s.connections {
		if c.ToNode == node {
			out = append(out, c)
		}
	}
	return out
}

// OutputsOf returns every connection originating at one of node's output ports.
func (s *Store) OutputsOf(node NodeId) []Connection {
	var out []Connection
	for _, c := range s.connections {
		if c.FromNode == node {
			out = append(out, c)
		}
	}
	return out
}

// Downstream returns the distinct set of nodes directly consuming one of
// node's outputs.
func (s *Store) Downstream(node NodeId) []NodeId {
	seen := make(map[NodeId]bool)
	var out []NodeId
	for _, c := range s.connections {
		if c.FromNode == node && !seen[c.ToNode] {
			seen[c.ToNode] = true
			out = append(out, c.ToNode)
		}
	}
	return out
}

// Upstream returns the distinct set of nodes node directly consumes from.
func (s *Store) Upstream(node NodeId) []NodeId {
	seen := make(map[NodeId]bool)
	var out []NodeId
	for _, c := range s.connections {
		if c.ToNode == node && !seen[c.FromNode] {
			seen[c.FromNode] = true
			out = append(out, c.FromNode)
		}
	}
	return out
}

// wouldCycle reports whether adding conn (FromNode -> ToNode) would create a
// cycle given the connections already present. A self-connection is
// trivially a cycle. Otherwise it holds iff FromNode is already reachable
// from ToNode via existing connections (spec.md §4.1).
func (s *Store) wouldCycle(conn Connection) bool {
	if conn.FromNode == conn.ToNode {
		return true
	}
	visited := make(map[NodeId]bool)
	stack := []NodeId{conn.ToNode}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == conn.FromNode {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, s.Downstream(n)...)
	}
	return false
}
