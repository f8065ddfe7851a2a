package nodle

// NodeState is one of {Clean, Dirty, Computing, Error} (spec.md §3). Initial
// state on insertion is Dirty.
type NodeState uint8

const (
	NodeClean NodeState = iota
	NodeDirty
	NodeComputing
	NodeError
)

func (s NodeState) String() string {
	switch s {
	case NodeClean:
		return "Clean"
	case NodeDirty:
		return "Dirty"
	case NodeComputing:
		return "Computing"
	case NodeError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Node is a node envelope owned by the Graph Store. Its concrete processing
// logic, when contributed by a plugin, lives behind a PluginNodeHandle (see
// package plugin); the Store only ever holds this generic envelope plus a
// handle to that implementation (spec.md §3 "Lifecycles").
type Node struct {
	id NodeId

	// TypeId names the node's type, e.g. "Math.Add" or "<plugin>.<node>".
	TypeId      string
	DisplayName string

	// Parameters maps parameter name to its current value. Populated from
	// the factory's ParameterSchema defaults on creation.
	Parameters map[string]NodeData

	Position Vec2
	Size     Vec2

	Inputs  []PortDefinition
	Outputs []PortDefinition

	PanelType PanelType
	Visible   bool

	// Subgraph is non-nil for a subgraph node: it owns a child Graph Store
	// entered by the View's navigation stack (spec.md §3, §4.7).
	Subgraph *Store

	// Impl is an opaque handle to the plugin- or built-in-owned processing
	// logic for this node. The Store never type-asserts it; only the
	// Execution Engine's dispatcher and the owning registry do.
	Impl NodeProcessor

	state     NodeState
	lastError error
}

// ID returns the node's Graph-Store-assigned identifier. Zero for a node
// that has not yet been inserted via Store.AddNode.
func (n *Node) ID() NodeId { return n.id }

// State returns the node's current execution state.
func (n *Node) State() NodeState { return n.state }

// LastError returns the error recorded the last time this node transitioned
// to NodeError, or nil if it has never errored.
func (n *Node) LastError() error { return n.lastError }

// InputPort returns the input port definition at idx, or ok=false if idx is
// out of range or not an input.
func (n *Node) InputPort(idx PortIndex) (PortDefinition, bool) {
	if idx < 0 || int(idx) >= len(n.Inputs) {
		return PortDefinition{}, false
	}
	return n.Inputs[idx], true
}

// OutputPort returns the output port definition at idx, or ok=false if idx
// is out of range.
func (n *Node) OutputPort(idx PortIndex) (PortDefinition, bool) {
	if idx < 0 || int(idx) >= len(n.Outputs) {
		return PortDefinition{}, false
	}
	return n.Outputs[idx], true
}

// NodeProcessor is the interface the Execution Engine dispatches to when a
// dirty node is evaluated. Built-in node types and plugin-produced nodes
// both implement it; the plugin boundary (package plugin) wraps a
// PluginNodeHandle behind this interface so the scheduler never needs to
// know whether a node came from a plugin.
type NodeProcessor interface {
	// Process computes this node's outputs from its assembled inputs. A
	// panic inside Process is caught by the scheduler's panic guard and
	// converted to ErrNodeProcessing; Process itself may also return an
	// explicit error.
	Process(inputs map[PortIndex]NodeData) (outputs map[PortIndex]NodeData, err error)
}

// NodeProcessorFunc adapts a plain function to NodeProcessor, for built-in
// node types that need no extra state.
type NodeProcessorFunc func(inputs map[PortIndex]NodeData) (map[PortIndex]NodeData, error)

func (f NodeProcessorFunc) Process(inputs map[PortIndex]NodeData) (map[PortIndex]NodeData, error) {
	return f(inputs)
}
