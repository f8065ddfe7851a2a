package nodle

// PortDefinition describes a single input or output port on a node type.
// By default inputs accept at most one connection and outputs accept many
// (spec.md §3).
type PortDefinition struct {
	Name      string
	Direction Direction
	Type      DataType
	// Required marks an input port that must be connected (or carry a
	// default parameter value) before the node can be considered complete.
	// The scheduler does not enforce this; it is exposed for UI validation.
	Required bool
	// AllowMultiple permits more than one connection into an input port.
	// Ignored for output ports, which always allow multiple.
	AllowMultiple bool
}

// PanelType tags which kind of panel, if any, a node's metadata requests.
type PanelType uint8

const (
	PanelNone PanelType = iota
	PanelParameter
	PanelViewport
	PanelCombined
)

// ParameterSchema describes one entry in a node type's default parameter
// set, used to drive data-driven UI generation (spec.md §9: "Dynamic type
// reflection for parameters... replaced by an explicit NodeData tagged
// union... and ParameterSchema metadata").
type ParameterSchema struct {
	Name    string
	Type    DataType
	Default NodeData
}

// NodeMetadata is what a node factory (built-in or plugin) declares about
// the node type it produces: ports, default parameters, panel type, and UI
// hints. The Node Factory & Registry (spec.md §4.4) copies the type id,
// display name, ports, parameter defaults, and panel type into a fresh
// Node; Category, Color, Icon, and ProcessCost stay on the metadata only.
type NodeMetadata struct {
	TypeId       string // e.g. "Math.Add" or "<plugin>.<node>"
	Category     string
	DisplayName  string
	Inputs       []PortDefinition
	Outputs      []PortDefinition
	Parameters   []ParameterSchema
	PanelType    PanelType
	Color        Color
	Icon         string
	ProcessCost  float64 // relative processing cost hint, for scheduling UI
}
