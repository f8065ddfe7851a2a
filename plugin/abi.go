// Package plugin implements the Plugin Host: discovery, loading, and
// lifecycle management of host-provided shared libraries that contribute
// node factories and node instances across a stable handle-based boundary
// (spec.md §4.2).
package plugin

import "github.com/bsundman/nodle"

// CreatePluginSymbol and DestroyPluginSymbol name the two exported symbols every
// plugin shared library must provide (spec.md §4.2, §6). Go's plugin
// package only resolves exported (capitalized) symbol names, so the
// lower-case create_plugin/destroy_plugin of the abstract spec are realized
// here as CreatePlugin/DestroyPlugin.
const (
	CreatePluginSymbol  = "CreatePlugin"
	DestroyPluginSymbol = "DestroyPlugin"
)

// CreatePluginFunc is the signature a plugin's exported CreatePlugin symbol
// must have.
type CreatePluginFunc func() Handle

// DestroyPluginFunc is the signature a plugin's exported DestroyPlugin
// symbol must have.
type DestroyPluginFunc func(Handle)

// Info describes a loaded plugin (spec.md §4.2 "plugin_info()").
type Info struct {
	Name                  string
	Version               string
	CompatibleCoreVersion string
	Author                string
	Description           string
}

// Handle is the opaque, host-defined wrapper a plugin hands back from
// CreatePlugin. Through it the host obtains plugin metadata, registers the
// plugin's node factories, queries its menu contribution, and drives its
// load/unload lifecycle (spec.md §4.2).
type Handle interface {
	Info() Info
	RegisterNodes(registrar NodeRegistrar) error
	MenuStructure() map[string][]string

	// OnLoad and OnUnload are optional lifecycle callbacks; an
	// implementation with nothing to do may return nil immediately.
	OnLoad() error
	OnUnload() error
}

// NodeRegistrar is the registry interface a plugin's RegisterNodes is
// handed. The Host's implementation namespaces every registered type id
// under "<plugin>.<node>" before forwarding to the core's *nodle.Registry
// (spec.md §4.2 step 5).
type NodeRegistrar interface {
	Register(factory Factory) error
}

// Factory is a plugin-contributed node factory (spec.md §4.2 "A node
// factory exposes metadata()... and create_node(position)"). Unlike
// nodle.Factory, CreateNode takes the node's initial world position since
// plugin-owned node objects track their own position independent of the
// Graph Store's generic Node envelope.
type Factory interface {
	Metadata() nodle.NodeMetadata
	CreateNode(position nodle.Vec2) NodeHandle
}

// NodeHandle is the opaque handle to a plugin-owned node implementation
// (spec.md §4.2 "A PluginNodeHandle exposes..."). It satisfies
// nodle.NodeProcessor so the scheduler can dispatch to it without ever
// knowing it came from a plugin.
type NodeHandle interface {
	nodle.NodeProcessor

	ID() uint64
	Position() nodle.Vec2
	SetPosition(nodle.Vec2)
	GetParameter(name string) (nodle.NodeData, bool)
	SetParameter(name string, value nodle.NodeData)
	ParameterUI() ParameterUI
	HandleUIAction(action UIAction) []ParameterChange
}

// ViewportCapable is implemented by a NodeHandle whose node contributes a
// viewport panel (spec.md §4.2 "optional supports_viewport()...").
type ViewportCapable interface {
	SupportsViewport() bool
	ViewportData() any
	HandleViewportCamera(manipulation ViewportManipulation)
}

// ParameterUI is a data-driven description of a node's parameter panel
// contents, consumed by the host painter to build the panel interior
// (spec.md §4.8 "delegated to the node's get_parameter_ui()").
type ParameterUI struct {
	Fields []ParameterField
}

// ParameterField describes one editable parameter in a ParameterUI.
type ParameterField struct {
	Name    string
	Type    nodle.DataType
	Label   string
	Current nodle.NodeData
}

// UIAction is an opaque host-to-plugin action, e.g. "field X edited to
// value Y", dispatched to NodeHandle.HandleUIAction.
type UIAction struct {
	Field string
	Value nodle.NodeData
}

// ParameterChange reports one parameter's new value after HandleUIAction,
// so the host can reflect it back into the Graph Store's Node.Parameters.
type ParameterChange struct {
	Field string
	Value nodle.NodeData
}

// ViewportManipulation is an opaque host-to-plugin viewport camera command
// (pan/orbit/zoom), dispatched to ViewportCapable.HandleViewportCamera.
type ViewportManipulation struct {
	Kind  string
	Delta nodle.Vec2
}
