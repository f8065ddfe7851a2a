package nodle

import "fmt"

// Factory produces a fresh, unattached Node for one node type. Metadata
// describes the type's ports, parameters, panel type, and display
// attributes; Create builds the concrete processor that will back it
// (spec.md §4.3).
type Factory interface {
	Metadata() NodeMetadata
	Create() NodeProcessor
}

// FactoryFunc adapts metadata plus a processor constructor into a Factory,
// for the common case of a built-in node type with no extra factory state.
type FactoryFunc struct {
	Meta    NodeMetadata
	NewFunc func() NodeProcessor
}

func (f FactoryFunc) Metadata() NodeMetadata { return f.Meta }
func (f FactoryFunc) Create() NodeProcessor  { return f.NewFunc() }

// Registry maps type ids to the Factory that builds them (spec.md §4.3).
// Registering a TypeId that is already present is always rejected with
// ErrTypeIdCollision, even for the same factory, matching the Graph Store's Scheduler-
// facing exhaustive error kinds (spec.md §7).
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under its own Metadata().TypeId. Returns
// ErrTypeIdCollision if that id is already registered.
func (r *Registry) Register(factory Factory) error {
	id := factory.Metadata().TypeId
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("nodle: register %q: %w", id, ErrTypeIdCollision)
	}
	r.factories[id] = factory
	return nil
}

// Lookup returns the factory registered for typeId, or ok=false.
func (r *Registry) Lookup(typeId string) (Factory, bool) {
	f, ok := r.factories[typeId]
	return f, ok
}

// TypeIds returns every registered type id. Order is not significant.
func (r *Registry) TypeIds() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	return ids
}

// Menu groups registered type ids by their Metadata().Category, for the
// node-creation menu a host editor presents to the user.
func (r *Registry) Menu() map[string][]string {
	menu := make(map[string][]string)
	for id, f := range r.factories {
		cat := f.Metadata().Category
		menu[cat] = append(menu[cat], id)
	}
	return menu
}

// Spawn builds a new, unattached Node of the given type using the
// registered factory's metadata and a fresh processor instance. The
// returned Node has id=0 (provisional) until inserted via Store.AddNode;
// its Parameters map is seeded with each ParameterSchema's Default
// (spec.md §4.3 "standard factory contract").
func (r *Registry) Spawn(typeId string) (*Node, error) {
	f, ok := r.factories[typeId]
	if !ok {
		return nil, fmt.Errorf("nodle: spawn %q: %w", typeId, ErrUnknownNode)
	}
	meta := f.Metadata()

	params := make(map[string]NodeData, len(meta.Parameters))
	for _, p := range meta.Parameters {
		params[p.Name] = p.Default
	}

	return &Node{
		TypeId:      meta.TypeId,
		DisplayName: meta.DisplayName,
		Parameters:  params,
		Inputs:      append([]PortDefinition(nil), meta.Inputs...),
		Outputs:     append([]PortDefinition(nil), meta.Outputs...),
		PanelType:   meta.PanelType,
		Visible:     true,
		Impl:        f.Create(),
		state:       NodeDirty,
	}, nil
}
