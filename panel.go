package nodle

// PanelState is the per-node panel bookkeeping the Panel Manager owns
// (spec.md §3 "Panel State", §4.8). Panels never own node pointers;
// indirection is through NodeId (spec.md §9).
type PanelState struct {
	Visible      bool
	Minimized    bool
	Open         bool
	Stacked      bool
	Pinned       bool
	PanelType    PanelType
	Position     Vec2
	Size         Vec2
	AutoManaged  bool
	ViewportData any
}

// PanelRenderInstruction describes one visible panel's outer chrome for the
// host painter. The Panel Manager never renders the interior itself; that
// is delegated to the owning node's parameter-UI or viewport-data accessor
// (spec.md §4.8).
type PanelRenderInstruction struct {
	Node  NodeId
	Title string
	Rect  Rect
}

// PanelManager owns PanelState for every node with a panel, across both the
// stacked parameter region and the floating viewport region (spec.md §4.8).
type PanelManager struct {
	store *Store

	states map[NodeId]*PanelState

	stackOrder []NodeId // nodes in the parameter-panel stack, top to bottom

	StackOrigin  Vec2 // top-left of the stacked parameter-panel region
	StackWidth   float64
	PanelHeight  float64
	PanelSpacing float64
}

// NewPanelManager creates an empty Panel Manager with a default stacked
// region layout. Call Attach to have it create panels automatically as
// nodes are added.
func NewPanelManager() *PanelManager {
	return &PanelManager{
		states:       make(map[NodeId]*PanelState),
		StackWidth:   280,
		PanelHeight:  220,
		PanelSpacing: 8,
	}
}

// Attach subscribes the Panel Manager to store's GraphEvents, so a panel
// appears automatically whenever a node whose metadata requests one is
// added (spec.md §4.8 "a panel appears automatically when a node is
// created"), mirroring Engine.Attach/Host.Attach's own subscribe-to-store
// shape.
func (pm *PanelManager) Attach(store *Store) {
	pm.store = store
	store.Subscribe(pm)
}

// OnGraphEvent implements GraphSubscriber. On NodeAdded, a panel is created
// automatically by looking up the node's PanelType through the attached
// Store (GraphEvent itself carries only the NodeId); on NodeRemoved, the
// node's panel state is discarded (spec.md §4.8 "When a node is removed,
// all its panel state is discarded").
func (pm *PanelManager) OnGraphEvent(evt GraphEvent) {
	switch evt.Kind {
	case EventNodeAdded:
		if pm.store == nil {
			return
		}
		if node, ok := pm.store.Node(evt.NodeId); ok {
			pm.RegisterNode(evt.NodeId, node.PanelType)
		}
	case EventNodeRemoved:
		pm.Remove(evt.NodeId)
	}
}

// RegisterNode creates a panel for node if panelType != PanelNone and one
// does not already exist. Parameter and Combined panels join the stacked
// region automatically; Viewport panels are not stacked and start at
// StackOrigin, keeping that position until Detach or the host moves them
// (spec.md §4.8).
func (pm *PanelManager) RegisterNode(node NodeId, panelType PanelType) {
	if panelType == PanelNone {
		return
	}
	if _, exists := pm.states[node]; exists {
		return
	}

	st := &PanelState{
		Visible:     true,
		Open:        true,
		PanelType:   panelType,
		AutoManaged: true,
		Size:        Vec2{X: pm.StackWidth, Y: pm.PanelHeight},
	}

	switch panelType {
	case PanelViewport:
		st.Stacked = false
		st.Position = pm.StackOrigin
	default: // PanelParameter, PanelCombined
		st.Stacked = true
		pm.stackOrder = append(pm.stackOrder, node)
	}

	pm.states[node] = st
	pm.relayoutStack()
}

// Remove discards node's panel state entirely.
func (pm *PanelManager) Remove(node NodeId) {
	delete(pm.states, node)
	for i, id := range pm.stackOrder {
		if id == node {
			pm.stackOrder = append(pm.stackOrder[:i], pm.stackOrder[i+1:]...)
			break
		}
	}
	pm.relayoutStack()
}

// State returns node's panel state, or ok=false if it has none.
func (pm *PanelManager) State(node NodeId) (*PanelState, bool) {
	st, ok := pm.states[node]
	return st, ok
}

// Close sets visible=false but preserves position/size (spec.md §4.8
// "Closing a panel... preserves its state").
func (pm *PanelManager) Close(node NodeId) {
	if st, ok := pm.states[node]; ok {
		st.Visible = false
	}
}

// Reopen restores a closed panel's visibility.
func (pm *PanelManager) Reopen(node NodeId) {
	if st, ok := pm.states[node]; ok {
		st.Visible = true
	}
}

// Detach marks node's panel as pinned and removes it from the stack; pinned
// panels do not rejoin the stack automatically (spec.md §4.8 "Dragging a
// panel out of its stack marks it pinned").
func (pm *PanelManager) Detach(node NodeId, position Vec2) {
	st, ok := pm.states[node]
	if !ok {
		return
	}
	st.Pinned = true
	st.Stacked = false
	st.Position = position
	for i, id := range pm.stackOrder {
		if id == node {
			pm.stackOrder = append(pm.stackOrder[:i], pm.stackOrder[i+1:]...)
			break
		}
	}
	pm.relayoutStack()
}

// relayoutStack assigns Position to every stacked, non-pinned panel in
// stack order. Parameter and Viewport panels never mix in the same stack
// (spec.md §4.8), so only parameter/combined panels ever enter stackOrder.
func (pm *PanelManager) relayoutStack() {
	y := pm.StackOrigin.Y
	for _, id := range pm.stackOrder {
		st, ok := pm.states[id]
		if !ok || st.Pinned {
			continue
		}
		st.Position = Vec2{X: pm.StackOrigin.X, Y: y}
		st.Stacked = true
		y += pm.PanelHeight + pm.PanelSpacing
	}
}

// RenderInstructions returns one PanelRenderInstruction per currently
// visible panel, in no particular order (spec.md §4.8).
func (pm *PanelManager) RenderInstructions(store *Store, titleOf func(NodeId) string) []PanelRenderInstruction {
	var out []PanelRenderInstruction
	for id, st := range pm.states {
		if !st.Visible {
			continue
		}
		title := ""
		if titleOf != nil {
			title = titleOf(id)
		}
		out = append(out, PanelRenderInstruction{
			Node:  id,
			Title: title,
			Rect:  Rect{X: st.Position.X, Y: st.Position.Y, Width: st.Size.X, Height: st.Size.Y},
		})
	}
	return out
}
