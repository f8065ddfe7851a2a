package nodle

// NodeInstance is one per-node GPU instance record (spec.md §4.9).
type NodeInstance struct {
	Node     NodeId
	Position Vec2
	Size     Vec2

	BevelTop, BevelBottom Color
	BGTop, BGBottom       Color
	BorderColor           Color
	CornerRadius          float64
	Selected              bool
}

// PortInstance is one per-port GPU instance record (spec.md §4.9).
type PortInstance struct {
	Node      NodeId
	Port      PortIndex
	Position  Vec2
	Radius    float64
	Border    Color // Rebuild sets one fixed color; hover and connecting states do not change it
	Bevel     Color
	BG        Color // derived from data type
	Direction Direction
}

// ConnectionInstance is one per-connection GPU instance record (spec.md §4.9).
type ConnectionInstance struct {
	P0, P1, P2, P3 Vec2 // cubic bezier control points
	Color          Color
	Selected       bool
	Hover          bool
}

// FlagInstance is one per-selection/visibility-flag GPU instance record
// (spec.md §4.9): a small marker drawn at a node's position to indicate
// selection, error state, or dirty state.
type FlagInstance struct {
	Position Vec2
	Kind     FlagKind
	Color    Color
}

// FlagKind identifies what a FlagInstance indicates.
type FlagKind uint8

const (
	FlagSelected FlagKind = iota
	FlagError
	FlagDirty
)

// PortColorFunc maps a DataType to the background color used for ports of
// that type; supplied by the host so color theming is not hardcoded into
// the core.
type PortColorFunc func(DataType) Color

// InstanceBuilder transforms the active graph and view into flat instance
// arrays for GPU-instanced draws, rebuilding only when topology or layout
// actually changed (spec.md §4.9).
type InstanceBuilder struct {
	Nodes       []NodeInstance
	Ports       []PortInstance
	Connections []ConnectionInstance
	Flags       []FlagInstance

	needsFullRebuild bool

	lastPan  Vec2
	lastZoom float64
}

// NewInstanceBuilder creates an InstanceBuilder that will perform a full
// rebuild on its first Rebuild call.
func NewInstanceBuilder() *InstanceBuilder {
	return &InstanceBuilder{needsFullRebuild: true}
}

// OnGraphEvent implements GraphSubscriber: any topology or parameter change
// invalidates the cached arrays (spec.md §4.9 "The flag is set by Graph
// Store events").
func (b *InstanceBuilder) OnGraphEvent(evt GraphEvent) {
	b.needsFullRebuild = true
}

// MarkDirty forces a rebuild on the next call to Rebuild. Call this after a
// node drag, since port positions are derived from node positions (spec.md
// §4.9 "Node drags force a rebuild").
func (b *InstanceBuilder) MarkDirty() {
	b.needsFullRebuild = true
}

// NeedsRebuild reports whether a rebuild has been requested by a Graph Store
// event, MarkDirty, or a fresh builder. A pan/zoom change is not reflected
// here: Rebuild detects that itself by comparing against the view it last
// built from.
func (b *InstanceBuilder) NeedsRebuild() bool { return b.needsFullRebuild }

// Rebuild recomputes every instance array if needsFullRebuild is set (either
// from a Graph Store event, an explicit MarkDirty, or a View pan/zoom
// change detected here); otherwise it is a no-op and the previous arrays
// are reused verbatim (spec.md §4.9 "Caching").
func (b *InstanceBuilder) Rebuild(store *Store, view *View, sel Selection, portColor PortColorFunc) {
	if view.Pan != b.lastPan || view.Zoom != b.lastZoom {
		b.needsFullRebuild = true
	}
	if !b.needsFullRebuild {
		return
	}

	b.lastPan = view.Pan
	b.lastZoom = view.Zoom

	b.Nodes = b.Nodes[:0]
	b.Ports = b.Ports[:0]
	b.Connections = b.Connections[:0]
	b.Flags = b.Flags[:0]

	for _, id := range store.NodeIDs() {
		n, _ := store.Node(id)
		selected := sel.Nodes[id]

		b.Nodes = append(b.Nodes, NodeInstance{
			Node:         id,
			Position:     n.Position,
			Size:         n.Size,
			BevelTop:     Color{R: 0.35, G: 0.35, B: 0.38, A: 1},
			BevelBottom:  Color{R: 0.22, G: 0.22, B: 0.24, A: 1},
			BGTop:        Color{R: 0.18, G: 0.18, B: 0.20, A: 1},
			BGBottom:     Color{R: 0.12, G: 0.12, B: 0.13, A: 1},
			BorderColor:  borderColorFor(selected, n.State()),
			CornerRadius: 6,
			Selected:     selected,
		})

		if selected {
			b.Flags = append(b.Flags, FlagInstance{Position: n.Position, Kind: FlagSelected, Color: Color{R: 1, G: 0.7, B: 0.1, A: 1}})
		}
		if n.State() == NodeError {
			b.Flags = append(b.Flags, FlagInstance{Position: n.Position, Kind: FlagError, Color: Color{R: 0.9, G: 0.15, B: 0.15, A: 1}})
		} else if n.State() == NodeDirty {
			b.Flags = append(b.Flags, FlagInstance{Position: n.Position, Kind: FlagDirty, Color: Color{R: 0.9, G: 0.8, B: 0.2, A: 1}})
		}

		for i, def := range n.Inputs {
			bg := Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
			if portColor != nil {
				bg = portColor(def.Type)
			}
			b.Ports = append(b.Ports, PortInstance{
				Node: id, Port: PortIndex(i), Position: portWorldPos(n, DirectionInput, PortIndex(i)),
				Radius: PortHitRadius, Border: Color{R: 0.05, G: 0.05, B: 0.05, A: 1},
				Bevel: Color{R: 0.3, G: 0.3, B: 0.3, A: 1}, BG: bg, Direction: DirectionInput,
			})
		}
		for i, def := range n.Outputs {
			bg := Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
			if portColor != nil {
				bg = portColor(def.Type)
			}
			b.Ports = append(b.Ports, PortInstance{
				Node: id, Port: PortIndex(i), Position: portWorldPos(n, DirectionOutput, PortIndex(i)),
				Radius: PortHitRadius, Border: Color{R: 0.05, G: 0.05, B: 0.05, A: 1},
				Bevel: Color{R: 0.3, G: 0.3, B: 0.3, A: 1}, BG: bg, Direction: DirectionOutput,
			})
		}
	}

	for i, conn := range store.Connections() {
		fromNode, ok1 := store.Node(conn.FromNode)
		toNode, ok2 := store.Node(conn.ToNode)
		if !ok1 || !ok2 {
			continue
		}
		from := portWorldPos(fromNode, DirectionOutput, conn.FromOutput)
		to := portWorldPos(toNode, DirectionInput, conn.ToInput)
		p0, p1, p2, p3 := connectionControlPoints(from, to, view.Zoom)

		selected := sel.Connection == i
		color := Color{R: 0.6, G: 0.6, B: 0.65, A: 1}
		if selected {
			color = Color{R: 1, G: 0.7, B: 0.1, A: 1}
		}
		b.Connections = append(b.Connections, ConnectionInstance{P0: p0, P1: p1, P2: p2, P3: p3, Color: color, Selected: selected})
	}

	b.needsFullRebuild = false
}

func borderColorFor(selected bool, state NodeState) Color {
	switch {
	case selected:
		return Color{R: 1, G: 0.7, B: 0.1, A: 1}
	case state == NodeError:
		return Color{R: 0.9, G: 0.15, B: 0.15, A: 1}
	default:
		return Color{R: 0.05, G: 0.05, B: 0.05, A: 1}
	}
}
