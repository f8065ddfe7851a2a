package nodle

import "math"

// PortHitRadius is the base hit-test radius (world units) for a port.
// ConnectingPortHitRadius is the expanded radius used while already in the
// Connecting state, to make target acquisition easier (spec.md §4.6
// "expanded significantly").
const (
	PortHitRadius           = 8.0
	ConnectingPortHitRadius = 20.0
)

// KeyAction names a keyboard-triggered Interaction command (spec.md §4.6).
// Bindings are a collaborator concern; only the names are part of the core.
type KeyAction uint8

const (
	ActionDeleteSelection KeyAction = iota
	ActionCancelCurrent
	ActionToggleConnectionCut
	ActionToggleFreehandConnect
	ActionFrameAll
	ActionToggleDebugOverlay
)

// InteractionStateKind identifies which of the mutually exclusive states
// (spec.md §4.6) Interaction is currently in.
type InteractionStateKind uint8

const (
	StateIdle InteractionStateKind = iota
	StatePanning
	StateDraggingNodes
	StateBoxSelecting
	StateConnecting
	StateCutting
)

// portRef names one port on one node, used both for the Connecting state's
// origin and for hit-test results.
type portRef struct {
	Node      NodeId
	Port      PortIndex
	Direction Direction
}

// Selection holds the set of selected nodes and an optional selected
// connection index (spec.md §3).
type Selection struct {
	Nodes      map[NodeId]bool
	Connection int // index into Store.Connections(), or -1
}

func newSelection() Selection {
	return Selection{Nodes: make(map[NodeId]bool), Connection: -1}
}

// Interaction is the Interaction State Machine (spec.md §4.6). It owns no
// Graph Store of its own; all mutations apply to view.ActiveGraph().
type Interaction struct {
	view *View
	Sel  Selection

	state InteractionStateKind

	dragLast Vec2

	boxAnchor  Vec2
	boxCurrent Vec2

	connectFrom   portRef
	connectCursor Vec2

	cutTrail []Vec2

	// debugOverlay toggles a host-rendered debug overlay; the core itself
	// renders nothing for this flag beyond exposing its state.
	debugOverlay bool
}

// NewInteraction creates an Interaction bound to view, starting in Idle with
// an empty selection.
func NewInteraction(view *View) *Interaction {
	return &Interaction{view: view, Sel: newSelection()}
}

// State returns the current state kind.
func (in *Interaction) State() InteractionStateKind { return in.state }

// nodeAABB returns the world-space AABB of a node.
func nodeAABB(n *Node) Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Size.X, Height: n.Size.Y}
}

// HitTestNode returns a node whose AABB contains the world point, or
// ok=false. The Graph Store tracks no paint order, so when several nodes
// overlap the point, which one is returned is arbitrary.
func (in *Interaction) HitTestNode(world Vec2) (NodeId, bool) {
	store := in.view.ActiveGraph()
	for _, id := range store.NodeIDs() {
		n, _ := store.Node(id)
		if nodeAABB(n).Contains(world.X, world.Y) {
			return id, true
		}
	}
	return 0, false
}

// portWorldPos returns the world-space position of one of a node's ports,
// laid out evenly along the node's left (inputs) or right (outputs) edge.
// This mirrors the layout the GPU Instance Builder uses for port instances.
func portWorldPos(n *Node, dir Direction, idx PortIndex) Vec2 {
	var count int
	if dir == DirectionInput {
		count = len(n.Inputs)
	} else {
		count = len(n.Outputs)
	}
	if count == 0 {
		count = 1
	}
	spacing := n.Size.Y / float64(count+1)
	y := n.Position.Y + spacing*float64(int(idx)+1)
	x := n.Position.X
	if dir == DirectionOutput {
		x += n.Size.X
	}
	return Vec2{X: x, Y: y}
}

// PortWorldPosition returns the world-space position of one port on one node
// in the active graph, for collaborators (e.g. the GPU renderer) that need
// to draw relative to a port without duplicating the layout rule.
func (in *Interaction) PortWorldPosition(node NodeId, dir Direction, port PortIndex) (Vec2, bool) {
	n, ok := in.view.ActiveGraph().Node(node)
	if !ok {
		return Vec2{}, false
	}
	return portWorldPos(n, dir, port), true
}

// HitTestPort returns the nearest port within radius of the world point
// across every node in the active graph, or ok=false.
func (in *Interaction) HitTestPort(world Vec2, radius float64) (portRef, bool) {
	store := in.view.ActiveGraph()
	var best portRef
	bestDist := math.Inf(1)
	found := false

	test := func(node *Node, dir Direction, ports []PortDefinition) {
		for i := range ports {
			p := portWorldPos(node, dir, PortIndex(i))
			dx, dy := world.X-p.X, world.Y-p.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d <= radius && d < bestDist {
				bestDist = d
				best = portRef{Node: node.ID(), Port: PortIndex(i), Direction: dir}
				found = true
			}
		}
	}

	for _, id := range store.NodeIDs() {
		n, _ := store.Node(id)
		test(n, DirectionInput, n.Inputs)
		test(n, DirectionOutput, n.Outputs)
	}
	return best, found
}

// PointerDown starts the appropriate state transition for a left-button
// press at the given screen position (spec.md §4.6 transitions table).
func (in *Interaction) PointerDown(screen Vec2) {
	if in.state != StateIdle {
		return
	}
	world := in.view.ScreenToWorld(screen)

	if port, ok := in.HitTestPort(world, PortHitRadius); ok {
		in.state = StateConnecting
		in.connectFrom = port
		in.connectCursor = screen
		return
	}

	if node, ok := in.HitTestNode(world); ok {
		if !in.Sel.Nodes[node] {
			in.Sel.Nodes[node] = true
		}
		in.state = StateDraggingNodes
		in.dragLast = world
		return
	}

	in.state = StateBoxSelecting
	in.boxAnchor = world
	in.boxCurrent = world
}

// PointerMiddleDown starts Panning (spec.md §4.6 "middle-press or
// space+left-press").
func (in *Interaction) PointerMiddleDown() {
	if in.state == StateIdle {
		in.state = StatePanning
	}
}

// PointerMove updates the in-progress state for a pointer move to the given
// screen position.
func (in *Interaction) PointerMove(screen Vec2) {
	world := in.view.ScreenToWorld(screen)
	switch in.state {
	case StatePanning:
		in.view.Pan.X += screen.X - in.dragLast.X
		in.view.Pan.Y += screen.Y - in.dragLast.Y
		in.dragLast = screen
	case StateDraggingNodes:
		delta := Vec2{X: world.X - in.dragLast.X, Y: world.Y - in.dragLast.Y}
		store := in.view.ActiveGraph()
		for id := range in.Sel.Nodes {
			if n, ok := store.Node(id); ok {
				n.Position.X += delta.X
				n.Position.Y += delta.Y
			}
		}
		in.dragLast = world
	case StateBoxSelecting:
		in.boxCurrent = world
	case StateConnecting:
		in.connectCursor = screen
	case StateCutting:
		in.cutTrail = append(in.cutTrail, screen)
	}
}

// PointerDownForPanning primes Panning's drag-origin tracking; call once
// right before the first PointerMove after PointerMiddleDown.
func (in *Interaction) PointerDownForPanning(screen Vec2) {
	in.dragLast = screen
}

// PointerUp completes the in-progress state, returning to Idle (spec.md
// §4.6 transitions table).
func (in *Interaction) PointerUp(screen Vec2) error {
	defer func() { in.state = StateIdle }()

	switch in.state {
	case StateConnecting:
		world := in.view.ScreenToWorld(screen)
		target, ok := in.HitTestPort(world, ConnectingPortHitRadius)
		if !ok {
			return nil
		}
		return in.completeConnection(target)

	case StateBoxSelecting:
		store := in.view.ActiveGraph()
		rect := boxRect(in.boxAnchor, in.boxCurrent)
		for _, id := range store.NodeIDs() {
			n, _ := store.Node(id)
			if rect.Intersects(nodeAABB(n)) {
				in.Sel.Nodes[id] = true
			}
		}
	}
	return nil
}

// boxRect normalizes two corner points into a Rect regardless of drag
// direction.
func boxRect(a, b Vec2) Rect {
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	return Rect{X: x, Y: y, Width: math.Abs(b.X - a.X), Height: math.Abs(b.Y - a.Y)}
}

// completeConnection validates and authors the connection implied by
// connectFrom -> target (or target -> connectFrom, whichever is output ->
// input), applying the connection-authoring rules in spec.md §4.6:
// self-connections and same-direction connections are rejected before ever
// reaching the Graph Store; an already-occupied input is authored with
// replace=true ("clicking on an already-connected input port... starts a
// replace connection").
func (in *Interaction) completeConnection(target portRef) error {
	from, to := in.connectFrom, target

	if from.Node == to.Node {
		return nil // self-connection: silently ignored (spec.md §7)
	}
	if from.Direction == to.Direction {
		return nil // same-direction: silently ignored (spec.md §7)
	}
	if from.Direction == DirectionInput {
		from, to = to, from
	}

	store := in.view.ActiveGraph()
	conn := Connection{FromNode: from.Node, FromOutput: from.Port, ToNode: to.Node, ToInput: to.Port}
	err := store.AddConnection(conn, true)
	if err != nil {
		return nil // invalid connection attempts are silently ignored (spec.md §7)
	}
	return nil
}

// CancelCurrent aborts any in-progress Connecting/BoxSelecting/Cutting and
// returns to Idle, discarding the partial state (spec.md §4.6 "Any state +
// Escape").
func (in *Interaction) CancelCurrent() {
	in.state = StateIdle
	in.cutTrail = nil
}

// BeginCutting enters the Cutting state (spec.md §4.6 "Cut key down in
// Idle").
func (in *Interaction) BeginCutting() {
	if in.state == StateIdle {
		in.state = StateCutting
		in.cutTrail = nil
	}
}

// EndCutting computes intersections between the accumulated polyline and
// each connection's bezier (sampled at 20 points) and removes all
// intersected connections atomically, returning to Idle (spec.md §4.6,
// §8 scenario 5).
func (in *Interaction) EndCutting() {
	if in.state != StateCutting {
		return
	}
	store := in.view.ActiveGraph()
	trail := in.cutTrail
	toScreen := in.view.WorldToScreen

	var toRemove []int
	for i, conn := range store.Connections() {
		fromNode, ok1 := store.Node(conn.FromNode)
		toNode, ok2 := store.Node(conn.ToNode)
		if !ok1 || !ok2 {
			continue
		}
		from := portWorldPos(fromNode, DirectionOutput, conn.FromOutput)
		to := portWorldPos(toNode, DirectionInput, conn.ToInput)
		if polylineCrossesBezier(trail, from, to, in.view.Zoom, toScreen) {
			toRemove = append(toRemove, i)
		}
	}

	for i := len(toRemove) - 1; i >= 0; i-- {
		store.RemoveConnection(toRemove[i])
	}

	in.state = StateIdle
	in.cutTrail = nil
}

// HandleKeyAction dispatches a named keyboard action (spec.md §4.6).
func (in *Interaction) HandleKeyAction(action KeyAction, screenSize Vec2) {
	switch action {
	case ActionDeleteSelection:
		in.deleteSelection()
	case ActionCancelCurrent:
		in.CancelCurrent()
	case ActionToggleConnectionCut:
		if in.state == StateCutting {
			in.EndCutting()
		} else {
			in.BeginCutting()
		}
	case ActionFrameAll:
		in.view.FrameAll(screenSize, 40)
	case ActionToggleDebugOverlay:
		in.debugOverlay = !in.debugOverlay
	case ActionToggleFreehandConnect:
		// Freehand vs click-to-click connection authoring is a pointer-event
		// interpretation detail above this state machine; this action only
		// flips the host's interpretation mode, which Interaction does not
		// itself track.
	}
}

// DebugOverlay reports whether the debug overlay has been toggled on.
func (in *Interaction) DebugOverlay() bool { return in.debugOverlay }

// ConnectingPreview returns the in-progress connection's origin port and
// current cursor screen position, for the GPU renderer's preview spline. ok is false unless the state is Connecting.
func (in *Interaction) ConnectingPreview() (from portRef, cursor Vec2, ok bool) {
	if in.state != StateConnecting {
		return portRef{}, Vec2{}, false
	}
	return in.connectFrom, in.connectCursor, true
}

// BoxSelectRect returns the in-progress box-select rectangle in world
// space. ok is false unless the state is BoxSelecting.
func (in *Interaction) BoxSelectRect() (rect Rect, ok bool) {
	if in.state != StateBoxSelecting {
		return Rect{}, false
	}
	return boxRect(in.boxAnchor, in.boxCurrent), true
}

// CutTrail returns the in-progress cut polyline in screen space. ok is
// false unless the state is Cutting.
func (in *Interaction) CutTrail() (trail []Vec2, ok bool) {
	if in.state != StateCutting {
		return nil, false
	}
	return in.cutTrail, true
}

// deleteSelection removes selected nodes and the selected connection, if
// any (spec.md §4.6 "Delete key in Idle").
func (in *Interaction) deleteSelection() {
	store := in.view.ActiveGraph()
	for id := range in.Sel.Nodes {
		store.RemoveNode(id)
	}
	in.Sel.Nodes = make(map[NodeId]bool)

	if in.Sel.Connection >= 0 {
		store.RemoveConnection(in.Sel.Connection)
		in.Sel.Connection = -1
	}
}
