package nodle

import "testing"

func twoConnectableNodes(store *Store) (a, b NodeId) {
	na := &Node{
		Position: Vec2{X: 0, Y: 0}, Size: Vec2{X: 100, Y: 100},
		Outputs: []PortDefinition{{Name: "out", Direction: DirectionOutput, Type: TypeFloat}},
	}
	nb := &Node{
		Position: Vec2{X: 300, Y: 0}, Size: Vec2{X: 100, Y: 100},
		Inputs: []PortDefinition{{Name: "in", Direction: DirectionInput, Type: TypeFloat}},
	}
	return store.AddNode(na), store.AddNode(nb)
}

func TestCompleteConnectionAuthorsValidConnection(t *testing.T) {
	store := NewStore()
	a, b := twoConnectableNodes(store)
	view := NewView(store)
	in := NewInteraction(view)

	outPos, _ := in.PortWorldPosition(a, DirectionOutput, 0)
	inPos, _ := in.PortWorldPosition(b, DirectionInput, 0)

	in.PointerDown(view.WorldToScreen(outPos))
	if in.State() != StateConnecting {
		t.Fatalf("State() = %v, want StateConnecting", in.State())
	}
	if err := in.PointerUp(view.WorldToScreen(inPos)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	conns := store.Connections()
	if len(conns) != 1 {
		t.Fatalf("connection count = %d, want 1", len(conns))
	}
	if conns[0].FromNode != a || conns[0].ToNode != b {
		t.Errorf("connection = %+v, want %d -> %d", conns[0], a, b)
	}
	if in.State() != StateIdle {
		t.Errorf("State() after PointerUp = %v, want StateIdle", in.State())
	}
}

func TestCompleteConnectionIgnoresSelfConnection(t *testing.T) {
	store := NewStore()
	n := &Node{
		Position: Vec2{X: 0, Y: 0}, Size: Vec2{X: 100, Y: 100},
		Inputs:  []PortDefinition{{Name: "in", Direction: DirectionInput, Type: TypeFloat}},
		Outputs: []PortDefinition{{Name: "out", Direction: DirectionOutput, Type: TypeFloat}},
	}
	id := store.AddNode(n)
	view := NewView(store)
	in := NewInteraction(view)

	outPos, _ := in.PortWorldPosition(id, DirectionOutput, 0)
	inPos, _ := in.PortWorldPosition(id, DirectionInput, 0)

	in.PointerDown(view.WorldToScreen(outPos))
	if err := in.PointerUp(view.WorldToScreen(inPos)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if len(store.Connections()) != 0 {
		t.Errorf("self-connection must be silently ignored, got %d connections", len(store.Connections()))
	}
}

func TestBoxSelectSelectsIntersectingNodes(t *testing.T) {
	store := NewStore()
	inside := &Node{Position: Vec2{X: 10, Y: 10}, Size: Vec2{X: 20, Y: 20}}
	outside := &Node{Position: Vec2{X: 500, Y: 500}, Size: Vec2{X: 20, Y: 20}}
	idIn := store.AddNode(inside)
	idOut := store.AddNode(outside)

	view := NewView(store)
	in := NewInteraction(view)

	in.PointerDown(view.WorldToScreen(Vec2{X: 0, Y: 0}))
	if in.State() != StateBoxSelecting {
		t.Fatalf("State() = %v, want StateBoxSelecting", in.State())
	}
	in.PointerMove(view.WorldToScreen(Vec2{X: 100, Y: 100}))
	if err := in.PointerUp(view.WorldToScreen(Vec2{X: 100, Y: 100})); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if !in.Sel.Nodes[idIn] {
		t.Error("node inside box should be selected")
	}
	if in.Sel.Nodes[idOut] {
		t.Error("node outside box should not be selected")
	}
}

// TestConnectionCut is spec.md §8 scenario 5: a cut trail crossing a
// connection's bezier removes that connection.
func TestConnectionCut(t *testing.T) {
	store := NewStore()
	a, b := twoConnectableNodes(store)
	must(t, store.AddConnection(Connection{FromNode: a, FromOutput: 0, ToNode: b, ToInput: 0}, false))

	view := NewView(store)
	in := NewInteraction(view)

	aNode, _ := store.Node(a)
	bNode, _ := store.Node(b)
	from := portWorldPos(aNode, DirectionOutput, 0)
	to := portWorldPos(bNode, DirectionInput, 0)
	mid := view.WorldToScreen(Vec2{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2})

	in.BeginCutting()
	if in.State() != StateCutting {
		t.Fatalf("State() = %v, want StateCutting", in.State())
	}
	// Draw a vertical trail crossing the connection spline a few pixels off
	// its exact midpoint, so the intersection test isn't exercised on a
	// degenerate exactly-touching sample point.
	in.PointerMove(Vec2{X: mid.X + 3, Y: mid.Y - 200})
	in.PointerMove(Vec2{X: mid.X + 3, Y: mid.Y + 200})
	in.EndCutting()

	if len(store.Connections()) != 0 {
		t.Errorf("connection count after cut = %d, want 0", len(store.Connections()))
	}
	if in.State() != StateIdle {
		t.Errorf("State() after EndCutting = %v, want StateIdle", in.State())
	}
}

func TestCancelCurrentDiscardsCutTrail(t *testing.T) {
	store := NewStore()
	view := NewView(store)
	in := NewInteraction(view)

	in.BeginCutting()
	in.PointerMove(Vec2{X: 10, Y: 10})
	in.CancelCurrent()

	if in.State() != StateIdle {
		t.Errorf("State() = %v, want StateIdle", in.State())
	}
	if trail, ok := in.CutTrail(); ok || len(trail) != 0 {
		t.Errorf("cut trail not discarded: %v", trail)
	}
}

func TestDeleteSelectionRemovesNodesAndConnection(t *testing.T) {
	store := NewStore()
	a, b := twoConnectableNodes(store)
	must(t, store.AddConnection(Connection{FromNode: a, FromOutput: 0, ToNode: b, ToInput: 0}, false))

	view := NewView(store)
	in := NewInteraction(view)
	in.Sel.Nodes[a] = true

	in.HandleKeyAction(ActionDeleteSelection, Vec2{X: 800, Y: 600})

	if _, ok := store.Node(a); ok {
		t.Error("selected node a should be removed")
	}
	if len(store.Connections()) != 0 {
		t.Error("connections touching removed node should cascade-remove")
	}
}
