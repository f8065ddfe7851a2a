package nodle

import "testing"

func TestInstanceBuilderRebuildPopulatesArrays(t *testing.T) {
	store := NewStore()
	a, b := twoConnectableNodes(store)
	must(t, store.AddConnection(Connection{FromNode: a, FromOutput: 0, ToNode: b, ToInput: 0}, false))

	view := NewView(store)
	sel := newSelection()
	sel.Nodes[a] = true

	builder := NewInstanceBuilder()
	builder.Rebuild(store, view, sel, nil)

	if len(builder.Nodes) != 2 {
		t.Fatalf("Nodes = %d, want 2", len(builder.Nodes))
	}
	if len(builder.Ports) != 2 {
		t.Fatalf("Ports = %d, want 2 (one output on a, one input on b)", len(builder.Ports))
	}
	if len(builder.Connections) != 1 {
		t.Fatalf("Connections = %d, want 1", len(builder.Connections))
	}
	foundSelectedFlag := false
	for _, f := range builder.Flags {
		if f.Kind == FlagSelected {
			foundSelectedFlag = true
		}
	}
	if !foundSelectedFlag {
		t.Error("selected node should produce a FlagSelected instance")
	}
}

func TestInstanceBuilderSkipsRebuildWhenClean(t *testing.T) {
	store := NewStore()
	store.AddNode(&Node{Position: Vec2{X: 0, Y: 0}, Size: Vec2{X: 50, Y: 50}})

	view := NewView(store)
	sel := newSelection()

	builder := NewInstanceBuilder()
	builder.Rebuild(store, view, sel, nil)
	if builder.NeedsRebuild() {
		t.Error("NeedsRebuild should be false immediately after a rebuild")
	}

	first := builder.Nodes
	store.AddNode(&Node{Position: Vec2{X: 999, Y: 999}, Size: Vec2{X: 10, Y: 10}})
	// Without a MarkDirty or graph-event notification, Rebuild must be a
	// no-op: the builder only hears about store mutations when it is wired
	// as a subscriber, which this test deliberately does not do.
	builder.Rebuild(store, view, sel, nil)
	if len(builder.Nodes) != len(first) {
		t.Errorf("Nodes changed on a no-op Rebuild: got %d, want %d", len(builder.Nodes), len(first))
	}
}

func TestInstanceBuilderOnGraphEventForcesRebuild(t *testing.T) {
	store := NewStore()
	store.AddNode(&Node{Position: Vec2{X: 0, Y: 0}, Size: Vec2{X: 50, Y: 50}})
	view := NewView(store)
	sel := newSelection()

	builder := NewInstanceBuilder()
	store.Subscribe(builder)
	builder.Rebuild(store, view, sel, nil)

	store.AddNode(&Node{Position: Vec2{X: 999, Y: 999}, Size: Vec2{X: 10, Y: 10}})
	if !builder.NeedsRebuild() {
		t.Fatal("NeedsRebuild should be true after a subscribed AddNode event")
	}
	builder.Rebuild(store, view, sel, nil)
	if len(builder.Nodes) != 2 {
		t.Errorf("Nodes = %d, want 2 after rebuild picks up the new node", len(builder.Nodes))
	}
}

func TestInstanceBuilderRebuildsOnViewChange(t *testing.T) {
	store := NewStore()
	store.AddNode(&Node{Position: Vec2{X: 0, Y: 0}, Size: Vec2{X: 50, Y: 50}})
	view := NewView(store)
	sel := newSelection()

	builder := NewInstanceBuilder()
	builder.Rebuild(store, view, sel, nil)
	builder.MarkDirty()
	builder.Rebuild(store, view, sel, nil)

	view.Pan = Vec2{X: 50, Y: 0}
	// The pan change is detected inside Rebuild itself, so a node added
	// without any graph event must still show up once Rebuild sees the new
	// Pan.
	store.AddNode(&Node{Position: Vec2{X: 999, Y: 999}, Size: Vec2{X: 10, Y: 10}})
	builder.Rebuild(store, view, sel, nil)
	if len(builder.Nodes) != 2 {
		t.Errorf("Nodes = %d, want 2: Rebuild should redo the arrays once Pan changes", len(builder.Nodes))
	}
}

func TestInstanceBuilderUsesPortColorFunc(t *testing.T) {
	store := NewStore()
	store.AddNode(&Node{
		Position: Vec2{X: 0, Y: 0}, Size: Vec2{X: 50, Y: 50},
		Outputs: []PortDefinition{{Name: "out", Direction: DirectionOutput, Type: TypeFloat}},
	})
	view := NewView(store)
	sel := newSelection()

	builder := NewInstanceBuilder()
	want := Color{R: 1, G: 0, B: 0, A: 1}
	builder.Rebuild(store, view, sel, func(dt DataType) Color { return want })

	if len(builder.Ports) != 1 || builder.Ports[0].BG != want {
		t.Errorf("Ports = %+v, want a single port with BG = %v", builder.Ports, want)
	}
}
