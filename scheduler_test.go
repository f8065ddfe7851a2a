package nodle

import (
	"errors"
	"testing"
)

// constNode always outputs its fixed value on port 0.
type constNode struct{ value float64 }

func (c *constNode) Process(map[PortIndex]NodeData) (map[PortIndex]NodeData, error) {
	return map[PortIndex]NodeData{0: Float64(c.value)}, nil
}

// incNode outputs input 0 plus 1 on output 0.
type incNode struct{}

func (incNode) Process(inputs map[PortIndex]NodeData) (map[PortIndex]NodeData, error) {
	return map[PortIndex]NodeData{0: Float64(inputs[0].Float + 1)}, nil
}

// addNode sums inputs 0 and 1 onto output 0.
type addNode struct{}

func (addNode) Process(inputs map[PortIndex]NodeData) (map[PortIndex]NodeData, error) {
	return map[PortIndex]NodeData{0: Float64(inputs[0].Float + inputs[1].Float)}, nil
}

// panicNode always panics, to exercise dispatch's panic guard.
type panicNode struct{}

func (panicNode) Process(map[PortIndex]NodeData) (map[PortIndex]NodeData, error) {
	panic("boom")
}

func addFloatNode(store *Store, impl NodeProcessor, inputs, outputs int) NodeId {
	n := newFloatNode("node", inputs, outputs)
	n.Impl = impl
	return store.AddNode(n)
}

// TestDiamondDataflow is spec.md §8's diamond scenario: A (const) feeds both
// B and C (inc), which both feed D (add). Changing A's parameter and
// re-executing must recompute the whole diamond to the new value.
func TestDiamondDataflow(t *testing.T) {
	store := NewStore()
	engine := NewEngine()

	a := addFloatNode(store, &constNode{value: 10}, 0, 1)
	b := addFloatNode(store, incNode{}, 1, 1)
	c := addFloatNode(store, incNode{}, 1, 1)
	d := addFloatNode(store, addNode{}, 2, 1)

	engine.Attach(store)

	must(t, store.AddConnection(Connection{FromNode: a, FromOutput: 0, ToNode: b, ToInput: 0}, false))
	must(t, store.AddConnection(Connection{FromNode: a, FromOutput: 0, ToNode: c, ToInput: 0}, false))
	must(t, store.AddConnection(Connection{FromNode: b, FromOutput: 0, ToNode: d, ToInput: 0}, false))
	must(t, store.AddConnection(Connection{FromNode: c, FromOutput: 0, ToNode: d, ToInput: 1}, false))

	summary, err := engine.ExecuteDirty()
	if err != nil {
		t.Fatalf("ExecuteDirty: %v", err)
	}
	if len(summary.Errored) != 0 {
		t.Fatalf("unexpected errors: %v", summary.Errored)
	}

	out, ok := engine.Output(d, 0)
	if !ok {
		t.Fatal("no output for D")
	}
	// A=10, B=11, C=11, D=22.
	if out.Float != 22 {
		t.Errorf("D output = %v, want 22", out.Float)
	}

	// Re-parameterize A and re-execute: the whole diamond recomputes.
	store.nodes[a].Impl = &constNode{value: 20}
	must(t, store.SetParameter(a, "value", Float64(20)))

	summary, err = engine.ExecuteDirty()
	if err != nil {
		t.Fatalf("second ExecuteDirty: %v", err)
	}
	out, ok = engine.Output(d, 0)
	if !ok {
		t.Fatal("no output for D after reparam")
	}
	if out.Float != 42 {
		t.Errorf("D output after reparam = %v, want 42", out.Float)
	}
}

// TestPluginIsolation is spec.md §8's isolation scenario: one well-behaved
// node and one panicking node in the same dirty set must not let the panic
// take down the other node's execution; the panicking node transitions to
// NodeError while the well-behaved node reaches NodeClean.
func TestPluginIsolation(t *testing.T) {
	store := NewStore()
	engine := NewEngine()

	good := addFloatNode(store, &constNode{value: 1}, 0, 1)
	bad := addFloatNode(store, panicNode{}, 0, 1)

	engine.Attach(store)

	summary, err := engine.ExecuteDirty()
	if err != nil {
		t.Fatalf("ExecuteDirty: %v", err)
	}

	if len(summary.Executed) != 1 || summary.Executed[0] != good {
		t.Errorf("Executed = %v, want [%d]", summary.Executed, good)
	}
	badErr, ok := summary.Errored[bad]
	if !ok {
		t.Fatal("expected bad node in Errored")
	}
	if !errors.Is(badErr, ErrNodeProcessing) {
		t.Errorf("bad node error = %v, want wrapping ErrNodeProcessing", badErr)
	}

	goodNode, _ := store.Node(good)
	if goodNode.State() != NodeClean {
		t.Errorf("good node state = %v, want NodeClean", goodNode.State())
	}
	badNode, _ := store.Node(bad)
	if badNode.State() != NodeError {
		t.Errorf("bad node state = %v, want NodeError", badNode.State())
	}
}

// TestUpstreamErrorPropagates ensures a node downstream of an errored node is
// itself marked NodeError with ErrUpstreamError rather than being dispatched.
func TestUpstreamErrorPropagates(t *testing.T) {
	store := NewStore()
	engine := NewEngine()

	bad := addFloatNode(store, panicNode{}, 0, 1)
	downstream := addFloatNode(store, incNode{}, 1, 1)
	engine.Attach(store)

	must(t, store.AddConnection(Connection{FromNode: bad, FromOutput: 0, ToNode: downstream, ToInput: 0}, false))

	summary, err := engine.ExecuteDirty()
	if err != nil {
		t.Fatalf("ExecuteDirty: %v", err)
	}

	downErr, ok := summary.Errored[downstream]
	if !ok {
		t.Fatal("expected downstream node in Errored")
	}
	if !errors.Is(downErr, ErrUpstreamError) {
		t.Errorf("downstream error = %v, want wrapping ErrUpstreamError", downErr)
	}
}
