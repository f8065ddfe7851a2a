package nodle

import (
	"fmt"
	"os"
)

// ExecutionSummary reports the outcome of one Engine.ExecuteDirty pass
// (spec.md §4.4).
type ExecutionSummary struct {
	Executed []NodeId
	Errored  map[NodeId]error
}

// Engine is the Execution Engine: it tracks which nodes are dirty, computes
// a dependency-respecting evaluation order, and dispatches each dirty node's
// NodeProcessor, isolating panics per node (spec.md §4.4, §5). An Engine
// watches exactly one Store, via Attach, and keeps its dirty set in sync
// with that Store's GraphEvents.
type Engine struct {
	store *Store
	cache *CacheManager

	dirty  map[NodeId]bool
	output map[NodeId]map[PortIndex]NodeData

	subEngines map[NodeId]*Engine

	debug bool
}

// NewEngine creates an Engine with its own Cache Manager.
func NewEngine() *Engine {
	return &Engine{
		cache:      NewCacheManager(),
		dirty:      make(map[NodeId]bool),
		output:     make(map[NodeId]map[PortIndex]NodeData),
		subEngines: make(map[NodeId]*Engine),
	}
}

// SetDebug enables stderr tracing of scheduling decisions.
func (e *Engine) SetDebug(enabled bool) { e.debug = enabled }

func (e *Engine) logf(format string, args ...any) {
	if e.debug {
		_, _ = fmt.Fprintf(os.Stderr, "[nodle/scheduler] "+format+"\n", args...)
	}
}

// Attach binds the Engine to store and subscribes it to that store's
// GraphEvents, marking every existing node dirty (a freshly attached Engine
// has computed nothing yet).
func (e *Engine) Attach(store *Store) {
	e.store = store
	for _, id := range store.NodeIDs() {
		e.dirty[id] = true
	}
	store.Subscribe(e)
}

// OnGraphEvent implements GraphSubscriber. Node and connection topology
// changes mark the affected node (and everything downstream of it) dirty;
// removals also drop cached output and cache-manager state (spec.md §4.4
// "dirty propagation").
func (e *Engine) OnGraphEvent(evt GraphEvent) {
	switch evt.Kind {
	case EventNodeAdded:
		e.markDirty(evt.NodeId)
	case EventNodeRemoved:
		delete(e.dirty, evt.NodeId)
		delete(e.output, evt.NodeId)
		e.cache.InvalidateNode(evt.NodeId)
	case EventConnectionAdded:
		e.markDirty(evt.Connection.ToNode)
	case EventConnectionRemoved:
		e.markDirty(evt.Connection.ToNode)
	case EventParameterChanged:
		e.markDirty(evt.NodeId)
	}
}

// markDirty marks node and every node transitively downstream of it dirty.
func (e *Engine) markDirty(node NodeId) {
	if e.dirty[node] {
		return
	}
	e.dirty[node] = true
	e.logf("dirty %d", node)
	for _, down := range e.store.Downstream(node) {
		e.markDirty(down)
	}
}

// topoOrder returns a dependency-respecting order over every currently
// dirty node reachable in the store, using Kahn's algorithm. Nodes with no
// dirty ancestor remaining are peeled off in arbitrary but deterministic
// (insertion-stable) order. Returns ErrCycleDetected if a cycle survives
// into the dirty set — the Graph Store's AddConnection should have already
// prevented this; this is a defensive backstop (spec.md §4.4).
func (e *Engine) topoOrder() ([]NodeId, error) {
	indegree := make(map[NodeId]int)
	for id := range e.dirty {
		indegree[id] = 0
	}
	for id := range e.dirty {
		for _, up := range e.store.Upstream(id) {
			if e.dirty[up] {
				indegree[id]++
			}
		}
	}

	var ready []NodeId
	for _, id := range e.store.NodeIDs() {
		if e.dirty[id] && indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	// NodeIDs comes from map iteration; sort by id (= insertion order) so
	// the visitation order is the same on every pass.
	for i := 1; i < len(ready); i++ {
		for j := i; j > 0 && ready[j] < ready[j-1]; j-- {
			ready[j], ready[j-1] = ready[j-1], ready[j]
		}
	}

	var order []NodeId
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, down := range e.store.Downstream(n) {
			if !e.dirty[down] {
				continue
			}
			indegree[down]--
			if indegree[down] == 0 {
				ready = append(ready, down)
			}
		}
	}

	if len(order) != len(e.dirty) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// ExecuteDirty evaluates every dirty node in dependency order, assembling
// each node's inputs from its upstream connections' cached outputs,
// dispatching to NodeProcessor.Process under a panic guard, and recording
// the result. A node whose upstream errored is itself marked NodeError with
// ErrUpstreamError and is not dispatched (spec.md §4.4 "propagated
// failure").
func (e *Engine) ExecuteDirty() (ExecutionSummary, error) {
	order, err := e.topoOrder()
	if err != nil {
		return ExecutionSummary{}, err
	}

	summary := ExecutionSummary{Errored: make(map[NodeId]error)}

	for _, id := range order {
		node, ok := e.store.Node(id)
		if !ok {
			delete(e.dirty, id)
			continue
		}

		if upErr := e.upstreamError(id, summary.Errored); upErr != nil {
			node.state = NodeError
			node.lastError = fmt.Errorf("nodle: node %d: %w", id, ErrUpstreamError)
			summary.Errored[id] = node.lastError
			delete(e.dirty, id)
			e.logf("node %d skipped: upstream error", id)
			continue
		}

		node.state = NodeComputing
		inputs := e.assembleInputs(id)

		outputs, procErr := e.dispatch(node, inputs)
		if procErr != nil {
			node.state = NodeError
			node.lastError = fmt.Errorf("nodle: node %d: %w: %v", id, ErrNodeProcessing, procErr)
			summary.Errored[id] = node.lastError
			delete(e.dirty, id)
			e.logf("node %d errored: %v", id, procErr)
			continue
		}

		node.state = NodeClean
		node.lastError = nil
		e.output[id] = outputs
		delete(e.dirty, id)
		summary.Executed = append(summary.Executed, id)
		e.logf("node %d clean", id)
	}

	return summary, nil
}

// upstreamError reports the first error found among node's direct upstream
// nodes, consulting both already-errored nodes from this pass and any
// previously recorded NodeError state.
func (e *Engine) upstreamError(node NodeId, erroredThisPass map[NodeId]error) error {
	for _, up := range e.store.Upstream(node) {
		if err, ok := erroredThisPass[up]; ok {
			return err
		}
		if upNode, ok := e.store.Node(up); ok && upNode.State() == NodeError {
			return upNode.LastError()
		}
	}
	return nil
}

// assembleInputs gathers node's input values from the cached outputs of its
// upstream connections. An unconnected, non-required input is simply
// absent from the returned map; the processor is responsible for applying
// its own default.
func (e *Engine) assembleInputs(node NodeId) map[PortIndex]NodeData {
	inputs := make(map[PortIndex]NodeData)
	for _, conn := range e.store.InputsOf(node) {
		if out, ok := e.output[conn.FromNode]; ok {
			if val, ok := out[conn.FromOutput]; ok {
				inputs[conn.ToInput] = val
			}
		}
	}
	return inputs
}

// SubgraphProcessor is implemented by the processor of a subgraph node
// (one whose Node.Subgraph is non-nil). ProcessSubgraph receives the
// already-fully-executed inner Engine so it can pull designated inner
// output values and shape them into this node's own outputs (spec.md §4.4
// "subgraph execution: execute inner graph first, then expose designated
// outputs").
type SubgraphProcessor interface {
	ProcessSubgraph(sub *Engine, inputs map[PortIndex]NodeData) (outputs map[PortIndex]NodeData, err error)
}

// dispatch calls node.Impl.Process (or ProcessSubgraph for a subgraph
// node), converting any panic into an error so a single misbehaving node
// (built-in or plugin-contributed) can never bring down the scheduler
// (spec.md §4.4 "panic isolation").
func (e *Engine) dispatch(node *Node, inputs map[PortIndex]NodeData) (outputs map[PortIndex]NodeData, err error) {
	if node.Impl == nil {
		return map[PortIndex]NodeData{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicIsolated, r)
		}
	}()

	if node.Subgraph != nil {
		sub, ok := e.subEngines[node.id]
		if !ok {
			sub = NewEngine()
			sub.Attach(node.Subgraph)
			e.subEngines[node.id] = sub
		}
		if _, execErr := sub.ExecuteDirty(); execErr != nil {
			return nil, execErr
		}
		if sp, ok := node.Impl.(SubgraphProcessor); ok {
			return sp.ProcessSubgraph(sub, inputs)
		}
	}

	return node.Impl.Process(inputs)
}

// Output returns the cached output value for (node, port) from the most
// recent successful ExecuteDirty pass.
func (e *Engine) Output(node NodeId, port PortIndex) (NodeData, bool) {
	out, ok := e.output[node]
	if !ok {
		return NodeData{}, false
	}
	v, ok := out[port]
	return v, ok
}

// IsDirty reports whether node is currently pending (re-)evaluation.
func (e *Engine) IsDirty(node NodeId) bool { return e.dirty[node] }

// Note: execution is strictly single-threaded cooperative (spec.md §5); a
// Parallel mode that dispatches independent dirty nodes concurrently is a
// documented but unimplemented extension point, deferred because nothing in
// this repo's NodeProcessor contract guarantees concurrency-safety.
