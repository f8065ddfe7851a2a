package nodle

// Connection links one node's output port to another node's input port
// (spec.md §3). Both endpoints must exist in the same Graph Store.
type Connection struct {
	FromNode   NodeId
	FromOutput PortIndex
	ToNode     NodeId
	ToInput    PortIndex
}

// sameEndpoints reports whether two connections name the same four-tuple.
func (c Connection) sameEndpoints(o Connection) bool {
	return c.FromNode == o.FromNode && c.FromOutput == o.FromOutput &&
		c.ToNode == o.ToNode && c.ToInput == o.ToInput
}
