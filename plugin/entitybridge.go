package plugin

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/bsundman/nodle"
)

// GraphEventType is the Donburi event type node/connection lifecycle events
// are published under. A host application that wants to mirror the Graph
// Store into an ECS world (for a plugin that does its own entity
// bookkeeping) subscribes to this the same way willow's ecs.donburiStore
// publishes InteractionEvent (see ecs/donburi.go in the teacher).
var GraphEventType = events.NewEventType[nodle.GraphEvent]()

// ExecutionEventType is the Donburi event type execution summaries are
// published under, once per Engine.ExecuteDirty call.
var ExecutionEventType = events.NewEventType[nodle.ExecutionSummary]()

// EntityBridge mirrors Graph Store and Execution Engine events into a
// Donburi world. It never displaces the Graph Store as the authoritative
// node model (spec.md §3) — this is purely an optional external mirror for
// plugins that want entity-style bookkeeping outside the core.
type EntityBridge struct {
	world donburi.World
}

// NewEntityBridge creates a bridge publishing into world.
func NewEntityBridge(world donburi.World) *EntityBridge {
	return &EntityBridge{world: world}
}

// OnGraphEvent implements nodle.GraphSubscriber.
func (b *EntityBridge) OnGraphEvent(evt nodle.GraphEvent) {
	GraphEventType.Publish(b.world, evt)
}

// PublishExecutionSummary publishes one Engine.ExecuteDirty result. Callers
// invoke this after each execution pass; it is not wired automatically
// since the Engine has no dependency on Donburi.
func (b *EntityBridge) PublishExecutionSummary(summary nodle.ExecutionSummary) {
	ExecutionEventType.Publish(b.world, summary)
}
