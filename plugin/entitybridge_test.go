package plugin

import (
	"testing"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/bsundman/nodle"
)

func TestNewEntityBridge(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewEntityBridge(world)
	if bridge == nil {
		t.Fatal("NewEntityBridge returned nil")
	}
}

func TestEntityBridge_OnGraphEvent(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewEntityBridge(world)

	var received []nodle.GraphEvent
	GraphEventType.Subscribe(world, func(w donburi.World, e nodle.GraphEvent) {
		received = append(received, e)
	})

	bridge.OnGraphEvent(nodle.GraphEvent{Kind: nodle.EventNodeAdded, NodeId: 1})
	bridge.OnGraphEvent(nodle.GraphEvent{
		Kind:       nodle.EventConnectionAdded,
		Connection: nodle.Connection{FromNode: 1, FromOutput: 0, ToNode: 2, ToInput: 0},
	})

	// Events are queued — process them.
	GraphEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}

	e0 := received[0]
	if e0.Kind != nodle.EventNodeAdded || e0.NodeId != 1 {
		t.Errorf("event 0: %+v", e0)
	}

	e1 := received[1]
	if e1.Kind != nodle.EventConnectionAdded || e1.Connection.ToNode != 2 {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestEntityBridge_PublishExecutionSummary(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewEntityBridge(world)

	var received []nodle.ExecutionSummary
	ExecutionEventType.Subscribe(world, func(w donburi.World, e nodle.ExecutionSummary) {
		received = append(received, e)
	})

	bridge.PublishExecutionSummary(nodle.ExecutionSummary{
		Executed: []nodle.NodeId{1, 2},
		Errored:  map[nodle.NodeId]error{},
	})

	ExecutionEventType.ProcessEvents(world)

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if len(received[0].Executed) != 2 {
		t.Errorf("executed: %+v", received[0].Executed)
	}
}

func TestEntityBridge_ImplementsGraphSubscriber(t *testing.T) {
	world := donburi.NewWorld()
	var sub nodle.GraphSubscriber = NewEntityBridge(world)
	_ = sub // compile-time interface check
}

func TestEntityBridge_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewEntityBridge(world)

	var count1, count2 int
	GraphEventType.Subscribe(world, func(w donburi.World, e nodle.GraphEvent) {
		count1++
	})
	GraphEventType.Subscribe(world, func(w donburi.World, e nodle.GraphEvent) {
		count2++
	})

	bridge.OnGraphEvent(nodle.GraphEvent{Kind: nodle.EventNodeRemoved, NodeId: 7})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
