package rules

import (
	"testing"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	steppedCount := 0
	healedCount := 0

	handle1 := bus.SubscribeTyped(EventStepped, func(e Event) {
		steppedCount++
	})
	bus.SubscribeTyped(EventHealed, func(e Event) {
		healedCount++
	})

	bus.Publish(NewEventWithAmount(EventStepped, "s1", board.Index{Col: 1}, 3))
	if steppedCount != 1 {
		t.Fatalf("expected stepped count 1, got %d", steppedCount)
	}
	if healedCount != 0 {
		t.Fatalf("expected healed count 0, got %d", healedCount)
	}

	bus.Publish(NewEventWithAmount(EventHealed, "s1", board.Index{}, 1))
	if healedCount != 1 {
		t.Fatalf("expected healed count 1, got %d", healedCount)
	}

	bus.Unsubscribe(handle1)
	bus.Publish(NewEvent(EventStepped, "s1", board.Index{Col: 2}))
	if steppedCount != 1 {
		t.Fatalf("expected stepped count still 1 after unsubscribe, got %d", steppedCount)
	}
	if bus.Len() != 1 {
		t.Fatalf("expected 1 subscription left, got %d", bus.Len())
	}
}

func TestEventBusDeliveryOrder(t *testing.T) {
	bus := NewEventBus()
	var order []string

	bus.Subscribe(func(e Event) { order = append(order, "all-1:"+string(e.Type)) })
	bus.SubscribeTyped(EventPathComplete, func(e Event) { order = append(order, "typed:"+string(e.Type)) })
	bus.Subscribe(func(e Event) { order = append(order, "all-2:"+string(e.Type)) })

	bus.PublishBatch([]Event{
		NewEvent(EventStepped, "s1", board.Index{}),
		NewEvent(EventPathComplete, "s1", board.Index{}),
	})

	expected := []string{
		"all-1:STEPPED",
		"all-2:STEPPED",
		"all-1:PATH_COMPLETE",
		"typed:PATH_COMPLETE",
		"all-2:PATH_COMPLETE",
	}
	if len(order) != len(expected) {
		t.Fatalf("expected %d deliveries, got %v", len(expected), order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("delivery %d: expected %s, got %s", i, expected[i], order[i])
		}
	}
}

func TestEventBusListenerMayUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	var handle int
	handle = bus.Subscribe(func(e Event) {
		calls++
		bus.Unsubscribe(handle)
	})
	second := 0
	bus.Subscribe(func(e Event) { second++ })

	bus.Publish(NewEvent(EventStepped, "s1", board.Index{}))
	bus.Publish(NewEvent(EventStepped, "s1", board.Index{}))

	if calls != 1 {
		t.Fatalf("expected self-removing listener to run once, got %d", calls)
	}
	if second != 2 {
		t.Fatalf("expected second listener to run twice, got %d", second)
	}
}

func TestNilListenerIgnored(t *testing.T) {
	bus := NewEventBus()
	if h := bus.Subscribe(nil); h != -1 {
		t.Fatalf("expected -1 handle for nil listener, got %d", h)
	}
	if h := bus.SubscribeTyped("", func(Event) {}); h != -1 {
		t.Fatalf("expected -1 handle for empty type, got %d", h)
	}
}

func TestNewAbilityEvent(t *testing.T) {
	evt := NewAbilityEvent("s1", board.Index{Col: 2, Row: 1}, board.Orange)
	if evt.Type != EventAbilityTriggered || evt.Ability != board.Orange {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Description != "DYNASTY" {
		t.Fatalf("expected title as description, got %q", evt.Description)
	}
}
