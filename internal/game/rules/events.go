package rules

import (
	"sync"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
)

// EventType indicates the category of an engine event.
type EventType string

const (
	// Placement events
	EventCardPlaced        EventType = "CARD_PLACED"
	EventPlacementRejected EventType = "PLACEMENT_REJECTED"
	EventActivationStarted EventType = "ACTIVATION_STARTED"
	EventBlankCreated      EventType = "BLANK_CREATED"
	EventCardDrawn         EventType = "CARD_DRAWN"

	// Walk events
	EventStepped           EventType = "STEPPED"
	EventAbilityTriggered  EventType = "ABILITY_TRIGGERED"
	EventMultiplierChanged EventType = "MULTIPLIER_CHANGED"
	EventHealed            EventType = "HEALED"
	EventCardDiscarded     EventType = "CARD_DISCARDED"
	EventPathComplete      EventType = "PATH_COMPLETE"

	// Level events
	EventLevelEndChecked EventType = "LEVEL_END_CHECKED"
)

// Event is a one-way notification about a committed state change.
type Event struct {
	Type         EventType
	ID           string
	SessionID    string
	ActivationID string
	Tile         board.Index
	Ability      board.Ability
	Step         int           // path index for walk events
	Amount       int           // score delta, heal amount, new multiplier, ...
	Flag         bool          // remote cascade, level complete, ...
	At           time.Duration // session clock
	Metadata     map[string]string
	Description  string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty means every type
	callback  Listener
}

// EventBus is a synchronous publish/subscribe hub. Listeners run in
// subscription order.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if eventType == "" {
		return -1
	}
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: listener})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every matching listener. The listener list
// is snapshotted first so callbacks may subscribe or unsubscribe.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := bus.subs
	bus.mu.RUnlock()

	for _, sub := range subs {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// Len returns the number of subscriptions.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, sessionID string, tile board.Index) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Tile:      tile,
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, sessionID string, tile board.Index, amount int) Event {
	evt := NewEvent(eventType, sessionID, tile)
	evt.Amount = amount
	return evt
}

// NewAbilityEvent creates an ABILITY_TRIGGERED event.
func NewAbilityEvent(sessionID string, tile board.Index, ability board.Ability) Event {
	evt := NewEvent(EventAbilityTriggered, sessionID, tile)
	evt.Ability = ability
	evt.Description = ability.Title()
	return evt
}
