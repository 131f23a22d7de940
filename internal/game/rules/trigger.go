package rules

import (
	"sync"

	"github.com/google/uuid"
)

// TriggeredAction is a follow-up effect produced by a trigger. Resolve
// applies it; the caller decides when.
type TriggeredAction struct {
	ID          string
	TriggerID   string
	SourceID    string
	Description string
	Resolve     func()
}

// AbilityTrigger reacts to a specific event type and produces actions when
// its condition holds.
type AbilityTrigger struct {
	ID        string
	SourceID  string
	EventType EventType
	Condition func(Event) bool
	Build     func(Event) []TriggeredAction
	Once      bool
}

// TriggerManager stores triggers and evaluates them in registration order.
type TriggerManager struct {
	mu       sync.Mutex
	order    []string
	triggers map[string]AbilityTrigger
}

// NewTriggerManager creates an empty trigger manager.
func NewTriggerManager() *TriggerManager {
	return &TriggerManager{
		triggers: make(map[string]AbilityTrigger),
	}
}

// Register adds a new trigger to the manager.
func (tm *TriggerManager) Register(trigger AbilityTrigger) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	if _, exists := tm.triggers[trigger.ID]; !exists {
		tm.order = append(tm.order, trigger.ID)
	}
	tm.triggers[trigger.ID] = trigger
	return trigger.ID
}

// Unregister removes a trigger by ID.
func (tm *TriggerManager) Unregister(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.unregisterLocked(id)
}

func (tm *TriggerManager) unregisterLocked(id string) {
	if _, ok := tm.triggers[id]; !ok {
		return
	}
	delete(tm.triggers, id)
	for i, existing := range tm.order {
		if existing == id {
			tm.order = append(tm.order[:i], tm.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered triggers.
func (tm *TriggerManager) Len() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.triggers)
}

// Handle evaluates the event against all registered triggers and returns
// the actions they produce, in registration order.
func (tm *TriggerManager) Handle(event Event) []TriggeredAction {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.triggers) == 0 {
		return nil
	}

	var (
		actions  []TriggeredAction
		toRemove []string
	)

	for _, id := range tm.order {
		trigger := tm.triggers[id]
		if trigger.EventType != event.Type {
			continue
		}
		if trigger.Condition != nil && !trigger.Condition(event) {
			continue
		}
		if trigger.Build == nil {
			continue
		}

		for _, action := range trigger.Build(event) {
			if action.ID == "" {
				action.ID = uuid.NewString()
			}
			action.TriggerID = id
			if action.SourceID == "" {
				action.SourceID = trigger.SourceID
			}
			actions = append(actions, action)
		}

		if trigger.Once {
			toRemove = append(toRemove, id)
		}
	}

	for _, id := range toRemove {
		tm.unregisterLocked(id)
	}

	return actions
}
