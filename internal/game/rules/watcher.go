package rules

import (
	"reflect"
	"sync"
)

// WatcherScope defines how long a watcher's tracking lasts.
type WatcherScope int

const (
	// WatcherScopeSession tracks events for the whole session.
	WatcherScopeSession WatcherScope = iota
	// WatcherScopeActivation tracks a single walk and is reset when the next one starts.
	WatcherScopeActivation
)

// String returns the string representation of the watcher scope.
func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeSession:
		return "SESSION"
	case WatcherScopeActivation:
		return "ACTIVATION"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes engine events and tracks a condition.
type Watcher interface {
	// Watch is called for every published event.
	Watch(event Event)

	// Reset clears the watcher's condition and state.
	Reset()

	// ConditionMet returns true if the tracked condition has been met.
	ConditionMet() bool

	GetScope() WatcherScope

	// GetKey returns a unique key for this watcher instance.
	GetKey() string

	// Copy creates a deep copy of this watcher.
	Copy() Watcher
}

// BaseWatcher provides the bookkeeping shared by watchers. The condition
// flag may be read from other goroutines than the one publishing events.
type BaseWatcher struct {
	scope     WatcherScope
	key       string
	mu        sync.RWMutex
	condition bool
}

// NewBaseWatcher creates a new base watcher with the specified scope.
func NewBaseWatcher(scope WatcherScope) *BaseWatcher {
	return &BaseWatcher{scope: scope}
}

// GetScope returns the watcher's scope.
func (bw *BaseWatcher) GetScope() WatcherScope {
	return bw.scope
}

// ConditionMet returns whether the condition has been met.
func (bw *BaseWatcher) ConditionMet() bool {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	return bw.condition
}

// SetCondition sets the condition flag.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.condition = condition
}

// Reset clears the condition.
func (bw *BaseWatcher) Reset() {
	bw.SetCondition(false)
}

// GetKey returns the unique key for this watcher.
func (bw *BaseWatcher) GetKey() string {
	return bw.key
}

// SetKey sets the unique key for this watcher.
func (bw *BaseWatcher) SetKey(key string) {
	bw.key = key
}

// WatcherRegistry holds the watchers of one session. Watchers are notified
// in registration order.
type WatcherRegistry struct {
	mu       sync.RWMutex
	order    []string
	watchers map[string]Watcher
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// AddWatcher adds a watcher, replacing any with the same key.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.GetKey()
	if key == "" {
		key = generateKey(watcher)
		if setter, ok := watcher.(interface{ SetKey(string) }); ok {
			setter.SetKey(key)
		}
	}

	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// RemoveWatcher removes a watcher from the registry.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if _, ok := wr.watchers[key]; !ok {
		return
	}
	delete(wr.watchers, key)
	for i, existing := range wr.order {
		if existing == key {
			wr.order = append(wr.order[:i], wr.order[i+1:]...)
			break
		}
	}
}

// GetWatcher retrieves a watcher by key.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// GetWatchersByScope returns the watchers of one scope.
func (wr *WatcherRegistry) GetWatchersByScope(scope WatcherScope) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	var result []Watcher
	for _, key := range wr.order {
		if w := wr.watchers[key]; w.GetScope() == scope {
			result = append(result, w)
		}
	}
	return result
}

// ResetWatchersByScope resets all watchers for a given scope.
func (wr *WatcherRegistry) ResetWatchersByScope(scope WatcherScope) {
	for _, w := range wr.GetWatchersByScope(scope) {
		w.Reset()
	}
}

// NotifyWatchers passes the event to every watcher.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	watchers := make([]Watcher, 0, len(wr.order))
	for _, key := range wr.order {
		watchers = append(watchers, wr.watchers[key])
	}
	wr.mu.RUnlock()

	for _, w := range watchers {
		w.Watch(event)
	}
}

// generateKey derives a key from the watcher's type name.
func generateKey(watcher Watcher) string {
	t := reflect.TypeOf(watcher)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
