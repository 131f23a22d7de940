package watchers

import (
	"sync"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/rules"
)

// ActivationStatsWatcher tracks what happened during the current walk.
// The session resets it when the next walk starts. Accessors are safe to
// call while a walk is being driven on another goroutine.
type ActivationStatsWatcher struct {
	*rules.BaseWatcher
	mu             sync.RWMutex
	steps          int
	scoreGained    int
	peakMultiplier int
	triggers       map[board.Ability]int
	remote         int
}

// NewActivationStatsWatcher creates a new activation stats watcher.
func NewActivationStatsWatcher() *ActivationStatsWatcher {
	w := &ActivationStatsWatcher{
		BaseWatcher:    rules.NewBaseWatcher(rules.WatcherScopeActivation),
		peakMultiplier: 1,
		triggers:       make(map[board.Ability]int),
	}
	w.SetKey("ActivationStatsWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *ActivationStatsWatcher) Watch(event rules.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch event.Type {
	case rules.EventStepped:
		w.steps++
		w.scoreGained += event.Amount
	case rules.EventAbilityTriggered:
		w.triggers[event.Ability]++
		if event.Flag {
			w.remote++
		}
	case rules.EventMultiplierChanged:
		if event.Amount > w.peakMultiplier {
			w.peakMultiplier = event.Amount
		}
	case rules.EventPathComplete:
		w.SetCondition(true)
	}
}

// Reset clears the watcher's state.
func (w *ActivationStatsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.steps = 0
	w.scoreGained = 0
	w.peakMultiplier = 1
	w.remote = 0
	w.triggers = make(map[board.Ability]int)
}

// Steps returns the number of scored steps.
func (w *ActivationStatsWatcher) Steps() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.steps
}

// ScoreGained returns the score added by this walk.
func (w *ActivationStatsWatcher) ScoreGained() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scoreGained
}

// PeakMultiplier returns the highest multiplier reached.
func (w *ActivationStatsWatcher) PeakMultiplier() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.peakMultiplier
}

// Triggered returns how often ability a fired, remote cascades included.
func (w *ActivationStatsWatcher) Triggered(a board.Ability) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.triggers[a]
}

// RemoteTriggers returns how many cascade activations fired.
func (w *ActivationStatsWatcher) RemoteTriggers() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.remote
}

// Copy creates a copy of this watcher.
func (w *ActivationStatsWatcher) Copy() rules.Watcher {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c := NewActivationStatsWatcher()
	c.SetCondition(w.ConditionMet())
	c.steps = w.steps
	c.scoreGained = w.scoreGained
	c.peakMultiplier = w.peakMultiplier
	c.remote = w.remote
	for k, v := range w.triggers {
		c.triggers[k] = v
	}
	return c
}

// SessionStatsWatcher accumulates totals over the whole session.
type SessionStatsWatcher struct {
	*rules.BaseWatcher
	mu    sync.RWMutex
	stats SessionStats
}

// NewSessionStatsWatcher creates a new session stats watcher.
func NewSessionStatsWatcher() *SessionStatsWatcher {
	w := &SessionStatsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeSession),
	}
	w.SetKey("SessionStatsWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *SessionStatsWatcher) Watch(event rules.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := &w.stats
	switch event.Type {
	case rules.EventCardPlaced:
		st.Placements++
	case rules.EventPlacementRejected:
		st.Rejections++
	case rules.EventStepped:
		st.TotalSteps++
	case rules.EventHealed:
		st.Healed += event.Amount
	case rules.EventCardDrawn:
		st.Drawn++
	case rules.EventCardDiscarded:
		st.Discarded++
	case rules.EventBlankCreated:
		st.Blanks++
	case rules.EventPathComplete:
		st.Activations++
		if event.Amount > st.LongestPath {
			st.LongestPath = event.Amount
		}
		w.SetCondition(true)
	}
}

// Reset clears the watcher's state.
func (w *SessionStatsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = SessionStats{}
}

// SessionStats is a snapshot of SessionStatsWatcher totals.
type SessionStats struct {
	Placements  int
	Rejections  int
	Activations int
	LongestPath int
	TotalSteps  int
	Healed      int
	Drawn       int
	Discarded   int
	Blanks      int
}

// Stats returns a snapshot of the current totals.
func (w *SessionStatsWatcher) Stats() SessionStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Copy creates a copy of this watcher.
func (w *SessionStatsWatcher) Copy() rules.Watcher {
	c := NewSessionStatsWatcher()
	c.stats = w.Stats()
	c.SetCondition(w.ConditionMet())
	return c
}
