package watchers

import (
	"sync"
	"testing"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/rules"
)

func TestActivationStatsWatcher(t *testing.T) {
	watcher := NewActivationStatsWatcher()

	if watcher.ConditionMet() {
		t.Fatal("watcher should not have condition met initially")
	}

	watcher.Watch(rules.NewEventWithAmount(rules.EventStepped, "s1", board.Index{Col: 1}, 1))
	watcher.Watch(rules.NewAbilityEvent("s1", board.Index{Col: 2}, board.Orange))
	watcher.Watch(rules.NewEventWithAmount(rules.EventMultiplierChanged, "s1", board.Index{Col: 2}, 2))
	watcher.Watch(rules.NewEventWithAmount(rules.EventStepped, "s1", board.Index{Col: 2}, 2))

	remote := rules.NewAbilityEvent("s1", board.Index{Col: 2, Row: 1}, board.Orange)
	remote.Flag = true
	watcher.Watch(remote)
	watcher.Watch(rules.NewEventWithAmount(rules.EventMultiplierChanged, "s1", board.Index{Col: 2, Row: 1}, 4))

	if watcher.Steps() != 2 {
		t.Fatalf("expected 2 steps, got %d", watcher.Steps())
	}
	if watcher.ScoreGained() != 3 {
		t.Fatalf("expected score 3, got %d", watcher.ScoreGained())
	}
	if watcher.PeakMultiplier() != 4 {
		t.Fatalf("expected peak multiplier 4, got %d", watcher.PeakMultiplier())
	}
	if watcher.Triggered(board.Orange) != 2 || watcher.RemoteTriggers() != 1 {
		t.Fatalf("unexpected trigger counts %d/%d", watcher.Triggered(board.Orange), watcher.RemoteTriggers())
	}

	watcher.Watch(rules.NewEventWithAmount(rules.EventPathComplete, "s1", board.Index{Col: 3}, 4))
	if !watcher.ConditionMet() {
		t.Fatal("watcher should have condition met after path complete")
	}

	copied := watcher.Copy().(*ActivationStatsWatcher)

	watcher.Reset()
	if watcher.ConditionMet() || watcher.Steps() != 0 || watcher.PeakMultiplier() != 1 {
		t.Fatal("watcher should be cleared after reset")
	}
	if copied.Steps() != 2 || copied.Triggered(board.Orange) != 2 || !copied.ConditionMet() {
		t.Fatal("copy should keep the pre-reset state")
	}
}

func TestSessionStatsWatcher(t *testing.T) {
	watcher := NewSessionStatsWatcher()
	if watcher.GetScope() != rules.WatcherScopeSession {
		t.Fatalf("expected session scope, got %s", watcher.GetScope())
	}

	events := []rules.Event{
		rules.NewEvent(rules.EventCardPlaced, "s1", board.Index{}),
		rules.NewEvent(rules.EventPlacementRejected, "s1", board.Index{}),
		rules.NewEventWithAmount(rules.EventHealed, "s1", board.Index{}, 1),
		rules.NewEvent(rules.EventCardDrawn, "s1", board.Index{}),
		rules.NewEvent(rules.EventBlankCreated, "s1", board.Index{}),
		rules.NewEvent(rules.EventBlankCreated, "s1", board.Index{}),
		rules.NewEventWithAmount(rules.EventStepped, "s1", board.Index{}, 5),
		rules.NewEvent(rules.EventCardDiscarded, "s1", board.Index{}),
		rules.NewEventWithAmount(rules.EventPathComplete, "s1", board.Index{}, 5),
		rules.NewEventWithAmount(rules.EventPathComplete, "s1", board.Index{}, 3),
	}
	for _, e := range events {
		watcher.Watch(e)
	}

	stats := watcher.Stats()
	expected := SessionStats{
		Placements:  1,
		Rejections:  1,
		Activations: 2,
		LongestPath: 5,
		TotalSteps:  1,
		Healed:      1,
		Drawn:       1,
		Discarded:   1,
		Blanks:      2,
	}
	if stats != expected {
		t.Fatalf("expected %+v, got %+v", expected, stats)
	}

	copied := watcher.Copy().(*SessionStatsWatcher)
	watcher.Reset()
	if watcher.Stats() != (SessionStats{}) || watcher.ConditionMet() {
		t.Fatal("watcher should be cleared after reset")
	}
	if copied.Stats() != expected || copied.GetKey() != "SessionStatsWatcher" {
		t.Fatal("copy should keep totals and key")
	}
}

func TestStatsWatchersConcurrentReads(t *testing.T) {
	session := NewSessionStatsWatcher()
	activation := NewActivationStatsWatcher()
	registry := rules.NewWatcherRegistry()
	registry.AddWatcher(session)
	registry.AddWatcher(activation)

	const steps = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < steps; i++ {
			registry.NotifyWatchers(rules.NewEventWithAmount(rules.EventStepped, "s1", board.Index{Col: i % 3}, 1))
			if i%50 == 0 {
				activation.Reset()
			}
		}
		registry.NotifyWatchers(rules.NewEventWithAmount(rules.EventPathComplete, "s1", board.Index{}, steps))
	}()

	for i := 0; i < steps; i++ {
		_ = session.Stats()
		_ = session.ConditionMet()
		_ = activation.Steps()
		_ = activation.Triggered(board.Orange)
		_ = activation.Copy()
	}
	wg.Wait()

	if got := session.Stats().TotalSteps; got != steps {
		t.Fatalf("expected %d steps, got %d", steps, got)
	}
	if !session.ConditionMet() || !activation.ConditionMet() {
		t.Fatal("path complete should set both conditions")
	}
}
