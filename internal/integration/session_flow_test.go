package integration

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game"
	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/deck"
	"github.com/aminvimazi/casualcrusade/internal/game/rules"
	"github.com/aminvimazi/casualcrusade/internal/game/watchers"
	"go.uber.org/zap"
)

// TestHandDrivenLevel plays a whole level with a real hand, checking that
// the hand, the session watchers and an externally wired watcher agree.
func TestHandDrivenLevel(t *testing.T) {
	logger := zap.NewNop()
	engine := game.NewEngine(logger)
	defer engine.Close()

	rng := rand.New(rand.NewSource(3))
	hand := deck.NewHand(rng, deck.Options{Size: 4, GemChance: 0.5, CanHaveGem: true}, logger)

	opts := game.DefaultOptions()
	opts.Cols, opts.Rows = 4, 3
	opts.Start = board.Index{Col: 1, Row: 1}
	opts.PlacementRule = board.AcceptAny

	var (
		mu       sync.Mutex
		statuses []game.LevelStatus
	)
	session, err := engine.StartSession(opts, hand, game.LevelControllerFunc(func(status game.LevelStatus) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, status)
	}))
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	// A second registry fed from the same bus sees the same totals.
	external := rules.NewWatcherRegistry()
	totals := watchers.NewSessionStatsWatcher()
	external.AddWatcher(totals)
	session.Events().Subscribe(external.NotifyWatchers)

	placed := 0
	for !session.CheckLevelEnd().BoardFull {
		cards := hand.Cards()
		if len(cards) == 0 {
			hand.DrawCard()
			continue
		}
		card := cards[0]
		spots := session.PossibleSpots(card)
		if len(spots) == 0 {
			t.Fatalf("AcceptAny should always offer a free tile")
		}
		hand.Take(card)
		if _, err := session.PlaceCard(card, spots[0]); err != nil {
			t.Fatalf("Placement %d failed: %v", placed, err)
		}
		placed++
		engine.Advance(10 * time.Second)
		if session.IsMoving() {
			t.Fatalf("Walk %d did not finish", placed)
		}
	}

	stats := session.Stats()
	if stats.Placements != placed {
		t.Errorf("Expected %d placements, got %d", placed, stats.Placements)
	}
	if got := totals.Stats(); got != stats {
		t.Errorf("External watcher totals %+v differ from session totals %+v", got, stats)
	}
	if stats.Blanks != hand.BlanksCreated() {
		t.Errorf("Expected %d blanks, got %d", hand.BlanksCreated(), stats.Blanks)
	}
	if stats.Discarded != len(hand.Pile()) {
		t.Errorf("Expected %d discards, got %d", len(hand.Pile()), stats.Discarded)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) != placed {
		t.Fatalf("Expected one level check per placement, got %d for %d", len(statuses), placed)
	}
	last := statuses[len(statuses)-1]
	if !last.BoardFull {
		t.Errorf("Expected the last level check to see a full board")
	}
	if last.Score != session.State().Score {
		t.Errorf("Level check score %d differs from state %d", last.Score, session.State().Score)
	}
}

// TestJournalMatchesStepEvents checks that every STEPPED event has a
// journal record with the same score delta.
func TestJournalMatchesStepEvents(t *testing.T) {
	engine := game.NewEngine(zap.NewNop())
	defer engine.Close()

	opts := game.DefaultOptions()
	opts.Cols, opts.Rows = 3, 3
	opts.Start = board.Index{Col: 0, Row: 0}
	opts.RemoteMulti = true

	session, err := engine.StartSession(opts, nil, nil)
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	var stepped []rules.Event
	session.Events().SubscribeTyped(rules.EventStepped, func(evt rules.Event) {
		stepped = append(stepped, evt)
	})

	moves := []struct {
		card *board.Card
		idx  board.Index
	}{
		{board.MustCard(board.Orange, board.Left, board.Right), board.Index{Col: 1, Row: 0}},
		{board.MustCard(board.Yellow, board.Left, board.Down), board.Index{Col: 2, Row: 0}},
		{board.MustCard(board.None, board.Up, board.Left), board.Index{Col: 2, Row: 1}},
	}
	for _, m := range moves {
		if _, err := session.PlaceCard(m.card, m.idx); err != nil {
			t.Fatalf("Placement at %s failed: %v", m.idx, err)
		}
		session.Drain()
	}

	journal := session.Journal()
	if journal.Size() != len(stepped) {
		t.Fatalf("Expected %d journal records, got %d", len(stepped), journal.Size())
	}
	total := 0
	for i, evt := range stepped {
		rec := journal.At(i)
		if rec.ScoreDelta != evt.Amount || rec.Tile != evt.Tile || rec.Step != evt.Step {
			t.Errorf("Record %d = %+v does not match event %+v", i, rec, evt)
		}
		total += evt.Amount
	}
	if total != session.State().Score {
		t.Errorf("Sum of step scores %d differs from score %d", total, session.State().Score)
	}
}
