package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/effects"
	"github.com/aminvimazi/casualcrusade/internal/game/pathing"
	"github.com/aminvimazi/casualcrusade/internal/game/rules"
	"github.com/aminvimazi/casualcrusade/internal/game/watchers"
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

var (
	// ErrInvalidPlacement wraps every reason a card cannot go onto a tile.
	ErrInvalidPlacement = errors.New("invalid placement")
	// ErrConcurrentActivation is returned when placing while the traveler walks.
	ErrConcurrentActivation = errors.New("activation in progress")
)

// Placement describes an accepted card drop and the walk it started.
type Placement struct {
	ActivationID string
	Tile         board.Index
	Path         []board.Index
	Triggered    []board.Ability
	StartsAt     time.Duration
	CompletesAt  time.Duration
	LevelCheckAt time.Duration
}

// Session is one level of play: a board, the traveler, shared state and the
// timer queue that plays walks back.
type Session struct {
	id       string
	logger   *zap.Logger
	opts     Options
	deck     Deck
	level    LevelController
	resolver *effects.Resolver

	bus      *rules.EventBus
	triggers *rules.TriggerManager
	watchers *rules.WatcherRegistry
	clock    *rules.Scheduler
	journal  *Journal

	activationStats *watchers.ActivationStatsWatcher
	sessionStats    *watchers.SessionStatsWatcher

	mu         sync.Mutex
	board      *board.Board
	state      State
	traveler   board.Index
	moving     bool
	visited    mapset.Set[board.Index]
	current    *activation
	outbox     []rules.Event
	publishing bool
}

// NewSession builds a session with the traveler standing on a four-way
// start card. deck and level may be nil.
func NewSession(id string, opts Options, deck Deck, level LevelController, logger *zap.Logger) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if id == "" {
		id = uuid.NewString()
	}
	if deck == nil {
		deck = nopDeck{}
	}
	if opts.PlacementRule == nil {
		opts.PlacementRule = board.AcceptConnected
	}

	s := &Session{
		id:       id,
		logger:   logger.With(zap.String("session_id", id)),
		opts:     opts,
		deck:     deck,
		level:    level,
		resolver: effects.NewResolver(),
		bus:      rules.NewEventBus(),
		triggers: rules.NewTriggerManager(),
		watchers: rules.NewWatcherRegistry(),
		visited:  mapset.New[board.Index](),
		state: State{
			Health:             opts.StartingHealth,
			Multiplier:         1,
			Level:              opts.Level,
			StepScore:          opts.StepScore,
			RemoteMultiEnabled: opts.RemoteMulti,
			HealOnStep:         opts.HealOnStep,
		},
	}
	s.clock = rules.NewScheduler(s.logger)
	if opts.JournalCapacity > 0 {
		s.journal = NewJournal(id, opts.JournalCapacity)
	}

	s.activationStats = watchers.NewActivationStatsWatcher()
	s.sessionStats = watchers.NewSessionStatsWatcher()
	s.watchers.AddWatcher(s.activationStats)
	s.watchers.AddWatcher(s.sessionStats)
	s.bus.SubscribeTyped(rules.EventActivationStarted, func(rules.Event) {
		s.watchers.ResetWatchersByScope(rules.WatcherScopeActivation)
	})
	s.bus.Subscribe(s.watchers.NotifyWatchers)

	s.registerRemoteMultiplier()
	s.resetBoard()

	s.logger.Info("session created",
		zap.Int("cols", opts.Cols),
		zap.Int("rows", opts.Rows),
		zap.Stringer("start", opts.Start),
		zap.String("placement_rule", opts.PlacementRule.Name()),
	)
	return s, nil
}

func (s *Session) resetBoard() {
	s.board = board.NewBoard(s.opts.Cols, s.opts.Rows)
	_ = s.board.Place(s.opts.Start, board.MustCard(board.None, board.AllDirections()...))
	s.traveler = s.opts.Start
	s.visited = mapset.New[board.Index]()
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Events returns the bus external collaborators subscribe to.
func (s *Session) Events() *rules.EventBus { return s.bus }

// Clock returns the session's timer queue.
func (s *Session) Clock() *rules.Scheduler { return s.clock }

// Journal returns the step journal, or nil when disabled.
func (s *Session) Journal() *Journal { return s.journal }

// Triggers exposes the trigger manager so callers can add cascade rules.
func (s *Session) Triggers() *rules.TriggerManager { return s.triggers }

// Watchers exposes the watcher registry.
func (s *Session) Watchers() *rules.WatcherRegistry { return s.watchers }

// ActivationStats returns the watcher tracking the current or last walk.
func (s *Session) ActivationStats() *watchers.ActivationStatsWatcher { return s.activationStats }

// Stats returns session totals.
func (s *Session) Stats() watchers.SessionStats { return s.sessionStats.Stats() }

// State returns a copy of the shared game state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsMoving reports whether a walk is in progress.
func (s *Session) IsMoving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moving
}

// Traveler returns the tile the traveler currently stands on.
func (s *Session) Traveler() board.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traveler
}

// Visited reports whether the current walk has passed idx.
func (s *Session) Visited(idx board.Index) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited.Has(idx)
}

// TileView is a read-only copy of one tile.
type TileView struct {
	Index   board.Index
	Card    *board.Card
	Marked  bool
	Hilite  bool
	Visited bool
}

// View returns a copy of the board in row-major order.
func (s *Session) View() []TileView {
	s.mu.Lock()
	defer s.mu.Unlock()
	tiles := s.board.Tiles()
	result := make([]TileView, 0, len(tiles))
	for _, t := range tiles {
		result = append(result, TileView{
			Index:   t.Index,
			Card:    t.Content,
			Marked:  t.Marked,
			Hilite:  t.Hilite,
			Visited: s.visited.Has(t.Index),
		})
	}
	return result
}

// Cols returns the board width.
func (s *Session) Cols() int { return s.opts.Cols }

// Rows returns the board height.
func (s *Session) Rows() int { return s.opts.Rows }

// PossibleSpots lists the free tiles the placement rule accepts for card.
func (s *Session) PossibleSpots(card *board.Card) []board.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.PossibleSpots(card, s.opts.PlacementRule)
}

// MarkSpots sets the marked hint on every tile card may go to.
func (s *Session) MarkSpots(card *board.Card) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.MarkPossibleSpots(card, s.opts.PlacementRule)
}

// Preview moves the hilite hint to idx if card could be dropped there.
func (s *Session) Preview(card *board.Card, idx board.Index) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.board.Tiles() {
		t.Hilite = false
	}
	tile, ok := s.board.Tile(idx)
	if !ok || tile.Occupied() || !s.opts.PlacementRule.Accepts(s.board, idx, card) {
		return false
	}
	tile.Hilite = true
	return true
}

// ClearHints removes every marked and hilite hint.
func (s *Session) ClearHints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.board.Tiles() {
		t.Marked = false
		t.Hilite = false
	}
}

// SetWilds replaces the active wildcard rule.
func (s *Session) SetWilds(w board.Wilds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Wilds = w
}

// SetRemoteMulti toggles the Orange neighbour cascade.
func (s *Session) SetRemoteMulti(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RemoteMultiEnabled = enabled
}

// SetHealOnStep toggles Red healing when stepped on.
func (s *Session) SetHealOnStep(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.HealOnStep = enabled
}

// PlaceCard drops card onto idx. On success placement gems fire at once
// and the walk to idx is scheduled on the session clock. On failure
// nothing changes.
func (s *Session) PlaceCard(card *board.Card, idx board.Index) (*Placement, error) {
	s.mu.Lock()
	placement, err := s.placeLocked(card, idx)
	if err != nil {
		evt := s.newEvent(rules.EventPlacementRejected, idx)
		evt.Description = err.Error()
		s.emit(evt)
	}
	s.mu.Unlock()
	s.flush()

	if err != nil {
		s.logger.Debug("placement rejected", zap.Stringer("tile", idx), zap.Error(err))
		return nil, err
	}
	s.logger.Info("card placed",
		zap.Stringer("tile", idx),
		zap.Stringer("card", card),
		zap.Int("path_len", len(placement.Path)),
		zap.String("activation_id", placement.ActivationID),
	)
	return placement, nil
}

func (s *Session) placeLocked(card *board.Card, idx board.Index) (*Placement, error) {
	if s.moving {
		return nil, ErrConcurrentActivation
	}
	if card == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlacement, board.ErrMalformedCard)
	}
	tile, ok := s.board.Tile(idx)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", ErrInvalidPlacement, board.ErrOutOfBounds, idx)
	}
	if tile.Occupied() {
		return nil, fmt.Errorf("%w: %w: %s", ErrInvalidPlacement, board.ErrOccupied, idx)
	}
	if !s.opts.PlacementRule.Accepts(s.board, idx, card) {
		return nil, fmt.Errorf("%w: %w: %s", ErrInvalidPlacement, board.ErrRejected, idx)
	}

	s.state.Multiplier = 1
	if err := s.board.Place(idx, card); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlacement, err)
	}
	for _, t := range s.board.Tiles() {
		t.Marked = false
		t.Hilite = false
	}

	placed := s.newEvent(rules.EventCardPlaced, idx)
	placed.Ability = card.Gem()
	placed.Description = card.String()
	s.emit(placed)

	delta := s.resolver.ResolveCard(effects.PhasePlacement, card, s.opts.Wilds, s.effectState())
	s.applyPlacement(idx, delta)

	path := pathing.Longest(s.board, s.traveler, idx)
	act := s.startActivation(path)

	return &Placement{
		ActivationID: act.id,
		Tile:         idx,
		Path:         append([]board.Index(nil), path...),
		Triggered:    delta.Triggered,
		StartsAt:     act.t0,
		CompletesAt:  act.completesAt(),
		LevelCheckAt: act.levelCheckAt(),
	}, nil
}

func (s *Session) applyPlacement(idx board.Index, delta effects.Delta) {
	for _, a := range delta.Triggered {
		s.emit(s.abilityEvent(idx, a, 0, false))
	}
	if delta.Heal != 0 {
		s.heal(idx, delta.Heal)
	}
	for i := 0; i < delta.Draws; i++ {
		card := s.deck.DrawCard()
		evt := s.newEvent(rules.EventCardDrawn, idx)
		if card != nil {
			evt.Description = card.String()
		}
		s.emit(evt)
	}
	if delta.BlankNeighbours {
		free := s.board.FreeNeighbours(idx, true)
		for _, t := range s.board.Tiles() {
			if !free.Has(t.Index) {
				continue
			}
			blank := s.deck.CreateBlankCard(t.Index)
			if blank == nil {
				continue
			}
			if err := s.board.Place(t.Index, blank); err != nil {
				s.logger.Warn("blank card not placed", zap.Stringer("tile", t.Index), zap.Error(err))
				continue
			}
			s.emit(s.newEvent(rules.EventBlankCreated, t.Index))
		}
	}
}

func (s *Session) heal(idx board.Index, amount int) {
	s.state.Health += amount
	evt := s.newEvent(rules.EventHealed, idx)
	evt.Amount = amount
	evt.Metadata["health"] = fmt.Sprint(s.state.Health)
	s.emit(evt)
}

func (s *Session) effectState() effects.State {
	return effects.State{
		Multiplier: s.state.Multiplier,
		HealOnStep: s.state.HealOnStep,
	}
}

// CheckLevelEnd reports whether the level is over. It only reads state.
func (s *Session) CheckLevelEnd() LevelStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levelStatusLocked()
}

func (s *Session) levelStatusLocked() LevelStatus {
	return LevelStatus{
		SessionID: s.id,
		Level:     s.state.Level,
		Score:     s.state.Score,
		Health:    s.state.Health,
		BoardFull: s.board.Full(),
		Depleted:  s.state.Health <= 0,
	}
}

// NextLevel clears the board for the next level, keeping score and health.
func (s *Session) NextLevel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moving {
		return ErrConcurrentActivation
	}
	s.state.Level++
	s.state.Multiplier = 1
	s.resetBoard()
	s.logger.Info("level started", zap.Int("level", s.state.Level))
	return nil
}

// Damage lowers health, e.g. from an external hazard.
func (s *Session) Damage(amount int) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	s.state.Health -= amount
	s.mu.Unlock()
}

// Advance moves the session clock forward, firing due walk steps.
func (s *Session) Advance(dt time.Duration) int {
	return s.clock.Advance(dt)
}

// Drain fires every pending timer, finishing any walk in progress.
func (s *Session) Drain() int {
	return s.clock.Drain()
}

func (s *Session) newEvent(eventType rules.EventType, idx board.Index) rules.Event {
	evt := rules.NewEvent(eventType, s.id, idx)
	evt.ID = uuid.NewString()
	evt.At = s.clock.Now()
	if s.current != nil {
		evt.ActivationID = s.current.id
	}
	return evt
}

func (s *Session) abilityEvent(idx board.Index, a board.Ability, step int, remote bool) rules.Event {
	evt := rules.NewAbilityEvent(s.id, idx, a)
	evt.ID = uuid.NewString()
	evt.At = s.clock.Now()
	evt.Step = step
	evt.Flag = remote
	if s.current != nil {
		evt.ActivationID = s.current.id
	}
	return evt
}

// emit queues an event for delivery once the session lock is released.
func (s *Session) emit(evt rules.Event) {
	s.outbox = append(s.outbox, evt)
}

// flush publishes queued events in order. Only one goroutine drains at a
// time; a nested call from a listener returns and leaves its events to
// the outer loop.
func (s *Session) flush() {
	s.mu.Lock()
	if s.publishing {
		s.mu.Unlock()
		return
	}
	s.publishing = true
	for len(s.outbox) > 0 {
		events := s.outbox
		s.outbox = nil
		s.mu.Unlock()
		s.bus.PublishBatch(events)
		s.mu.Lock()
	}
	s.publishing = false
	s.mu.Unlock()
}
