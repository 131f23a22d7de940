package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/effects"
	"github.com/aminvimazi/casualcrusade/internal/game/rules"
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// activation is one walk along a discovered path. Deadlines are fixed when
// it starts.
type activation struct {
	id     string
	path   []board.Index
	t0     time.Duration
	step   time.Duration
	settle time.Duration
}

func (a *activation) stepAt(i int) time.Duration {
	return a.t0 + time.Duration(i)*a.step
}

func (a *activation) completesAt() time.Duration {
	return a.stepAt(len(a.path))
}

func (a *activation) levelCheckAt() time.Duration {
	return a.completesAt() + a.settle
}

// startActivation enters the walking state and queues every callback of
// the walk. Caller holds s.mu.
func (s *Session) startActivation(path []board.Index) *activation {
	act := &activation{
		id:     uuid.NewString(),
		path:   path,
		t0:     s.clock.Now(),
		step:   s.opts.StepDuration,
		settle: s.opts.SettleDelay,
	}
	s.current = act
	s.moving = true
	s.visited = mapset.New[board.Index]()

	started := s.newEvent(rules.EventActivationStarted, path[len(path)-1])
	started.Amount = len(path)
	started.Metadata["path"] = formatPath(path)
	s.emit(started)

	for i := range path {
		s.clock.At(act.stepAt(i), fmt.Sprintf("step %d", i), func() { s.step(act, i) })
	}
	s.clock.At(act.completesAt(), "path complete", func() { s.complete(act) })
	s.clock.At(act.levelCheckAt(), "level check", func() { s.levelCheck(act) })

	s.logger.Debug("activation started",
		zap.String("activation_id", act.id),
		zap.String("path", started.Metadata["path"]),
		zap.Duration("t0", act.t0),
	)
	return act
}

// step commits path index i. Scoring reads the multiplier as it stood
// before this step's own doubling.
func (s *Session) step(act *activation, i int) {
	s.mu.Lock()
	if s.current != act {
		s.mu.Unlock()
		return
	}
	idx := act.path[i]
	s.visited.Put(idx)
	s.traveler = idx
	if i == 0 {
		s.mu.Unlock()
		return
	}

	tile, _ := s.board.Tile(idx)
	multiplier := s.state.Multiplier
	delta := s.resolver.ResolveCard(effects.PhaseStep, tile.Content, s.opts.Wilds, s.effectState())
	s.applyStep(idx, i, delta)

	base := i * s.state.StepScore
	scoreDelta := base * multiplier * s.state.Level * delta.ScoreFactor
	s.state.Score += scoreDelta

	stepped := s.newEvent(rules.EventStepped, idx)
	stepped.Step = i
	stepped.Amount = scoreDelta
	stepped.Metadata["score"] = fmt.Sprint(s.state.Score)
	s.emit(stepped)

	for _, action := range s.triggers.Handle(stepped) {
		action.Resolve()
	}

	if s.journal != nil {
		s.journal.Record(&StepRecord{
			ActivationID:   act.id,
			Step:           i,
			Tile:           idx,
			Abilities:      delta.Triggered,
			BaseScore:      base,
			MultiplierUsed: multiplier,
			ScoreDelta:     scoreDelta,
			Score:          s.state.Score,
			Health:         s.state.Health,
			Multiplier:     s.state.Multiplier,
			At:             s.clock.Now(),
		})
	}
	s.logger.Debug("stepped",
		zap.String("activation_id", act.id),
		zap.Int("step", i),
		zap.Stringer("tile", idx),
		zap.Int("score_delta", scoreDelta),
		zap.Int("multiplier", s.state.Multiplier),
	)
	s.mu.Unlock()
	s.flush()
}

func (s *Session) applyStep(idx board.Index, i int, delta effects.Delta) {
	for _, a := range delta.Triggered {
		s.emit(s.abilityEvent(idx, a, i, false))
	}
	if delta.Heal != 0 {
		s.heal(idx, delta.Heal)
	}
	for n := 0; n < delta.Discards; n++ {
		card, ok := s.deck.DiscardRandomCard()
		if !ok {
			continue
		}
		evt := s.newEvent(rules.EventCardDiscarded, idx)
		evt.Step = i
		evt.Description = card.String()
		s.emit(evt)
	}
	s.multiply(idx, i, delta.MultiplierFactor)
}

func (s *Session) multiply(idx board.Index, i, factor int) {
	if factor == 1 {
		return
	}
	s.state.Multiplier *= factor
	evt := s.newEvent(rules.EventMultiplierChanged, idx)
	evt.Step = i
	evt.Amount = s.state.Multiplier
	s.emit(evt)
}

// registerRemoteMultiplier installs the cascade that lets every Orange
// card next to a stepped tile double the multiplier too. Trigger callbacks
// run with s.mu held.
func (s *Session) registerRemoteMultiplier() {
	s.triggers.Register(rules.AbilityTrigger{
		ID:        "remote-multiplier",
		SourceID:  s.id,
		EventType: rules.EventStepped,
		Condition: func(rules.Event) bool {
			return s.state.RemoteMultiEnabled
		},
		Build: func(evt rules.Event) []rules.TriggeredAction {
			var actions []rules.TriggeredAction
			for _, n := range s.board.Neighbours(evt.Tile) {
				if n.Content == nil || n.Content.Gem() != board.Orange {
					continue
				}
				at := n.Index
				actions = append(actions, rules.TriggeredAction{
					SourceID:    at.String(),
					Description: board.Orange.Title(),
					Resolve: func() {
						delta := s.resolver.Cascade(s.effectState())
						for _, a := range delta.Triggered {
							s.emit(s.abilityEvent(at, a, evt.Step, true))
						}
						s.multiply(at, evt.Step, delta.MultiplierFactor)
					},
				})
			}
			return actions
		},
	})
}

func (s *Session) complete(act *activation) {
	s.mu.Lock()
	if s.current != act {
		s.mu.Unlock()
		return
	}
	last := act.path[len(act.path)-1]
	s.traveler = last
	s.visited = mapset.New[board.Index]()
	s.moving = false

	evt := s.newEvent(rules.EventPathComplete, last)
	evt.Step = len(act.path) - 1
	evt.Amount = len(act.path)
	evt.Metadata["score"] = fmt.Sprint(s.state.Score)
	s.emit(evt)
	s.logger.Info("path complete",
		zap.String("activation_id", act.id),
		zap.Int("path_len", len(act.path)),
		zap.Int("score", s.state.Score),
	)
	s.mu.Unlock()
	s.flush()
}

// levelCheck runs once per activation, even if a newer walk has started.
func (s *Session) levelCheck(act *activation) {
	s.mu.Lock()
	status := s.levelStatusLocked()
	evt := s.newEvent(rules.EventLevelEndChecked, act.path[len(act.path)-1])
	evt.ActivationID = act.id
	evt.Amount = status.Score
	evt.Flag = status.Ended()
	s.emit(evt)
	if s.current == act {
		s.current = nil
	}
	s.mu.Unlock()
	s.flush()

	if s.level != nil {
		s.level.CheckLevelEnd(status)
	}
}

func formatPath(path []board.Index) string {
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = idx.String()
	}
	return strings.Join(parts, " ")
}
