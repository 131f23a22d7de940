// Package effects maps gem abilities to the state changes they cause.
package effects

import "github.com/aminvimazi/casualcrusade/internal/game/board"

// Phase selects when an ability is evaluated
type Phase int

const (
	// PhasePlacement runs once, synchronously, when a card is dropped
	PhasePlacement Phase = iota
	// PhaseStep runs each time the traveler steps onto the card
	PhaseStep
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhasePlacement:
		return "PLACEMENT"
	case PhaseStep:
		return "STEP"
	default:
		return "UNKNOWN"
	}
}

// State is the read-only view of shared game state the resolver needs
type State struct {
	Multiplier int
	HealOnStep bool
}

// Delta is the change a set of abilities asks the caller to apply.
// Factors are multiplicative and default to 1.
type Delta struct {
	Heal             int
	Draws            int
	Discards         int
	MultiplierFactor int
	ScoreFactor      int
	BlankNeighbours  bool
	Triggered        []board.Ability
}

// NoDelta returns the identity delta
func NoDelta() Delta {
	return Delta{MultiplierFactor: 1, ScoreFactor: 1}
}

// effectFunc applies one ability to d and reports whether it fired
type effectFunc func(state State, d *Delta) bool

// Resolver dispatches abilities through per-phase tables
type Resolver struct {
	tables map[Phase]map[board.Ability]effectFunc
}

// NewResolver builds the standard gem table
func NewResolver() *Resolver {
	return &Resolver{
		tables: map[Phase]map[board.Ability]effectFunc{
			PhasePlacement: {
				board.Blue: func(_ State, d *Delta) bool {
					d.Draws++
					return true
				},
				board.Red: func(_ State, d *Delta) bool {
					d.Heal++
					return true
				},
				board.Green: func(_ State, d *Delta) bool {
					d.BlankNeighbours = true
					return true
				},
			},
			PhaseStep: {
				board.Purple: func(_ State, d *Delta) bool {
					d.Discards++
					return true
				},
				board.Red: func(s State, d *Delta) bool {
					if !s.HealOnStep {
						return false
					}
					d.Heal++
					return true
				},
				board.Yellow: func(_ State, d *Delta) bool {
					d.ScoreFactor *= 10
					return true
				},
				board.Orange: func(_ State, d *Delta) bool {
					d.MultiplierFactor *= 2
					return true
				},
			},
		},
	}
}

// Resolve evaluates every ability in order for the given phase. Abilities
// with no entry for the phase are skipped.
func (r *Resolver) Resolve(phase Phase, abilities []board.Ability, state State) Delta {
	d := NoDelta()
	table := r.tables[phase]
	for _, a := range abilities {
		fn, ok := table[a]
		if !ok {
			continue
		}
		if fn(state, &d) {
			d.Triggered = append(d.Triggered, a)
		}
	}
	return d
}

// ResolveCard is Resolve over the abilities the card counts as.
func (r *Resolver) ResolveCard(phase Phase, card *board.Card, wilds board.Wilds, state State) Delta {
	return r.Resolve(phase, card.Abilities(wilds), state)
}

// Cascade is the step delta for a remotely activated Orange neighbour.
// Only the multiplier doubling carries over.
func (r *Resolver) Cascade(state State) Delta {
	return r.Resolve(PhaseStep, []board.Ability{board.Orange}, state)
}

