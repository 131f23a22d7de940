package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCard is returned when a card is built from invalid data.
var ErrMalformedCard = errors.New("malformed card")

// Card is an immutable directional piece with an optional gem.
type Card struct {
	directions [4]bool
	count      int
	gem        Ability
}

// NewCard validates the connector list and gem and builds a card.
func NewCard(directions []Direction, gem Ability) (*Card, error) {
	if !gem.IsValid() {
		return nil, fmt.Errorf("%w: unknown gem %d", ErrMalformedCard, gem)
	}
	if len(directions) > 4 {
		return nil, fmt.Errorf("%w: %d directions", ErrMalformedCard, len(directions))
	}
	card := &Card{gem: gem}
	for _, d := range directions {
		if !d.IsValid() {
			return nil, fmt.Errorf("%w: unknown direction %d", ErrMalformedCard, d)
		}
		if card.directions[d] {
			return nil, fmt.Errorf("%w: duplicate direction %s", ErrMalformedCard, d)
		}
		card.directions[d] = true
		card.count++
	}
	return card, nil
}

// MustCard is NewCard for fixed literals. It panics on malformed input.
func MustCard(gem Ability, directions ...Direction) *Card {
	card, err := NewCard(directions, gem)
	if err != nil {
		panic(err)
	}
	return card
}

// BlankCard returns a card with no connectors and no gem.
func BlankCard() *Card {
	return &Card{}
}

// Has reports whether the card exposes a connector on side d.
func (c *Card) Has(d Direction) bool {
	if c == nil || !d.IsValid() {
		return false
	}
	return c.directions[d]
}

// Directions returns the connectors in Up, Right, Down, Left order.
func (c *Card) Directions() []Direction {
	result := make([]Direction, 0, c.count)
	for _, d := range AllDirections() {
		if c.directions[d] {
			result = append(result, d)
		}
	}
	return result
}

// DirectionCount returns the number of connectors.
func (c *Card) DirectionCount() int {
	return c.count
}

// Gem returns the raw gem.
func (c *Card) Gem() Ability {
	if c == nil {
		return None
	}
	return c.gem
}

// IsBlank reports whether the card has neither connectors nor gem.
func (c *Card) IsBlank() bool {
	return c.count == 0 && c.gem == None
}

// Is reports whether the card counts as ability a under the given wildcards.
func (c *Card) Is(a Ability, wilds Wilds) bool {
	if c == nil {
		return false
	}
	return wilds.Matches(c.gem, a)
}

// Abilities returns every ability the card counts as, in enum order.
func (c *Card) Abilities(wilds Wilds) []Ability {
	if c == nil || c.gem == None {
		return nil
	}
	var result []Ability
	for _, a := range Abilities() {
		if c.Is(a, wilds) {
			result = append(result, a)
		}
	}
	return result
}

// String renders the card as e.g. "UP|DOWN:ORANGE".
func (c *Card) String() string {
	if c == nil {
		return "<nil>"
	}
	parts := make([]string, 0, c.count)
	for _, d := range c.Directions() {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "|") + ":" + c.gem.String()
}
