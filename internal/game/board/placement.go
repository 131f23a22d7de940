package board

import "strings"

// PlacementRule decides whether a card may go onto a free tile.
type PlacementRule interface {
	Accepts(b *Board, idx Index, card *Card) bool
	Name() string
}

// PlacementRuleFunc adapts a function to PlacementRule.
type PlacementRuleFunc func(b *Board, idx Index, card *Card) bool

// Accepts calls f.
func (f PlacementRuleFunc) Accepts(b *Board, idx Index, card *Card) bool {
	return f(b, idx, card)
}

// Name implements PlacementRule.
func (f PlacementRuleFunc) Name() string { return "custom" }

type acceptAny struct{}

func (acceptAny) Accepts(b *Board, idx Index, _ *Card) bool {
	tile, ok := b.Tile(idx)
	return ok && !tile.Occupied()
}

func (acceptAny) Name() string { return "any" }

type acceptConnected struct{}

// Accepts requires at least one of the card's connectors to meet an
// occupied neighbour exposing the opposite connector.
func (acceptConnected) Accepts(b *Board, idx Index, card *Card) bool {
	tile, ok := b.Tile(idx)
	if !ok || tile.Occupied() || card == nil {
		return false
	}
	for _, d := range card.Directions() {
		n, ok := b.Neighbor(idx, d)
		if ok && n.Occupied() && n.Content.Has(d.Opposite()) {
			return true
		}
	}
	return false
}

func (acceptConnected) Name() string { return "connected" }

var (
	// AcceptAny allows any free tile.
	AcceptAny PlacementRule = acceptAny{}
	// AcceptConnected allows free tiles where the card links into the network.
	AcceptConnected PlacementRule = acceptConnected{}
)

// RuleByName resolves a configured rule name. Unknown names yield false.
func RuleByName(name string) (PlacementRule, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "any":
		return AcceptAny, true
	case "connected", "":
		return AcceptConnected, true
	default:
		return nil, false
	}
}

// PossibleSpots returns the free tiles the rule accepts for card.
func (b *Board) PossibleSpots(card *Card, rule PlacementRule) []Index {
	var result []Index
	for _, t := range b.tiles {
		if !t.Occupied() && rule.Accepts(b, t.Index, card) {
			result = append(result, t.Index)
		}
	}
	return result
}

// MarkPossibleSpots sets the Marked hint on the spots the rule accepts.
func (b *Board) MarkPossibleSpots(card *Card, rule PlacementRule) int {
	b.ClearMarks()
	spots := b.PossibleSpots(card, rule)
	for _, idx := range spots {
		tile, _ := b.Tile(idx)
		tile.Marked = true
	}
	return len(spots)
}
