package board

import "math/rand"

const (
	fullCardChance    = 0.1
	singleGemChance   = 0.6
	multipleGemChance = 0.2
)

// RandomCard draws a card. With probability 0.1 it has all four connectors,
// otherwise one to three distinct ones. The gem roll is scaled by chance and
// is three times likelier on single-connector cards.
func RandomCard(rng *rand.Rand, chance float64, canHaveGem bool) *Card {
	count := 4
	if rng.Float64() >= fullCardChance {
		count = 1 + rng.Intn(3)
	}
	dirs := AllDirections()
	rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	return cardWithRolledGem(rng, dirs[:count], chance, canHaveGem)
}

// CardWith builds a card with fixed connectors and a rolled gem.
func CardWith(rng *rand.Rand, dirs []Direction, chance float64, canHaveGem bool) (*Card, error) {
	card, err := NewCard(dirs, None)
	if err != nil {
		return nil, err
	}
	return cardWithRolledGem(rng, card.Directions(), chance, canHaveGem), nil
}

func cardWithRolledGem(rng *rand.Rand, dirs []Direction, chance float64, canHaveGem bool) *Card {
	gemChance := multipleGemChance * chance
	if len(dirs) == 1 {
		gemChance = singleGemChance * chance
	}
	gem := None
	if canHaveGem && rng.Float64() < gemChance {
		gem = Ability(1 + rng.Intn(6))
	}
	card, _ := NewCard(dirs, gem)
	return card
}
