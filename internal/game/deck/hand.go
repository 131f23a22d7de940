// Package deck holds the player's unplaced cards.
package deck

import (
	"math/rand"
	"sync"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"go.uber.org/zap"
)

// Hand is an in-memory hand backed by random card generation. Discarded
// cards go to a recycle pile.
type Hand struct {
	logger *zap.Logger

	mu         sync.Mutex
	rng        *rand.Rand
	gemChance  float64
	canHaveGem bool
	cards      []*board.Card
	pile       []*board.Card
	blanks     int
}

// Options configures a Hand.
type Options struct {
	Size       int
	GemChance  float64
	CanHaveGem bool
}

// NewHand deals opts.Size random cards.
func NewHand(rng *rand.Rand, opts Options, logger *zap.Logger) *Hand {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	h := &Hand{
		logger:     logger,
		rng:        rng,
		gemChance:  opts.GemChance,
		canHaveGem: opts.CanHaveGem,
	}
	for i := 0; i < opts.Size; i++ {
		h.cards = append(h.cards, board.RandomCard(rng, h.gemChance, h.canHaveGem))
	}
	return h
}

// DrawCard adds a freshly generated card to the hand and returns it.
func (h *Hand) DrawCard() *board.Card {
	h.mu.Lock()
	defer h.mu.Unlock()
	card := board.RandomCard(h.rng, h.gemChance, h.canHaveGem)
	h.cards = append(h.cards, card)
	h.logger.Debug("card drawn",
		zap.Stringer("card", card),
		zap.Int("hand_size", len(h.cards)),
	)
	return card
}

// DiscardRandomCard moves a random unplaced card to the recycle pile.
// It reports false when the hand is empty.
func (h *Hand) DiscardRandomCard() (*board.Card, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.cards) == 0 {
		return nil, false
	}
	i := h.rng.Intn(len(h.cards))
	card := h.cards[i]
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	h.pile = append(h.pile, card)
	h.logger.Debug("card discarded",
		zap.Stringer("card", card),
		zap.Int("hand_size", len(h.cards)),
	)
	return card, true
}

// CreateBlankCard returns the card to fill idx with.
func (h *Hand) CreateBlankCard(idx board.Index) *board.Card {
	h.mu.Lock()
	h.blanks++
	h.mu.Unlock()
	h.logger.Debug("blank card created", zap.Stringer("tile", idx))
	return board.BlankCard()
}

// Take removes card from the hand. It reports false if the card is not held.
func (h *Hand) Take(card *board.Card) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.cards {
		if c == card {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Return puts a card back into the hand, e.g. after a rejected placement.
func (h *Hand) Return(card *board.Card) {
	if card == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cards = append(h.cards, card)
}

// Cards returns a copy of the cards in hand.
func (h *Hand) Cards() []*board.Card {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*board.Card(nil), h.cards...)
}

// Size returns the number of cards in hand.
func (h *Hand) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cards)
}

// Pile returns a copy of the recycle pile.
func (h *Hand) Pile() []*board.Card {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*board.Card(nil), h.pile...)
}

// BlanksCreated returns how many blank cards were handed out.
func (h *Hand) BlanksCreated() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.blanks
}
