package deck

import (
	"math/rand"
	"testing"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHand(t *testing.T, size int) *Hand {
	t.Helper()
	return NewHand(rand.New(rand.NewSource(5)), Options{Size: size, GemChance: 1, CanHaveGem: true}, zaptest.NewLogger(t))
}

func TestHandDrawAndTake(t *testing.T) {
	h := newTestHand(t, 3)
	require.Equal(t, 3, h.Size())

	card := h.DrawCard()
	require.NotNil(t, card)
	assert.Equal(t, 4, h.Size())

	assert.True(t, h.Take(card))
	assert.False(t, h.Take(card))
	assert.Equal(t, 3, h.Size())

	h.Return(card)
	h.Return(nil)
	assert.Equal(t, 4, h.Size())
	assert.Contains(t, h.Cards(), card)
}

func TestHandDiscardRandomCard(t *testing.T) {
	h := newTestHand(t, 2)

	first, ok := h.DiscardRandomCard()
	require.True(t, ok)
	second, ok := h.DiscardRandomCard()
	require.True(t, ok)
	_, ok = h.DiscardRandomCard()
	assert.False(t, ok)

	assert.Equal(t, 0, h.Size())
	assert.Equal(t, []*board.Card{first, second}, h.Pile())
}

func TestHandCreateBlankCard(t *testing.T) {
	h := newTestHand(t, 0)
	card := h.CreateBlankCard(board.Index{Col: 1, Row: 1})
	assert.True(t, card.IsBlank())
	assert.Equal(t, 1, h.BlanksCreated())
	assert.Equal(t, 0, h.Size())
}

func TestHandDeterministicDeal(t *testing.T) {
	a := NewHand(rand.New(rand.NewSource(11)), Options{Size: 5, GemChance: 1, CanHaveGem: true}, nil)
	b := NewHand(rand.New(rand.NewSource(11)), Options{Size: 5, GemChance: 1, CanHaveGem: true}, nil)
	for i, card := range a.Cards() {
		assert.Equal(t, card.String(), b.Cards()[i].String())
	}
}
