package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckResetHas52UniqueCards(t *testing.T) {
	t.Parallel()

	d := NewSeededDeck(7)
	require.Equal(t, 52, d.Remaining())

	cards, err := d.Deal(52)
	require.NoError(t, err)

	seen := make(map[Card]bool)
	for _, c := range cards {
		require.True(t, c.Valid())
		require.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
	assert.Equal(t, 0, d.Remaining())

	d.Reset()
	assert.Equal(t, 52, d.Remaining())
	assert.Empty(t, d.Dealt())
}

func TestDeckDealRemovesFromFront(t *testing.T) {
	t.Parallel()

	d := NewSeededDeck(99)
	first, err := d.Deal(2)
	require.NoError(t, err)
	require.NoError(t, d.Burn())
	next, err := d.Deal(3)
	require.NoError(t, err)

	assert.Equal(t, 46, d.Remaining())
	dealt := d.Dealt()
	require.Len(t, dealt, 6)
	assert.Equal(t, first, dealt[:2])
	assert.Equal(t, next, dealt[3:])

	for _, c := range next {
		assert.NotContains(t, first, c)
	}
}

func TestDeckDealInsufficient(t *testing.T) {
	t.Parallel()

	d := NewSeededDeck(1)
	_, err := d.Deal(50)
	require.NoError(t, err)

	_, err = d.Deal(3)
	assert.ErrorIs(t, err, ErrInsufficientCards)
	assert.Equal(t, 2, d.Remaining(), "failed deal must not consume cards")

	_, err = d.Deal(-1)
	assert.ErrorIs(t, err, ErrInsufficientCards)

	require.NoError(t, d.Burn())
	require.NoError(t, d.Burn())
	assert.ErrorIs(t, d.Burn(), ErrInsufficientCards)
}

func TestDeckSeedDeterminism(t *testing.T) {
	t.Parallel()

	a := NewSeededDeck(42)
	b := NewSeededDeck(42)
	c := NewSeededDeck(43)

	ca, _ := a.Deal(52)
	cb, _ := b.Deal(52)
	cc, _ := c.Deal(52)

	assert.Equal(t, ca, cb, "same seed must reproduce the deal sequence")
	assert.NotEqual(t, ca, cc, "different seeds should shuffle differently")
}

func TestNewDeckRequiresRNG(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewDeck(nil) })
}
