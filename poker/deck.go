package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/siliconcasino/internal/randutil"
)

// ErrInsufficientCards is returned when a deal asks for more cards than remain.
var ErrInsufficientCards = errors.New("insufficient cards in deck")

// Deck is a standard 52-card deck. Cards are dealt from the front.
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a shuffled deck drawing randomness from rng.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("poker: NewDeck requires an rng")
	}
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// NewSeededDeck creates a shuffled deck whose deal sequence is fully
// determined by seed.
func NewSeededDeck(seed int64) *Deck {
	return NewDeck(randutil.New(seed))
}

// Reset repopulates all 52 cards and shuffles them.
func (d *Deck) Reset() {
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.next = 0
	d.shuffle()
	d.mustBeComplete()
}

// shuffle is a Fisher-Yates shuffle of the whole deck.
func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// mustBeComplete panics if the deck does not hold 52 distinct cards.
func (d *Deck) mustBeComplete() {
	var seen [52]bool
	for _, c := range d.cards {
		if !c.Valid() || seen[c.index()] {
			panic(fmt.Sprintf("poker: deck integrity violated at card %v", c))
		}
		seen[c.index()] = true
	}
}

// Deal removes and returns the first n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: cannot deal %d cards", ErrInsufficientCards, n)
	}
	if n > d.Remaining() {
		return nil, fmt.Errorf("%w: cannot deal %d cards, only %d remaining", ErrInsufficientCards, n, d.Remaining())
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out, nil
}

// Burn discards the top card.
func (d *Deck) Burn() error {
	_, err := d.Deal(1)
	return err
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Dealt returns a copy of the cards dealt since the last Reset, in order.
func (d *Deck) Dealt() []Card {
	out := make([]Card, d.next)
	copy(out, d.cards[:d.next])
	return out
}
