package poker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned when a card string cannot be decoded.
var ErrInvalidCard = errors.New("invalid card")

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// Rank is a card rank in the range 2..14 (ace high).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Valid reports whether r is a rank between Two and Ace.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return rankChars[r-Two : r-Two+1]
}

// Suit is one of the four card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s <= Spades
}

func (s Suit) String() string {
	if !s.Valid() {
		return "?"
	}
	return suitChars[s : s+1]
}

// IsRed returns true for hearts and diamonds.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Card is an immutable playing card value.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from a rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the two character encoding, e.g. "Ah" or "Td".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Valid reports whether both rank and suit are in range.
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit.Valid()
}

// index maps a valid card onto 0..51.
func (c Card) index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// MarshalText implements encoding.TextMarshaler so cards serialize as "Ah".
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: rank=%d suit=%d", ErrInvalidCard, c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard decodes a two character card string. It is the inverse of
// Card.String; rank and suit characters are accepted in either case.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	rankIdx := strings.IndexByte(rankChars, upper(s[0]))
	if rankIdx < 0 {
		return Card{}, fmt.Errorf("%w: bad rank %q", ErrInvalidCard, s[0])
	}

	suitIdx := strings.IndexByte(suitChars, lower(s[1]))
	if suitIdx < 0 {
		return Card{}, fmt.Errorf("%w: bad suit %q", ErrInvalidCard, s[1])
	}

	return Card{Rank: Two + Rank(rankIdx), Suit: Suit(suitIdx)}, nil
}

// MustParseCard is like ParseCard but panics on error. Intended for tests
// and constant tables.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards decodes a compact run of cards such as "AhKhQhJhTh".
func ParseCards(s string) ([]Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length cards string %q", ErrInvalidCard, s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// CardsString encodes cards in the compact form accepted by ParseCards.
func CardsString(cards []Card) string {
	var b strings.Builder
	b.Grow(len(cards) * 2)
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}

// CardStrings returns the individual two character encodings.
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
