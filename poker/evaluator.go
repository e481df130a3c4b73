package poker

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidHand is returned when Evaluate receives a malformed card set.
var ErrInvalidHand = errors.New("invalid hand")

// HandRank scores the best five-card hand. Lower values are stronger and
// equal hands always score equally. The zero value means "not evaluated".
type HandRank uint32

// Category is the class of a poker hand, ordered from strongest (1) to
// weakest (10).
type Category uint8

const (
	RoyalFlush Category = iota + 1
	StraightFlush
	FourOfAKind
	FullHouse
	Flush
	Straight
	ThreeOfAKind
	TwoPair
	Pair
	HighCard
)

var categoryNames = [...]string{
	RoyalFlush:    "Royal Flush",
	StraightFlush: "Straight Flush",
	FourOfAKind:   "Four of a Kind",
	FullHouse:     "Full House",
	Flush:         "Flush",
	Straight:      "Straight",
	ThreeOfAKind:  "Three of a Kind",
	TwoPair:       "Two Pair",
	Pair:          "Pair",
	HighCard:      "High Card",
}

func (c Category) String() string {
	if c < RoyalFlush || c > HighCard {
		return "Unknown"
	}
	return categoryNames[c]
}

// kind orders hand classes weakest first so that it can form the high bits
// of a strength value. Royal flush is not a separate kind: it is the
// ace-high straight flush.
type kind uint32

const (
	kindHighCard kind = iota
	kindPair
	kindTwoPair
	kindTrips
	kindStraight
	kindFlush
	kindFullHouse
	kindQuads
	kindStraightFlush
)

const (
	kindShift   = 20
	maxStrength = uint32(kindStraightFlush)<<kindShift | 0xFFFFF
)

// strength packs a kind and up to five tie-break ranks (4 bits each, most
// significant first). Higher is stronger.
func strength(k kind, ranks ...Rank) uint32 {
	s := uint32(k) << kindShift
	for i, r := range ranks {
		s |= uint32(r) << (4 * (4 - i))
	}
	return s
}

func rankFromStrength(s uint32) HandRank {
	return HandRank(maxStrength - s)
}

// Category returns the hand class of the score.
func (hr HandRank) Category() Category {
	if hr == 0 || uint32(hr) > maxStrength {
		return 0
	}
	s := maxStrength - uint32(hr)
	switch kind(s >> kindShift) {
	case kindStraightFlush:
		if Rank((s>>16)&0xF) == Ace {
			return RoyalFlush
		}
		return StraightFlush
	case kindQuads:
		return FourOfAKind
	case kindFullHouse:
		return FullHouse
	case kindFlush:
		return Flush
	case kindStraight:
		return Straight
	case kindTrips:
		return ThreeOfAKind
	case kindTwoPair:
		return TwoPair
	case kindPair:
		return Pair
	default:
		return HighCard
	}
}

// String returns the category name.
func (hr HandRank) String() string {
	return hr.Category().String()
}

// Beats reports whether hr is a strictly stronger hand than other.
func (hr HandRank) Beats(other HandRank) bool {
	return hr < other
}

// Evaluate5 scores exactly five cards.
func Evaluate5(cards [5]Card) HandRank {
	var counts [Ace + 1]int
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	// Ranks grouped by multiplicity, then by rank, both descending.
	groups := make([]Rank, 0, 5)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, r)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return counts[groups[i]] > counts[groups[j]]
	})

	if len(groups) == 5 {
		top, straight := straightTop(groups)
		switch {
		case straight && flush:
			return rankFromStrength(strength(kindStraightFlush, top))
		case flush:
			return rankFromStrength(strength(kindFlush, groups...))
		case straight:
			return rankFromStrength(strength(kindStraight, top))
		default:
			return rankFromStrength(strength(kindHighCard, groups...))
		}
	}

	switch counts[groups[0]] {
	case 4:
		return rankFromStrength(strength(kindQuads, groups...))
	case 3:
		if counts[groups[1]] == 2 {
			return rankFromStrength(strength(kindFullHouse, groups...))
		}
		return rankFromStrength(strength(kindTrips, groups...))
	default:
		if counts[groups[1]] == 2 {
			return rankFromStrength(strength(kindTwoPair, groups...))
		}
		return rankFromStrength(strength(kindPair, groups...))
	}
}

// straightTop expects five distinct ranks in descending order and returns
// the straight's top card. The wheel A-5-4-3-2 is five high.
func straightTop(desc []Rank) (Rank, bool) {
	if desc[0]-desc[4] == 4 {
		return desc[0], true
	}
	if desc[0] == Ace && desc[1] == Five && desc[4] == Two {
		return Five, true
	}
	return 0, false
}

// Evaluate scores the best five-card hand that can be made from two hole
// cards and three to five board cards.
func Evaluate(hole, board []Card) (HandRank, error) {
	_, rank, err := BestFive(hole, board)
	return rank, err
}

// BestFive returns the strongest five-card subset along with its score.
// Every C(n,5) subset of the available cards is scored and the lowest
// score kept, so the result does not depend on input order.
func BestFive(hole, board []Card) ([5]Card, HandRank, error) {
	var best [5]Card
	if len(hole) != 2 {
		return best, 0, fmt.Errorf("%w: expected 2 hole cards, got %d", ErrInvalidHand, len(hole))
	}
	if len(board) < 3 || len(board) > 5 {
		return best, 0, fmt.Errorf("%w: expected 3-5 community cards, got %d", ErrInvalidHand, len(board))
	}

	all := make([]Card, 0, 7)
	all = append(all, hole...)
	all = append(all, board...)

	var seen [52]bool
	for _, c := range all {
		if !c.Valid() {
			return best, 0, fmt.Errorf("%w: %w", ErrInvalidHand, ErrInvalidCard)
		}
		if seen[c.index()] {
			return best, 0, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		seen[c.index()] = true
	}

	bestRank := HandRank(0)
	n := len(all)
	var combo [5]Card
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						combo = [5]Card{all[a], all[b], all[c], all[d], all[e]}
						rank := Evaluate5(combo)
						if bestRank == 0 || rank < bestRank {
							bestRank = rank
							best = combo
						}
					}
				}
			}
		}
	}
	return best, bestRank, nil
}
