package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/siliconcasino/internal/randutil"
)

func mustEvaluate(t *testing.T, hole, board string) HandRank {
	t.Helper()
	rank, err := Evaluate(MustParseCards(hole), MustParseCards(board))
	require.NoError(t, err)
	return rank
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hole  string
		board string
		want  Category
	}{
		{"royal flush", "AhKh", "QhJhTh", RoyalFlush},
		{"straight flush", "9h8h", "7h6h5h", StraightFlush},
		{"steel wheel", "Ad2d", "3d4d5d", StraightFlush},
		{"four of a kind", "AhAs", "AcAd2h", FourOfAKind},
		{"full house", "KhKd", "Ks2c2d", FullHouse},
		{"flush", "Ah9h", "6h4h2hKsQd", Flush},
		{"straight", "9c8d", "7h6s5c", Straight},
		{"wheel straight", "Ah2c", "3d4s5h", Straight},
		{"three of a kind", "7c7d", "7hKs2c", ThreeOfAKind},
		{"two pair", "AhAd", "KsKc2h", TwoPair},
		{"pair", "QhQd", "9s5c2h", Pair},
		{"high card", "AhJd", "9s5c2h", HighCard},
		{"best of seven picks flush over straight", "Ah2h", "3h4c5h9hKh", Flush},
		{"quads on board with kicker", "Kh2c", "9s9c9h9d3s", FourOfAKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEvaluate(t, tt.hole, tt.board)
			assert.Equal(t, tt.want, got.Category(), "score %d", got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestEvaluateCategoryOrdering(t *testing.T) {
	t.Parallel()

	// Strongest first; every entry must score strictly lower than the next.
	hands := [][2]string{
		{"AhKh", "QhJhTh"},
		{"9h8h", "7h6h5h"},
		{"AhAs", "AcAd2h"},
		{"KhKd", "Ks2c2d"},
		{"Ah9h", "6h4h2h"},
		{"9c8d", "7h6s5c"},
		{"7c7d", "7hKs2c"},
		{"AhAd", "KsKc2h"},
		{"QhQd", "9s5c2h"},
		{"AhJd", "9s5c2h"},
	}

	var prev HandRank
	for i, h := range hands {
		rank := mustEvaluate(t, h[0], h[1])
		assert.Equal(t, Category(i+1), rank.Category())
		if i > 0 {
			assert.True(t, prev.Beats(rank), "%v should beat %v", hands[i-1], h)
		}
		prev = rank
	}
}

func TestEvaluateRoyalIsBestStraightFlush(t *testing.T) {
	t.Parallel()

	royal := mustEvaluate(t, "AsKs", "QsJsTs")
	kingHigh := mustEvaluate(t, "KsQs", "JsTs9s")
	wheel := mustEvaluate(t, "As2s", "3s4s5s")

	assert.True(t, royal.Beats(kingHigh))
	assert.True(t, kingHigh.Beats(wheel))
	assert.Equal(t, StraightFlush, kingHigh.Category())
}

func TestEvaluateWheelIsLowestStraight(t *testing.T) {
	t.Parallel()

	wheel := mustEvaluate(t, "Ah2c", "3d4s5h")
	sixHigh := mustEvaluate(t, "6h2c", "3d4s5h")
	broadway := mustEvaluate(t, "AhKc", "QdJsTh")

	assert.True(t, sixHigh.Beats(wheel))
	assert.True(t, broadway.Beats(sixHigh))
}

func TestEvaluateKickersAndTies(t *testing.T) {
	t.Parallel()

	board := "2c7d9hJs3c"

	t.Run("identical strength ties", func(t *testing.T) {
		a := mustEvaluate(t, "AhKd", board)
		b := mustEvaluate(t, "AsKc", board)
		assert.Equal(t, a, b)
	})

	t.Run("pair kicker decides", func(t *testing.T) {
		kingKicker := mustEvaluate(t, "AhKd", "Ac7d9h4s3c")
		queenKicker := mustEvaluate(t, "AsQd", "Ac7d9h4s3c")
		assert.True(t, kingKicker.Beats(queenKicker))
	})

	t.Run("full house ranks trips first", func(t *testing.T) {
		threesFull := mustEvaluate(t, "3h3d", "3s2c2d")
		twosFull := mustEvaluate(t, "2h2s", "3c3d2d")
		assert.True(t, threesFull.Beats(twosFull))
	})

	t.Run("board plays for both", func(t *testing.T) {
		a := mustEvaluate(t, "2h3d", "AsKsQsJs9c")
		b := mustEvaluate(t, "4h5d", "AsKsQsJs9c")
		assert.Equal(t, HighCard, a.Category())
		assert.Equal(t, a, b)
	})

	t.Run("two pair kicker", func(t *testing.T) {
		a := mustEvaluate(t, "AhQd", "AsKsKc4d2h")
		b := mustEvaluate(t, "AdJd", "AsKsKc4d2h")
		assert.Equal(t, TwoPair, a.Category())
		assert.True(t, a.Beats(b))
	})
}

func TestEvaluatePermutationInvariance(t *testing.T) {
	t.Parallel()

	rng := randutil.New(2024)
	for trial := 0; trial < 200; trial++ {
		d := NewDeck(rng)
		cards, err := d.Deal(7)
		require.NoError(t, err)

		want, err := Evaluate(cards[:2], cards[2:])
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			perm := make([]Card, 7)
			copy(perm, cards)
			rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

			got, err := Evaluate(perm[:2], perm[2:])
			require.NoError(t, err)
			require.Equal(t, want, got, "cards %s permuted to %s", CardsString(cards), CardsString(perm))
		}
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(MustParseCards("Ah"), MustParseCards("KhQhJh"))
	assert.ErrorIs(t, err, ErrInvalidHand)

	_, err = Evaluate(MustParseCards("AhKh"), MustParseCards("QhJh"))
	assert.ErrorIs(t, err, ErrInvalidHand)

	_, err = Evaluate(MustParseCards("AhKh"), MustParseCards("QhJhTh9h8h7h"))
	assert.ErrorIs(t, err, ErrInvalidHand)

	_, err = Evaluate(MustParseCards("AhAh"), MustParseCards("QhJhTh"))
	assert.ErrorIs(t, err, ErrInvalidHand)
}

func TestBestFive(t *testing.T) {
	t.Parallel()

	best, rank, err := BestFive(MustParseCards("Ah2h"), MustParseCards("3h4c5h9hKh"))
	require.NoError(t, err)
	assert.Equal(t, Flush, rank.Category())
	assert.ElementsMatch(t, MustParseCards("AhKh9h5h3h"), best[:])
	assert.Equal(t, rank, Evaluate5(best))
}
