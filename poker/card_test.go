package poker

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardStringRoundTrip(t *testing.T) {
	t.Parallel()

	// Every one of the 52 cards must encode and decode losslessly.
	seen := make(map[string]bool, 52)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			s := c.String()
			require.Len(t, s, 2)
			require.False(t, seen[s], "duplicate encoding %s", s)
			seen[s] = true

			parsed, err := ParseCard(s)
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}
	assert.Len(t, seen, 52)
}

func TestParseCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{name: "ace of spades", input: "As", want: Card{Rank: Ace, Suit: Spades}},
		{name: "two of clubs", input: "2c", want: Card{Rank: Two, Suit: Clubs}},
		{name: "ten uses T", input: "Td", want: Card{Rank: Ten, Suit: Diamonds}},
		{name: "lowercase rank", input: "kh", want: Card{Rank: King, Suit: Hearts}},
		{name: "uppercase suit", input: "QS", want: Card{Rank: Queen, Suit: Spades}},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "ten as digits", input: "10h", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCard))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("AhKhQhJhTh")
	require.NoError(t, err)
	require.Len(t, cards, 5)
	assert.Equal(t, "AhKhQhJhTh", CardsString(cards))
	assert.Equal(t, []string{"Ah", "Kh", "Qh", "Jh", "Th"}, CardStrings(cards))

	empty, err := ParseCards("")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, "", CardsString(nil))

	_, err = ParseCards("AsK")
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = ParseCards("AsKx")
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestCardJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal([]Card{MustParseCard("Ah"), MustParseCard("2c")})
	require.NoError(t, err)
	assert.JSONEq(t, `["Ah","2c"]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, MustParseCards("Ah2c"), decoded)

	assert.Error(t, json.Unmarshal([]byte(`["Zz"]`), &decoded))
}

func TestSuitColor(t *testing.T) {
	t.Parallel()

	assert.True(t, Hearts.IsRed())
	assert.True(t, Diamonds.IsRed())
	assert.False(t, Spades.IsRed())
	assert.False(t, Clubs.IsRed())
}
