package poker

import (
	"testing"
)

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		card1    string
		card2    string
		expected HoleCardCategory
	}{
		{"Pocket Aces", "As", "Ah", CategoryPremium},
		{"Pocket Jacks", "Jh", "Jd", CategoryPremium},
		{"Ace King offsuit", "Ac", "Kh", CategoryPremium},

		{"Pocket Tens", "Tc", "Th", CategoryStrong},
		{"Ace Queen offsuit", "Ac", "Qh", CategoryStrong},
		{"Ace Jack suited", "As", "Js", CategoryStrong},

		{"Pocket Sevens", "7h", "7c", CategoryMedium},
		{"King Queen suited", "Ks", "Qs", CategoryMedium},
		{"Queen Jack suited", "Qd", "Jd", CategoryMedium},

		{"Pocket Twos", "2c", "2h", CategoryWeak},
		{"Suited connectors 76s", "7h", "6h", CategoryWeak},
		{"Suited one-gapper 53s", "5d", "3d", CategoryWeak},

		{"Seven Two offsuit", "7c", "2h", CategoryTrash},
		{"Jack Four offsuit", "Jh", "4c", CategoryTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeHoleCards(MustParseCard(tt.card1), MustParseCard(tt.card2))
			if result != tt.expected {
				t.Errorf("CategorizeHoleCards(%s, %s) = %s, want %s", tt.card1, tt.card2, result, tt.expected)
			}
		})
	}
}
