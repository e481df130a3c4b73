package bot

import (
	rand "math/rand/v2"

	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/poker"
)

// TightBot is tight-aggressive. Preflop it raises premium hands, calls
// with strong ones and occasionally medium ones, and folds the rest.
// After the flop it bets two pair or better, calls with a pair and gives
// up otherwise.
type TightBot struct {
	rng *rand.Rand
}

func NewTightBot(rng *rand.Rand) *TightBot {
	return &TightBot{rng: rng}
}

func (b *TightBot) Decide(snap game.Snapshot) (game.ActionType, int) {
	if snap.Hand == nil || len(snap.Hand.YourCards) != 2 {
		return checkOrFold(snap)
	}
	hole := snap.Hand.YourCards

	if len(snap.Hand.CommunityCards) < 3 {
		switch poker.CategorizeHoleCards(hole[0], hole[1]) {
		case poker.CategoryPremium:
			return aggress(snap, 3*minRaiseTo(snap))
		case poker.CategoryStrong:
			return passive(snap)
		case poker.CategoryMedium:
			if b.rng.Float64() < 0.3 {
				return passive(snap)
			}
		}
		return checkOrFold(snap)
	}

	rank, err := poker.Evaluate(hole, snap.Hand.CommunityCards)
	if err != nil {
		return checkOrFold(snap)
	}
	switch cat := rank.Category(); {
	case cat <= poker.TwoPair:
		return aggress(snap, snap.Hand.Pot/2+snap.Hand.CurrentBet)
	case cat == poker.Pair:
		return passive(snap)
	}
	return checkOrFold(snap)
}
