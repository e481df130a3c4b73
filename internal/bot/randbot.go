package bot

import (
	rand "math/rand/v2"

	"github.com/lox/siliconcasino/internal/game"
)

// RandBot picks uniformly among the legal actions. Bets and raises are
// sized uniformly between the minimum and the whole stack.
type RandBot struct {
	rng *rand.Rand
}

func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (r *RandBot) Decide(snap game.Snapshot) (game.ActionType, int) {
	if len(snap.ValidActions) == 0 {
		return game.Fold, 0
	}
	action := snap.ValidActions[r.rng.IntN(len(snap.ValidActions))]
	if action != game.Bet && action != game.Raise {
		return action, 0
	}
	lo, hi := minRaiseTo(snap), maxRaiseTo(snap)
	if hi <= lo {
		return action, lo
	}
	return action, lo + r.rng.IntN(hi-lo+1)
}
