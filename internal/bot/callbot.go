package bot

import "github.com/lox/siliconcasino/internal/game"

// CallBot checks or calls every street, going all-in when it cannot cover
// a bet.
type CallBot struct{}

func (CallBot) Decide(snap game.Snapshot) (game.ActionType, int) {
	return passive(snap)
}
