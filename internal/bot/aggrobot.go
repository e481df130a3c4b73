package bot

import "github.com/lox/siliconcasino/internal/game"

// AggroBot makes the minimum bet or raise whenever it may and shoves when
// it cannot raise.
type AggroBot struct{}

func (AggroBot) Decide(snap game.Snapshot) (game.ActionType, int) {
	return aggress(snap, minRaiseTo(snap))
}
