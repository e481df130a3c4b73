package bot

import "github.com/lox/siliconcasino/internal/game"

// FoldBot always folds, or checks when that is free.
type FoldBot struct{}

func (FoldBot) Decide(snap game.Snapshot) (game.ActionType, int) {
	return checkOrFold(snap)
}
