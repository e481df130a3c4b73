// Package bot provides autonomous agents that play from a game.Snapshot.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"

	"github.com/lox/siliconcasino/internal/game"
)

// Agent chooses an action for the seat on the clock. Amount is only read
// for bets and raises, where it is the new total for the round.
type Agent interface {
	Decide(snap game.Snapshot) (game.ActionType, int)
}

// Names lists the strategies New understands.
var Names = []string{"call", "fold", "random", "aggro", "tight"}

// New builds an agent by strategy name. rng is used by strategies that
// randomize.
func New(name string, rng *rand.Rand) (Agent, error) {
	switch strings.ToLower(name) {
	case "call":
		return CallBot{}, nil
	case "fold":
		return FoldBot{}, nil
	case "random", "rand":
		return NewRandBot(rng), nil
	case "aggro":
		return AggroBot{}, nil
	case "tight":
		return NewTightBot(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy %q (want one of %s)", name, strings.Join(Names, ", "))
	}
}

func can(snap game.Snapshot, action game.ActionType) bool {
	return slices.Contains(snap.ValidActions, action)
}

// chips returns the seat's stack and what it has already bet this round.
func chips(snap game.Snapshot) (stack, bet int) {
	if snap.YourSeat < 0 || snap.YourSeat >= len(snap.Table.Seats) {
		return 0, 0
	}
	stack = snap.Table.Seats[snap.YourSeat].Stack
	if snap.Hand != nil {
		for _, p := range snap.Hand.Players {
			if p.Seat == snap.YourSeat {
				stack, bet = p.Stack, p.BetThisRound
			}
		}
	}
	return stack, bet
}

// maxRaiseTo is the largest total the seat can bet to this round.
func maxRaiseTo(snap game.Snapshot) int {
	stack, bet := chips(snap)
	return stack + bet
}

func minRaiseTo(snap game.Snapshot) int {
	if snap.Hand == nil {
		return 0
	}
	return snap.Hand.MinRaiseTo
}

// aggress bets or raises to total, clamped to the legal range. When
// neither is available it shoves if it can.
func aggress(snap game.Snapshot, total int) (game.ActionType, int) {
	total = min(max(total, minRaiseTo(snap)), maxRaiseTo(snap))
	switch {
	case can(snap, game.Bet):
		return game.Bet, total
	case can(snap, game.Raise):
		return game.Raise, total
	case can(snap, game.AllIn):
		return game.AllIn, 0
	}
	return passive(snap)
}

// passive checks or calls, calling all-in when short, and folds otherwise.
func passive(snap game.Snapshot) (game.ActionType, int) {
	switch {
	case can(snap, game.Check):
		return game.Check, 0
	case can(snap, game.Call):
		return game.Call, 0
	case can(snap, game.AllIn):
		return game.AllIn, 0
	}
	return game.Fold, 0
}

// checkOrFold checks when free and folds otherwise.
func checkOrFold(snap game.Snapshot) (game.ActionType, int) {
	if can(snap, game.Check) {
		return game.Check, 0
	}
	return game.Fold, 0
}
