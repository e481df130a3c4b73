package game

import "slices"

// Pot is a share of the chips wagered in a hand together with the seats
// that can win it.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
	// Cap is the per-seat contribution level that closes this pot, zero for
	// a single undivided pot.
	Cap int `json:"cap,omitempty"`
}

// singlePot puts every chip in one pot contested by all non-folded seats.
func singlePot(b *BettingState) []Pot {
	pot := Pot{Amount: b.Pot}
	for _, p := range b.Players {
		if p != nil && !p.IsFolded {
			pot.Eligible = append(pot.Eligible, p.Seat)
		}
	}
	return []Pot{pot}
}

// layeredPots splits the hand's contributions into a main pot and side
// pots. Each distinct contribution level of a non-folded seat closes a
// layer; a layer holds every seat's chips between the previous level and
// its own, and only non-folded seats that reached the level may win it.
// Folded chips above the highest live level go to the last pot.
func layeredPots(b *BettingState) []Pot {
	var levels []int
	for _, p := range b.Players {
		if p != nil && !p.IsFolded && p.TotalBetThisHand > 0 {
			levels = append(levels, p.TotalBetThisHand)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)
	if len(levels) == 0 {
		return singlePot(b)
	}

	pots := make([]Pot, 0, len(levels))
	previous := 0
	for _, level := range levels {
		pot := Pot{Cap: level}
		for _, p := range b.Players {
			if p == nil {
				continue
			}
			pot.Amount += min(p.TotalBetThisHand, level) - min(p.TotalBetThisHand, previous)
			if !p.IsFolded && p.TotalBetThisHand >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		pots = append(pots, pot)
		previous = level
	}

	for _, p := range b.Players {
		if p != nil && p.TotalBetThisHand > previous {
			pots[len(pots)-1].Amount += p.TotalBetThisHand - previous
		}
	}
	return pots
}

// takeRake removes rake from the pots in order, main pot first.
func takeRake(pots []Pot, rake int) {
	for i := range pots {
		if rake == 0 {
			return
		}
		take := min(rake, pots[i].Amount)
		pots[i].Amount -= take
		rake -= take
	}
}

// potsTotal sums the chips held in pots.
func potsTotal(pots []Pot) int {
	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	return total
}
