package game

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/lox/siliconcasino/poker"
)

// advancePhase moves a hand whose betting round has finished to the next
// street, a runout or showdown. It returns true while betting continues.
func (e *Engine) advancePhase() bool {
	h := e.hand
	b := h.Betting

	if b.CountCanAct() <= 1 {
		if h.Phase == PhaseRiver {
			e.showdown()
			return false
		}
		e.runout()
		return false
	}

	switch h.Phase {
	case PhasePreflop:
		e.dealStreet(PhaseFlop, 3)
	case PhaseFlop:
		e.dealStreet(PhaseTurn, 1)
	case PhaseTurn:
		e.dealStreet(PhaseRiver, 1)
	default:
		e.showdown()
		return false
	}

	b.StartNewRound(h.Phase.round(), h.ButtonSeat)
	return true
}

// dealStreet burns a card, deals n community cards and enters phase.
func (e *Engine) dealStreet(phase HandPhase, n int) {
	h := e.hand
	mustDeal(h.Deck, 1)
	cards := mustDeal(h.Deck, n)
	h.CommunityCards = append(h.CommunityCards, cards...)
	h.Phase = phase

	e.logger.Debug("Community cards", "hand", h.Number, "phase", phase, "board", poker.CardsString(h.CommunityCards))
	e.record(h, EventCommunityCards, "", map[string]any{
		"phase": phase.String(),
		"cards": poker.CardStrings(cards),
		"board": poker.CardStrings(h.CommunityCards),
	})
}

// runout deals every remaining street in one pass when no further betting
// is possible, then goes to showdown.
func (e *Engine) runout() {
	h := e.hand
	start := len(h.CommunityCards)
	for len(h.CommunityCards) < 5 {
		n := 1
		if len(h.CommunityCards) == 0 {
			n = 3
		}
		mustDeal(h.Deck, 1)
		h.CommunityCards = append(h.CommunityCards, mustDeal(h.Deck, n)...)
	}
	h.Phase = PhaseRiver

	e.logger.Debug("Runout", "hand", h.Number, "board", poker.CardsString(h.CommunityCards))
	e.record(h, EventCommunityCards, "", map[string]any{
		"phase": RunoutPhase,
		"cards": poker.CardStrings(h.CommunityCards[start:]),
		"board": poker.CardStrings(h.CommunityCards),
	})
	e.showdown()
}

// awardUncontested pays the pot, less rake, to the only seat left.
func (e *Engine) awardUncontested() {
	h := e.hand
	b := h.Betting

	winner := -1
	for _, p := range b.Players {
		if p != nil && !p.IsFolded {
			winner = p.Seat
		}
	}
	p := b.Player(winner)

	rake := e.rake.Calculate(b.Pot)
	won := b.Pot - rake
	e.table.Seats[winner].Stack += won

	result := &HandResult{
		HandID: h.ID,
		Winners: []Winner{{
			Seat:    winner,
			AgentID: p.AgentID,
			Amount:  won,
			Reason:  ReasonEveryoneFolded,
		}},
		PotDistribution: map[int]int{winner: won},
		RakeCollected:   rake,
	}

	e.logger.Debug("Pot awarded uncontested", "hand", h.Number, "seat", winner, "amount", won, "rake", rake)
	e.record(h, EventHandComplete, "", map[string]any{
		"result":      "fold_win",
		"winner_seat": winner,
		"pot":         won,
		"rake":        rake,
	})
	e.completeHand(result)
}

type evaluation struct {
	seat    int
	agentID string
	rank    poker.HandRank
}

// showdown evaluates every seat still in the hand and distributes the
// pot. Tied winners split a pot evenly; odd chips go one each to the first
// tied winners in evaluation order.
func (e *Engine) showdown() {
	h := e.hand
	b := h.Betting
	h.Phase = PhaseShowdown

	if b.CountNotFolded() == 1 {
		e.awardUncontested()
		return
	}

	var evals []evaluation
	shown := make(map[int]ShowdownHand)
	for _, p := range b.Players {
		if p == nil || p.IsFolded {
			continue
		}
		hole := h.HoleCards[p.Seat]
		best, rank, err := poker.BestFive(hole[:], h.CommunityCards)
		if err != nil {
			panic("game: showdown evaluation failed: " + err.Error())
		}
		evals = append(evals, evaluation{seat: p.Seat, agentID: p.AgentID, rank: rank})
		shown[p.Seat] = ShowdownHand{
			HoleCards: hole[:],
			BestFive:  best[:],
			Category:  rank.String(),
			Score:     rank,
		}
	}
	slices.SortStableFunc(evals, func(x, y evaluation) int {
		return cmp.Compare(x.rank, y.rank)
	})

	rake := e.rake.Calculate(b.Pot)
	var pots []Pot
	if e.sidePots {
		pots = layeredPots(b)
	} else {
		pots = singlePot(b)
	}
	takeRake(pots, rake)
	if total := potsTotal(pots); total != b.Pot-rake {
		panic(fmt.Sprintf("game: pots hold %d chips, want %d after rake", total, b.Pot-rake))
	}

	distribution := make(map[int]int)
	var winners []Winner
	for _, pot := range pots {
		for _, w := range splitPot(pot, evals) {
			if _, seen := distribution[w.seat]; !seen {
				winners = append(winners, Winner{
					Seat:     w.seat,
					AgentID:  w.agentID,
					Reason:   ReasonShowdown,
					Category: w.rank.String(),
				})
			}
			distribution[w.seat] += w.amount
		}
	}
	for i := range winners {
		winners[i].Amount = distribution[winners[i].Seat]
		e.table.Seats[winners[i].Seat].Stack += winners[i].Amount
	}

	result := &HandResult{
		HandID:          h.ID,
		Winners:         winners,
		PotDistribution: distribution,
		ShowdownHands:   shown,
		Pots:            pots,
		RakeCollected:   rake,
	}

	e.logger.Debug("Showdown", "hand", h.Number, "winners", len(winners), "rake", rake)
	e.record(h, EventShowdown, "", map[string]any{
		"hands":   stringKeys(shown),
		"winners": winners,
		"pots":    pots,
		"rake":    rake,
	})
	e.completeHand(result)
}

type payout struct {
	evaluation
	amount int
}

// splitPot divides one pot among the best eligible hands. evals must be in
// evaluation order (strongest first, stable by seat).
func splitPot(pot Pot, evals []evaluation) []payout {
	var contenders []evaluation
	for _, ev := range evals {
		if slices.Contains(pot.Eligible, ev.seat) {
			contenders = append(contenders, ev)
		}
	}
	if len(contenders) == 0 || pot.Amount == 0 {
		return nil
	}

	best := contenders[0].rank
	var tied []evaluation
	for _, ev := range contenders {
		if ev.rank == best {
			tied = append(tied, ev)
		}
	}

	share := pot.Amount / len(tied)
	remainder := pot.Amount % len(tied)
	out := make([]payout, len(tied))
	for i, ev := range tied {
		out[i] = payout{evaluation: ev, amount: share}
		if i < remainder {
			out[i].amount++
		}
	}
	return out
}

// completeHand records the result and releases the hand.
func (e *Engine) completeHand(result *HandResult) {
	h := e.hand
	h.Phase = PhaseComplete
	h.Result = result
	h.RakeCollected = result.RakeCollected
	h.EndedAt = e.clock.Now()
	e.totalRake += result.RakeCollected

	for i := range e.table.Seats {
		e.table.Seats[i].HoleCards = nil
	}

	e.record(h, EventHandEnd, "", map[string]any{
		"hand_id":          h.ID,
		"total_pot":        h.Pot,
		"rake":             result.RakeCollected,
		"pot_distribution": stringKeys(result.PotDistribution),
	})

	e.lastHand = h
	e.hand = nil
	e.table.Status = TableWaiting
	e.logger.Debug("Hand complete", "hand", h.Number, "rake", result.RakeCollected)
}

// stringKeys converts seat-keyed maps for JSON payloads.
func stringKeys[V any](m map[int]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[strconv.Itoa(k)] = v
	}
	return out
}
