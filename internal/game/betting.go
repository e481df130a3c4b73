package game

import (
	"fmt"
	"slices"
)

// PlayerAction is a single action submitted for a seat.
type PlayerAction struct {
	Seat    int        `json:"seat"`
	AgentID string     `json:"agent_id"`
	Type    ActionType `json:"action"`
	Amount  int        `json:"amount"`
}

// PlayerBettingState tracks one seat's wagering within a hand.
type PlayerBettingState struct {
	Seat             int    `json:"seat"`
	AgentID          string `json:"agent_id"`
	Stack            int    `json:"stack"`
	BetThisRound     int    `json:"bet_this_round"`
	TotalBetThisHand int    `json:"total_bet"`
	HasActed         bool   `json:"has_acted"`
	IsFolded         bool   `json:"is_folded"`
	IsAllIn          bool   `json:"is_all_in"`
}

// IsActive reports whether the seat can still make betting decisions.
func (p *PlayerBettingState) IsActive() bool {
	return !p.IsFolded && !p.IsAllIn
}

// owesAction reports whether an active seat still has to act this round.
func (p *PlayerBettingState) owesAction(currentBet int) bool {
	return p.IsActive() && (!p.HasActed || p.BetThisRound < currentBet)
}

// BettingState tracks wagering for the current betting round of a hand.
// Players is an arena indexed by seat number; seats not dealt into the
// hand are nil. FullBet is the current bet as of the last full bet or
// raise; a short all-in lifts CurrentBet above it without reopening the
// betting.
type BettingState struct {
	Round         Round                 `json:"round"`
	Players       []*PlayerBettingState `json:"players"`
	CurrentBet    int                   `json:"current_bet"`
	FullBet       int                   `json:"full_bet"`
	MinRaise      int                   `json:"min_raise"`
	Pot           int                   `json:"pot"`
	ActionOn      int                   `json:"action_on"`
	LastAggressor int                   `json:"last_aggressor"`
	BigBlind      int                   `json:"big_blind"`
}

// NewBettingState creates preflop betting state for a table with numSeats
// seats.
func NewBettingState(numSeats, bigBlind int) *BettingState {
	return &BettingState{
		Round:         Preflop,
		Players:       make([]*PlayerBettingState, numSeats),
		MinRaise:      bigBlind,
		ActionOn:      -1,
		LastAggressor: -1,
		BigBlind:      bigBlind,
	}
}

// AddPlayer deals a seat into the hand with the given stack.
func (b *BettingState) AddPlayer(seat int, agentID string, stack int) *PlayerBettingState {
	p := &PlayerBettingState{Seat: seat, AgentID: agentID, Stack: stack}
	b.Players[seat] = p
	return p
}

// Player returns the betting state for seat, or nil if the seat is not in
// the hand.
func (b *BettingState) Player(seat int) *PlayerBettingState {
	if seat < 0 || seat >= len(b.Players) {
		return nil
	}
	return b.Players[seat]
}

// PostBlind forces a blind bet of up to amount and returns what was posted.
// A short stack posts everything and is all-in.
func (b *BettingState) PostBlind(seat, amount int) int {
	p := b.Player(seat)
	if p == nil {
		panic(fmt.Sprintf("game: blind posted for seat %d which is not in the hand", seat))
	}
	posted := min(amount, p.Stack)
	b.commit(p, posted)
	return posted
}

// OwesChips reports whether any active seat has yet to match the current
// bet.
func (b *BettingState) OwesChips() bool {
	for _, p := range b.Players {
		if p != nil && p.IsActive() && p.BetThisRound < b.CurrentBet {
			return true
		}
	}
	return false
}

// commit moves chips from a seat's stack into the pot.
func (b *BettingState) commit(p *PlayerBettingState, amount int) {
	if amount < 0 || amount > p.Stack {
		panic(fmt.Sprintf("game: seat %d cannot commit %d from stack %d", p.Seat, amount, p.Stack))
	}
	p.Stack -= amount
	p.BetThisRound += amount
	p.TotalBetThisHand += amount
	b.Pot += amount
	if p.Stack == 0 {
		p.IsAllIn = true
	}
}

// ValidActions returns the actions available to seat. Seats that are
// folded, all-in or not in the hand have none. A seat that has acted and
// faces only a short all-in may call or fold but not raise again.
func (b *BettingState) ValidActions(seat int) []ActionType {
	p := b.Player(seat)
	if p == nil || !p.IsActive() {
		return nil
	}

	actions := []ActionType{Fold}
	toCall := b.CurrentBet - p.BetThisRound
	if p.HasActed && b.CurrentBet > b.FullBet {
		if p.Stack >= toCall {
			actions = append(actions, Call)
		}
		if p.Stack <= toCall {
			actions = append(actions, AllIn)
		}
		return actions
	}

	if toCall == 0 {
		actions = append(actions, Check)
	}
	if toCall > 0 && p.Stack >= toCall {
		actions = append(actions, Call)
	}
	if b.CurrentBet == 0 && p.Stack >= b.BigBlind {
		actions = append(actions, Bet)
	}
	if b.CurrentBet > 0 && p.Stack+p.BetThisRound >= b.MinRaiseTo() {
		actions = append(actions, Raise)
	}
	if p.Stack > 0 {
		actions = append(actions, AllIn)
	}
	return actions
}

// CallAmount returns the chips seat needs to put in to call, capped at its
// stack.
func (b *BettingState) CallAmount(seat int) int {
	p := b.Player(seat)
	if p == nil {
		return 0
	}
	return max(0, min(b.CurrentBet-p.BetThisRound, p.Stack))
}

// MinRaiseTo returns the smallest legal total for a bet or raise.
func (b *BettingState) MinRaiseTo() int {
	return b.CurrentBet + b.MinRaise
}

// Apply validates and applies an action for the seat on the clock. Bet and
// raise amounts are the new total for the round ("raise to"). On error the
// state is unchanged. On success ActionOn moves to the next seat that owes
// action unless the round is complete.
func (b *BettingState) Apply(a PlayerAction) (roundComplete bool, err error) {
	p := b.Player(a.Seat)
	if p == nil {
		return false, fmt.Errorf("%w: seat %d is not in the hand", ErrIllegalAction, a.Seat)
	}
	if a.Seat != b.ActionOn {
		return false, fmt.Errorf("%w: not seat %d's turn, action is on seat %d", ErrIllegalAction, a.Seat, b.ActionOn)
	}
	valid := b.ValidActions(a.Seat)
	if !slices.Contains(valid, a.Type) {
		return false, fmt.Errorf("%w: %s is not valid for seat %d, valid actions are %v", ErrIllegalAction, a.Type, a.Seat, valid)
	}

	switch a.Type {
	case Fold:
		p.IsFolded = true

	case Check:

	case Call:
		b.commit(p, b.CallAmount(a.Seat))

	case Bet, Raise:
		if err := b.checkRaiseTo(p, a.Amount); err != nil {
			return false, err
		}
		delta := a.Amount - b.CurrentBet
		b.commit(p, a.Amount-p.BetThisRound)
		b.MinRaise = max(b.MinRaise, delta)
		b.CurrentBet = a.Amount
		b.FullBet = a.Amount
		b.LastAggressor = a.Seat
		b.reopen(a.Seat)

	case AllIn:
		b.commit(p, p.Stack)
		if p.BetThisRound > b.CurrentBet {
			delta := p.BetThisRound - b.CurrentBet
			if delta >= b.MinRaise {
				// A full raise reopens the betting; a short all-in only
				// raises the amount others must call.
				b.MinRaise = delta
				b.FullBet = p.BetThisRound
				b.reopen(a.Seat)
			}
			b.CurrentBet = p.BetThisRound
			b.LastAggressor = a.Seat
		}
	}
	p.HasActed = true

	if b.IsRoundComplete() {
		return true, nil
	}
	if next, ok := b.NextToAct(); ok {
		b.ActionOn = next
	}
	return false, nil
}

// checkRaiseTo validates a bet or raise total for p without mutating
// anything.
func (b *BettingState) checkRaiseTo(p *PlayerBettingState, total int) error {
	maxTotal := p.Stack + p.BetThisRound
	if total > maxTotal {
		return fmt.Errorf("%w: seat %d cannot raise to %d with %d behind", ErrInsufficientChips, p.Seat, total, maxTotal)
	}
	if total <= b.CurrentBet {
		return fmt.Errorf("%w: raise to %d does not exceed the current bet of %d", ErrIllegalAction, total, b.CurrentBet)
	}
	if total < b.MinRaiseTo() && total != maxTotal {
		return fmt.Errorf("%w: raise to %d is below the minimum of %d", ErrIllegalAction, total, b.MinRaiseTo())
	}
	return nil
}

// reopen requires every other active seat to respond to a new bet.
func (b *BettingState) reopen(aggressor int) {
	for _, p := range b.Players {
		if p != nil && p.Seat != aggressor && p.IsActive() {
			p.HasActed = false
		}
	}
}

// IsRoundComplete reports whether betting for the round is finished: at
// most one seat has not folded, or every seat that can still act has acted
// and matched the current bet.
func (b *BettingState) IsRoundComplete() bool {
	if b.CountNotFolded() <= 1 {
		return true
	}
	for _, p := range b.Players {
		if p != nil && p.owesAction(b.CurrentBet) {
			return false
		}
	}
	return true
}

// NextToAct returns the next seat after ActionOn, wrapping around the
// table, that still owes action.
func (b *BettingState) NextToAct() (int, bool) {
	n := len(b.Players)
	for i := 1; i <= n; i++ {
		seat := (b.ActionOn + i + n) % n
		if p := b.Players[seat]; p != nil && p.owesAction(b.CurrentBet) {
			return seat, true
		}
	}
	return -1, false
}

// StartNewRound resets per-round tracking and puts the action on the first
// active seat after the button.
func (b *BettingState) StartNewRound(round Round, button int) {
	b.Round = round
	b.CurrentBet = 0
	b.FullBet = 0
	b.MinRaise = b.BigBlind
	b.LastAggressor = -1
	for _, p := range b.Players {
		if p != nil {
			p.BetThisRound = 0
			p.HasActed = false
		}
	}

	b.ActionOn = -1
	n := len(b.Players)
	for i := 1; i <= n; i++ {
		seat := (button + i) % n
		if p := b.Players[seat]; p != nil && p.IsActive() {
			b.ActionOn = seat
			return
		}
	}
}

// CountNotFolded returns the number of seats still contesting the pot.
func (b *BettingState) CountNotFolded() int {
	n := 0
	for _, p := range b.Players {
		if p != nil && !p.IsFolded {
			n++
		}
	}
	return n
}

// CountCanAct returns the number of seats that are neither folded nor
// all-in.
func (b *BettingState) CountCanAct() int {
	n := 0
	for _, p := range b.Players {
		if p != nil && p.IsActive() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *BettingState) Clone() *BettingState {
	c := *b
	c.Players = make([]*PlayerBettingState, len(b.Players))
	for i, p := range b.Players {
		if p != nil {
			cp := *p
			c.Players[i] = &cp
		}
	}
	return &c
}
