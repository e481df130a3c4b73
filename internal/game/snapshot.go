package game

import "github.com/lox/siliconcasino/poker"

// Snapshot is the state of a table as seen by one agent. It shares no
// memory with the engine.
type Snapshot struct {
	Table        TableSnapshot `json:"table"`
	Hand         *HandSnapshot `json:"hand,omitempty"`
	YourSeat     int           `json:"your_seat"`
	ValidActions []ActionType  `json:"valid_actions"`
	IsYourTurn   bool          `json:"is_your_turn"`
}

// TableSnapshot is the public table state. Hole cards are never included.
type TableSnapshot struct {
	ID             string         `json:"table_id"`
	Name           string         `json:"name"`
	SmallBlind     int            `json:"small_blind"`
	BigBlind       int            `json:"big_blind"`
	MinBuyIn       int            `json:"min_buy_in"`
	MaxBuyIn       int            `json:"max_buy_in"`
	MaxPlayers     int            `json:"max_players"`
	ButtonPosition int            `json:"button_position"`
	HandNumber     int            `json:"hand_number"`
	Status         string         `json:"status"`
	Seats          []SeatSnapshot `json:"seats"`
}

// SeatSnapshot is the public state of one seat.
type SeatSnapshot struct {
	SeatNumber int    `json:"seat_number"`
	AgentID    string `json:"agent_id,omitempty"`
	Stack      int    `json:"stack"`
	Status     string `json:"status"`
	SittingOut bool   `json:"is_sitting_out"`
}

// HandSnapshot is the public state of the hand in progress. YourCards holds
// only the querying agent's hole cards.
type HandSnapshot struct {
	HandID         string                  `json:"hand_id"`
	HandNumber     int                     `json:"hand_number"`
	Phase          HandPhase               `json:"phase"`
	CommunityCards []poker.Card            `json:"community_cards"`
	Pot            int                     `json:"pot"`
	ButtonSeat     int                     `json:"button_seat"`
	CurrentBet     int                     `json:"current_bet"`
	ActionOn       int                     `json:"action_on"`
	MinRaiseTo     int                     `json:"min_raise_to"`
	CallAmount     int                     `json:"call_amount"`
	Players        []PlayerBettingSnapshot `json:"players"`
	YourCards      []poker.Card            `json:"your_cards,omitempty"`
}

// PlayerBettingSnapshot is one seat's public wagering state.
type PlayerBettingSnapshot struct {
	Seat         int  `json:"seat"`
	Stack        int  `json:"stack"`
	BetThisRound int  `json:"bet_this_round"`
	TotalBet     int  `json:"total_bet"`
	IsFolded     bool `json:"is_folded"`
	IsAllIn      bool `json:"is_all_in"`
}

// State returns a snapshot for forAgent. An empty or unknown agent gets the
// public view.
func (e *Engine) State(forAgent string) Snapshot {
	t := e.table
	snap := Snapshot{
		Table: TableSnapshot{
			ID:             t.Config.ID,
			Name:           t.Config.Name,
			SmallBlind:     t.Config.SmallBlind,
			BigBlind:       t.Config.BigBlind,
			MinBuyIn:       t.Config.MinBuyIn,
			MaxBuyIn:       t.Config.MaxBuyIn,
			MaxPlayers:     t.Config.MaxPlayers,
			ButtonPosition: t.ButtonPosition,
			HandNumber:     t.HandNumber,
			Status:         t.Status.String(),
			Seats:          make([]SeatSnapshot, len(t.Seats)),
		},
		YourSeat:     -1,
		ValidActions: []ActionType{},
	}
	for i, s := range t.Seats {
		snap.Table.Seats[i] = SeatSnapshot{
			SeatNumber: s.Number,
			AgentID:    s.AgentID,
			Stack:      s.Stack,
			Status:     s.Status.String(),
			SittingOut: s.SittingOut,
		}
	}

	seat := t.SeatByAgent(forAgent)
	if seat != nil {
		snap.YourSeat = seat.Number
	}

	h := e.hand
	if h == nil {
		return snap
	}
	b := h.Betting
	hs := &HandSnapshot{
		HandID:         h.ID,
		HandNumber:     h.Number,
		Phase:          h.Phase,
		CommunityCards: append([]poker.Card{}, h.CommunityCards...),
		Pot:            b.Pot,
		ButtonSeat:     h.ButtonSeat,
		CurrentBet:     b.CurrentBet,
		ActionOn:       b.ActionOn,
		MinRaiseTo:     b.MinRaiseTo(),
	}
	for _, p := range b.Players {
		if p == nil {
			continue
		}
		hs.Players = append(hs.Players, PlayerBettingSnapshot{
			Seat:         p.Seat,
			Stack:        p.Stack,
			BetThisRound: p.BetThisRound,
			TotalBet:     p.TotalBetThisHand,
			IsFolded:     p.IsFolded,
			IsAllIn:      p.IsAllIn,
		})
	}
	if seat != nil {
		if cards, ok := h.HoleCards[seat.Number]; ok {
			hs.YourCards = []poker.Card{cards[0], cards[1]}
		}
		hs.CallAmount = b.CallAmount(seat.Number)
		snap.IsYourTurn = b.ActionOn == seat.Number
		if actions := e.ValidActions(forAgent); actions != nil {
			snap.ValidActions = actions
		}
	}
	snap.Hand = hs
	return snap
}
