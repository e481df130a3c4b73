package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/siliconcasino/poker"
)

// Engine runs hands at one table. It is a plain value with no global
// state; callers serialize access (see package doc).
type Engine struct {
	table       *Table
	rng         *rand.Rand
	seed        int64
	rake        RakeConfig
	clock       quartz.Clock
	logger      *log.Logger
	sidePots    bool
	subscribers []EventSubscriber
	newHandID   func() string

	hand          *Hand
	lastHand      *Hand
	totalRake     int
	totalBoughtIn int
}

// NewEngine creates an engine for a table with every seat empty.
func NewEngine(cfg TableConfig, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := defaultEngineConfig()
	for _, opt := range opts {
		opt(c)
	}
	if err := c.rake.Validate(); err != nil {
		return nil, err
	}

	rng, seed := c.resolveRNG()
	e := &Engine{
		table:       NewTable(cfg),
		rng:         rng,
		seed:        seed,
		rake:        c.rake,
		clock:       c.clock,
		logger:      c.logger.With("table", cfg.ID),
		sidePots:    c.sidePots,
		subscribers: c.subscribers,
		newHandID:   c.newHandID,
	}
	e.logger.Debug("Engine created", "seed", seed, "sidePots", c.sidePots)
	return e, nil
}

// Config returns the table configuration.
func (e *Engine) Config() TableConfig {
	return e.table.Config
}

// Table returns the engine's table. Callers must not mutate it.
func (e *Engine) Table() *Table {
	return e.table
}

// Seed returns the seed the deck RNG was built from.
func (e *Engine) Seed() int64 {
	return e.seed
}

// CurrentHand returns the hand in progress, or nil.
func (e *Engine) CurrentHand() *Hand {
	return e.hand
}

// LastHand returns the most recently completed hand, or nil.
func (e *Engine) LastHand() *Hand {
	return e.lastHand
}

// TotalRakeCollected returns the rake collected since the engine was
// created.
func (e *Engine) TotalRakeCollected() int {
	return e.totalRake
}

// TotalBoughtIn returns the chips brought to the table net of chips taken
// away by departing players.
func (e *Engine) TotalBoughtIn() int {
	return e.totalBoughtIn
}

// SeatPlayer seats an agent with a buy-in. Seating during a hand is allowed;
// the seat is dealt in from the next hand.
func (e *Engine) SeatPlayer(agentID string, seatNumber, buyIn int) error {
	cfg := e.table.Config
	if agentID == "" {
		return fmt.Errorf("%w: agent id is required", ErrValidation)
	}
	seat := e.table.Seat(seatNumber)
	if seat == nil {
		return fmt.Errorf("%w: invalid seat number %d", ErrValidation, seatNumber)
	}
	if seat.IsOccupied() {
		return fmt.Errorf("%w: seat %d is already occupied", ErrValidation, seatNumber)
	}
	if existing := e.table.SeatByAgent(agentID); existing != nil {
		return fmt.Errorf("%w: agent %s is already seated at seat %d", ErrValidation, agentID, existing.Number)
	}
	if buyIn < cfg.MinBuyIn || buyIn > cfg.MaxBuyIn {
		return fmt.Errorf("%w: buy-in %d outside [%d, %d]", ErrValidation, buyIn, cfg.MinBuyIn, cfg.MaxBuyIn)
	}

	seat.AgentID = agentID
	seat.Stack = buyIn
	seat.Status = SeatSeated
	seat.SittingOut = false
	seat.HoleCards = nil
	e.totalBoughtIn += buyIn

	e.logger.Debug("Player seated", "agent", agentID, "seat", seatNumber, "buyIn", buyIn)
	e.mustConserveChips()
	return nil
}

// RemovePlayer clears the agent's seat and returns its stack. It is
// rejected while the seat is dealt into the hand in progress.
func (e *Engine) RemovePlayer(agentID string) (int, error) {
	seat := e.table.SeatByAgent(agentID)
	if seat == nil {
		return 0, fmt.Errorf("%w: agent %s not found at table", ErrValidation, agentID)
	}
	if e.inHand(seat.Number) {
		return 0, fmt.Errorf("%w: agent %s holds cards in hand %d", ErrState, agentID, e.hand.Number)
	}

	stack := seat.Stack
	seat.clear()
	e.totalBoughtIn -= stack

	e.logger.Debug("Player removed", "agent", agentID, "stack", stack)
	e.mustConserveChips()
	return stack, nil
}

// AddChips tops up an agent's stack and returns the new stack. The stack
// may not exceed the maximum buy-in and cannot change mid-hand.
func (e *Engine) AddChips(agentID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive, got %d", ErrValidation, amount)
	}
	seat := e.table.SeatByAgent(agentID)
	if seat == nil {
		return 0, fmt.Errorf("%w: agent %s not found at table", ErrValidation, agentID)
	}
	if e.inHand(seat.Number) {
		return 0, fmt.Errorf("%w: agent %s is playing hand %d", ErrState, agentID, e.hand.Number)
	}
	if seat.Stack+amount > e.table.Config.MaxBuyIn {
		return 0, fmt.Errorf("%w: stack %d would exceed maximum buy-in %d", ErrValidation, seat.Stack+amount, e.table.Config.MaxBuyIn)
	}

	seat.Stack += amount
	e.totalBoughtIn += amount
	e.mustConserveChips()
	return seat.Stack, nil
}

// SetSittingOut marks an agent as sitting out or back in. It takes effect
// from the next hand.
func (e *Engine) SetSittingOut(agentID string, sittingOut bool) error {
	seat := e.table.SeatByAgent(agentID)
	if seat == nil {
		return fmt.Errorf("%w: agent %s not found at table", ErrValidation, agentID)
	}
	seat.SittingOut = sittingOut
	return nil
}

// CanStartHand reports whether no hand is running and at least two seats
// are ready.
func (e *Engine) CanStartHand() bool {
	return e.hand == nil && len(e.table.ReadySeats()) >= MinPlayers
}

// StartHand advances the button, deals hole cards to every ready seat and
// posts the blinds.
func (e *Engine) StartHand() (*Hand, error) {
	if e.hand != nil {
		return nil, fmt.Errorf("%w: hand %d already in progress", ErrState, e.hand.Number)
	}
	ready := e.table.ReadySeats()
	if len(ready) < MinPlayers {
		return nil, fmt.Errorf("%w: need %d ready players to start, have %d", ErrState, MinPlayers, len(ready))
	}

	cfg := e.table.Config
	button := e.table.AdvanceButton()
	sb, bb, err := e.table.BlindPositions()
	if err != nil {
		return nil, err
	}
	first, err := e.table.FirstToActPreflop()
	if err != nil {
		return nil, err
	}
	e.table.HandNumber++

	h := &Hand{
		ID:             e.newHandID(),
		Number:         e.table.HandNumber,
		Phase:          PhasePreflop,
		Deck:           poker.NewDeck(e.rng),
		ButtonSeat:     button,
		SmallBlindSeat: sb,
		BigBlindSeat:   bb,
		HoleCards:      make(map[int][2]poker.Card, len(ready)),
		Betting:        NewBettingState(len(e.table.Seats), cfg.BigBlind),
		StartedAt:      e.clock.Now(),
	}

	for _, n := range ready {
		seat := &e.table.Seats[n]
		cards := mustDeal(h.Deck, 2)
		seat.HoleCards = cards
		h.HoleCards[n] = [2]poker.Card{cards[0], cards[1]}
		h.Betting.AddPlayer(n, seat.AgentID, seat.Stack)
	}

	sbPosted := h.Betting.PostBlind(sb, cfg.SmallBlind)
	bbPosted := h.Betting.PostBlind(bb, cfg.BigBlind)
	e.syncStack(sb, h.Betting)
	e.syncStack(bb, h.Betting)
	h.Betting.CurrentBet = cfg.BigBlind
	h.Betting.FullBet = cfg.BigBlind
	h.Betting.ActionOn = first
	h.Pot = h.Betting.Pot

	e.hand = h
	e.table.Status = TablePlaying

	e.logger.Debug("Hand started", "hand", h.Number, "id", h.ID, "button", button, "sb", sb, "bb", bb)
	e.record(h, EventHandStart, "", map[string]any{
		"hand_id":          h.ID,
		"hand_number":      h.Number,
		"button_seat":      button,
		"small_blind_seat": sb,
		"big_blind_seat":   bb,
		"small_blind":      sbPosted,
		"big_blind":        bbPosted,
		"seats":            ready,
	})

	// Blinds can leave the first seat all-in, or at most one seat able to
	// act with nothing to call.
	if h.Betting.IsRoundComplete() || h.Betting.CountCanAct() <= 1 && !h.Betting.OwesChips() {
		e.advancePhase()
	} else if p := h.Betting.Player(first); p == nil || !p.owesAction(h.Betting.CurrentBet) {
		if next, ok := h.Betting.NextToAct(); ok {
			h.Betting.ActionOn = next
		}
	}

	e.mustConserveChips()
	return h, nil
}

// ValidActions returns the actions agentID may take now. It is empty
// unless it is the agent's turn.
func (e *Engine) ValidActions(agentID string) []ActionType {
	if e.hand == nil {
		return nil
	}
	seat := e.table.SeatByAgent(agentID)
	if seat == nil || e.hand.Betting.ActionOn != seat.Number {
		return nil
	}
	return e.hand.Betting.ValidActions(seat.Number)
}

// ProcessAction applies an action for agentID. It returns true while the
// hand continues and false once it has been settled. A rejected action
// leaves the engine unchanged.
func (e *Engine) ProcessAction(agentID string, action ActionType, amount int) (bool, error) {
	if e.hand == nil {
		return false, fmt.Errorf("%w: no hand in progress", ErrState)
	}
	seat := e.table.SeatByAgent(agentID)
	if seat == nil {
		return false, fmt.Errorf("%w: agent %s not found at table", ErrValidation, agentID)
	}

	h := e.hand
	b := h.Betting
	if b.ActionOn != seat.Number {
		return false, fmt.Errorf("%w: not %s's turn to act", ErrIllegalAction, agentID)
	}

	before := b.Pot
	roundComplete, err := b.Apply(PlayerAction{Seat: seat.Number, AgentID: agentID, Type: action, Amount: amount})
	if err != nil {
		return false, err
	}
	e.syncStack(seat.Number, b)
	h.Pot = b.Pot

	p := b.Player(seat.Number)
	e.logger.Debug("Action", "hand", h.Number, "agent", agentID, "action", action, "amount", amount, "pot", b.Pot)
	e.record(h, EventPlayerAction, agentID, map[string]any{
		"player_seat":    seat.Number,
		"action_type":    action.String(),
		"amount":         amount,
		"chips_in":       b.Pot - before,
		"bet_this_round": p.BetThisRound,
		"stack":          p.Stack,
		"pot":            b.Pot,
		"round":          b.Round.String(),
	})

	continues := true
	switch {
	case b.CountNotFolded() == 1:
		e.awardUncontested()
		continues = false
	case roundComplete:
		continues = e.advancePhase()
	}

	e.mustConserveChips()
	return continues, nil
}

// CommunityCardsString encodes the board of the current hand, or of the
// last completed hand when none is running.
func (e *Engine) CommunityCardsString() string {
	switch {
	case e.hand != nil:
		return poker.CardsString(e.hand.CommunityCards)
	case e.lastHand != nil:
		return poker.CardsString(e.lastHand.CommunityCards)
	default:
		return ""
	}
}

// CheckChipConservation verifies that stacks, the live pot and collected
// rake account for every chip bought in.
func (e *Engine) CheckChipConservation() error {
	for i := range e.table.Seats {
		if s := e.table.Seats[i]; s.Stack < 0 {
			return fmt.Errorf("seat %d has negative stack %d", s.Number, s.Stack)
		}
	}
	pot := 0
	if e.hand != nil {
		pot = e.hand.Betting.Pot
	}
	stacks := e.table.TotalChips()
	if got := stacks + pot + e.totalRake; got != e.totalBoughtIn {
		return fmt.Errorf("chip conservation violated: stacks %d + pot %d + rake %d = %d, bought in %d",
			stacks, pot, e.totalRake, got, e.totalBoughtIn)
	}
	return nil
}

func (e *Engine) mustConserveChips() {
	if err := e.CheckChipConservation(); err != nil {
		panic("game: " + err.Error())
	}
}

// inHand reports whether seat was dealt into the hand in progress.
func (e *Engine) inHand(seat int) bool {
	return e.hand != nil && e.hand.Betting.Player(seat) != nil
}

// syncStack copies a seat's betting stack back to the table.
func (e *Engine) syncStack(seat int, b *BettingState) {
	e.table.Seats[seat].Stack = b.Player(seat).Stack
}

// record appends an event to the hand log and notifies subscribers.
func (e *Engine) record(h *Hand, typ EventType, agentID string, payload map[string]any) {
	ev := Event{
		HandID:    h.ID,
		Sequence:  len(h.Events) + 1,
		Type:      typ,
		AgentID:   agentID,
		Payload:   payload,
		Timestamp: e.clock.Now(),
	}
	h.Events = append(h.Events, ev)
	for _, sub := range e.subscribers {
		sub.OnEvent(e.table.Config.ID, ev)
	}
}

func mustDeal(d *poker.Deck, n int) []poker.Card {
	cards, err := d.Deal(n)
	if err != nil {
		panic("game: " + err.Error())
	}
	return cards
}
