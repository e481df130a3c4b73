package game

import (
	"fmt"
	"slices"

	"github.com/lox/siliconcasino/poker"
)

const (
	MinPlayers = 2
	MaxPlayers = 10
)

// TableConfig is the immutable configuration of a table.
type TableConfig struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SmallBlind int    `json:"small_blind"`
	BigBlind   int    `json:"big_blind"`
	MinBuyIn   int    `json:"min_buy_in"`
	MaxBuyIn   int    `json:"max_buy_in"`
	MaxPlayers int    `json:"max_players"`
}

// Validate checks blinds, buy-in bounds and seat count.
func (c TableConfig) Validate() error {
	switch {
	case c.SmallBlind <= 0 || c.BigBlind <= 0:
		return fmt.Errorf("%w: blinds must be positive (got %d/%d)", ErrValidation, c.SmallBlind, c.BigBlind)
	case c.SmallBlind > c.BigBlind:
		return fmt.Errorf("%w: small blind %d exceeds big blind %d", ErrValidation, c.SmallBlind, c.BigBlind)
	case c.MinBuyIn <= 0 || c.MinBuyIn > c.MaxBuyIn:
		return fmt.Errorf("%w: buy-in range [%d, %d] is invalid", ErrValidation, c.MinBuyIn, c.MaxBuyIn)
	case c.MaxPlayers < MinPlayers || c.MaxPlayers > MaxPlayers:
		return fmt.Errorf("%w: max players must be between %d and %d (got %d)", ErrValidation, MinPlayers, MaxPlayers, c.MaxPlayers)
	}
	return nil
}

// SeatStatus is the occupancy of a seat.
type SeatStatus int

const (
	SeatEmpty SeatStatus = iota
	SeatSeated
)

func (s SeatStatus) String() string {
	if s == SeatSeated {
		return "seated"
	}
	return "empty"
}

// Seat is one position at the table. Seats are owned by the Table.
type Seat struct {
	Number     int
	AgentID    string
	Stack      int
	Status     SeatStatus
	HoleCards  []poker.Card
	SittingOut bool
}

// IsOccupied reports whether an agent holds the seat.
func (s *Seat) IsOccupied() bool {
	return s.AgentID != "" && s.Status == SeatSeated
}

// IsReady reports whether the seat will be dealt into the next hand.
func (s *Seat) IsReady() bool {
	return s.IsOccupied() && !s.SittingOut && s.Stack > 0
}

func (s *Seat) clear() {
	*s = Seat{Number: s.Number}
}

// TableStatus is whether a hand is being played.
type TableStatus int

const (
	TableWaiting TableStatus = iota
	TablePlaying
)

func (s TableStatus) String() string {
	if s == TablePlaying {
		return "playing"
	}
	return "waiting"
}

// Table owns the seat arena, indexed 0..MaxPlayers-1.
type Table struct {
	Config         TableConfig
	Seats          []Seat
	ButtonPosition int
	HandNumber     int
	Status         TableStatus
}

// NewTable creates a table with every seat empty.
func NewTable(cfg TableConfig) *Table {
	t := &Table{
		Config: cfg,
		Seats:  make([]Seat, cfg.MaxPlayers),
	}
	for i := range t.Seats {
		t.Seats[i].Number = i
	}
	return t
}

// Seat returns the seat with the given number or nil if out of range.
func (t *Table) Seat(n int) *Seat {
	if n < 0 || n >= len(t.Seats) {
		return nil
	}
	return &t.Seats[n]
}

// ReadySeats returns the seat numbers that would be dealt in, ascending.
func (t *Table) ReadySeats() []int {
	var ready []int
	for i := range t.Seats {
		if t.Seats[i].IsReady() {
			ready = append(ready, i)
		}
	}
	return ready
}

// OccupiedSeats returns the numbers of all occupied seats, ascending.
func (t *Table) OccupiedSeats() []int {
	var seats []int
	for i := range t.Seats {
		if t.Seats[i].IsOccupied() {
			seats = append(seats, i)
		}
	}
	return seats
}

// SeatByAgent finds the seat held by agentID.
func (t *Table) SeatByAgent(agentID string) *Seat {
	if agentID == "" {
		return nil
	}
	for i := range t.Seats {
		if t.Seats[i].AgentID == agentID {
			return &t.Seats[i]
		}
	}
	return nil
}

// AdvanceButton moves the button to the next ready seat in ascending order,
// wrapping. If the current button seat is no longer ready the button moves
// to the lowest ready seat.
func (t *Table) AdvanceButton() int {
	ready := t.ReadySeats()
	if len(ready) == 0 {
		return t.ButtonPosition
	}
	idx := slices.Index(ready, t.ButtonPosition)
	t.ButtonPosition = ready[(idx+1)%len(ready)]
	return t.ButtonPosition
}

// BlindPositions returns the small and big blind seats. Heads-up the button
// posts the small blind; otherwise the blinds are the two ready seats after
// the button.
func (t *Table) BlindPositions() (sb, bb int, err error) {
	ready := t.ReadySeats()
	if len(ready) < MinPlayers {
		return -1, -1, fmt.Errorf("%w: need %d ready players for blinds, have %d", ErrState, MinPlayers, len(ready))
	}
	idx := t.buttonIndex(ready)
	if len(ready) == 2 {
		return ready[idx], ready[(idx+1)%2], nil
	}
	return ready[(idx+1)%len(ready)], ready[(idx+2)%len(ready)], nil
}

// FirstToActPreflop returns the ready seat after the big blind. Heads-up
// this is the button.
func (t *Table) FirstToActPreflop() (int, error) {
	_, bb, err := t.BlindPositions()
	if err != nil {
		return -1, err
	}
	ready := t.ReadySeats()
	return ready[(slices.Index(ready, bb)+1)%len(ready)], nil
}

// FirstToActPostflop returns the first ready seat after the button.
func (t *Table) FirstToActPostflop() (int, error) {
	ready := t.ReadySeats()
	if len(ready) == 0 {
		return -1, fmt.Errorf("%w: no ready players", ErrState)
	}
	idx := slices.Index(ready, t.ButtonPosition)
	return ready[(idx+1)%len(ready)], nil
}

// buttonIndex locates the button among ready seats, falling back to the
// first ready seat when the button is not on one.
func (t *Table) buttonIndex(ready []int) int {
	idx := slices.Index(ready, t.ButtonPosition)
	if idx < 0 {
		return 0
	}
	return idx
}

// TotalChips returns the sum of all seat stacks.
func (t *Table) TotalChips() int {
	total := 0
	for i := range t.Seats {
		total += t.Seats[i].Stack
	}
	return total
}
