package game

import (
	"fmt"
	"time"

	"github.com/lox/siliconcasino/poker"
)

// HandPhase is the lifecycle stage of a hand.
type HandPhase int

const (
	PhaseWaiting HandPhase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseComplete
)

func (p HandPhase) String() string {
	if p < PhaseWaiting || p > PhaseComplete {
		return "UNKNOWN"
	}
	return [...]string{"WAITING", "PREFLOP", "FLOP", "TURN", "RIVER", "SHOWDOWN", "COMPLETE"}[p]
}

// MarshalText encodes the phase by name.
func (p HandPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *HandPhase) UnmarshalText(text []byte) error {
	for q := PhaseWaiting; q <= PhaseComplete; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("%w: unknown hand phase %q", ErrValidation, text)
}

// round maps a betting phase to its betting round.
func (p HandPhase) round() Round {
	switch p {
	case PhaseFlop:
		return Flop
	case PhaseTurn:
		return Turn
	case PhaseRiver:
		return River
	default:
		return Preflop
	}
}

// Hand is the state of one hand from deal to settlement.
type Hand struct {
	ID             string
	Number         int
	Phase          HandPhase
	Deck           *poker.Deck
	CommunityCards []poker.Card
	Pot            int
	Betting        *BettingState
	ButtonSeat     int
	SmallBlindSeat int
	BigBlindSeat   int
	HoleCards      map[int][2]poker.Card
	Events         []Event
	RakeCollected  int
	StartedAt      time.Time
	EndedAt        time.Time
	Result         *HandResult
}

// IsComplete reports whether the hand has been settled.
func (h *Hand) IsComplete() bool {
	return h.Phase == PhaseComplete
}

// Seats returns the seats dealt into the hand, ascending.
func (h *Hand) Seats() []int {
	var seats []int
	for _, p := range h.Betting.Players {
		if p != nil {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// Win reasons recorded on Winner.
const (
	ReasonEveryoneFolded = "everyone_folded"
	ReasonShowdown       = "showdown"
)

// Winner is a seat that received chips at settlement.
type Winner struct {
	Seat     int    `json:"seat"`
	AgentID  string `json:"agent_id"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason"`
	Category string `json:"hand_rank,omitempty"`
}

// ShowdownHand is a hand revealed at showdown.
type ShowdownHand struct {
	HoleCards []poker.Card   `json:"hole_cards"`
	BestFive  []poker.Card   `json:"best_five"`
	Category  string         `json:"hand_rank"`
	Score     poker.HandRank `json:"score"`
}

// HandResult is the settlement of a hand.
type HandResult struct {
	HandID          string               `json:"hand_id"`
	Winners         []Winner             `json:"winners"`
	PotDistribution map[int]int          `json:"pot_distribution"`
	ShowdownHands   map[int]ShowdownHand `json:"showdown_hands,omitempty"`
	Pots            []Pot                `json:"pots,omitempty"`
	RakeCollected   int                  `json:"rake_collected"`
}

// Won returns the chips paid to seat at settlement.
func (r *HandResult) Won(seat int) int {
	return r.PotDistribution[seat]
}
