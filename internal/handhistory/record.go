// Package handhistory turns completed hands into records for storage and
// broadcast, and writes them as JSON lines.
package handhistory

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/poker"
)

// Status is the lifecycle state of a recorded hand.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// PlayerRecord is one seat dealt into a hand.
type PlayerRecord struct {
	Seat      int    `json:"seat"`
	AgentID   string `json:"agent_id"`
	HoleCards string `json:"hole_cards,omitempty"`
	Won       int    `json:"won"`
}

// Record is the stored shape of a hand.
type Record struct {
	HandID         string         `json:"hand_id"`
	TableID        string         `json:"table_id"`
	HandNumber     int            `json:"hand_number"`
	ButtonSeat     int            `json:"button_seat"`
	SmallBlindSeat int            `json:"small_blind_seat"`
	BigBlindSeat   int            `json:"big_blind_seat"`
	Players        []PlayerRecord `json:"players"`
	CommunityCards string         `json:"community_cards"`
	TotalPot       int            `json:"total_pot"`
	Rake           int            `json:"rake"`
	Status         Status         `json:"status"`
	Winners        []game.Winner  `json:"winners,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	EndedAt        *time.Time     `json:"ended_at,omitempty"`
	Events         []game.Event   `json:"events"`
}

// FromHand builds a record of h. Hole cards are included; use
// WithoutHoleCards before publishing.
func FromHand(tableID string, h *game.Hand) Record {
	rec := Record{
		HandID:         h.ID,
		TableID:        tableID,
		HandNumber:     h.Number,
		ButtonSeat:     h.ButtonSeat,
		SmallBlindSeat: h.SmallBlindSeat,
		BigBlindSeat:   h.BigBlindSeat,
		CommunityCards: poker.CardsString(h.CommunityCards),
		TotalPot:       h.Pot,
		Rake:           h.RakeCollected,
		Status:         StatusInProgress,
		StartedAt:      h.StartedAt,
		Events:         slices.Clone(h.Events),
	}

	for _, seat := range h.Seats() {
		p := PlayerRecord{Seat: seat}
		if bs := h.Betting.Player(seat); bs != nil {
			p.AgentID = bs.AgentID
		}
		if cards, ok := h.HoleCards[seat]; ok {
			p.HoleCards = poker.CardsString(cards[:])
		}
		if h.Result != nil {
			p.Won = h.Result.Won(seat)
		}
		rec.Players = append(rec.Players, p)
	}

	if h.IsComplete() {
		rec.Status = StatusCompleted
		ended := h.EndedAt
		rec.EndedAt = &ended
		if h.Result != nil {
			rec.Winners = slices.Clone(h.Result.Winners)
		}
	}
	return rec
}

// WithoutHoleCards returns a copy of r with every seat's hole cards
// removed.
func (r Record) WithoutHoleCards() Record {
	r.Players = slices.Clone(r.Players)
	for i := range r.Players {
		r.Players[i].HoleCards = ""
	}
	return r
}

var (
	ErrSequenceGap       = errors.New("event sequence gap")
	ErrSequenceDuplicate = errors.New("duplicate event sequence")
)

// CheckSequence verifies that each hand's events are numbered 1, 2, 3...
// without gaps or repeats. Events of several hands may be interleaved;
// numbering restarts with each hand.
func CheckSequence(events []game.Event) error {
	last := make(map[string]int)
	var errs []error
	for _, e := range events {
		prev := last[e.HandID]
		switch {
		case e.Sequence <= prev:
			errs = append(errs, fmt.Errorf("%w: hand %s sequence %d after %d", ErrSequenceDuplicate, e.HandID, e.Sequence, prev))
		case e.Sequence > prev+1:
			errs = append(errs, fmt.Errorf("%w: hand %s missing %d..%d", ErrSequenceGap, e.HandID, prev+1, e.Sequence-1))
			last[e.HandID] = e.Sequence
		default:
			last[e.HandID] = e.Sequence
		}
	}
	return errors.Join(errs...)
}
