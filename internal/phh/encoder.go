package phh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/poker"
)

// ErrIncomplete is returned for hands that have not been settled.
var ErrIncomplete = errors.New("phh: hand is not complete")

// Options controls what an export reveals.
type Options struct {
	// SeatCount is the table size. Zero omits it.
	SeatCount int
	// HoleCards deals every player's cards face up. Otherwise unseen
	// cards are written as "????" and only showdown hands are revealed.
	HoleCards bool
}

// Encode writes the hand history in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromHand converts a settled hand. The action list is rebuilt from the
// hand's event log.
func FromHand(tableID string, h *game.Hand, opts Options) (*HandHistory, error) {
	if h == nil || !h.IsComplete() || h.Result == nil {
		return nil, ErrIncomplete
	}

	seats := playerOrder(h)
	player := make(map[int]int, len(seats))
	for i, s := range seats {
		player[s] = i + 1
	}

	hh := &HandHistory{
		Variant:           "NT",
		Table:             tableID,
		SeatCount:         opts.SeatCount,
		Antes:             make([]int, len(seats)),
		BlindsOrStraddles: make([]int, len(seats)),
		MinBet:            h.Betting.BigBlind,
		HandID:            h.ID,
		Metadata:          map[string]any{"hand_number": h.Number, "rake": h.RakeCollected},
	}
	if !h.StartedAt.IsZero() {
		t := h.StartedAt.UTC()
		hh.Time = t.Format("15:04:05")
		hh.TimeZone = "UTC"
		hh.Day, hh.Month, hh.Year = t.Day(), int(t.Month()), t.Year()
	}

	for _, s := range seats {
		p := h.Betting.Player(s)
		won := h.Result.Won(s)
		start := p.Stack + p.TotalBetThisHand
		hh.Seats = append(hh.Seats, s+1)
		hh.Players = append(hh.Players, p.AgentID)
		hh.StartingStacks = append(hh.StartingStacks, start)
		hh.FinishingStacks = append(hh.FinishingStacks, p.Stack+won)
		hh.Winnings = append(hh.Winnings, won)
	}

	for _, s := range seats {
		hole := "????"
		if cards, ok := h.HoleCards[s]; ok && opts.HoleCards {
			hole = poker.CardsString(cards[:])
		}
		hh.Actions = append(hh.Actions, fmt.Sprintf("d dh p%d %s", player[s], hole))
	}

	roundBet := 0
	for _, e := range h.Events {
		switch e.Type {
		case game.EventHandStart:
			sb, _ := e.Payload["small_blind"].(int)
			bb, _ := e.Payload["big_blind"].(int)
			if i, ok := player[h.SmallBlindSeat]; ok {
				hh.BlindsOrStraddles[i-1] = sb
			}
			if i, ok := player[h.BigBlindSeat]; ok {
				hh.BlindsOrStraddles[i-1] = bb
			}
			roundBet = max(sb, bb)

		case game.EventPlayerAction:
			seat, _ := e.Payload["player_seat"].(int)
			action, _ := e.Payload["action_type"].(string)
			betTo, _ := e.Payload["bet_this_round"].(int)
			line, raised := FormatAction(player[seat], action, betTo, roundBet)
			if raised {
				roundBet = betTo
			}
			hh.Actions = append(hh.Actions, line)

		case game.EventCommunityCards:
			board, _ := e.Payload["board"].([]string)
			cards, _ := e.Payload["cards"].([]string)
			hh.Actions = append(hh.Actions, dealBoard(board, len(cards))...)
			roundBet = 0
		}
	}

	for _, s := range seats {
		if shown, ok := h.Result.ShowdownHands[s]; ok {
			hh.Actions = append(hh.Actions, fmt.Sprintf("p%d sm %s", player[s], poker.CardsString(shown.HoleCards)))
		}
	}
	return hh, nil
}

// FormatAction converts an engine action to PHH notation for player n.
// betTo is the player's total for the round after acting and roundBet the
// amount to match before it; raised reports whether the action raised.
func FormatAction(n int, action string, betTo, roundBet int) (line string, raised bool) {
	parsed, err := game.ParseActionType(action)
	if err != nil {
		return fmt.Sprintf("# p%d %s %d", n, action, betTo), false
	}
	switch parsed {
	case game.Fold:
		return fmt.Sprintf("p%d f", n), false
	case game.Check, game.Call:
		return fmt.Sprintf("p%d cc", n), false
	}
	if betTo > roundBet {
		return fmt.Sprintf("p%d cbr %d", n, betTo), true
	}
	// An all-in that does not exceed the bet is a call.
	return fmt.Sprintf("p%d cc", n), false
}

// dealBoard splits the n most recent board cards into per-street deals so
// a runout reads the same as street-by-street play.
func dealBoard(board []string, n int) []string {
	var out []string
	start := len(board) - n
	for start < len(board) {
		end := start + 1
		if start < 3 {
			end = 3
		}
		end = min(end, len(board))
		line := "d db "
		for _, c := range board[start:end] {
			line += c
		}
		out = append(out, line)
		start = end
	}
	return out
}

// playerOrder lists the dealt-in seats from the small blind round to the
// button.
func playerOrder(h *game.Hand) []int {
	seats := h.Seats()
	idx := slices.Index(seats, h.SmallBlindSeat)
	if idx < 0 {
		return seats
	}
	return slices.Concat(seats[idx:], seats[:idx])
}
