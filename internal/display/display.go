// Package display renders cards, hands and simulation results for the
// terminal.
package display

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/internal/simulator"
	"github.com/lox/siliconcasino/poker"
)

// Printer renders to one writer with styles suited to its color support.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer

	header    lipgloss.Style
	redCard   lipgloss.Style
	blackCard lipgloss.Style
	category  lipgloss.Style
	win       lipgloss.Style
	loss      lipgloss.Style
	muted     lipgloss.Style
}

// NewPrinter creates a printer for w. With color false all styling is
// dropped regardless of the terminal.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:         w,
		renderer:  r,
		header:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1),
		redCard:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		blackCard: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")),
		category:  r.NewStyle().Foreground(lipgloss.Color("12")),
		win:       r.NewStyle().Foreground(lipgloss.Color("10")),
		loss:      r.NewStyle().Foreground(lipgloss.Color("9")),
		muted:     r.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

// Card renders one card, red suits in red.
func (p *Printer) Card(c poker.Card) string {
	if c.Suit.IsRed() {
		return p.redCard.Render(c.String())
	}
	return p.blackCard.Render(c.String())
}

// Cards renders cards separated by spaces.
func (p *Printer) Cards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = p.Card(c)
	}
	return strings.Join(parts, " ")
}

// Evaluation prints the best hand made from hole and board.
func (p *Printer) Evaluation(hole, board []poker.Card) error {
	best, rank, err := poker.BestFive(hole, board)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.w, p.header.Render("Hand evaluation"))
	fmt.Fprintf(p.w, "Hole:     %s\n", p.Cards(hole))
	fmt.Fprintf(p.w, "Board:    %s\n", p.Cards(board))
	fmt.Fprintf(p.w, "Best:     %s\n", p.Cards(best[:]))
	fmt.Fprintf(p.w, "Category: %s\n", p.category.Render(rank.Category().String()))
	fmt.Fprintf(p.w, "Score:    %s\n", p.muted.Render(fmt.Sprint(uint32(rank))))
	return nil
}

// Simulation prints per-agent results and a per-strategy summary.
func (p *Printer) Simulation(res *simulator.Result) {
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("Simulation: %d hands on %d tables (seed %d)", res.Hands, res.Tables, res.Seed)))

	agents := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		Headers("AGENT", "STRATEGY", "HANDS", "NET", "BB/100", "SD WINS", "NSD WINS")
	for _, a := range res.Agents {
		hands, bb100, sd, nsd := 0, 0.0, 0, 0
		if a.Stats != nil {
			hands, bb100, sd, nsd = a.Stats.Hands, a.Stats.BB100(), a.Stats.ShowdownWins, a.Stats.NonShowdownWins
		}
		agents.Row(a.AgentID, a.Strategy, fmt.Sprint(hands), p.signed(a.Net), fmt.Sprintf("%.1f", bb100), fmt.Sprint(sd), fmt.Sprint(nsd))
	}
	fmt.Fprintln(p.w, agents.Render())

	strategies := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		Headers("STRATEGY", "HANDS", "BB/100", "95% CI (BB/HAND)")
	stats := res.StrategyStats()
	for _, name := range slices.Sorted(maps.Keys(stats)) {
		s := stats[name]
		lo, hi := s.ConfidenceInterval95()
		strategies.Row(name, fmt.Sprint(s.Hands), fmt.Sprintf("%.1f", s.BB100()), fmt.Sprintf("[%.3f, %.3f]", lo, hi))
	}
	fmt.Fprintln(p.w, strategies.Render())
	fmt.Fprintf(p.w, "Rake collected: %d\n", res.Rake)
}

// Event formats a table event as one line.
func (p *Printer) Event(tableID string, e game.Event) string {
	prefix := p.muted.Render(fmt.Sprintf("[%s #%d]", tableID, e.Sequence))
	switch e.Type {
	case game.EventHandStart:
		return fmt.Sprintf("%s hand %v starts, button seat %v", prefix, e.Payload["hand_number"], e.Payload["button_seat"])
	case game.EventPlayerAction:
		line := fmt.Sprintf("%s %s %v", prefix, e.AgentID, e.Payload["action_type"])
		if in, ok := e.Payload["chips_in"].(int); ok && in > 0 {
			line += fmt.Sprintf(" %d", in)
		}
		return line
	case game.EventCommunityCards:
		return fmt.Sprintf("%s %v: %s", prefix, e.Payload["phase"], p.cardList(e.Payload["board"]))
	case game.EventShowdown:
		return fmt.Sprintf("%s showdown", prefix)
	case game.EventHandComplete:
		return fmt.Sprintf("%s seat %v wins %v uncontested", prefix, e.Payload["winner_seat"], e.Payload["pot"])
	case game.EventHandEnd:
		return fmt.Sprintf("%s hand over, pot %v, rake %v", prefix, e.Payload["total_pot"], e.Payload["rake"])
	}
	return fmt.Sprintf("%s %s", prefix, e.Type)
}

func (p *Printer) cardList(v any) string {
	codes, ok := v.([]string)
	if !ok {
		return fmt.Sprint(v)
	}
	cards, err := poker.ParseCards(strings.Join(codes, ""))
	if err != nil {
		return strings.Join(codes, " ")
	}
	return p.Cards(cards)
}

func (p *Printer) signed(n int) string {
	switch {
	case n > 0:
		return p.win.Render(fmt.Sprintf("+%d", n))
	case n < 0:
		return p.loss.Render(fmt.Sprint(n))
	}
	return "0"
}
