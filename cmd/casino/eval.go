package main

import (
	"os"
	"strings"

	"github.com/lox/siliconcasino/internal/display"
	"github.com/lox/siliconcasino/poker"
)

// EvalCmd prints the best hand made from hole cards and a board.
type EvalCmd struct {
	Hole  string `arg:"" help:"Hole cards, e.g. AhKd"`
	Board string `arg:"" help:"Three to five community cards, e.g. 'Qh Jh Th'"`
	Color bool   `kong:"default='true',negatable,help='Colorize output'"`
}

func (c *EvalCmd) Run() error {
	hole, err := parseCardArg(c.Hole)
	if err != nil {
		return err
	}
	board, err := parseCardArg(c.Board)
	if err != nil {
		return err
	}
	return display.NewPrinter(os.Stdout, c.Color).Evaluation(hole, board)
}

// parseCardArg accepts cards with or without separators.
func parseCardArg(s string) ([]poker.Card, error) {
	s = strings.NewReplacer(" ", "", ",", "").Replace(s)
	return poker.ParseCards(s)
}
