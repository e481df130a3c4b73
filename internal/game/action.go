package game

import (
	"fmt"
	"strings"
)

// ActionType is a betting action.
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

var actionNames = [...]string{
	Fold:  "FOLD",
	Check: "CHECK",
	Call:  "CALL",
	Bet:   "BET",
	Raise: "RAISE",
	AllIn: "ALL_IN",
}

// actionsByName is the complete set of accepted spellings, keyed upper-case.
var actionsByName = map[string]ActionType{
	"FOLD":   Fold,
	"CHECK":  Check,
	"CALL":   Call,
	"BET":    Bet,
	"RAISE":  Raise,
	"ALL_IN": AllIn,
	"ALLIN":  AllIn,
}

func (a ActionType) String() string {
	if a < Fold || a > AllIn {
		return fmt.Sprintf("ActionType(%d)", int(a))
	}
	return actionNames[a]
}

// ParseActionType decodes an action name such as "call" or "ALL_IN".
func ParseActionType(s string) (ActionType, error) {
	a, ok := actionsByName[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, s)
	}
	return a, nil
}

// MarshalText encodes the action by name.
func (a ActionType) MarshalText() ([]byte, error) {
	if a < Fold || a > AllIn {
		return nil, fmt.Errorf("%w: unknown action %d", ErrIllegalAction, int(a))
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText decodes an action name.
func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Round is a betting round.
type Round int

const (
	Preflop Round = iota
	Flop
	Turn
	River
)

func (r Round) String() string {
	if r < Preflop || r > River {
		return "unknown"
	}
	return [...]string{"preflop", "flop", "turn", "river"}[r]
}

// MarshalText encodes the round by name.
func (r Round) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a round name.
func (r *Round) UnmarshalText(text []byte) error {
	for q := Preflop; q <= River; q++ {
		if q.String() == string(text) {
			*r = q
			return nil
		}
	}
	return fmt.Errorf("%w: unknown round %q", ErrValidation, text)
}
