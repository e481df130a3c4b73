package game

import "errors"

// Rejected operations wrap one of these sentinels. A rejected operation
// leaves the engine unchanged.
var (
	// ErrValidation covers bad seats, buy-ins and unknown agents.
	ErrValidation = errors.New("validation error")
	// ErrIllegalAction covers wrong-turn actions, actions that are not
	// currently valid and malformed bet sizes.
	ErrIllegalAction = errors.New("illegal action")
	// ErrState covers operations that do not fit the hand lifecycle.
	ErrState = errors.New("invalid state")
	// ErrInsufficientChips is returned when an amount exceeds the stack.
	ErrInsufficientChips = errors.New("insufficient chips")
)
