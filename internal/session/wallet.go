package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientFunds is returned by a Wallet that cannot cover a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet is the off-table bankroll. It is consulted when an agent joins,
// leaves or tops up, never while a hand is being played.
type Wallet interface {
	Debit(ctx context.Context, agentID string, amount int) error
	Credit(ctx context.Context, agentID string, amount int) error
}

// MemoryWallet is an in-process Wallet for simulations and tests.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[string]int
}

func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[string]int)}
}

// Deposit adds funds to an agent's balance.
func (w *MemoryWallet) Deposit(agentID string, amount int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[agentID] += amount
}

// Balance returns an agent's balance.
func (w *MemoryWallet) Balance(agentID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[agentID]
}

func (w *MemoryWallet) Debit(_ context.Context, agentID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[agentID] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, agentID, w.balances[agentID], amount)
	}
	w.balances[agentID] -= amount
	return nil
}

func (w *MemoryWallet) Credit(_ context.Context, agentID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative, got %d", amount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[agentID] += amount
	return nil
}
