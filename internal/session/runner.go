package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/siliconcasino/internal/game"
)

var (
	// ErrTableClosed is returned for commands sent to a table whose loop
	// has stopped.
	ErrTableClosed = errors.New("table closed")
	// ErrTableExists is returned when creating a table with an ID in use.
	ErrTableExists = errors.New("table already exists")
)

// HandCompleteFunc is called from a table loop each time a hand settles.
// The hand is no longer mutated by the engine and may be retained.
type HandCompleteFunc func(tableID string, h *game.Hand)

// HandInfo describes a hand that was just started.
type HandInfo struct {
	ID         string
	Number     int
	ButtonSeat int
	// Complete is set when the blinds left nobody able to act and the hand
	// was settled immediately.
	Complete bool
}

// Audit is a consistency report for one table.
type Audit struct {
	TotalBoughtIn int
	TotalStacks   int
	TotalRake     int
	Err           error
}

// TableRunner owns one Engine. A single goroutine applies commands in the
// order they arrive, so callers on any goroutine see a serialized table.
type TableRunner struct {
	id     string
	config game.TableConfig
	engine *game.Engine
	wallet Wallet
	onHand HandCompleteFunc
	logger *log.Logger

	cmds     chan func()
	stop     chan struct{}
	done     chan struct{}
	started  bool // guarded by Manager.mu
	lastSeen *game.Hand
}

func newTableRunner(engine *game.Engine, wallet Wallet, onHand HandCompleteFunc, logger *log.Logger) *TableRunner {
	cfg := engine.Config()
	return &TableRunner{
		id:     cfg.ID,
		config: cfg,
		engine: engine,
		wallet: wallet,
		onHand: onHand,
		logger: logger.With("table", cfg.ID),
		cmds:   make(chan func()),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// ID returns the table ID.
func (r *TableRunner) ID() string { return r.id }

// Config returns the immutable table configuration.
func (r *TableRunner) Config() game.TableConfig { return r.config }

// Done is closed once the table loop has exited.
func (r *TableRunner) Done() <-chan struct{} { return r.done }

// run is the table loop. A panic from the engine means an invariant was
// broken; it stops this table and is returned as an error.
func (r *TableRunner) run(ctx context.Context) (err error) {
	defer close(r.done)
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Table loop stopped", "panic", p)
			err = fmt.Errorf("table %s: %v", r.id, p)
		}
	}()

	r.logger.Debug("Table loop started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stop:
			return nil
		case cmd := <-r.cmds:
			cmd()
		}
	}
}

// do runs fn on the table loop. Once fn has been handed to the loop the
// call waits for it to finish regardless of ctx, so a cancelled caller can
// never mistake an applied command for a rejected one.
func (r *TableRunner) do(ctx context.Context, fn func(e *game.Engine) error) error {
	errc := make(chan error, 1)
	cmd := func() {
		err := fn(r.engine)
		r.notifyCompleted()
		errc <- err
	}

	select {
	case r.cmds <- cmd:
	case <-r.done:
		return fmt.Errorf("%w: %s", ErrTableClosed, r.id)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-errc:
		return err
	case <-r.done:
		select {
		case err := <-errc:
			return err
		default:
			return fmt.Errorf("%w: %s", ErrTableClosed, r.id)
		}
	}
}

func (r *TableRunner) notifyCompleted() {
	last := r.engine.LastHand()
	if last == nil || last == r.lastSeen {
		return
	}
	r.lastSeen = last
	if r.onHand != nil {
		r.onHand(r.id, last)
	}
}

// Seat debits the buy-in from the wallet and seats the agent. The buy-in
// is refunded if the engine rejects the seat.
func (r *TableRunner) Seat(ctx context.Context, agentID string, seat, buyIn int) error {
	if err := r.debit(ctx, agentID, buyIn); err != nil {
		return err
	}
	err := r.do(ctx, func(e *game.Engine) error {
		return e.SeatPlayer(agentID, seat, buyIn)
	})
	if err != nil {
		return r.refund(ctx, agentID, buyIn, err)
	}
	r.logger.Info("Agent seated", "agent", agentID, "seat", seat, "buyIn", buyIn)
	return nil
}

// Leave removes the agent and credits its stack back to the wallet.
func (r *TableRunner) Leave(ctx context.Context, agentID string) (int, error) {
	var stack int
	err := r.do(ctx, func(e *game.Engine) error {
		var err error
		stack, err = e.RemovePlayer(agentID)
		return err
	})
	if err != nil {
		return 0, err
	}
	if r.wallet != nil && stack > 0 {
		if err := r.wallet.Credit(context.WithoutCancel(ctx), agentID, stack); err != nil {
			return stack, fmt.Errorf("credit %d to %s: %w", stack, agentID, err)
		}
	}
	r.logger.Info("Agent left", "agent", agentID, "stack", stack)
	return stack, nil
}

// TopUp moves chips from the wallet to the agent's stack between hands and
// returns the new stack.
func (r *TableRunner) TopUp(ctx context.Context, agentID string, amount int) (int, error) {
	if err := r.debit(ctx, agentID, amount); err != nil {
		return 0, err
	}
	var stack int
	err := r.do(ctx, func(e *game.Engine) error {
		var err error
		stack, err = e.AddChips(agentID, amount)
		return err
	})
	if err != nil {
		return 0, r.refund(ctx, agentID, amount, err)
	}
	return stack, nil
}

// SitOut marks the agent as sitting out of, or back into, future hands.
func (r *TableRunner) SitOut(ctx context.Context, agentID string, sittingOut bool) error {
	return r.do(ctx, func(e *game.Engine) error {
		return e.SetSittingOut(agentID, sittingOut)
	})
}

// StartHand deals the next hand.
func (r *TableRunner) StartHand(ctx context.Context) (HandInfo, error) {
	var info HandInfo
	err := r.do(ctx, func(e *game.Engine) error {
		h, err := e.StartHand()
		if err != nil {
			return err
		}
		info = HandInfo{ID: h.ID, Number: h.Number, ButtonSeat: h.ButtonSeat, Complete: h.IsComplete()}
		return nil
	})
	return info, err
}

// Act applies an action for the agent. It returns true while the hand
// continues.
func (r *TableRunner) Act(ctx context.Context, agentID string, action game.ActionType, amount int) (bool, error) {
	var continues bool
	err := r.do(ctx, func(e *game.Engine) error {
		var err error
		continues, err = e.ProcessAction(agentID, action, amount)
		return err
	})
	return continues, err
}

// State returns the table as seen by agentID. An empty agentID gives the
// public view.
func (r *TableRunner) State(ctx context.Context, agentID string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := r.do(ctx, func(e *game.Engine) error {
		snap = e.State(agentID)
		return nil
	})
	return snap, err
}

// ValidActions returns the actions the agent may take now.
func (r *TableRunner) ValidActions(ctx context.Context, agentID string) ([]game.ActionType, error) {
	var actions []game.ActionType
	err := r.do(ctx, func(e *game.Engine) error {
		actions = e.ValidActions(agentID)
		return nil
	})
	return actions, err
}

// LastHand returns the most recently completed hand, or nil.
func (r *TableRunner) LastHand(ctx context.Context) (*game.Hand, error) {
	var h *game.Hand
	err := r.do(ctx, func(e *game.Engine) error {
		h = e.LastHand()
		return nil
	})
	return h, err
}

// Audit reports the table's chip accounting.
func (r *TableRunner) Audit(ctx context.Context) (Audit, error) {
	var a Audit
	err := r.do(ctx, func(e *game.Engine) error {
		a = Audit{
			TotalBoughtIn: e.TotalBoughtIn(),
			TotalStacks:   e.Table().TotalChips(),
			TotalRake:     e.TotalRakeCollected(),
			Err:           e.CheckChipConservation(),
		}
		return nil
	})
	return a, err
}

func (r *TableRunner) debit(ctx context.Context, agentID string, amount int) error {
	if r.wallet == nil {
		return nil
	}
	if err := r.wallet.Debit(ctx, agentID, amount); err != nil {
		return fmt.Errorf("debit %d from %s: %w", amount, agentID, err)
	}
	return nil
}

func (r *TableRunner) refund(ctx context.Context, agentID string, amount int, cause error) error {
	if r.wallet == nil {
		return cause
	}
	if err := r.wallet.Credit(context.WithoutCancel(ctx), agentID, amount); err != nil {
		return errors.Join(cause, fmt.Errorf("refund %d to %s: %w", amount, agentID, err))
	}
	return cause
}
