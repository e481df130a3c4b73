package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/siliconcasino/internal/bot"
	"github.com/lox/siliconcasino/internal/config"
	"github.com/lox/siliconcasino/internal/feed"
	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/internal/handhistory"
	"github.com/lox/siliconcasino/internal/phh"
	"github.com/lox/siliconcasino/internal/randutil"
	"github.com/lox/siliconcasino/internal/session"
)

const handTimeout = 5 * time.Second

type seatedBot struct {
	id    string
	seat  int
	buyIn int
	agent bot.Agent
}

// casino runs the configured tables with their bots, streams events to
// spectators and records hand history.
type casino struct {
	cfg    *config.Config
	clock  quartz.Clock
	logger *log.Logger

	wallet    *session.MemoryWallet
	manager   *session.Manager
	publisher *session.Publisher
	hub       *feed.Hub
	history   *handhistory.Writer
	bots      map[string][]seatedBot
}

func newCasino(cfg *config.Config, seed int64, clock quartz.Clock, logger *log.Logger) (*casino, error) {
	c := &casino{
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		wallet: session.NewMemoryWallet(),
		bots:   make(map[string][]seatedBot),
	}

	if cfg.History != nil {
		w, err := handhistory.NewWriter(handhistory.WriterConfig{
			Path:             cfg.History.Path,
			FlushInterval:    cfg.History.FlushPeriod(),
			IncludeHoleCards: cfg.History.IncludeHoleCards,
			Clock:            clock,
		}, logger)
		if err != nil {
			return nil, err
		}
		c.history = w
	}

	c.hub = feed.NewHub(logger, feed.WithTableLookup(func(id string) bool {
		_, ok := c.manager.Get(id)
		return ok
	}))
	c.publisher = session.NewPublisher(session.DefaultPublisherBuffer, logger, c.hub)

	opts := []session.Option{
		session.WithWallet(c.wallet),
		session.WithPublisher(c.publisher),
		session.WithLogger(logger),
		session.WithEngineOptions(
			game.WithRake(cfg.RakeConfig()),
			game.WithSidePots(cfg.Server.SidePots),
			game.WithClock(clock),
		),
	}
	if c.history != nil {
		opts = append(opts, session.WithHandComplete(c.history.Observe))
	}
	c.manager = session.NewManager(opts...)

	master := randutil.New(seed)
	for i, t := range cfg.Tables {
		if _, err := c.manager.Create(t.TableConfig(), game.WithSeed(randutil.Derive(seed, i))); err != nil {
			return nil, fmt.Errorf("table %s: %w", t.ID, err)
		}
		for seat, b := range cfg.BotsFor(t.ID) {
			if seat >= t.MaxPlayers {
				logger.Warn("Table is full, bot not seated", "table", t.ID, "bot", b.Name)
				break
			}
			agent, err := bot.New(b.Strategy, randutil.New(master.Int64()))
			if err != nil {
				return nil, fmt.Errorf("bot %s: %w", b.Name, err)
			}
			c.bots[t.ID] = append(c.bots[t.ID], seatedBot{
				id:    fmt.Sprintf("%s@%s", b.Name, t.ID),
				seat:  seat,
				buyIn: b.BuyInFor(t),
				agent: agent,
			})
		}
	}
	return c, nil
}

// Run plays every table until ctx is cancelled or a table fails.
func (c *casino) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.manager.Run(gctx) })
	for _, id := range c.manager.List() {
		r, _ := c.manager.Get(id)
		g.Go(func() error { return c.runTable(gctx, r) })
	}
	err := g.Wait()

	c.hub.Close()
	if c.history != nil {
		err = errors.Join(err, c.history.Close())
	}
	return err
}

// runTable seats the table's bots and deals a hand every interval.
func (c *casino) runTable(ctx context.Context, r *session.TableRunner) error {
	logger := c.logger.With("table", r.ID())
	seated := c.bots[r.ID()]
	agents := make(map[string]bot.Agent, len(seated))
	for _, b := range seated {
		c.wallet.Deposit(b.id, b.buyIn)
		if err := r.Seat(ctx, b.id, b.seat, b.buyIn); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("seat %s: %w", b.id, err)
		}
		agents[b.id] = b.agent
	}
	logger.Info("Table open", "bots", len(seated))

	ticker := c.clock.NewTicker(c.cfg.HandInterval(), "table", r.ID())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		hctx, cancel := context.WithTimeout(ctx, handTimeout)
		info, err := bot.PlayHand(hctx, r, agents)
		cancel()
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, game.ErrState):
			logger.Debug("Waiting for players", "reason", err)
		case err != nil:
			return fmt.Errorf("%s: %w", r.ID(), err)
		default:
			logger.Debug("Hand played", "hand", info.Number, "id", info.ID)
		}

		audit, err := r.Audit(ctx)
		if err != nil {
			return nil
		}
		if audit.Err != nil {
			return fmt.Errorf("%s: %w", r.ID(), audit.Err)
		}
		if err := c.rebuy(ctx, r, seated); err != nil {
			return err
		}
	}
}

// rebuy tops up bots that have lost their stack. Bots have an unlimited
// bankroll.
func (c *casino) rebuy(ctx context.Context, r *session.TableRunner, seated []seatedBot) error {
	snap, err := r.State(ctx, "")
	if err != nil {
		return nil
	}
	for _, b := range seated {
		if snap.Table.Seats[b.seat].Stack > 0 {
			continue
		}
		c.wallet.Deposit(b.id, b.buyIn)
		if _, err := r.TopUp(ctx, b.id, b.buyIn); err != nil {
			return fmt.Errorf("rebuy %s: %w", b.id, err)
		}
		c.logger.Debug("Bot rebought", "table", r.ID(), "bot", b.id, "amount", b.buyIn)
	}
	return nil
}

// Handler serves the spectator feed and table state.
func (c *casino) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", c.hub)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"tables":     len(c.manager.List()),
			"spectators": c.hub.Clients(),
			"dropped":    c.publisher.Dropped(),
		})
	})
	mux.HandleFunc("GET /tables", c.handleTables)
	mux.HandleFunc("GET /tables/{id}", c.handleTable)
	mux.HandleFunc("GET /tables/{id}/hands/last", c.handleLastHand)
	mux.HandleFunc("GET /tables/{id}/hands/last.phh", c.handleLastHandPHH)
	return mux
}

func (c *casino) handleTables(w http.ResponseWriter, r *http.Request) {
	tables := []game.TableSnapshot{}
	for _, id := range c.manager.List() {
		runner, ok := c.manager.Get(id)
		if !ok {
			continue
		}
		snap, err := runner.State(r.Context(), "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		tables = append(tables, snap.Table)
	}
	writeJSON(w, http.StatusOK, tables)
}

func (c *casino) handleTable(w http.ResponseWriter, r *http.Request) {
	runner, ok := c.manager.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	snap, err := runner.State(r.Context(), "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (c *casino) handleLastHand(w http.ResponseWriter, r *http.Request) {
	runner, ok := c.manager.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	h, err := runner.LastHand(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if h == nil {
		http.Error(w, "no hands played yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, handhistory.FromHand(runner.ID(), h).WithoutHoleCards())
}

func (c *casino) handleLastHandPHH(w http.ResponseWriter, r *http.Request) {
	runner, ok := c.manager.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	h, err := runner.LastHand(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if h == nil {
		http.Error(w, "no hands played yet", http.StatusNotFound)
		return
	}
	hh, err := phh.FromHand(runner.ID(), h, phh.Options{SeatCount: runner.Config().MaxPlayers})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/toml")
	if err := phh.Encode(w, hh); err != nil {
		c.logger.Error("Failed to encode hand history", "table", runner.ID(), "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
