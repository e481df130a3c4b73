// Package simulator plays bots against each other on concurrent tables.
package simulator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/siliconcasino/internal/bot"
	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/internal/randutil"
	"github.com/lox/siliconcasino/internal/session"
	"github.com/lox/siliconcasino/internal/statistics"
)

// DefaultMix is the strategy rotation used when Config.Bots is empty.
var DefaultMix = []string{"tight", "random", "aggro", "call", "tight", "random"}

// Config holds configuration for a simulation run.
type Config struct {
	Tables        int
	HandsPerTable int
	Seats         int
	Bots          []string
	Seed          int64
	BuyIn         int
	Table         game.TableConfig
	Rake          game.RakeConfig
	SidePots      bool
	HandTimeout   time.Duration
	OnHand        session.HandCompleteFunc
	Logger        *log.Logger
}

func (c *Config) applyDefaults() {
	if c.Tables <= 0 {
		c.Tables = 1
	}
	if c.HandsPerTable <= 0 {
		c.HandsPerTable = 100
	}
	if len(c.Bots) == 0 {
		c.Bots = DefaultMix
	}
	if c.Table.BigBlind == 0 {
		c.Table = game.TableConfig{SmallBlind: 5, BigBlind: 10, MinBuyIn: 200, MaxBuyIn: 2000, MaxPlayers: 6}
	}
	if c.Seats <= 0 {
		c.Seats = c.Table.MaxPlayers
	}
	if c.BuyIn <= 0 {
		c.BuyIn = c.Table.MaxBuyIn / 2
	}
	if c.HandTimeout <= 0 {
		c.HandTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}

// AgentResult is one agent's outcome over the run.
type AgentResult struct {
	AgentID  string                 `json:"agent_id"`
	Strategy string                 `json:"strategy"`
	TableID  string                 `json:"table_id"`
	BuyIn    int                    `json:"buy_in"`
	Final    int                    `json:"final"`
	Net      int                    `json:"net"`
	Stats    *statistics.Statistics `json:"-"`
}

// Result summarizes a run. Agents are sorted by net result, best first.
type Result struct {
	Seed   int64         `json:"seed"`
	Tables int           `json:"tables"`
	Hands  int           `json:"hands"`
	Rake   int           `json:"rake"`
	Agents []AgentResult `json:"agents"`
}

// StrategyStats merges agent statistics by strategy.
func (r *Result) StrategyStats() map[string]*statistics.Statistics {
	out := make(map[string]*statistics.Statistics)
	for _, a := range r.Agents {
		s, ok := out[a.Strategy]
		if !ok {
			s = &statistics.Statistics{}
			out[a.Strategy] = s
		}
		if a.Stats != nil {
			s.Merge(a.Stats)
		}
	}
	return out
}

type seatedAgent struct {
	id       string
	strategy string
	seat     int
	agent    bot.Agent
}

// Simulator runs simulations.
type Simulator struct {
	config Config
	logger *log.Logger

	mu    sync.Mutex
	stats map[string]*statistics.Statistics
	hands int
}

// New creates a simulator with the given configuration.
func New(config Config) *Simulator {
	config.applyDefaults()
	return &Simulator{
		config: config,
		logger: config.Logger.WithPrefix("simulator"),
		stats:  make(map[string]*statistics.Statistics),
	}
}

// Run plays every table to its hand count, or until fewer than two seats
// have chips, verifying chip conservation after each hand.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.config
	if cfg.Seats < game.MinPlayers || cfg.Seats > cfg.Table.MaxPlayers {
		return nil, fmt.Errorf("%w: %d seats at a %d-max table", game.ErrValidation, cfg.Seats, cfg.Table.MaxPlayers)
	}

	wallet := session.NewMemoryWallet()
	mgr := session.NewManager(
		session.WithWallet(wallet),
		session.WithLogger(cfg.Logger),
		session.WithHandComplete(s.observe),
		session.WithEngineOptions(game.WithRake(cfg.Rake), game.WithSidePots(cfg.SidePots)),
	)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	mgrErr := make(chan error, 1)
	go func() { mgrErr <- mgr.Run(runCtx) }()

	master := randutil.New(cfg.Seed)
	tables := make(map[string][]seatedAgent, cfg.Tables)
	for t := range cfg.Tables {
		tc := cfg.Table
		tc.ID = fmt.Sprintf("table-%d", t+1)
		if tc.Name == "" {
			tc.Name = tc.ID
		}
		r, err := mgr.Create(tc, game.WithSeed(randutil.Derive(cfg.Seed, t)))
		if err != nil {
			return nil, err
		}

		var seated []seatedAgent
		for seat := range cfg.Seats {
			strategy := cfg.Bots[(t*cfg.Seats+seat)%len(cfg.Bots)]
			agent, err := bot.New(strategy, randutil.New(master.Int64()))
			if err != nil {
				return nil, err
			}
			id := fmt.Sprintf("%s-%s-%d", tc.ID, strategy, seat)
			wallet.Deposit(id, cfg.BuyIn)
			if err := r.Seat(ctx, id, seat, cfg.BuyIn); err != nil {
				return nil, fmt.Errorf("seat %s: %w", id, err)
			}
			seated = append(seated, seatedAgent{id: id, strategy: strategy, seat: seat, agent: agent})
		}
		tables[tc.ID] = seated
	}

	g, gctx := errgroup.WithContext(ctx)
	for id, seated := range tables {
		r, _ := mgr.Get(id)
		g.Go(func() error { return s.playTable(gctx, r, seated) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Seed: cfg.Seed, Tables: cfg.Tables}
	for id, seated := range tables {
		r, _ := mgr.Get(id)
		audit, err := r.Audit(ctx)
		if err != nil {
			return nil, err
		}
		result.Rake += audit.TotalRake
		for _, a := range seated {
			final, err := r.Leave(ctx, a.id)
			if err != nil {
				return nil, fmt.Errorf("leave %s: %w", a.id, err)
			}
			result.Agents = append(result.Agents, AgentResult{
				AgentID:  a.id,
				Strategy: a.strategy,
				TableID:  id,
				BuyIn:    cfg.BuyIn,
				Final:    final,
				Net:      wallet.Balance(a.id) - cfg.BuyIn,
				Stats:    s.agentStats(a.id),
			})
		}
	}
	slices.SortFunc(result.Agents, func(a, b AgentResult) int {
		return cmp.Or(cmp.Compare(b.Net, a.Net), cmp.Compare(a.AgentID, b.AgentID))
	})

	s.mu.Lock()
	result.Hands = s.hands
	s.mu.Unlock()

	stop()
	if err := <-mgrErr; err != nil {
		return nil, err
	}
	s.logger.Info("Simulation complete", "tables", result.Tables, "hands", result.Hands, "rake", result.Rake)
	return result, nil
}

// playTable deals hands until the table's quota is reached or it breaks.
func (s *Simulator) playTable(ctx context.Context, r *session.TableRunner, seated []seatedAgent) error {
	agents := make(map[string]bot.Agent, len(seated))
	for _, a := range seated {
		agents[a.id] = a.agent
	}
	logger := s.logger.With("table", r.ID())

	for n := range s.config.HandsPerTable {
		if err := s.playHand(ctx, r, agents); err != nil {
			if errors.Is(err, game.ErrState) {
				logger.Info("Table broke", "hands", n, "reason", err)
				return nil
			}
			return fmt.Errorf("%s hand %d: %w", r.ID(), n+1, err)
		}
		audit, err := r.Audit(ctx)
		if err != nil {
			return err
		}
		if audit.Err != nil {
			return fmt.Errorf("%s hand %d: %w", r.ID(), n+1, audit.Err)
		}
	}
	return nil
}

// playHand plays one hand under the per-hand timeout.
func (s *Simulator) playHand(ctx context.Context, r *session.TableRunner, agents map[string]bot.Agent) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.HandTimeout)
	defer cancel()
	_, err := bot.PlayHand(ctx, r, agents)
	return err
}

// observe runs on the table loop for every settled hand.
func (s *Simulator) observe(tableID string, h *game.Hand) {
	showdown := h.Result != nil && len(h.Result.ShowdownHands) > 0
	s.mu.Lock()
	s.hands++
	for _, p := range h.Betting.Players {
		if p == nil {
			continue
		}
		st, ok := s.stats[p.AgentID]
		if !ok {
			st = &statistics.Statistics{}
			s.stats[p.AgentID] = st
		}
		st.Add(statistics.HandResult{
			Net:      h.Result.Won(p.Seat) - p.TotalBetThisHand,
			BigBlind: h.Betting.BigBlind,
			Showdown: showdown,
			Pot:      h.Pot,
		})
	}
	s.mu.Unlock()

	if s.config.OnHand != nil {
		s.config.OnHand(tableID, h)
	}
}

func (s *Simulator) agentStats(agentID string) *statistics.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stats[agentID]; ok {
		return st
	}
	return &statistics.Statistics{}
}
