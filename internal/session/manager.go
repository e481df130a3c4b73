package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/siliconcasino/internal/game"
)

// Option configures a Manager.
type Option func(*Manager)

// WithWallet sets the bankroll consulted on join, leave and top-up. Without
// one, buy-ins are not funded from anywhere.
func WithWallet(w Wallet) Option {
	return func(m *Manager) { m.wallet = w }
}

// WithPublisher forwards every table's events to p. The manager runs p.
func WithPublisher(p *Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithEngineOptions applies opts to every engine the manager creates,
// before any per-table options.
func WithEngineOptions(opts ...game.EngineOption) Option {
	return func(m *Manager) { m.engineOpts = append(m.engineOpts, opts...) }
}

// WithHandComplete registers a callback for settled hands on any table.
func WithHandComplete(fn HandCompleteFunc) Option {
	return func(m *Manager) { m.onHand = fn }
}

// Manager is the registry of tables. Tables are independent; each runs
// its own loop once the manager is running.
type Manager struct {
	wallet     Wallet
	publisher  *Publisher
	logger     *log.Logger
	engineOpts []game.EngineOption
	onHand     HandCompleteFunc

	mu       sync.RWMutex
	tables   map[string]*TableRunner
	group    *errgroup.Group
	groupCtx context.Context
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger: log.Default(),
		tables: make(map[string]*TableRunner),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithPrefix("session")
	return m
}

// Create builds an engine for cfg and registers its table. If the manager
// is running the table loop starts immediately; otherwise it starts with
// Run.
func (m *Manager) Create(cfg game.TableConfig, opts ...game.EngineOption) (*TableRunner, error) {
	all := slices.Clone(m.engineOpts)
	all = append(all, game.WithLogger(m.logger.WithPrefix("game")))
	if m.publisher != nil {
		all = append(all, game.WithEventSubscriber(m.publisher))
	}
	all = append(all, opts...)

	engine, err := game.NewEngine(cfg, all...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[cfg.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, cfg.ID)
	}
	r := newTableRunner(engine, m.wallet, m.onHand, m.logger)
	m.tables[cfg.ID] = r
	if m.group != nil {
		m.start(r)
	}
	m.logger.Info("Table created", "table", cfg.ID, "blinds", fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind), "seed", engine.Seed())
	return r, nil
}

// Get returns the table with the given ID.
func (m *Manager) Get(id string) (*TableRunner, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.tables[id]
	return r, ok
}

// Delete stops a table's loop and removes it. Stacks left at the table are
// not returned to the wallet; callers should have agents leave first.
func (m *Manager) Delete(id string) (*TableRunner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tables[id]
	if !ok {
		return nil, false
	}
	delete(m.tables, id)
	if r.started {
		close(r.stop)
	} else {
		// Never ran, so nothing else will close done.
		r.started = true
		close(r.done)
	}
	m.logger.Info("Table deleted", "table", id)
	return r, true
}

// List returns the IDs of all tables, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Run runs every table loop, and the publisher if one was configured,
// until ctx is cancelled or a table fails. A table failure cancels the
// rest and is returned.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	m.mu.Lock()
	if m.group != nil {
		m.mu.Unlock()
		return errors.New("session: manager is already running")
	}
	m.group, m.groupCtx = g, gctx
	for _, r := range m.tables {
		m.start(r)
	}
	m.mu.Unlock()

	// Keeps the group alive while no tables exist.
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if m.publisher != nil {
		g.Go(func() error { return m.publisher.Run(gctx) })
	}

	err := g.Wait()

	m.mu.Lock()
	m.group, m.groupCtx = nil, nil
	m.mu.Unlock()
	return err
}

// start launches r's loop unless it has run before. Callers hold m.mu.
func (m *Manager) start(r *TableRunner) {
	if r.started {
		return
	}
	r.started = true
	ctx := m.groupCtx
	m.group.Go(func() error { return r.run(ctx) })
}
