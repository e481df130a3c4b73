package game

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/siliconcasino/internal/gameid"
	"github.com/lox/siliconcasino/internal/randutil"
)

// EngineOption configures an Engine during creation.
type EngineOption func(*engineConfig)

type engineConfig struct {
	rng         *rand.Rand
	seed        *int64
	rake        RakeConfig
	clock       quartz.Clock
	logger      *log.Logger
	sidePots    bool
	subscribers []EventSubscriber
	newHandID   func() string
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		rake:      DefaultRakeConfig(),
		clock:     quartz.NewReal(),
		logger:    log.Default(),
		newHandID: gameid.Generate,
	}
}

// WithSeed makes every deck the engine shuffles reproducible. The seed is
// applied once; successive hands draw successive shuffles from it.
func WithSeed(seed int64) EngineOption {
	return func(c *engineConfig) {
		c.seed = &seed
		c.rng = nil
	}
}

// WithRNG supplies the random source used to shuffle decks.
func WithRNG(rng *rand.Rand) EngineOption {
	return func(c *engineConfig) {
		c.rng = rng
		c.seed = nil
	}
}

// WithRake sets the rake schedule. Default is DefaultRakeConfig.
func WithRake(rake RakeConfig) EngineOption {
	return func(c *engineConfig) {
		c.rake = rake
	}
}

// WithClock sets the clock used for event and hand timestamps.
func WithClock(clock quartz.Clock) EngineOption {
	return func(c *engineConfig) {
		c.clock = clock
	}
}

// WithLogger sets the logger. The engine logs at debug level.
func WithLogger(logger *log.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithSidePots settles all-in hands with a main pot and side pots instead
// of a single pot contested by every remaining seat.
func WithSidePots(enabled bool) EngineOption {
	return func(c *engineConfig) {
		c.sidePots = enabled
	}
}

// WithEventSubscriber registers a subscriber for every recorded event.
func WithEventSubscriber(sub EventSubscriber) EngineOption {
	return func(c *engineConfig) {
		c.subscribers = append(c.subscribers, sub)
	}
}

// WithHandIDGenerator overrides the hand ID generator (sortable base32 UUIDv7s by default).
func WithHandIDGenerator(gen func() string) EngineOption {
	return func(c *engineConfig) {
		c.newHandID = gen
	}
}

// resolveRNG returns the configured source and the seed it was built from,
// or 0 when an explicit RNG was supplied.
func (c *engineConfig) resolveRNG() (*rand.Rand, int64) {
	if c.rng != nil {
		return c.rng, 0
	}
	return randutil.NewOptional(c.seed)
}
