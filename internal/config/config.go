// Package config loads the casino's HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/siliconcasino/internal/bot"
	"github.com/lox/siliconcasino/internal/game"
)

// Config is the complete configuration.
type Config struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Rake    *RakeSettings    `hcl:"rake,block"`
	History *HistorySettings `hcl:"history,block"`
	Tables  []TableSettings  `hcl:"table,block"`
	Bots    []BotSettings    `hcl:"bot,block"`
}

// ServerSettings contains process-level settings.
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	HandInterval string `hcl:"hand_interval,optional"`
	Seed         int64  `hcl:"seed,optional"`
	SidePots     bool   `hcl:"side_pots,optional"`
}

// RakeSettings mirrors game.RakeConfig.
type RakeSettings struct {
	Percentage float64 `hcl:"percentage,optional"`
	Cap        int     `hcl:"cap,optional"`
	Threshold  int     `hcl:"threshold,optional"`
}

// HistorySettings controls the hand-history writer.
type HistorySettings struct {
	Path             string `hcl:"path"`
	FlushInterval    string `hcl:"flush_interval,optional"`
	IncludeHoleCards bool   `hcl:"include_hole_cards,optional"`
}

// TableSettings defines one table. The label is the table ID.
type TableSettings struct {
	ID         string `hcl:"id,label"`
	Name       string `hcl:"name,optional"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
	MinBuyIn   int    `hcl:"min_buy_in,optional"`
	MaxBuyIn   int    `hcl:"max_buy_in,optional"`
	MaxPlayers int    `hcl:"max_players,optional"`
}

// BotSettings seats a bot at tables. With no tables listed the bot sits
// at every table.
type BotSettings struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy"`
	Tables   []string `hcl:"tables,optional"`
	BuyIn    int      `hcl:"buy_in,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Tables: []TableSettings{{ID: "main", SmallBlind: 5, BigBlind: 10}},
		Bots: []BotSettings{
			{Name: "tight", Strategy: "tight"},
			{Name: "random", Strategy: "random"},
			{Name: "aggro", Strategy: "aggro"},
			{Name: "call", Strategy: "call"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads an HCL file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.HandInterval == "" {
		c.Server.HandInterval = "1s"
	}
	if c.Rake == nil {
		d := game.DefaultRakeConfig()
		c.Rake = &RakeSettings{Percentage: d.Percentage, Cap: d.Cap, Threshold: d.Threshold}
	}
	if c.Rake.Cap == 0 {
		c.Rake.Cap = game.DefaultRakeConfig().Cap
	}
	if c.History != nil && c.History.FlushInterval == "" {
		c.History.FlushInterval = "5s"
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Name == "" {
			t.Name = t.ID
		}
		if t.MaxPlayers == 0 {
			t.MaxPlayers = 6
		}
		if t.MinBuyIn == 0 {
			t.MinBuyIn = t.BigBlind * 20
		}
		if t.MaxBuyIn == 0 {
			t.MaxBuyIn = t.BigBlind * 200
		}
	}

	for i := range c.Bots {
		b := &c.Bots[i]
		if len(b.Tables) == 0 {
			for _, t := range c.Tables {
				b.Tables = append(b.Tables, t.ID)
			}
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Tables) == 0 {
		return errors.New("at least one table must be configured")
	}
	if d, err := time.ParseDuration(c.Server.HandInterval); err != nil {
		return fmt.Errorf("server: invalid hand_interval: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("server: hand_interval must be positive, got %s", d)
	}
	if err := c.RakeConfig().Validate(); err != nil {
		return fmt.Errorf("rake: %w", err)
	}
	if c.History != nil {
		if c.History.Path == "" {
			return errors.New("history: path is required")
		}
		if _, err := time.ParseDuration(c.History.FlushInterval); err != nil {
			return fmt.Errorf("history: invalid flush_interval: %w", err)
		}
	}

	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if seen[t.ID] {
			return fmt.Errorf("table %s: defined more than once", t.ID)
		}
		seen[t.ID] = true
		if err := t.TableConfig().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.ID, err)
		}
	}

	for _, b := range c.Bots {
		if _, err := bot.New(b.Strategy, nil); err != nil {
			return fmt.Errorf("bot %s: %w", b.Name, err)
		}
		for _, id := range b.Tables {
			t := c.Table(id)
			if t == nil {
				return fmt.Errorf("bot %s: unknown table %s", b.Name, id)
			}
			if buyIn := b.BuyInFor(*t); buyIn < t.MinBuyIn || buyIn > t.MaxBuyIn {
				return fmt.Errorf("bot %s: buy-in %d outside table %s range [%d, %d]", b.Name, buyIn, id, t.MinBuyIn, t.MaxBuyIn)
			}
		}
	}
	return nil
}

// Table returns the table with the given ID, or nil.
func (c *Config) Table(id string) *TableSettings {
	for i := range c.Tables {
		if c.Tables[i].ID == id {
			return &c.Tables[i]
		}
	}
	return nil
}

// TableConfigs converts every table block.
func (c *Config) TableConfigs() []game.TableConfig {
	out := make([]game.TableConfig, len(c.Tables))
	for i, t := range c.Tables {
		out[i] = t.TableConfig()
	}
	return out
}

// BotsFor returns the bots configured to sit at a table.
func (c *Config) BotsFor(tableID string) []BotSettings {
	var out []BotSettings
	for _, b := range c.Bots {
		for _, id := range b.Tables {
			if id == tableID {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// RakeConfig converts the rake block.
func (c *Config) RakeConfig() game.RakeConfig {
	if c.Rake == nil {
		return game.DefaultRakeConfig()
	}
	return game.RakeConfig{Percentage: c.Rake.Percentage, Cap: c.Rake.Cap, Threshold: c.Rake.Threshold}
}

// HandInterval is the pause between hands when serving.
func (c *Config) HandInterval() time.Duration {
	d, _ := time.ParseDuration(c.Server.HandInterval)
	return d
}

// FlushPeriod is the history writer's flush period.
func (h *HistorySettings) FlushPeriod() time.Duration {
	d, _ := time.ParseDuration(h.FlushInterval)
	return d
}

// TableConfig converts the block to an engine configuration.
func (t TableSettings) TableConfig() game.TableConfig {
	return game.TableConfig{
		ID:         t.ID,
		Name:       t.Name,
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
		MinBuyIn:   t.MinBuyIn,
		MaxBuyIn:   t.MaxBuyIn,
		MaxPlayers: t.MaxPlayers,
	}
}

// BuyInFor returns the bot's buy-in at t, defaulting to the table maximum.
func (b BotSettings) BuyInFor(t TableSettings) int {
	if b.BuyIn > 0 {
		return b.BuyIn
	}
	return t.MaxBuyIn
}
