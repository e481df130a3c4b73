package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/siliconcasino/internal/game"
)

const sample = `
server {
  address       = "0.0.0.0:9000"
  log_level     = "debug"
  hand_interval = "250ms"
  seed          = 42
  side_pots     = true
}

rake {
  percentage = 0.1
  cap        = 30
  threshold  = 50
}

history {
  path               = "hands/hands.jsonl"
  include_hole_cards = true
}

table "main" {
  small_blind = 5
  big_blind   = 10
  min_buy_in  = 200
  max_buy_in  = 1000
  max_players = 6
}

table "high" {
  name        = "High Stakes"
  small_blind = 50
  big_blind   = 100
}

bot "alice" {
  strategy = "tight"
  tables   = ["main"]
  buy_in   = 500
}

bot "bob" {
  strategy = "random"
}
`

func TestParse(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.HandInterval())
	assert.Equal(t, int64(42), cfg.Server.Seed)
	assert.True(t, cfg.Server.SidePots)

	assert.Equal(t, game.RakeConfig{Percentage: 0.1, Cap: 30, Threshold: 50}, cfg.RakeConfig())

	require.NotNil(t, cfg.History)
	assert.Equal(t, "hands/hands.jsonl", cfg.History.Path)
	assert.Equal(t, 5*time.Second, cfg.History.FlushPeriod())
	assert.True(t, cfg.History.IncludeHoleCards)

	tables := cfg.TableConfigs()
	require.Len(t, tables, 2)
	assert.Equal(t, game.TableConfig{ID: "main", Name: "main", SmallBlind: 5, BigBlind: 10, MinBuyIn: 200, MaxBuyIn: 1000, MaxPlayers: 6}, tables[0])
	assert.Equal(t, game.TableConfig{ID: "high", Name: "High Stakes", SmallBlind: 50, BigBlind: 100, MinBuyIn: 2000, MaxBuyIn: 20000, MaxPlayers: 6}, tables[1])

	mainBots := cfg.BotsFor("main")
	require.Len(t, mainBots, 2)
	assert.Equal(t, "alice", mainBots[0].Name)
	high := cfg.BotsFor("high")
	require.Len(t, high, 1)
	assert.Equal(t, "bob", high[0].Name)
	assert.Equal(t, 20000, high[0].BuyInFor(*cfg.Table("high")))
	assert.Nil(t, cfg.Table("missing"))
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, time.Second, cfg.HandInterval())
	assert.Equal(t, game.DefaultRakeConfig(), cfg.RakeConfig())
	assert.Nil(t, cfg.History)
	require.Len(t, cfg.Tables, 1)
	assert.Len(t, cfg.BotsFor("main"), 4)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "casino.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Tables, 2)

	require.NoError(t, os.WriteFile(path, []byte(`table "x" {`), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no tables", `server {}`, "at least one table"},
		{"bad interval", `
server { hand_interval = "soon" }
table "t" {
  small_blind = 1
  big_blind   = 2
}`, "hand_interval"},
		{"zero interval", `
server { hand_interval = "0s" }
table "t" {
  small_blind = 1
  big_blind   = 2
}`, "must be positive"},
		{"bad blinds", `
table "t" {
  small_blind = 10
  big_blind   = 5
}`, "table t"},
		{"duplicate table", `
table "t" {
  small_blind = 1
  big_blind   = 2
}
table "t" {
  small_blind = 1
  big_blind   = 2
}`, "more than once"},
		{"bad rake", `
rake { percentage = 2 }
table "t" {
  small_blind = 1
  big_blind   = 2
}`, "rake"},
		{"unknown strategy", `
table "t" {
  small_blind = 1
  big_blind   = 2
}
bot "b" { strategy = "shark" }`, "bot b"},
		{"unknown bot table", `
table "t" {
  small_blind = 1
  big_blind   = 2
}
bot "b" {
  strategy = "call"
  tables   = ["nope"]
}`, "unknown table nope"},
		{"bot buy-in out of range", `
table "t" {
  small_blind = 1
  big_blind   = 2
}
bot "b" {
  strategy = "call"
  buy_in   = 1
}`, "buy-in 1"},
		{"history without path", `
history { path = "" }
table "t" {
  small_blind = 1
  big_blind   = 2
}`, "history"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse([]byte(tt.src), tt.name+".hcl")
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
