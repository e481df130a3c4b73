package simulator

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/internal/handhistory"
)

func testConfig() Config {
	return Config{
		Tables:        2,
		HandsPerTable: 40,
		Seats:         4,
		Seed:          12345,
		BuyIn:         500,
		Table: game.TableConfig{
			SmallBlind: 5,
			BigBlind:   10,
			MinBuyIn:   100,
			MaxBuyIn:   1000,
			MaxPlayers: 6,
		},
		Rake:        game.DefaultRakeConfig(),
		HandTimeout: 5 * time.Second,
		Logger:      log.New(io.Discard),
	}
}

func TestRunConservesChips(t *testing.T) {
	t.Parallel()
	for _, sidePots := range []bool{false, true} {
		cfg := testConfig()
		cfg.SidePots = sidePots
		res, err := New(cfg).Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, res.Tables)
		assert.Positive(t, res.Hands)
		assert.LessOrEqual(t, res.Hands, 80)
		require.Len(t, res.Agents, 8)

		total := res.Rake
		for _, a := range res.Agents {
			assert.Equal(t, a.Final-a.BuyIn, a.Net)
			total += a.Net
			require.NoError(t, a.Stats.Validate())
			assert.Equal(t, a.Net, a.Stats.NetChips, a.AgentID)
		}
		assert.Zero(t, total, "net results plus rake must cancel out")

		for i := 1; i < len(res.Agents); i++ {
			assert.GreaterOrEqual(t, res.Agents[i-1].Net, res.Agents[i].Net)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()
	a, err := New(testConfig()).Run(context.Background())
	require.NoError(t, err)
	b, err := New(testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Hands, b.Hands)
	assert.Equal(t, a.Rake, b.Rake)
	require.Len(t, b.Agents, len(a.Agents))
	for i := range a.Agents {
		assert.Equal(t, a.Agents[i].AgentID, b.Agents[i].AgentID)
		assert.Equal(t, a.Agents[i].Net, b.Agents[i].Net)
	}
}

func TestRunRecordsEveryHand(t *testing.T) {
	t.Parallel()
	var (
		mu      sync.Mutex
		records []handhistory.Record
	)
	cfg := testConfig()
	cfg.OnHand = func(tableID string, h *game.Hand) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, handhistory.FromHand(tableID, h))
	}
	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, records, res.Hands)
	for _, rec := range records {
		assert.Equal(t, handhistory.StatusCompleted, rec.Status)
		require.NoError(t, handhistory.CheckSequence(rec.Events), rec.HandID)
	}
}

func TestFoldersLoseToCallers(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Tables = 1
	cfg.Seats = 2
	cfg.HandsPerTable = 200
	cfg.Bots = []string{"fold", "call"}
	cfg.Rake = game.NoRake()
	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	byStrategy := make(map[string]AgentResult)
	for _, a := range res.Agents {
		byStrategy[a.Strategy] = a
	}
	assert.Negative(t, byStrategy["fold"].Net)
	assert.Equal(t, -byStrategy["fold"].Net, byStrategy["call"].Net)

	stats := res.StrategyStats()
	assert.Less(t, stats["fold"].Mean(), 0.0)
	assert.Equal(t, res.Hands, stats["call"].Hands)
}

func TestRunRejectsBadSeats(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Seats = 9
	_, err := New(cfg).Run(context.Background())
	require.ErrorIs(t, err, game.ErrValidation)

	cfg = testConfig()
	cfg.Bots = []string{"shark"}
	_, err = New(cfg).Run(context.Background())
	require.Error(t, err)
}
