package game

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

func testConfig() TableConfig {
	return TableConfig{
		ID:         "t1",
		Name:       "Test Table",
		SmallBlind: 5,
		BigBlind:   10,
		MinBuyIn:   100,
		MaxBuyIn:   1000,
		MaxPlayers: 6,
	}
}

func newTestEngine(t *testing.T, cfg TableConfig, opts ...EngineOption) *Engine {
	t.Helper()
	handN := 0
	base := []EngineOption{
		WithSeed(42),
		WithLogger(log.New(io.Discard)),
		WithClock(quartz.NewMock(t)),
		WithHandIDGenerator(func() string {
			handN++
			return fmt.Sprintf("hand-%d", handN)
		}),
	}
	e, err := NewEngine(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// seatPlayers seats agents p0, p1, ... in seats 0, 1, ... with the given
// stacks.
func seatPlayers(t *testing.T, e *Engine, stacks ...int) []string {
	t.Helper()
	agents := make([]string, len(stacks))
	for i, stack := range stacks {
		agents[i] = fmt.Sprintf("p%d", i)
		require.NoError(t, e.SeatPlayer(agents[i], i, stack))
	}
	return agents
}

func agentOnTurn(t *testing.T, e *Engine) string {
	t.Helper()
	h := e.CurrentHand()
	require.NotNil(t, h, "no hand in progress")
	seat := e.Table().Seat(h.Betting.ActionOn)
	require.NotNil(t, seat, "action on invalid seat %d", h.Betting.ActionOn)
	return seat.AgentID
}

func act(t *testing.T, e *Engine, action ActionType, amount int) bool {
	t.Helper()
	agent := agentOnTurn(t, e)
	continues, err := e.ProcessAction(agent, action, amount)
	require.NoError(t, err, "%s %s %d", agent, action, amount)
	return continues
}

func stackOf(e *Engine, agentID string) int {
	return e.Table().SeatByAgent(agentID).Stack
}

// recorder collects events delivered to a subscriber.
type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(_ string, e Event) { r.events = append(r.events, e) }
