package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*TableConfig)
		valid  bool
	}{
		{"default", func(*TableConfig) {}, true},
		{"zero small blind", func(c *TableConfig) { c.SmallBlind = 0 }, false},
		{"small above big", func(c *TableConfig) { c.SmallBlind = 20 }, false},
		{"min above max buy-in", func(c *TableConfig) { c.MinBuyIn = 2000 }, false},
		{"one seat", func(c *TableConfig) { c.MaxPlayers = 1 }, false},
		{"eleven seats", func(c *TableConfig) { c.MaxPlayers = 11 }, false},
		{"ten seats", func(c *TableConfig) { c.MaxPlayers = 10 }, true},
		{"equal blinds", func(c *TableConfig) { c.SmallBlind = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func seatTable(stacks map[int]int) *Table {
	tbl := NewTable(testConfig())
	for n, stack := range stacks {
		tbl.Seats[n].AgentID = string(rune('a' + n))
		tbl.Seats[n].Status = SeatSeated
		tbl.Seats[n].Stack = stack
	}
	return tbl
}

func TestSeatReadiness(t *testing.T) {
	t.Parallel()

	tbl := seatTable(map[int]int{0: 100, 2: 0, 3: 100, 5: 100})
	tbl.Seats[5].SittingOut = true

	assert.Equal(t, []int{0, 3}, tbl.ReadySeats())
	assert.Equal(t, []int{0, 2, 3, 5}, tbl.OccupiedSeats())
	assert.False(t, tbl.Seats[1].IsOccupied())
	assert.Equal(t, 3, tbl.SeatByAgent("d").Number)
	assert.Nil(t, tbl.SeatByAgent("z"))
	assert.Nil(t, tbl.SeatByAgent(""))
	assert.Equal(t, 300, tbl.TotalChips())
}

func TestAdvanceButton(t *testing.T) {
	t.Parallel()

	tbl := seatTable(map[int]int{1: 100, 3: 100, 4: 100})

	assert.Equal(t, 1, tbl.AdvanceButton(), "button not on a ready seat moves to the lowest")
	assert.Equal(t, 3, tbl.AdvanceButton())
	assert.Equal(t, 4, tbl.AdvanceButton())
	assert.Equal(t, 1, tbl.AdvanceButton(), "wraps")

	tbl.Seats[3].SittingOut = true
	assert.Equal(t, 4, tbl.AdvanceButton(), "skips seats that are not ready")
}

func TestBlindPositions(t *testing.T) {
	t.Parallel()

	t.Run("heads-up button posts small blind", func(t *testing.T) {
		tbl := seatTable(map[int]int{0: 100, 1: 100})
		tbl.ButtonPosition = 1

		sb, bb, err := tbl.BlindPositions()
		require.NoError(t, err)
		assert.Equal(t, 1, sb)
		assert.Equal(t, 0, bb)

		first, err := tbl.FirstToActPreflop()
		require.NoError(t, err)
		assert.Equal(t, 1, first, "button acts first preflop heads-up")

		post, err := tbl.FirstToActPostflop()
		require.NoError(t, err)
		assert.Equal(t, 0, post)
	})

	t.Run("three handed", func(t *testing.T) {
		tbl := seatTable(map[int]int{0: 100, 2: 100, 5: 100})
		tbl.ButtonPosition = 5

		sb, bb, err := tbl.BlindPositions()
		require.NoError(t, err)
		assert.Equal(t, 0, sb)
		assert.Equal(t, 2, bb)

		first, err := tbl.FirstToActPreflop()
		require.NoError(t, err)
		assert.Equal(t, 5, first)

		post, err := tbl.FirstToActPostflop()
		require.NoError(t, err)
		assert.Equal(t, 0, post)
	})

	t.Run("not enough players", func(t *testing.T) {
		tbl := seatTable(map[int]int{0: 100})
		_, _, err := tbl.BlindPositions()
		assert.ErrorIs(t, err, ErrState)
		_, err = tbl.FirstToActPreflop()
		assert.ErrorIs(t, err, ErrState)
	})
}
