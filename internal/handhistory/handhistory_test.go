package handhistory

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/siliconcasino/internal/game"
)

func newEngine(t *testing.T) *game.Engine {
	t.Helper()
	e, err := game.NewEngine(game.TableConfig{
		ID:         "t1",
		SmallBlind: 5,
		BigBlind:   10,
		MinBuyIn:   100,
		MaxBuyIn:   1000,
		MaxPlayers: 4,
	}, game.WithSeed(5), game.WithLogger(log.New(io.Discard)), game.WithClock(quartz.NewMock(t)))
	require.NoError(t, err)
	require.NoError(t, e.SeatPlayer("alice", 0, 500))
	require.NoError(t, e.SeatPlayer("bob", 1, 500))
	return e
}

// checkDown plays the current hand to showdown by checking or calling.
func checkDown(t *testing.T, e *game.Engine) {
	t.Helper()
	for e.CurrentHand() != nil {
		h := e.CurrentHand()
		agent := e.Table().Seat(h.Betting.ActionOn).AgentID
		action := game.Check
		if slices.Contains(e.ValidActions(agent), game.Call) {
			action = game.Call
		}
		_, err := e.ProcessAction(agent, action, 0)
		require.NoError(t, err)
	}
}

func TestFromCompletedHand(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	_, err := e.StartHand()
	require.NoError(t, err)
	checkDown(t, e)
	h := e.LastHand()
	require.NotNil(t, h)

	rec := FromHand("t1", h)
	assert.Equal(t, h.ID, rec.HandID)
	assert.Equal(t, "t1", rec.TableID)
	assert.Equal(t, 1, rec.HandNumber)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Len(t, rec.CommunityCards, 10)
	assert.Equal(t, 20, rec.TotalPot)
	assert.Equal(t, h.RakeCollected, rec.Rake)
	require.NotNil(t, rec.EndedAt)
	require.NotEmpty(t, rec.Winners)
	require.NoError(t, CheckSequence(rec.Events))
	assert.Equal(t, game.EventHandEnd, rec.Events[len(rec.Events)-1].Type)

	require.Len(t, rec.Players, 2)
	won := 0
	for _, p := range rec.Players {
		assert.Len(t, p.HoleCards, 4)
		won += p.Won
	}
	assert.Equal(t, rec.TotalPot-rec.Rake, won)

	public := rec.WithoutHoleCards()
	for _, p := range public.Players {
		assert.Empty(t, p.HoleCards)
	}
	assert.NotEmpty(t, rec.Players[0].HoleCards, "WithoutHoleCards must not mutate the receiver")
}

func TestFromHandInProgress(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	h, err := e.StartHand()
	require.NoError(t, err)

	rec := FromHand("t1", h)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Nil(t, rec.EndedAt)
	assert.Empty(t, rec.CommunityCards)
	assert.Empty(t, rec.Winners)
	assert.Equal(t, 15, rec.TotalPot)
}

func TestCheckSequence(t *testing.T) {
	t.Parallel()
	ev := func(hand string, seq int) game.Event {
		return game.Event{HandID: hand, Sequence: seq}
	}
	tests := []struct {
		name   string
		events []game.Event
		want   error
	}{
		{name: "empty"},
		{name: "contiguous", events: []game.Event{ev("a", 1), ev("a", 2), ev("a", 3)}},
		{name: "interleaved hands", events: []game.Event{ev("a", 1), ev("b", 1), ev("a", 2), ev("b", 2)}},
		{name: "gap", events: []game.Event{ev("a", 1), ev("a", 3)}, want: ErrSequenceGap},
		{name: "missing start", events: []game.Event{ev("a", 2)}, want: ErrSequenceGap},
		{name: "duplicate", events: []game.Event{ev("a", 1), ev("a", 2), ev("a", 2)}, want: ErrSequenceDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckSequence(tt.events)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestWriterWritesJSONLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "hands.jsonl")
	w, err := NewWriter(WriterConfig{Path: path, Clock: quartz.NewMock(t)}, log.New(io.Discard))
	require.NoError(t, err)

	e := newEngine(t)
	for range 3 {
		_, err := e.StartHand()
		require.NoError(t, err)
		checkDown(t, e)
		w.Observe("t1", e.LastHand())
	}
	require.NoError(t, w.Flush())

	recs := readRecords(t, path)
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, i+1, rec.HandNumber)
		assert.Equal(t, StatusCompleted, rec.Status)
		for _, p := range rec.Players {
			assert.Empty(t, p.HoleCards)
		}
		assert.NoError(t, CheckSequence(rec.Events))
	}

	require.NoError(t, w.Close())
	assert.Equal(t, uint64(3), w.Written())
	assert.ErrorIs(t, w.Flush(), ErrWriterClosed)
	assert.False(t, w.Write(Record{HandID: "late"}))
	require.NoError(t, w.Close())
}

func TestWriterKeepsHoleCardsWhenAsked(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hands.jsonl")
	w, err := NewWriter(WriterConfig{Path: path, IncludeHoleCards: true, Clock: quartz.NewMock(t)}, log.New(io.Discard))
	require.NoError(t, err)

	e := newEngine(t)
	_, err = e.StartHand()
	require.NoError(t, err)
	checkDown(t, e)
	w.Observe("t1", e.LastHand())
	require.NoError(t, w.Close())

	recs := readRecords(t, path)
	require.Len(t, recs, 1)
	for _, p := range recs[0].Players {
		assert.Len(t, p.HoleCards, 4)
	}
}

func TestWriterFlushesOnTick(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)
	path := filepath.Join(t.TempDir(), "hands.jsonl")
	w, err := NewWriter(WriterConfig{Path: path, FlushInterval: time.Second, Clock: mock}, log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.True(t, w.Write(Record{HandID: "h1", TableID: "t1", Status: StatusCompleted}))
	require.Eventually(t, func() bool { return w.Written() == 1 }, time.Second, time.Millisecond)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "record should still be buffered")

	mock.Advance(time.Second).MustWait(ctx)
	require.Eventually(t, func() bool {
		info, err := os.Stat(path)
		return err == nil && info.Size() > 0
	}, time.Second, time.Millisecond)

	recs := readRecords(t, path)
	require.Len(t, recs, 1)
	assert.Equal(t, "h1", recs[0].HandID)
}

func TestWriterDropsWhenQueueFull(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hands.jsonl")
	w, err := NewWriter(WriterConfig{Path: path, Buffer: 1, Clock: quartz.NewMock(t)}, log.New(io.Discard))
	require.NoError(t, err)

	accepted := 0
	for range 1000 {
		if w.Write(Record{HandID: "h"}) {
			accepted++
		}
	}
	require.NoError(t, w.Close())
	assert.Equal(t, uint64(1000-accepted), w.Dropped())
	assert.Equal(t, uint64(accepted), w.Written())
}
