package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/siliconcasino/internal/config"
	"github.com/lox/siliconcasino/internal/feed"
	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/internal/handhistory"
)

func testConfig(t *testing.T, historyPath string) *config.Config {
	t.Helper()
	src := fmt.Sprintf(`
server {
  hand_interval = "5ms"
  seed          = 7
}

history {
  path = %q
}

table "main" {
  small_blind = 5
  big_blind   = 10
}

table "side" {
  small_blind = 1
  big_blind   = 2
  max_players = 2
}

bot "a" {
  strategy = "call"
}

bot "b" {
  strategy = "aggro"
}

bot "c" {
  strategy = "tight"
  tables   = ["main"]
}
`, historyPath)
	cfg, err := config.Parse([]byte(src), "casino.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestCasinoPlaysTablesAndServesState(t *testing.T) {
	t.Parallel()

	historyPath := filepath.Join(t.TempDir(), "hands.jsonl")
	cfg := testConfig(t, historyPath)
	cas, err := newCasino(cfg, 7, quartz.NewReal(), log.New(io.Discard))
	require.NoError(t, err)

	srv := httptest.NewServer(cas.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?table=main"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- cas.Run(ctx) }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg feed.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, feed.MessageTypeEvent, msg.Type)
	assert.Equal(t, "main", msg.TableID)
	assert.NotEmpty(t, msg.Event.HandID)

	require.Eventually(t, func() bool {
		return getJSON(t, srv.URL+"/tables/side/hands/last", nil) == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	var last handhistory.Record
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tables/main/hands/last", &last))
	assert.Equal(t, "main", last.TableID)
	assert.Equal(t, handhistory.StatusCompleted, last.Status)
	for _, p := range last.Players {
		assert.Empty(t, p.HoleCards)
	}

	resp, err := http.Get(srv.URL + "/tables/main/hands/last.phh")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `variant = "NT"`)
	assert.Contains(t, string(body), `table = "main"`)

	var tables []game.TableSnapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tables", &tables))
	require.Len(t, tables, 2)
	assert.Equal(t, "main", tables[0].ID)
	assert.Equal(t, "side", tables[1].ID)

	var mainTable game.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/tables/main", &mainTable))
	assert.Equal(t, "a@main", mainTable.Table.Seats[0].AgentID)
	assert.Equal(t, "c@main", mainTable.Table.Seats[2].AgentID)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/tables/nope", nil))

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("casino did not stop")
	}

	f, err := os.Open(historyPath)
	require.NoError(t, err)
	defer f.Close()

	records := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec handhistory.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		assert.Contains(t, []string{"main", "side"}, rec.TableID)
		require.NoError(t, handhistory.CheckSequence(rec.Events))
		records++
	}
	require.NoError(t, scanner.Err())
	assert.Greater(t, records, 1)
}

func TestCasinoRejectsUnknownSpectatorTable(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, filepath.Join(t.TempDir(), "hands.jsonl"))
	cas, err := newCasino(cfg, 1, quartz.NewReal(), log.New(io.Discard))
	require.NoError(t, err)
	defer cas.history.Close()

	srv := httptest.NewServer(cas.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?table=nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseCardArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"AhKd", "AhKd", false},
		{"Qh Jh Th", "QhJhTh", false},
		{"2c,3c,4c,5c", "2c3c4c5c", false},
		{"Zz", "", true},
		{"Ah K", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			cards, err := parseCardArg(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var got strings.Builder
			for _, c := range cards {
				got.WriteString(c.String())
			}
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	logger, err := setupLogger("warn", false)
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger, err = setupLogger("warn", true)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	_, err = setupLogger("loud", false)
	require.Error(t, err)
}
