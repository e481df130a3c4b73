package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/siliconcasino/internal/display"
	"github.com/lox/siliconcasino/internal/fileutil"
	"github.com/lox/siliconcasino/internal/game"
	"github.com/lox/siliconcasino/internal/handhistory"
	"github.com/lox/siliconcasino/internal/phh"
	"github.com/lox/siliconcasino/internal/randutil"
	"github.com/lox/siliconcasino/internal/session"
	"github.com/lox/siliconcasino/internal/simulator"
)

// SimulateCmd runs an offline simulation on concurrent tables.
type SimulateCmd struct {
	Tables     int      `kong:"default='4',help='Number of concurrent tables'"`
	Hands      int      `kong:"default='1000',help='Hands to play per table'"`
	Seats      int      `kong:"default='6',help='Bots per table'"`
	Bots       []string `kong:"help='Strategy rotation (call, fold, random, aggro, tight)'"`
	Seed       *int64   `kong:"help='Deterministic RNG seed (optional)'"`
	SmallBlind int      `kong:"default='5',help='Small blind amount'"`
	BigBlind   int      `kong:"default='10',help='Big blind amount'"`
	BuyIn      int      `kong:"default='1000',help='Chips each bot buys in for'"`
	NoRake     bool     `kong:"help='Disable rake'"`
	SidePots   bool     `kong:"help='Split all-in pots into side pots'"`
	History    string   `kong:"help='Append hand records to this JSON lines file'"`
	HoleCards  bool     `kong:"help='Include hole cards in hand records'"`
	PHHDir     string   `kong:"name='phh-dir',help='Write every hand as a PHH file in this directory'"`
	Report     string   `kong:"help='Write results as JSON to this file'"`
	Color      bool     `kong:"default='true',negatable,help='Colorize output'"`
	Debug      bool     `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger, err := setupLogger("", c.Debug)
	if err != nil {
		return err
	}
	ctx := setupSignalHandler(logger)

	_, seed := randutil.NewOptional(c.Seed)
	logger.Info("Using seed", "seed", seed)

	rake := game.DefaultRakeConfig()
	if c.NoRake {
		rake = game.NoRake()
	}

	cfg := simulator.Config{
		Tables:        c.Tables,
		HandsPerTable: c.Hands,
		Seats:         c.Seats,
		Bots:          c.Bots,
		Seed:          seed,
		BuyIn:         c.BuyIn,
		Table: game.TableConfig{
			SmallBlind: c.SmallBlind,
			BigBlind:   c.BigBlind,
			MinBuyIn:   c.BigBlind * 20,
			MaxBuyIn:   max(c.BigBlind*200, c.BuyIn),
			MaxPlayers: max(c.Seats, game.MinPlayers),
		},
		Rake:     rake,
		SidePots: c.SidePots,
		Logger:   logger,
	}

	var history *handhistory.Writer
	if c.History != "" {
		history, err = handhistory.NewWriter(handhistory.WriterConfig{
			Path:             c.History,
			Buffer:           4096,
			IncludeHoleCards: c.HoleCards,
		}, logger)
		if err != nil {
			return err
		}
		cfg.OnHand = history.Observe
	}

	if c.PHHDir != "" {
		cfg.OnHand = chainHandCallbacks(cfg.OnHand, c.exportPHH(logger, cfg.Table.MaxPlayers))
	}

	start := time.Now()
	res, runErr := simulator.New(cfg).Run(ctx)

	if history != nil {
		if err := history.Close(); err != nil {
			logger.Error("Failed to close hand history", "error", err)
		}
		logger.Info("Hand history written", "path", c.History, "records", history.Written(), "dropped", history.Dropped())
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("Simulation finished", "hands", res.Hands, "duration", time.Since(start).Round(time.Millisecond))

	display.NewPrinter(os.Stdout, c.Color).Simulation(res)

	if c.Report != "" {
		if err := fileutil.WriteJSON(c.Report, res); err != nil {
			return err
		}
		logger.Info("Report written", "path", c.Report)
	}
	return nil
}

// exportPHH returns a callback writing each hand to PHHDir.
func (c *SimulateCmd) exportPHH(logger *log.Logger, seatCount int) session.HandCompleteFunc {
	return func(tableID string, h *game.Hand) {
		hh, err := phh.FromHand(tableID, h, phh.Options{SeatCount: seatCount, HoleCards: c.HoleCards})
		if err != nil {
			logger.Error("Failed to convert hand", "table", tableID, "hand", h.Number, "error", err)
			return
		}
		data, err := phh.EncodeToBytes(hh)
		if err != nil {
			logger.Error("Failed to encode hand", "table", tableID, "hand", h.Number, "error", err)
			return
		}
		path := filepath.Join(c.PHHDir, fmt.Sprintf("%s-%06d.phh", tableID, h.Number))
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			logger.Error("Failed to write hand", "path", path, "error", err)
		}
	}
}

func chainHandCallbacks(fns ...session.HandCompleteFunc) session.HandCompleteFunc {
	return func(tableID string, h *game.Hand) {
		for _, fn := range fns {
			if fn != nil {
				fn(tableID, h)
			}
		}
	}
}
