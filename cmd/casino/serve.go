package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/siliconcasino/internal/config"
	"github.com/lox/siliconcasino/internal/randutil"
)

// ServeCmd runs the tables described by an HCL config file.
type ServeCmd struct {
	Config string `kong:"default='casino.hcl',help='HCL config file (defaults are used if missing)'"`
	Addr   string `kong:"help='Override the configured listen address'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}

	logger, err := setupLogger(cfg.Server.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	ctx := setupSignalHandler(logger)

	var seedPtr *int64
	if cfg.Server.Seed != 0 {
		seedPtr = &cfg.Server.Seed
	}
	_, seed := randutil.NewOptional(seedPtr)

	cas, err := newCasino(cfg, seed, quartz.NewReal(), logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           cas.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting casino",
		"address", cfg.Server.Address,
		"tables", len(cfg.Tables),
		"bots", len(cfg.Bots),
		"hand_interval", cfg.HandInterval(),
		"seed", seed)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cas.Run(gctx) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
