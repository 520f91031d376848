// Command commons runs the idle community simulation and its HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/commons/internal/api"
	"github.com/talgya/commons/internal/config"
	"github.com/talgya/commons/internal/engine"
	"github.com/talgya/commons/internal/entropy"
	"github.com/talgya/commons/internal/persistence"
)

func main() {
	cfgPath := flag.String("config", "commons.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Commons idle community simulation", "app_version", cfg.AppVersion, "schema", persistence.SchemaVersion)

	// ── Storage ───────────────────────────────────────────────────────
	var store persistence.Store
	if cfg.Storage.InMemory() {
		store = persistence.NewMemoryStore()
		slog.Warn("using in-memory store, progress will not survive a restart")
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			slog.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
		db, err := persistence.Open(cfg.Storage.Path)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		slog.Info("database opened", "path", cfg.Storage.Path)
	}

	clock := engine.RealClock{}
	coord := persistence.NewCoordinator(store, cfg.AppVersion, clock)
	coord.Key = cfg.Storage.Key

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Community ─────────────────────────────────────────────────────
	state, outcome, err := coord.Hydrate(ctx)
	if err != nil {
		slog.Error("load failed, starting fresh", "error", err)
	}
	slog.Info("community ready",
		"load", string(outcome),
		"scale", state.Scale.Label(),
		"status", string(state.Status),
		"stars", state.PrestigeStars,
	)

	var rng entropy.Source
	if cfg.Simulation.Seed != 0 {
		rng = entropy.NewSeeded(cfg.Simulation.Seed)
		slog.Info("event selection seeded", "seed", cfg.Simulation.Seed)
	} else {
		remote := entropy.NewRemote(cfg.Entropy.RandomOrgKey, cfg.Entropy.Batch)
		if remote == nil {
			slog.Info("RANDOM_ORG_KEY not set, using crypto/rand for events")
		} else {
			fillCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := remote.Fill(fillCtx); err != nil {
				slog.Warn("random.org warm-up failed, refilling in background", "error", err)
			}
			cancel()
		}
		rng = entropy.Choose(remote)
	}

	sim := engine.NewSimulation(state, clock, rng, coord)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("COMMONS_ADMIN_KEY not set, admin endpoints disabled")
	}
	hub := api.NewHub()
	apiServer := &api.Server{
		Sim:      sim,
		Port:     cfg.Server.Port,
		AdminKey: cfg.Server.AdminKey,
		Limiter:  api.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
		Hub:      hub,
	}

	loop := engine.NewLoop(sim)
	loop.Interval = cfg.Simulation.TickInterval
	loop.SaveEvery = cfg.Simulation.SaveInterval
	loop.OnTick = hub.Publish

	// ── Start ─────────────────────────────────────────────────────────
	fmt.Printf("\nThe commons is open: %s, %s.\n", state.Scale.Label(), state.Status)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	fmt.Println("Running... (Ctrl+C to stop)")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loop.Run(gctx) // saves on the way out
		return nil
	})
	g.Go(func() error {
		return apiServer.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		slog.Error("shutdown with error", "error", err)
	}

	fmt.Println("Simulation stopped. Community saved.")
}
