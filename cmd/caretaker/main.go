// Command caretaker tends a running commons while nobody is watching.
// It observes state through the API, picks safe actions with fixed rules,
// and applies them through the player endpoints.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/commons/internal/caretaker"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := envOrDefault("COMMONS_API_URL", "http://localhost:8080")
	intervalMin := envIntOrDefault("CARETAKER_INTERVAL", 30)
	interval := time.Duration(intervalMin) * time.Minute

	slog.Info("Commons caretaker starting", "api_url", apiURL, "interval", interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer := caretaker.NewObserver(apiURL)
	actor := caretaker.NewActor(apiURL)

	slog.Info("waiting for commons API...")
	if !waitForAPI(ctx, observer) {
		slog.Error("commons API did not become ready within 5 minutes")
		os.Exit(1)
	}

	runCycle(ctx, observer, actor)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, observer, actor)
		case <-ctx.Done():
			fmt.Println("Caretaker stopped.")
			return
		}
	}
}

func runCycle(ctx context.Context, observer *caretaker.Observer, actor *caretaker.Actor) {
	plan, applied, err := caretaker.Cycle(ctx, observer, actor)
	if err != nil {
		slog.Error("caretaker cycle failed", "error", err, "applied", applied)
		return
	}
	slog.Info("caretaker cycle complete", "level", plan.Level, "planned", len(plan.Steps), "applied", applied)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds, for at most five minutes.
func waitForAPI(ctx context.Context, o *caretaker.Observer) bool {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		if o.Ready(ctx) {
			slog.Info("commons API is ready")
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		slog.Info("commons not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
