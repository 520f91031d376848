package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/commons/internal/engine"
)

// Outcome describes what Hydrate found.
type Outcome string

const (
	OutcomeFresh     Outcome = "fresh"     // nothing saved
	OutcomeRestored  Outcome = "restored"  // save loaded
	OutcomeCorrupt   Outcome = "corrupt"   // unparseable, ignored
	OutcomeDiscarded Outcome = "discarded" // incompatible, deleted
)

// Coordinator moves a community between a Store and the engine.
type Coordinator struct {
	Store      Store
	Key        string
	AppVersion string
	Clock      engine.Clock
}

// NewCoordinator returns a coordinator for the default key.
func NewCoordinator(store Store, appVersion string, clock engine.Clock) *Coordinator {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &Coordinator{Store: store, Key: DefaultKey, AppVersion: appVersion, Clock: clock}
}

func (c *Coordinator) key() string {
	if c.Key == "" {
		return DefaultKey
	}
	return c.Key
}

// Hydrate restores the saved community, or defaults when there is nothing
// usable. A save from another app version or a newer schema is deleted. A
// restored community gets one catch-up tick for the time it was away,
// capped at engine.OfflineCap. The returned error reports store failures;
// the state is usable regardless.
func (c *Coordinator) Hydrate(ctx context.Context) (engine.State, Outcome, error) {
	now := c.Clock.Now()
	fresh := engine.DefaultState(now)

	raw, err := c.Store.Get(ctx, c.key())
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		return fresh, OutcomeFresh, nil
	}
	if err != nil {
		return fresh, OutcomeFresh, fmt.Errorf("load %q: %w", c.key(), err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		slog.Warn("ignoring unreadable save", "key", c.key(), "error", err)
		return fresh, OutcomeCorrupt, nil
	}

	if env.AppVersion != "" && env.AppVersion != c.AppVersion {
		slog.Info("discarding save from another app version", "saved", env.AppVersion, "running", c.AppVersion)
		return fresh, OutcomeDiscarded, c.discard(ctx)
	}
	if env.version() > SchemaVersion {
		slog.Info("discarding save from a newer schema", "saved", env.version(), "supported", SchemaVersion)
		return fresh, OutcomeDiscarded, c.discard(ctx)
	}

	s := decode(env, fresh)
	s.HasSeenCheckIn = true

	lastActive := s.LastActiveAt
	s, caught := engine.CatchUp(s, now)
	engine.LogResume(lastActive, caught)

	slog.Info("community restored",
		"scale", s.Scale.String(),
		"stars", s.PrestigeStars,
		"schema", env.version(),
		"legacy_runs", len(s.LegacyRuns),
	)
	return s, OutcomeRestored, nil
}

func (c *Coordinator) discard(ctx context.Context) error {
	if err := c.Store.Delete(ctx, c.key()); err != nil {
		return fmt.Errorf("delete %q: %w", c.key(), err)
	}
	return nil
}

// Persist writes the allow-listed fields of s in a single Set.
func (c *Coordinator) Persist(ctx context.Context, s engine.State) error {
	b, err := json.Marshal(encode(s, c.AppVersion))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := c.Store.Set(ctx, c.key(), string(b)); err != nil {
		return fmt.Errorf("save %q: %w", c.key(), err)
	}
	slog.Debug("community saved", "key", c.key(), "size", humanize.Bytes(uint64(len(b))))
	return nil
}

// Save implements engine.Saver.
func (c *Coordinator) Save(ctx context.Context, s engine.State) error {
	return c.Persist(ctx, s)
}

// Clear implements engine.Saver by deleting the saved community.
func (c *Coordinator) Clear(ctx context.Context) error {
	return c.discard(ctx)
}
