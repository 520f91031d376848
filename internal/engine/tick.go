package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Loop drives a Simulation in real time: a tick every Interval with the
// measured elapsed time (capped at OfflineCap), an event check after each
// tick, and a save every SaveEvery and on shutdown.
type Loop struct {
	Sim       *Simulation
	Interval  time.Duration
	SaveEvery time.Duration

	// OnTick, if set, sees the state after each tick.
	OnTick func(State)
}

// NewLoop returns a loop with the default cadence.
func NewLoop(sim *Simulation) *Loop {
	return &Loop{Sim: sim, Interval: TickInterval, SaveEvery: SaveInterval}
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = TickInterval
	}
	saveEvery := l.SaveEvery
	if saveEvery <= 0 {
		saveEvery = SaveInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := l.Sim.Now()
	lastSave := last
	var ticks uint64

	slog.Info("simulation loop started", "interval", interval.String(), "save_every", saveEvery.String())

	for {
		select {
		case <-ctx.Done():
			// Parent context is gone; give the final save its own deadline.
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := l.Sim.Save(saveCtx); err != nil {
				slog.Error("final save failed", "error", err)
			}
			cancel()
			slog.Info("simulation loop stopped", "ticks", humanize.Comma(int64(ticks)))
			return
		case <-ticker.C:
		}

		now := l.Sim.Now()
		elapsed := now.Sub(last)
		if elapsed > OfflineCap {
			// Host was suspended; treat the gap like time spent away.
			LogResume(last, OfflineCap)
			elapsed = OfflineCap
		}
		st := l.step(elapsed)
		last = now
		ticks++

		if l.OnTick != nil {
			l.OnTick(st)
		}

		if now.Sub(lastSave) >= saveEvery {
			if err := l.Sim.Save(ctx); err != nil {
				slog.Warn("periodic save failed", "error", err)
			}
			lastSave = now
		}
	}
}

func (l *Loop) step(elapsed time.Duration) State {
	st := l.Sim.Tick(elapsed)
	if id, ok := l.Sim.MaybeTriggerEvent(); ok {
		slog.Debug("event pending", "event", string(id))
		st = l.Sim.Snapshot()
	}
	return st
}

// LogResume reports a catch-up tick in human terms.
func LogResume(lastActive time.Time, caught time.Duration) {
	if caught <= 0 {
		return
	}
	slog.Info("caught up offline progress",
		"last_active", humanize.Time(lastActive),
		"applied", caught.Round(time.Second).String(),
		"capped", caught >= OfflineCap,
	)
}
