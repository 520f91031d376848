package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/entropy"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

// Saver persists and clears the saved community.
type Saver interface {
	Save(ctx context.Context, s State) error
	Clear(ctx context.Context) error
}

// Simulation owns the live State. All reads and writes go through it so the
// host loop and API handlers never observe a half-applied change.
type Simulation struct {
	mu    sync.Mutex
	state State

	// saveMu orders writes to the saver. It is taken before mu, never
	// while holding it.
	saveMu sync.Mutex

	clock Clock
	rng   entropy.Source
	saver Saver
}

// NewSimulation wraps an initial state. A nil saver disables persistence.
func NewSimulation(initial State, clock Clock, rng entropy.Source, saver Saver) *Simulation {
	if clock == nil {
		clock = RealClock{}
	}
	if rng == nil {
		rng = entropy.Crypto{}
	}
	return &Simulation{state: initial.Clone(), clock: clock, rng: rng, saver: saver}
}

// Snapshot returns a copy of the current state.
func (s *Simulation) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Now reads the simulation clock.
func (s *Simulation) Now() time.Time {
	return s.clock.Now()
}

// apply runs fn against the current state under the lock and swaps in the
// result when fn reports a change.
func (s *Simulation) apply(fn func(State, time.Time) (State, bool)) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := fn(s.state, s.clock.Now())
	if ok {
		s.state = next
	}
	return next, ok
}

// applyAndSave is apply followed by an immediate save of the new state.
// Holding saveMu across both keeps saves in the order the changes were made.
func (s *Simulation) applyAndSave(ctx context.Context, fn func(State, time.Time) (State, bool)) bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	next, ok := s.apply(fn)
	if ok && s.saver != nil {
		if err := s.saver.Save(ctx, next); err != nil {
			slog.Warn("failed to save community", "error", err)
		}
	}
	return ok
}

// Save persists the current state.
func (s *Simulation) Save(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.saver.Save(ctx, s.Snapshot())
}

// Tick advances the community by elapsed.
func (s *Simulation) Tick(elapsed time.Duration) State {
	next, _ := s.apply(func(st State, now time.Time) (State, bool) {
		return Tick(st, elapsed, now), true
	})
	return next
}

// Resume applies the capped catch-up tick for time spent away.
func (s *Simulation) Resume() time.Duration {
	var caught time.Duration
	s.apply(func(st State, now time.Time) (State, bool) {
		next, elapsed := CatchUp(st, now)
		caught = elapsed
		return next, true
	})
	return caught
}

func (s *Simulation) SetPriority(c community.Category, value float64) bool {
	_, ok := s.apply(func(st State, now time.Time) (State, bool) {
		return SetPriority(st, c, value, now)
	})
	return ok
}

func (s *Simulation) Upgrade(target community.Scale) bool {
	_, ok := s.apply(func(st State, now time.Time) (State, bool) {
		return AttemptUpgrade(st, target, now)
	})
	return ok
}

// Help spends supplies on members; all spends as much as the need absorbs.
func (s *Simulation) Help(c community.Category, all bool) bool {
	_, ok := s.apply(func(st State, now time.Time) (State, bool) {
		if all {
			return HelpMembersMax(st, c, now)
		}
		return HelpMember(st, c, now)
	})
	return ok
}

func (s *Simulation) Trade(opt community.TradeOption) bool {
	_, ok := s.apply(func(st State, now time.Time) (State, bool) {
		return Trade(st, opt, now)
	})
	return ok
}

func (s *Simulation) SelfCare(id community.SelfCareID) bool {
	_, ok := s.apply(func(st State, now time.Time) (State, bool) {
		return CompleteSelfCare(st, id, now)
	})
	return ok
}

func (s *Simulation) CheckIn() bool {
	_, ok := s.apply(SubmitCheckIn)
	return ok
}

// MaybeTriggerEvent raises an event if one is due.
func (s *Simulation) MaybeTriggerEvent() (events.ID, bool) {
	next, ok := s.apply(func(st State, now time.Time) (State, bool) {
		return MaybeTriggerEvent(st, s.rng, now)
	})
	return next.CurrentEventID, ok
}

// TriggerEvent raises a random event immediately, or the named one.
func (s *Simulation) TriggerEvent(ctx context.Context, id events.ID) bool {
	return s.applyAndSave(ctx, func(st State, now time.Time) (State, bool) {
		e := events.Pick(s.rng)
		if id != "" {
			found, ok := events.Find(id)
			if !ok {
				return st, false
			}
			e = found
		}
		return ForceEvent(st, e, now)
	})
}

func (s *Simulation) ResolveEvent(ctx context.Context, choice events.ChoiceID) bool {
	return s.applyAndSave(ctx, func(st State, now time.Time) (State, bool) {
		return ResolveEvent(st, choice, now)
	})
}

func (s *Simulation) ChooseGrowth(ctx context.Context, id growth.DecisionID, key growth.ChoiceKey) bool {
	return s.applyAndSave(ctx, func(st State, now time.Time) (State, bool) {
		return ChooseGrowth(st, id, key, now)
	})
}

func (s *Simulation) PreviewPrestige() (PrestigeSummary, bool) {
	next, ok := s.apply(PreviewPrestige)
	if !ok {
		return PrestigeSummary{}, false
	}
	return *next.PendingPrestige, true
}

func (s *Simulation) CancelPrestige() {
	s.apply(func(st State, now time.Time) (State, bool) {
		return CancelPrestige(st, now), true
	})
}

func (s *Simulation) CommitPrestige(ctx context.Context) bool {
	return s.applyAndSave(ctx, CommitPrestige)
}

func (s *Simulation) RenameLegacyRun(ctx context.Context, id, label string) bool {
	return s.applyAndSave(ctx, func(st State, now time.Time) (State, bool) {
		return RenameLegacyRun(st, id, label, now)
	})
}

func (s *Simulation) SetLegacyNote(ctx context.Context, id, note string) bool {
	return s.applyAndSave(ctx, func(st State, now time.Time) (State, bool) {
		return SetLegacyNote(st, id, note, now)
	})
}

func (s *Simulation) PinLegacyRun(ctx context.Context, id string) bool {
	return s.applyAndSave(ctx, func(st State, now time.Time) (State, bool) {
		return PinLegacyRun(st, id, now)
	})
}

func (s *Simulation) AddSupplies(amount float64) bool {
	_, ok := s.apply(func(st State, now time.Time) (State, bool) {
		return AddSupplies(st, amount, now)
	})
	return ok
}

// Reset deletes the saved community and starts over from defaults,
// including stars and legacy runs.
func (s *Simulation) Reset(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.state = DefaultState(s.clock.Now())
	s.mu.Unlock()

	if s.saver == nil {
		return nil
	}
	return s.saver.Clear(ctx)
}
