package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/entropy"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

type recordingSaver struct {
	mu      sync.Mutex
	saves   int
	clears  int
	last    State
	saveErr error
}

func (r *recordingSaver) Save(_ context.Context, s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.last = s
	return r.saveErr
}

func (r *recordingSaver) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	return nil
}

func (r *recordingSaver) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves, r.clears
}

func newTestSim(t *testing.T) (*Simulation, *FakeClock, *recordingSaver) {
	t.Helper()
	clock := NewFakeClock(t0)
	saver := &recordingSaver{}
	return NewSimulation(DefaultState(t0), clock, entropy.Fixed(0), saver), clock, saver
}

func TestSimulationResolvePersistsImmediately(t *testing.T) {
	sim, clock, saver := newTestSim(t)
	ctx := context.Background()

	assert.False(t, sim.ResolveEvent(ctx, events.ChoiceA))
	saves, _ := saver.counts()
	assert.Zero(t, saves)

	id, ok := sim.MaybeTriggerEvent()
	require.True(t, ok)
	assert.Equal(t, events.ExtraFood, id)

	clock.Advance(time.Minute)
	require.True(t, sim.ResolveEvent(ctx, events.ChoiceA))
	saves, _ = saver.counts()
	assert.Equal(t, 1, saves)
	assert.Len(t, saver.last.EventLog, 1)
	assert.Equal(t, t0.Add(time.Minute), sim.Snapshot().LastEventAt)

	assert.False(t, sim.ResolveEvent(ctx, events.ChoiceA), "already resolved")
}

func TestSimulationSaveErrorsAreSwallowed(t *testing.T) {
	sim, _, saver := newTestSim(t)
	saver.saveErr = assert.AnError

	require.True(t, sim.TriggerEvent(context.Background(), events.QuietWeek))
	assert.True(t, sim.ResolveEvent(context.Background(), events.ChoiceB))
	assert.Equal(t, assert.AnError, sim.Save(context.Background()))
}

func TestSimulationTriggerEventByID(t *testing.T) {
	sim, _, _ := newTestSim(t)
	assert.False(t, sim.TriggerEvent(context.Background(), "meteor"))
	require.True(t, sim.TriggerEvent(context.Background(), events.HeatWave))
	assert.Equal(t, events.HeatWave, sim.Snapshot().CurrentEventID)
	assert.False(t, sim.TriggerEvent(context.Background(), events.ColdWeather))
}

func TestSimulationSnapshotIsIsolated(t *testing.T) {
	sim, _, _ := newTestSim(t)
	snap := sim.Snapshot()
	snap.Selections[growth.HouseBlock] = growth.SharedLiving
	snap.EventLog = append(snap.EventLog, EventLogEntry{ID: events.ExtraFood})

	fresh := sim.Snapshot()
	assert.Empty(t, fresh.Selections)
	assert.Empty(t, fresh.EventLog)
}

func TestSimulationGrowthFlow(t *testing.T) {
	sim, _, saver := newTestSim(t)
	ctx := context.Background()

	require.True(t, sim.AddSupplies(200))
	require.True(t, sim.Upgrade(community.Block))
	assert.Equal(t, growth.HouseBlock, sim.Snapshot().PendingDecision)

	assert.False(t, sim.ChooseGrowth(ctx, growth.HouseBlock, growth.WorkFirst))
	require.True(t, sim.ChooseGrowth(ctx, growth.HouseBlock, growth.SkillSharing))
	saves, _ := saver.counts()
	assert.Equal(t, 1, saves)
	assert.True(t, saver.last.Values[growth.FlagTrustFocused])
}

func TestSimulationPrestigeFlow(t *testing.T) {
	clock := NewFakeClock(t0)
	saver := &recordingSaver{}
	sim := NewSimulation(regionState(), clock, entropy.Fixed(0), saver)

	summary, ok := sim.PreviewPrestige()
	require.True(t, ok)
	assert.Equal(t, 1, summary.StarToEarn)

	sim.CancelPrestige()
	assert.Nil(t, sim.Snapshot().PendingPrestige)

	require.True(t, sim.CommitPrestige(context.Background()))
	st := sim.Snapshot()
	assert.Equal(t, 1, st.PrestigeStars)
	require.Len(t, st.LegacyRuns, 1)

	id := st.LegacyRuns[0].ID
	assert.True(t, sim.RenameLegacyRun(context.Background(), id, "First light"))
	assert.True(t, sim.SetLegacyNote(context.Background(), id, "quiet and kind"))
	assert.True(t, sim.PinLegacyRun(context.Background(), id))
	st = sim.Snapshot()
	assert.Equal(t, "First light", st.LegacyRuns[0].Label)
	assert.Equal(t, id, st.PinnedLegacyRunID)

	saves, _ := saver.counts()
	assert.Equal(t, 4, saves)
}

func TestSimulationReset(t *testing.T) {
	sim, clock, saver := newTestSim(t)
	require.True(t, sim.AddSupplies(50))
	clock.Advance(time.Hour)

	require.NoError(t, sim.Reset(context.Background()))
	_, clears := saver.counts()
	assert.Equal(t, 1, clears)
	assert.Equal(t, DefaultState(t0.Add(time.Hour)), sim.Snapshot())
}

func TestSimulationResume(t *testing.T) {
	sim, clock, _ := newTestSim(t)
	clock.Advance(12 * time.Hour)
	assert.Equal(t, OfflineCap, sim.Resume())
	assert.Equal(t, t0.Add(12*time.Hour), sim.Snapshot().LastActiveAt)
	assert.Zero(t, sim.Resume())
}

func TestSimulationConcurrentAccess(t *testing.T) {
	sim, _, _ := newTestSim(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				switch j % 4 {
				case 0:
					sim.Tick(TickInterval)
				case 1:
					sim.SetPriority(community.Categories[i%3], 1.4)
				case 2:
					sim.Help(community.Care, j%8 == 2)
				default:
					_ = sim.Snapshot()
				}
			}
		}(i)
	}
	wg.Wait()
	assert.InDelta(t, community.PriorityTotal, sim.Snapshot().Priority.Total(), 1e-9)
}

func TestLoopTicksAndSavesOnShutdown(t *testing.T) {
	saver := &recordingSaver{}
	sim := NewSimulation(DefaultState(time.Now()), RealClock{}, entropy.NewSeeded(1), saver)

	var mu sync.Mutex
	var seen int
	loop := &Loop{
		Sim:       sim,
		Interval:  5 * time.Millisecond,
		SaveEvery: time.Hour,
		OnTick: func(State) {
			mu.Lock()
			seen++
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Positive(t, seen)
	saves, _ := saver.counts()
	assert.Equal(t, 1, saves, "only the shutdown save")
	assert.NotEmpty(t, sim.Snapshot().Rolling.SupplyTrend)
	assert.NotEmpty(t, sim.Snapshot().CurrentEventID, "first tick raises an event")
}

// gatedSaver blocks its first save until release is closed.
type gatedSaver struct {
	recordingSaver
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSaver) Save(ctx context.Context, s State) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.recordingSaver.Save(ctx, s)
}

func TestSimulationImmediateSavesKeepOrder(t *testing.T) {
	saver := &gatedSaver{entered: make(chan struct{}), release: make(chan struct{})}
	clock := NewFakeClock(t0)
	sim := NewSimulation(DefaultState(t0), clock, entropy.Fixed(0), saver)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.True(t, sim.TriggerEvent(ctx, events.ExtraFood))
	}()
	<-saver.entered
	go func() {
		defer wg.Done()
		assert.True(t, sim.ResolveEvent(ctx, events.ChoiceA))
	}()
	time.Sleep(20 * time.Millisecond)
	close(saver.release)
	wg.Wait()

	saves, _ := saver.counts()
	assert.Equal(t, 2, saves)
	assert.Empty(t, saver.last.CurrentEventID)
	assert.Len(t, saver.last.EventLog, 1)
	assert.Equal(t, sim.Snapshot(), saver.last)
}

func TestLoopCapsSuspendedGap(t *testing.T) {
	clock := NewFakeClock(t0)
	sim := NewSimulation(DefaultState(t0), clock, entropy.Fixed(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var ticks int
	var after State
	loop := &Loop{
		Sim:       sim,
		Interval:  5 * time.Millisecond,
		SaveEvery: time.Hour,
		OnTick: func(st State) {
			mu.Lock()
			defer mu.Unlock()
			ticks++
			switch ticks {
			case 1:
				clock.Advance(24 * time.Hour)
			case 2:
				after = st
				cancel()
			}
		},
	}
	loop.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, ticks, 2)
	// Uniform(1) plus 0.03/s over the 8h cap, not over the full day.
	capped := 3 + community.House.Tier().NeedRate*OfflineCap.Seconds()
	assert.InDelta(t, capped, after.Needs.Total(), 1e-6)
	assert.Equal(t, t0.Add(24*time.Hour), after.LastActiveAt)
}
