package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/entropy"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestApplySupplyTick(t *testing.T) {
	res := ApplySupplyTick(SupplyInput{
		Supplies:      community.Amounts{Food: 4, Shelter: 3, Care: 3},
		Priority:      community.DefaultPriority(),
		VolunteerTime: 5,
		Elapsed:       10,
	})
	assert.InDelta(t, 3, res.Gains.Food, 1e-9)
	assert.InDelta(t, 0.575, res.Drains.Care, 1e-9)
	assert.InDelta(t, 6.425, res.Supplies.Food, 1e-9)
	assert.InDelta(t, 5.425, res.Supplies.Shelter, 1e-9)
}

func TestStrain(t *testing.T) {
	assert.InDelta(t, 1.0, Strain(8), 1e-9)
	assert.InDelta(t, 1.0, Strain(12), 1e-9)
	assert.InDelta(t, 1.15, Strain(5), 1e-9)
	assert.InDelta(t, MaxStrain, Strain(-20), 1e-9)
}

func TestSupplyTickNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prio := community.SetPriority(community.DefaultPriority(), community.Categories[rapid.IntRange(0, 2).Draw(t, "cat")],
			rapid.Float64Range(0.5, 2).Draw(t, "weight"))
		res := ApplySupplyTick(SupplyInput{
			Supplies: community.Amounts{
				Food:    rapid.Float64Range(0, 100).Draw(t, "food"),
				Shelter: rapid.Float64Range(0, 100).Draw(t, "shelter"),
				Care:    rapid.Float64Range(0, 100).Draw(t, "care"),
			},
			Priority:       prio,
			VolunteerTime:  rapid.Float64Range(0, 12).Draw(t, "volunteer"),
			Elapsed:        rapid.Float64Range(0, 1e5).Draw(t, "elapsed"),
			GainMultiplier: rapid.Float64Range(growth.MultiplierMin, growth.MultiplierMax).Draw(t, "mult"),
		})
		for _, c := range community.Categories {
			v := res.Supplies.Get(c)
			if v < 0 || math.IsNaN(v) {
				t.Fatalf("%s supply invalid: %v", c, v)
			}
		}
	})
}

func TestTickIsAdditive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := DefaultState(t0)
		s.Supplies = community.Uniform(1000)
		s.Priority = community.SetPriority(s.Priority, community.Care, rapid.Float64Range(0.5, 2).Draw(t, "care"))
		a := time.Duration(rapid.IntRange(0, 1000).Draw(t, "a")) * time.Second
		b := time.Duration(rapid.IntRange(0, 1000).Draw(t, "b")) * time.Second

		split := Tick(Tick(s, a, t0.Add(a)), b, t0.Add(a+b))
		whole := Tick(s, a+b, t0.Add(a+b))

		for _, c := range community.Categories {
			if math.Abs(split.Supplies.Get(c)-whole.Supplies.Get(c)) > 1e-6 {
				t.Fatalf("supplies differ for %s: %v vs %v", c, split.Supplies.Get(c), whole.Supplies.Get(c))
			}
			if math.Abs(split.Needs.Get(c)-whole.Needs.Get(c)) > 1e-6 {
				t.Fatalf("needs differ for %s: %v vs %v", c, split.Needs.Get(c), whole.Needs.Get(c))
			}
		}
	})
}

func TestTickUpdatesWindowsAndActivity(t *testing.T) {
	s := DefaultState(t0)
	for i := 0; i < TrendWindow+5; i++ {
		s = Tick(s, TickInterval, t0.Add(time.Duration(i+1)*TickInterval))
	}
	assert.Len(t, s.Rolling.SupplyTrend, TrendWindow)
	assert.Len(t, s.Rolling.NeedTrend.Food, TrendWindow)
	assert.Equal(t, t0.Add(time.Duration(TrendWindow+5)*TickInterval), s.LastActiveAt)
	// 0.03/s split evenly over 5s.
	assert.InDelta(t, 0.05, s.Rolling.NeedTrend.Care[0], 1e-9)
	assert.Equal(t, NeedIncreasing, NeedDirections(s.Rolling.NeedTrend)[community.Food])
}

func TestTickDoesNotMutateInput(t *testing.T) {
	s := DefaultState(t0)
	s.Rolling.SupplyTrend = []float64{1, 2, 3}
	before := s.Clone()
	_ = Tick(s, time.Minute, t0.Add(time.Minute))
	assert.Equal(t, before, s)
}

func TestCatchUpIsCapped(t *testing.T) {
	s := DefaultState(t0)
	now := t0.Add(10 * time.Hour)
	got, elapsed := CatchUp(s, now)
	assert.Equal(t, OfflineCap, elapsed)
	assert.Equal(t, now, got.LastActiveAt)
	assert.Equal(t, Tick(s, OfflineCap, now).Supplies, got.Supplies)

	same, elapsed := CatchUp(s, t0.Add(-time.Minute))
	assert.Zero(t, elapsed)
	assert.Equal(t, s.Supplies, same.Supplies)
}

func TestUpgradeShortfallIsNoop(t *testing.T) {
	s := DefaultState(t0)
	s.Supplies = community.Amounts{Food: 10, Shelter: 5, Care: 5}
	s.Investment = 80

	got, ok := AttemptUpgrade(s, community.Block, t0)
	assert.False(t, ok)
	assert.Equal(t, s, got)
}

func TestUpgradeSpendsProportionally(t *testing.T) {
	s := DefaultState(t0)
	s.Supplies = community.Amounts{Food: 30, Shelter: 10, Care: 10}
	s.Investment = 80

	got, ok := AttemptUpgrade(s, community.Block, t0.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, community.Block, got.Scale)
	assert.InDelta(t, 6, got.Supplies.Food, 1e-9)
	assert.InDelta(t, 2, got.Supplies.Shelter, 1e-9)
	assert.InDelta(t, 2, got.Supplies.Care, 1e-9)
	assert.InDelta(t, 120, got.Investment, 1e-9)
	assert.Equal(t, community.Uniform(2), got.Needs)
	assert.Equal(t, growth.HouseBlock, got.PendingDecision)
}

func TestUpgradeWithCoveredInvestmentSwitches(t *testing.T) {
	s := DefaultState(t0)
	s.Investment = 250
	s.DowngradeCount = 2

	got, ok := AttemptUpgrade(s, community.Village, t0)
	require.True(t, ok)
	assert.Equal(t, community.Village, got.Scale)
	assert.Equal(t, s.Supplies, got.Supplies)
	assert.Equal(t, s.Needs, got.Needs)
	assert.Zero(t, got.DowngradeCount)

	_, ok = AttemptUpgrade(got, community.Village, t0)
	assert.False(t, ok)
	_, ok = AttemptUpgrade(got, community.Scale(99), t0)
	assert.False(t, ok)
}

func TestUpgradeScalesWithPrestige(t *testing.T) {
	s := DefaultState(t0)
	s.PrestigeStars = 1
	s.Investment = 120
	s.Supplies = community.Amounts{Food: 10, Shelter: 10, Care: 10}

	got, ok := AttemptUpgrade(s, community.Block, t0)
	require.True(t, ok)
	assert.InDelta(t, 150, got.Investment, 1e-9)
	assert.InDelta(t, 0, got.Supplies.Total(), 1e-9)
}

func TestSustainable(t *testing.T) {
	deficit := []float64{-1, -1, -1, -1, -1, -1}
	low := community.Uniform(1)

	assert.True(t, Sustainable(deficit[:5], low, low, 0), "too few samples")
	assert.False(t, Sustainable(deficit, low, low, 0))
	assert.True(t, Sustainable(deficit, community.Uniform(10), community.Uniform(1), 0), "healthy buffer")
	assert.False(t, Sustainable(deficit, community.Uniform(3), community.Uniform(3), 0), "needs pressing on a small buffer")
	assert.False(t, Sustainable(deficit, community.Uniform(10), community.Amounts{Food: 20, Shelter: 10, Care: 10}, 0), "needs above supplies")
	assert.False(t, Sustainable(deficit, community.Uniform(4), community.Uniform(3), 0), "buffer of 3 is thin")
	assert.True(t, Sustainable(deficit, community.Uniform(4), community.Uniform(3), 0.5), "bias widens the buffer allowance")

	mild := []float64{-0.06, -0.06, -0.06, -0.06, -0.06, -0.06}
	assert.False(t, Sustainable(mild, low, low, 0))
	assert.True(t, Sustainable(mild, low, low, 0.3))
}

func TestGracePeriodHysteresis(t *testing.T) {
	s := DefaultState(t0)
	s.Scale = community.Village

	s = applySustainability(s, false, t0)
	assert.Equal(t, t0, s.LastUnsustainableAt)

	s = applySustainability(s, false, t0.Add(23*time.Hour))
	assert.Equal(t, community.Village, s.Scale)

	// Recovery before expiry clears the timer.
	s = applySustainability(s, true, t0.Add(23*time.Hour))
	assert.True(t, s.LastUnsustainableAt.IsZero())

	t1 := t0.Add(30 * time.Hour)
	s = applySustainability(s, false, t1)
	s = applySustainability(s, false, t1.Add(24*time.Hour))
	assert.Equal(t, community.Village, s.Scale, "grace is inclusive")

	s = applySustainability(s, false, t1.Add(24*time.Hour+time.Second))
	assert.Equal(t, community.Block, s.Scale)
	assert.InDelta(t, 120, s.Investment, 1e-9)
	assert.Equal(t, 1, s.DowngradeCount)
	assert.True(t, s.LastUnsustainableAt.IsZero())

	// Second downgrade waits 48h.
	t2 := t1.Add(25 * time.Hour)
	s = applySustainability(s, false, t2)
	s = applySustainability(s, false, t2.Add(30*time.Hour))
	assert.Equal(t, community.Block, s.Scale)
	s = applySustainability(s, false, t2.Add(49*time.Hour))
	assert.Equal(t, community.House, s.Scale)
	assert.Equal(t, 2, s.DowngradeCount)

	// House never drops.
	s = applySustainability(s, false, t2.Add(50*time.Hour))
	s = applySustainability(s, false, t2.Add(500*time.Hour))
	assert.Equal(t, community.House, s.Scale)
}

func TestTickDowngradesAfterGrace(t *testing.T) {
	clock := NewFakeClock(t0)
	s := DefaultState(t0)
	s.Scale = community.Village
	s.Supplies = community.Amounts{}
	s.Needs = community.Uniform(25)
	// Heavy recent losses; one more sample makes five, still too few to judge.
	s.Rolling.SupplyTrend = []float64{-20, -20, -20, -20}
	sim := NewSimulation(s, clock, entropy.Fixed(0), nil)

	got := sim.Tick(TickInterval)
	assert.True(t, got.LastUnsustainableAt.IsZero())

	clock.Advance(time.Minute)
	started := clock.Now()
	got = sim.Tick(TickInterval)
	require.Less(t, got.Supplies.Total()-got.Needs.Total(), BufferThreshold)
	assert.Equal(t, started, got.LastUnsustainableAt)

	clock.Advance(12 * time.Hour)
	got = sim.Tick(TickInterval)
	assert.Equal(t, community.Village, got.Scale)
	assert.Equal(t, started, got.LastUnsustainableAt)

	clock.Advance(12 * time.Hour)
	got = sim.Tick(TickInterval)
	assert.Equal(t, community.Village, got.Scale, "grace is inclusive")

	clock.Advance(time.Second)
	got = sim.Tick(TickInterval)
	assert.Equal(t, community.Block, got.Scale)
	assert.InDelta(t, community.RequiredInvestment(community.Block, 0), got.Investment, 1e-9)
	assert.Equal(t, 1, got.DowngradeCount)
	assert.True(t, got.LastUnsustainableAt.IsZero())

	// Still short: the timer restarts but no second downgrade yet.
	clock.Advance(time.Minute)
	got = sim.Tick(TickInterval)
	assert.Equal(t, community.Block, got.Scale)
	assert.Equal(t, 1, got.DowngradeCount)
	assert.Equal(t, clock.Now(), got.LastUnsustainableAt)
	assert.Len(t, got.Rolling.SupplyTrend, 10)
}

func TestNeedTrendRecordsNetChange(t *testing.T) {
	s := DefaultState(t0)
	s.Supplies = community.Uniform(10)
	s.Needs = community.Uniform(5)

	s = Tick(s, TickInterval, t0.Add(TickInterval))
	s, ok := HelpMembersMax(s, community.Food, t0.Add(TickInterval))
	require.True(t, ok)
	assert.InDelta(t, -5.05, s.Rolling.NeedShift.Food, 1e-9)

	s = Tick(s, TickInterval, t0.Add(2*TickInterval))
	assert.InDelta(t, -5.0, s.Rolling.NeedTrend.Food[1], 1e-9)
	assert.InDelta(t, 0.05, s.Rolling.NeedTrend.Shelter[1], 1e-9)
	assert.Zero(t, s.Rolling.NeedShift)

	dirs := NeedDirections(s.Rolling.NeedTrend)
	assert.Equal(t, NeedDecreasing, dirs[community.Food])
	assert.Equal(t, NeedIncreasing, dirs[community.Shelter])
}

func TestGracePeriod(t *testing.T) {
	assert.Equal(t, 24*time.Hour, GracePeriod(0))
	assert.Equal(t, 48*time.Hour, GracePeriod(1))
	assert.Equal(t, 72*time.Hour, GracePeriod(2))
	assert.Equal(t, 72*time.Hour, GracePeriod(9))
}

func TestClassifyStatus(t *testing.T) {
	rising := []float64{0.2, 0.2, 0.2, 0.2, 0.2}
	slow := []float64{0.1, 0.1, 0.1, 0.1, 0.1}
	flat := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	none := community.Amounts{}
	unmet := community.Uniform(1)

	assert.Equal(t, StatusHolding, ClassifyStatus(rising[:4], none, 5, 0))
	assert.Equal(t, StatusImproving, ClassifyStatus(slow, unmet, 5, 0))
	assert.Equal(t, StatusHolding, ClassifyStatus(slow, unmet, 2, 0))
	assert.Equal(t, StatusImproving, ClassifyStatus(rising, unmet, 5, 0), "unmet needs cap the label")
	assert.Equal(t, StatusWellSupported, ClassifyStatus(rising, none, 5, 0))
	assert.Equal(t, StatusImproving, ClassifyStatus(rising, none, 2, 0))
	assert.Equal(t, StatusHolding, ClassifyStatus(flat, none, 5, 0))

	mid := []float64{0.12, 0.12, 0.12, 0.12, 0.12}
	assert.Equal(t, StatusImproving, ClassifyStatus(mid, none, 5, 0))
	assert.Equal(t, StatusWellSupported, ClassifyStatus(mid, none, 5, 0.3))
}

func TestEventEligibility(t *testing.T) {
	s := DefaultState(t0)
	assert.True(t, EventEligible(s, t0))

	s, ok := MaybeTriggerEvent(s, entropy.Fixed(0), t0)
	require.True(t, ok)
	assert.Equal(t, events.ExtraFood, s.CurrentEventID)
	assert.False(t, EventEligible(s, t0.Add(time.Hour)))

	_, ok = MaybeTriggerEvent(s, entropy.Fixed(0.5), t0.Add(time.Hour))
	assert.False(t, ok, "never replaces a pending event")

	s, ok = ResolveEvent(s, events.ChoiceA, t0)
	require.True(t, ok)
	assert.False(t, EventEligible(s, t0.Add(7*time.Minute)))
	assert.True(t, EventEligible(s, t0.Add(EventInterval)))
}

func TestResolveEvent(t *testing.T) {
	s := DefaultState(t0)
	s.CurrentEventID = events.ExtraFood

	_, ok := ResolveEvent(s, "C", t0)
	assert.False(t, ok)

	got, ok := ResolveEvent(s, events.ChoiceA, t0.Add(time.Second))
	require.True(t, ok)
	assert.InDelta(t, 6, got.Supplies.Food, 1e-9)
	assert.Empty(t, got.CurrentEventID)
	require.Len(t, got.EventLog, 1)
	assert.Equal(t, EventLogEntry{ID: events.ExtraFood, Choice: events.ChoiceA, At: t0.Add(time.Second)}, got.EventLog[0])

	again, ok := ResolveEvent(got, events.ChoiceA, t0.Add(2*time.Second))
	assert.False(t, ok)
	assert.Equal(t, got, again)
	assert.Empty(t, s.EventLog, "input untouched")
}

func TestResolveEventScalesNegatives(t *testing.T) {
	assert.InDelta(t, -12, ScaleEventDelta(-10, growth.Profile{EventNegativeMultiplier: 1.2}), 1e-9)
	assert.InDelta(t, 13, ScaleEventDelta(10, growth.Profile{EventPositiveMultiplier: 1.3}), 1e-9)

	s := DefaultState(t0)
	s.Selections = growth.Selections{growth.VillageTown: growth.InformalNetworks}
	s.CurrentEventID = events.ColdWeather
	got, ok := ResolveEvent(s, events.ChoiceB, t0)
	require.True(t, ok)
	assert.InDelta(t, 3-1.1, got.Supplies.Shelter, 1e-9)

	s.Supplies.Shelter = 0.5
	got, _ = ResolveEvent(s, events.ChoiceB, t0)
	assert.Zero(t, got.Supplies.Shelter)
}

func TestResolveEventBoostsThroughNormalizer(t *testing.T) {
	s := DefaultState(t0)
	s.CurrentEventID = events.VolunteerFatigue
	got, ok := ResolveEvent(s, events.ChoiceB, t0)
	require.True(t, ok)
	assert.InDelta(t, 1.025, got.Priority.Food, 1e-9)
	assert.InDelta(t, 1.025, got.Priority.Shelter, 1e-9)
	assert.InDelta(t, 0.95, got.Priority.Care, 1e-9)
	assert.InDelta(t, community.PriorityTotal, got.Priority.Total(), 1e-9)
}

func TestChooseGrowth(t *testing.T) {
	s := DefaultState(t0)
	_, ok := ChooseGrowth(s, growth.HouseBlock, growth.SharedLiving, t0)
	assert.False(t, ok, "nothing pending at house")

	s.Investment = 120
	s, ok = AttemptUpgrade(s, community.Block, t0)
	require.True(t, ok)
	require.Equal(t, growth.HouseBlock, s.PendingDecision)

	_, ok = ChooseGrowth(s, growth.BlockVillage, growth.CareFirst, t0)
	assert.False(t, ok, "not the pending decision")
	_, ok = ChooseGrowth(s, growth.HouseBlock, growth.CareFirst, t0)
	assert.False(t, ok, "choice from another decision")

	got, ok := ChooseGrowth(s, growth.HouseBlock, growth.SharedLiving, t0)
	require.True(t, ok)
	assert.Empty(t, got.PendingDecision)
	assert.True(t, got.Values[growth.FlagTrustFocused])
	assert.Empty(t, s.Selections, "input untouched")

	_, ok = ChooseGrowth(got, growth.HouseBlock, growth.SkillSharing, t0)
	assert.False(t, ok, "decisions are permanent")
}

func regionState() State {
	s := DefaultState(t0)
	s.Scale = community.Region
	for _, d := range growth.Decisions() {
		s.Selections[d.ID] = d.Choices[0].Key
	}
	return s.Rederive()
}

func TestPrestigeGating(t *testing.T) {
	s := DefaultState(t0)
	_, ok := PreviewPrestige(s, t0)
	assert.False(t, ok)
	_, ok = CommitPrestige(s, t0)
	assert.False(t, ok)

	r := regionState()
	delete(r.Selections, growth.CountyRegion)
	r = r.Rederive()
	require.Equal(t, growth.CountyRegion, r.PendingDecision)
	_, ok = CommitPrestige(r, t0)
	assert.False(t, ok)
}

func TestPrestigePreviewAndCommit(t *testing.T) {
	s := regionState()
	s.PinnedLegacyRunID = "old"
	s.LegacyRuns = []LegacyRun{{ID: "old", Label: "Star 0"}}

	s, ok := PreviewPrestige(s, t0)
	require.True(t, ok)
	require.NotNil(t, s.PendingPrestige)
	assert.Equal(t, 1, s.PendingPrestige.StarToEarn)
	assert.Len(t, s.PendingPrestige.Decisions, 8)
	assert.Equal(t,
		"This community leaned toward care over speed, informal coordination, living closely to share resources, strong local identity, trust-first relations, regional mutual aid.",
		s.PendingPrestige.IdentitySummary)
	assert.Equal(t, community.Region, s.Scale)

	cancelled := CancelPrestige(s, t0)
	assert.Nil(t, cancelled.PendingPrestige)

	got, ok := CommitPrestige(s, t0.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, 1, got.PrestigeStars)
	assert.Equal(t, community.House, got.Scale)
	assert.Empty(t, got.Selections)
	assert.Nil(t, got.PendingPrestige)
	assert.Equal(t, "old", got.PinnedLegacyRunID)
	require.Len(t, got.LegacyRuns, 2)

	run := got.LegacyRuns[1]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "Star 1", run.Label)
	assert.Equal(t, community.Region, run.HighestTier)
	assert.Equal(t, run.IdentitySummary, run.LegacyNote)
	assert.Equal(t, t0.Add(time.Minute), run.CreatedAt)
	assert.Equal(t, DefaultState(t0).Supplies, got.Supplies)
}

func TestLegacyEdits(t *testing.T) {
	s := DefaultState(t0)
	s.LegacyRuns = []LegacyRun{{ID: "a", Label: "Star 1"}, {ID: "b", Label: "Star 2"}}

	got, ok := RenameLegacyRun(s, "a", "  Harbor years  ", t0)
	require.True(t, ok)
	assert.Equal(t, "Harbor years", got.LegacyRuns[0].Label)
	assert.Equal(t, "Star 1", s.LegacyRuns[0].Label, "input untouched")

	_, ok = RenameLegacyRun(s, "a", "   ", t0)
	assert.False(t, ok)
	_, ok = RenameLegacyRun(s, "zzz", "x", t0)
	assert.False(t, ok)

	long := ""
	for i := 0; i < 60; i++ {
		long += "é"
	}
	got, _ = RenameLegacyRun(s, "b", long, t0)
	assert.Equal(t, 50, len([]rune(got.LegacyRuns[1].Label)))

	note := ""
	for i := 0; i < 200; i++ {
		note += "n"
	}
	got, ok = SetLegacyNote(s, "b", note, t0)
	require.True(t, ok)
	assert.Len(t, got.LegacyRuns[1].LegacyNote, LegacyNoteMax)

	got, ok = PinLegacyRun(s, "b", t0)
	require.True(t, ok)
	assert.Equal(t, "b", got.PinnedLegacyRunID)
	got, _ = PinLegacyRun(got, "b", t0)
	assert.Empty(t, got.PinnedLegacyRunID)
	_, ok = PinLegacyRun(s, "missing", t0)
	assert.False(t, ok)
}

func TestHelpMembers(t *testing.T) {
	s := DefaultState(t0)
	s.Supplies.Food = 0.5
	s.Needs.Food = 3

	got, ok := HelpMember(s, community.Food, t0)
	require.True(t, ok)
	assert.InDelta(t, 0, got.Supplies.Food, 1e-9)
	assert.InDelta(t, 2.5, got.Needs.Food, 1e-9)

	_, ok = HelpMember(got, community.Food, t0)
	assert.False(t, ok)

	got, ok = HelpMembersMax(DefaultState(t0), community.Food, t0)
	require.True(t, ok)
	assert.InDelta(t, 3, got.Supplies.Food, 1e-9)
	assert.InDelta(t, 0, got.Needs.Food, 1e-9)
	_, ok = HelpMembersMax(got, community.Food, t0)
	assert.False(t, ok)
}

func TestTrade(t *testing.T) {
	s := DefaultState(t0)
	_, ok := Trade(s, community.TradeFoodForCare, t0)
	assert.False(t, ok)

	s.Supplies.Food = 6
	got, ok := Trade(s, community.TradeFoodForCare, t0)
	require.True(t, ok)
	assert.InDelta(t, 1, got.Supplies.Food, 1e-9)
	assert.InDelta(t, 4, got.Supplies.Care, 1e-9)

	got, ok = Trade(got, community.TradeShelterForFood, t0)
	require.True(t, ok)
	assert.InDelta(t, 6, got.Supplies.Food, 1e-9)
	assert.InDelta(t, 2, got.Supplies.Shelter, 1e-9)
}

func TestSelfCareCooldown(t *testing.T) {
	s := DefaultState(t0)
	got, ok := CompleteSelfCare(s, "food_simple_meal", t0)
	require.True(t, ok)
	assert.InDelta(t, 7, got.Supplies.Food, 1e-9)
	assert.Empty(t, s.SelfCare, "input untouched")

	_, ok = CompleteSelfCare(got, "food_simple_meal", t0.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, 23*time.Hour, SelfCareRemaining(got, "food_simple_meal", t0.Add(time.Hour)))

	_, ok = CompleteSelfCare(got, "food_simple_meal", t0.Add(SelfCareCooldown))
	assert.True(t, ok)
	_, ok = CompleteSelfCare(got, "not_an_action", t0)
	assert.False(t, ok)
}

func TestCheckIn(t *testing.T) {
	s := DefaultState(t0)
	_, ok := SubmitCheckIn(s, t0)
	assert.False(t, ok, "first launch")

	s.HasSeenCheckIn = true
	got, ok := SubmitCheckIn(s, t0)
	require.True(t, ok)
	assert.Equal(t, s.Supplies.Add(community.Uniform(1)), got.Supplies)

	_, ok = SubmitCheckIn(got, t0.Add(6*24*time.Hour))
	assert.False(t, ok)
	_, ok = SubmitCheckIn(got, t0.Add(CheckInInterval))
	assert.True(t, ok)
}

func TestSetPriorityRejectsNaN(t *testing.T) {
	_, ok := SetPriority(DefaultState(t0), community.Food, math.NaN(), t0)
	assert.False(t, ok)
	got, ok := SetPriority(DefaultState(t0), community.Food, 1.5, t0)
	require.True(t, ok)
	assert.InDelta(t, 0.75, got.Priority.Care, 1e-9)
}

// TestFeedbackLoopSoak runs the need/priority loop for a long time at every
// slider position and checks the numbers stay sane.
func TestFeedbackLoopSoak(t *testing.T) {
	if testing.Short() {
		t.Skip("soak")
	}
	for food := community.PriorityFloor; food <= community.PriorityCeiling; food += 0.25 {
		for care := community.PriorityFloor; care <= community.PriorityCeiling; care += 0.5 {
			s := DefaultState(t0)
			s.Priority = community.SetPriority(s.Priority, community.Food, food)
			s.Priority = community.SetPriority(s.Priority, community.Care, care)
			now := t0
			for i := 0; i < 10000; i++ {
				now = now.Add(TickInterval)
				s = Tick(s, TickInterval, now)
				if i%50 == 0 {
					for _, c := range community.Categories {
						s, _ = HelpMembersMax(s, c, now)
					}
				}
			}
			for _, c := range community.Categories {
				for _, v := range []float64{s.Supplies.Get(c), s.Needs.Get(c), s.Priority.Get(c)} {
					require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "food=%v care=%v", food, care)
					require.GreaterOrEqual(t, v, 0.0)
				}
			}
			require.InDelta(t, community.PriorityTotal, s.Priority.Total(), 1e-6)
			require.Less(t, s.Supplies.Total(), 1e6)
		}
	}
}
