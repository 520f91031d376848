package engine

import (
	"time"

	"github.com/talgya/commons/internal/community"
)

// Tick advances s by elapsed wall time. It runs the supply step, updates the
// rolling windows, judges sustainability (possibly downgrading), generates
// needs at the resulting tier and reclassifies status. Negative elapsed is
// treated as zero.
func Tick(s State, elapsed time.Duration, now time.Time) State {
	next := s.Clone()
	seconds := max(0, elapsed.Seconds())
	profile := s.Profile()

	res := ApplySupplyTick(SupplyInput{
		Supplies:       s.Supplies,
		Priority:       s.Priority,
		VolunteerTime:  s.VolunteerTime,
		Elapsed:        seconds,
		GainMultiplier: profile.SupplyGainMultiplier,
	})
	next.Supplies = res.Supplies
	next.Rolling.SupplyTrend = pushWindow(s.Rolling.SupplyTrend, res.Supplies.Total()-s.Supplies.Total())

	sustainable := Sustainable(next.Rolling.SupplyTrend, next.Supplies, s.Needs, profile.ResilienceBias)
	next = applySustainability(next, sustainable, now)

	needs, added := GenerateNeeds(s.Needs, s.Priority, next.Scale, profile.NeedGenerationMultiplier, seconds)
	next.Needs = needs
	next.Rolling.NeedTrend = s.Rolling.NeedTrend.push(added.Add(s.Rolling.NeedShift))
	next.Rolling.NeedShift = community.Amounts{}

	next.Status = ClassifyStatus(next.Rolling.SupplyTrend, next.Needs, next.VolunteerTime, profile.ResilienceBias)
	next = next.Rederive()
	return next.touch(now)
}

// CatchUp applies the single offline tick for the time since LastActiveAt,
// capped at OfflineCap. It returns s unchanged apart from LastActiveAt when
// no time has passed.
func CatchUp(s State, now time.Time) (State, time.Duration) {
	if s.LastActiveAt.IsZero() {
		return s.touch(now), 0
	}
	elapsed := min(now.Sub(s.LastActiveAt), OfflineCap)
	if elapsed <= 0 {
		return s.touch(now), 0
	}
	return Tick(s, elapsed, now), elapsed
}
