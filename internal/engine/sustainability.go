package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/commons/internal/community"
)

// Sustainable judges the current tier from the supply trend and the buffer
// of supplies over needs. With too few samples the tier is assumed
// sustainable. A positive resilience bias makes the deficit test stricter
// to trip and the buffer test more forgiving.
func Sustainable(trend []float64, supplies, needs community.Amounts, bias float64) bool {
	if len(trend) < SustainabilityMinSamples {
		return true
	}
	deficit := average(trend) < DeficitThreshold*(1+bias)
	if !deficit {
		return true
	}
	total := supplies.Total()
	thin := total-needs.Total() < BufferThreshold*(1-bias)
	overwhelmed := needs.Total() > NeedPressureRatio*total && total < NeedPressureSupplyCap
	return !(thin || overwhelmed)
}

// applySustainability advances the grace timer and downgrades the tier once
// the grace period for the current downgrade streak has run out.
func applySustainability(s State, sustainable bool, now time.Time) State {
	if sustainable {
		s.LastUnsustainableAt = time.Time{}
		return s
	}
	if s.LastUnsustainableAt.IsZero() {
		s.LastUnsustainableAt = now
		return s
	}

	grace := GracePeriod(s.DowngradeCount)
	if now.Sub(s.LastUnsustainableAt) <= grace {
		return s
	}
	lower, ok := s.Scale.Prev()
	if !ok {
		return s
	}

	slog.Info("community downgraded",
		"from", s.Scale.String(),
		"to", lower.String(),
		"grace", grace.String(),
		"downgrades", s.DowngradeCount+1,
	)
	s.Scale = lower
	s.Investment = max(0, community.RequiredInvestment(lower, s.PrestigeStars))
	s.LastUnsustainableAt = time.Time{}
	s.DowngradeCount++
	return s
}
