package engine

import "github.com/talgya/commons/internal/community"

// ClassifyStatus labels the community from its supply trend, unmet needs
// and volunteer time. Thresholds loosen as resilience bias rises.
func ClassifyStatus(trend []float64, needs community.Amounts, volunteerTime, bias float64) Status {
	if len(trend) < StatusMinSamples {
		return StatusHolding
	}

	scale := 1 - bias
	avg := average(trend)
	strained := volunteerTime < VolunteerStrainFloor*scale

	if needs.Total() > UnmetNeedThreshold*scale {
		if avg > ImprovingGate*scale && !strained {
			return StatusImproving
		}
		return StatusHolding
	}
	if avg > WellSupportedGate*scale && !strained {
		return StatusWellSupported
	}
	if avg > ImprovingGate*scale {
		return StatusImproving
	}
	return StatusHolding
}
