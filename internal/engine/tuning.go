// Package engine advances a Commons community through time and applies
// player actions to it. Every rule is a pure function from State to State;
// Simulation serializes access for the host loop and the API.
package engine

import "time"

// Supply and need rates are per real second.
const (
	BaseSupplyRate = 0.9
	NeedDrain      = 0.05

	// Volunteer strain: each hour under StrainHours adds StrainPerHour to
	// drains, capped at MaxStrain.
	StrainHours   = 8.0
	StrainPerHour = 0.05
	MaxStrain     = 1.5
)

// Host cadence.
const (
	TickInterval = 5 * time.Second
	SaveInterval = 60 * time.Second
	OfflineCap   = 8 * time.Hour
)

// Events.
const (
	EventInterval   = 8 * time.Minute
	EventMinSpacing = 5 * time.Minute
)

// Player actions.
const (
	SelfCareCooldown = 24 * time.Hour
	CheckInInterval  = 7 * 24 * time.Hour
	CheckInBonus     = 1.0
	HelpStep         = 1.0
)

// TrendWindow is how many samples each rolling window keeps.
const TrendWindow = 20

// Sustainability thresholds before resilience bias is applied.
const (
	SustainabilityMinSamples = 6
	DeficitThreshold         = -0.05
	BufferThreshold          = 5.0
	NeedPressureRatio        = 0.8
	NeedPressureSupplyCap    = 12.0
)

// Status thresholds before resilience bias is applied.
const (
	StatusMinSamples     = 5
	UnmetNeedThreshold   = 0.5
	ImprovingGate        = 0.05
	WellSupportedGate    = 0.15
	VolunteerStrainFloor = 3.0
)

// NeedDirectionBand is the average per-tick need change that still counts
// as steady.
const NeedDirectionBand = 0.02

// Legacy text limits, in runes.
const (
	LegacyLabelMax = 50
	LegacyNoteMax  = 180
)

// gracePeriods indexed by consecutive downgrades; the last entry repeats.
var gracePeriods = [...]time.Duration{24 * time.Hour, 48 * time.Hour, 72 * time.Hour}

// GracePeriod returns how long a tier may stay unsustainable after
// downgrades consecutive auto-downgrades.
func GracePeriod(downgrades int) time.Duration {
	if downgrades < 0 {
		downgrades = 0
	}
	if downgrades >= len(gracePeriods) {
		downgrades = len(gracePeriods) - 1
	}
	return gracePeriods[downgrades]
}
