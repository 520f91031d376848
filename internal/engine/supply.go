package engine

import "github.com/talgya/commons/internal/community"

// SupplyInput is everything one supply step depends on.
type SupplyInput struct {
	Supplies      community.Amounts
	Priority      community.Amounts
	VolunteerTime float64
	// Elapsed is in seconds.
	Elapsed float64
	// GainMultiplier comes from the growth profile; 0 is treated as 1.
	GainMultiplier float64
}

// SupplyResult carries the new pools and the flows that produced them.
type SupplyResult struct {
	Supplies community.Amounts
	Gains    community.Amounts
	Drains   community.Amounts
}

// Strain scales drains up as volunteer time falls below StrainHours.
func Strain(volunteerTime float64) float64 {
	return min(MaxStrain, 1+max(0, (StrainHours-volunteerTime)*StrainPerHour))
}

// ApplySupplyTick grows each pool by its priority share of the base rate and
// drains it in proportion to its raw priority weight. Pools never go
// negative.
func ApplySupplyTick(in SupplyInput) SupplyResult {
	elapsed := max(0, in.Elapsed)
	mult := in.GainMultiplier
	if mult == 0 {
		mult = 1
	}

	gainTotal := BaseSupplyRate * mult * elapsed
	strain := Strain(in.VolunteerTime)

	var res SupplyResult
	for _, c := range community.Categories {
		gain := gainTotal * in.Priority.Share(c)
		drain := NeedDrain * in.Priority.Get(c) * elapsed * strain
		res.Gains = res.Gains.With(c, gain)
		res.Drains = res.Drains.With(c, drain)
		res.Supplies = res.Supplies.With(c, max(0, in.Supplies.Get(c)+gain-drain))
	}
	return res
}
