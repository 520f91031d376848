package engine

import "github.com/talgya/commons/internal/community"

// GenerateNeeds adds the tier's need rate over elapsed seconds, split by
// priority share. It returns the new needs and the amount added.
func GenerateNeeds(needs, priority community.Amounts, scale community.Scale, multiplier, elapsed float64) (community.Amounts, community.Amounts) {
	if multiplier == 0 {
		multiplier = 1
	}
	total := scale.Tier().NeedRate * multiplier * max(0, elapsed)

	var added community.Amounts
	for _, c := range community.Categories {
		added = added.With(c, total*priority.Share(c))
	}
	return needs.Add(added).NonNegative(), added
}

// NeedDirection summarizes a need's recent movement.
type NeedDirection string

const (
	NeedIncreasing NeedDirection = "increasing"
	NeedDecreasing NeedDirection = "decreasing"
	NeedSteady     NeedDirection = "steady"
)

// DirectionOf classifies an average delta.
func DirectionOf(delta float64) NeedDirection {
	switch {
	case delta > NeedDirectionBand:
		return NeedIncreasing
	case delta < -NeedDirectionBand:
		return NeedDecreasing
	default:
		return NeedSteady
	}
}

// NeedDirections classifies every need from its rolling window.
func NeedDirections(t NeedTrend) map[community.Category]NeedDirection {
	out := make(map[community.Category]NeedDirection, len(community.Categories))
	for _, c := range community.Categories {
		out[c] = DirectionOf(average(t.window(c)))
	}
	return out
}
