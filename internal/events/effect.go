// Package events holds the fixed catalog of community events and the
// effects their choices carry.
package events

import (
	"fmt"
	"strings"

	"github.com/talgya/commons/internal/community"
)

// WipeRisk describes a chance to lose part of a need bucket. It is carried
// on effect data but never applied.
type WipeRisk struct {
	Target      community.Category `json:"target"`
	Chance      float64            `json:"chance"`
	MinFraction float64            `json:"min_fraction"`
	MaxFraction float64            `json:"max_fraction"`
}

// Effect is what resolving one event choice does to the community.
// Supplies are absolute deltas; Boost values are added to priority weights.
type Effect struct {
	Supplies community.Amounts `json:"supplies"`
	Boost    community.Amounts `json:"priority_boost"`
	Wipe     *WipeRisk         `json:"wipe_risk,omitempty"`
}

// BoostOrder is the order in which priority boosts are applied.
var BoostOrder = [...]community.Category{community.Food, community.Care, community.Shelter}

func signed(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	if v > 0 {
		s = "+" + s
	}
	return s
}

// Describe renders e as a short human summary, e.g. "Food +2.00, Care
// priority +10%".
func Describe(e Effect) string {
	var parts []string
	for _, c := range community.Categories {
		if v := e.Supplies.Get(c); v != 0 {
			parts = append(parts, c.Label()+" "+signed(v, "%.2f"))
		}
	}
	for _, c := range community.Categories {
		if v := e.Boost.Get(c); v != 0 {
			parts = append(parts, c.Label()+" priority "+signed(v*100, "%.0f")+"%")
		}
	}
	if len(parts) == 0 {
		return "No change"
	}
	return strings.Join(parts, ", ")
}
