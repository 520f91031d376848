package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/commons/internal/community"
)

// AttemptUpgrade moves the community to target. When invested capital
// already covers the prestige-scaled requirement it is a plain switch.
// Otherwise the gap is taken from supplies in proportion to each pool and
// the target's new members join every need bucket. It reports false and
// leaves s untouched when the target is invalid or supplies fall short.
func AttemptUpgrade(s State, target community.Scale, now time.Time) (State, bool) {
	if !target.Valid() || target == s.Scale {
		return s, false
	}

	required := community.RequiredInvestment(target, s.PrestigeStars)
	next := s.Clone()

	if s.Investment >= required {
		next.Scale = target
		if target > s.Scale {
			next.DowngradeCount = 0
		}
		return next.Rederive().touch(now), true
	}

	gap := required - s.Investment
	total := s.Supplies.Total()
	if total < gap {
		return s, false
	}

	var spend community.Amounts
	for _, c := range community.Categories {
		spend = spend.With(c, min(s.Supplies.Get(c), gap*s.Supplies.Share(c)))
	}
	members := target.Tier().Members

	next.Supplies = s.Supplies.Sub(spend).NonNegative()
	next.Investment = s.Investment + gap
	next.Scale = target
	next.Needs = s.Needs.Add(community.Uniform(members))
	next.Rolling.NeedShift = s.Rolling.NeedShift.Add(community.Uniform(members))
	if target > s.Scale {
		next.DowngradeCount = 0
	}

	slog.Info("community upgraded",
		"from", s.Scale.String(),
		"to", target.String(),
		"invested", gap,
		"members", members,
	)
	return next.Rederive().touch(now), true
}
