package caretaker

import "github.com/talgya/commons/internal/community"

// Health levels, worst first.
const (
	LevelStrained = "STRAINED" // some need exceeds its supply
	LevelWatch    = "WATCH"    // some need is rising
	LevelHealthy  = "HEALTHY"
)

// helpThreshold is the smallest need worth spending supplies on.
const helpThreshold = 1.0

// Step is one API call the caretaker intends to make.
type Step struct {
	Path   string
	Body   map[string]any
	Reason string
}

// Plan is the outcome of Triage.
type Plan struct {
	Level string
	Steps []Step
}

// Triage turns a snapshot into an ordered plan. It is deterministic and
// makes no calls.
func Triage(snap *Snapshot) Plan {
	st := snap.Status
	p := Plan{Level: level(st)}

	if cur := snap.Events.Current; cur != nil && len(cur.Choices) > 0 {
		neediest := neediest(st)
		best, bestScore := 0, 0.0
		for i, c := range cur.Choices {
			score := c.Effect.Supplies.Total() + 10*c.Effect.Boost.Get(neediest)
			if i == 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		c := cur.Choices[best]
		p.Steps = append(p.Steps, Step{
			Path:   "/api/v1/events/resolve",
			Body:   map[string]any{"choice": c.ID},
			Reason: "event " + string(cur.ID) + ": " + c.Summary,
		})
	}

	if st.CheckInReady {
		p.Steps = append(p.Steps, Step{Path: "/api/v1/checkin", Reason: "weekly check-in"})
	}

	for _, c := range community.Categories {
		need := st.Needs.Get(c)
		if need >= helpThreshold && st.Supplies.Get(c) >= need {
			p.Steps = append(p.Steps, Step{
				Path:   "/api/v1/help",
				Body:   map[string]any{"category": c, "all": true},
				Reason: c.Label() + " need covered from supply",
			})
		}
	}

	if sc, ok := pickSelfCare(st, snap.SelfCare); ok {
		p.Steps = append(p.Steps, Step{
			Path:   "/api/v1/selfcare",
			Body:   map[string]any{"id": sc.ID},
			Reason: "self-care for " + sc.Category.Label(),
		})
	}
	return p
}

func level(st StatusView) string {
	for _, c := range community.Categories {
		if st.Needs.Get(c) > st.Supplies.Get(c) {
			return LevelStrained
		}
	}
	for _, d := range st.NeedDirections {
		if d == "increasing" {
			return LevelWatch
		}
	}
	return LevelHealthy
}

// neediest returns the category with the largest need over supply.
func neediest(st StatusView) community.Category {
	best := community.Food
	gap := st.Needs.Get(best) - st.Supplies.Get(best)
	for _, c := range community.Categories[1:] {
		if g := st.Needs.Get(c) - st.Supplies.Get(c); g > gap {
			best, gap = c, g
		}
	}
	return best
}

// pickSelfCare chooses an available action for the lowest supply, preferring
// the bigger bonus.
func pickSelfCare(st StatusView, actions []SelfCareView) (SelfCareView, bool) {
	var (
		best  SelfCareView
		found bool
	)
	for _, a := range actions {
		if !a.Available {
			continue
		}
		if !found {
			best, found = a, true
			continue
		}
		have, bestHave := st.Supplies.Get(a.Category), st.Supplies.Get(best.Category)
		if have < bestHave || (have == bestHave && a.Bonus > best.Bonus) {
			best = a
		}
	}
	return best, found
}
