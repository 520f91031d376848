package engine

import (
	"maps"
	"slices"
	"time"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

// Status is the coarse health label shown to the player.
type Status string

const (
	StatusHolding       Status = "holding"
	StatusImproving     Status = "improving"
	StatusWellSupported Status = "well_supported"
)

// EventLogEntry records one resolved event.
type EventLogEntry struct {
	ID     events.ID       `json:"id"`
	Choice events.ChoiceID `json:"choice"`
	At     time.Time       `json:"at"`
}

// NeedTrend keeps one rolling window per need.
type NeedTrend struct {
	Food    []float64 `json:"food"`
	Shelter []float64 `json:"shelter"`
	Care    []float64 `json:"care"`
}

func (n NeedTrend) window(c community.Category) []float64 {
	switch c {
	case community.Food:
		return n.Food
	case community.Shelter:
		return n.Shelter
	default:
		return n.Care
	}
}

func (n NeedTrend) push(delta community.Amounts) NeedTrend {
	return NeedTrend{
		Food:    pushWindow(n.Food, delta.Food),
		Shelter: pushWindow(n.Shelter, delta.Shelter),
		Care:    pushWindow(n.Care, delta.Care),
	}
}

// Rolling holds the recent per-tick deltas used for trend judgments.
type Rolling struct {
	SupplyTrend []float64 `json:"supply_trend"`
	NeedTrend   NeedTrend `json:"need_trend"`

	// NeedShift accumulates need changes made by actions since the last
	// tick. The next tick folds it into NeedTrend.
	NeedShift community.Amounts `json:"need_shift"`
}

// pushWindow appends v and keeps the newest TrendWindow samples. It never
// aliases the input slice.
func pushWindow(w []float64, v float64) []float64 {
	start := 0
	if len(w)+1 > TrendWindow {
		start = len(w) + 1 - TrendWindow
	}
	out := make([]float64, 0, TrendWindow)
	out = append(out, w[start:]...)
	return append(out, v)
}

func average(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

// LegacyRun is the archived record of one prestiged run.
type LegacyRun struct {
	ID              string                  `json:"id"`
	StarEarned      int                     `json:"star_earned"`
	HighestTier     community.Scale         `json:"highest_tier"`
	IdentitySummary string                  `json:"identity_summary"`
	Decisions       []growth.DecisionRecord `json:"decisions"`
	Label           string                  `json:"label"`
	LegacyNote      string                  `json:"legacy_note"`
	CreatedAt       time.Time               `json:"created_at"`
}

// PrestigeSummary previews what committing prestige would archive.
type PrestigeSummary struct {
	StarToEarn      int                     `json:"star_to_earn"`
	HighestTier     community.Scale         `json:"highest_tier"`
	Decisions       []growth.DecisionRecord `json:"decisions"`
	IdentitySummary string                  `json:"identity_summary"`
}

// State is the whole community at one instant. Values are treated as
// immutable: every rule returns a fresh copy.
type State struct {
	Supplies      community.Amounts `json:"supplies"`
	Needs         community.Amounts `json:"needs"`
	Priority      community.Amounts `json:"priority"`
	VolunteerTime float64           `json:"volunteer_time"`

	Scale               community.Scale `json:"scale"`
	Investment          float64         `json:"investment"`
	DowngradeCount      int             `json:"downgrade_count"`
	LastUnsustainableAt time.Time       `json:"last_unsustainable_at,omitzero"`
	PrestigeStars       int             `json:"prestige_stars"`
	Status              Status          `json:"status"`

	LastActiveAt   time.Time `json:"last_active_at,omitzero"`
	LastCheckInAt  time.Time `json:"last_check_in_at,omitzero"`
	HasSeenCheckIn bool      `json:"has_seen_check_in"`

	CurrentEventID events.ID       `json:"current_event_id,omitempty"`
	LastEventAt    time.Time       `json:"last_event_at,omitzero"`
	EventLog       []EventLogEntry `json:"event_log"`

	SelfCare map[community.SelfCareID]time.Time `json:"self_care"`

	Selections      growth.Selections `json:"growth_selections"`
	PendingDecision growth.DecisionID `json:"pending_decision,omitempty"`
	Values          growth.ValueFlags `json:"values"`

	// PendingPrestige is never persisted.
	PendingPrestige   *PrestigeSummary `json:"pending_prestige,omitempty"`
	LegacyRuns        []LegacyRun      `json:"legacy_runs"`
	PinnedLegacyRunID string           `json:"pinned_legacy_run_id,omitempty"`

	Rolling Rolling `json:"rolling"`
}

// DefaultState is a brand new community.
func DefaultState(now time.Time) State {
	return State{
		Supplies:      community.Amounts{Food: 4, Shelter: 3, Care: 3},
		Needs:         community.Uniform(1),
		Priority:      community.DefaultPriority(),
		VolunteerTime: 5,
		Scale:         community.House,
		Status:        StatusHolding,
		LastActiveAt:  now,
		EventLog:      []EventLogEntry{},
		SelfCare:      map[community.SelfCareID]time.Time{},
		Selections:    growth.Selections{},
		Values:        growth.DeriveValueFlags(nil),
		LegacyRuns:    []LegacyRun{},
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.EventLog = slices.Clone(s.EventLog)
	out.SelfCare = maps.Clone(s.SelfCare)
	out.Selections = s.Selections.Clone()
	out.Values = maps.Clone(s.Values)
	out.Rolling = Rolling{
		SupplyTrend: slices.Clone(s.Rolling.SupplyTrend),
		NeedTrend: NeedTrend{
			Food:    slices.Clone(s.Rolling.NeedTrend.Food),
			Shelter: slices.Clone(s.Rolling.NeedTrend.Shelter),
			Care:    slices.Clone(s.Rolling.NeedTrend.Care),
		},
		NeedShift: s.Rolling.NeedShift,
	}
	if s.PendingPrestige != nil {
		p := *s.PendingPrestige
		p.Decisions = slices.Clone(p.Decisions)
		out.PendingPrestige = &p
	}
	out.LegacyRuns = make([]LegacyRun, len(s.LegacyRuns))
	for i, r := range s.LegacyRuns {
		r.Decisions = slices.Clone(r.Decisions)
		out.LegacyRuns[i] = r
	}
	return out
}

// Profile derives the modifier profile from the current selections.
func (s State) Profile() growth.Profile {
	return growth.BuildProfile(s.Selections)
}

// Rederive recomputes value flags and the pending decision from the
// selections and tier.
func (s State) Rederive() State {
	s.Values = growth.DeriveValueFlags(s.Selections)
	s.PendingDecision = ""
	if id, ok := growth.Pending(s.Scale, s.Selections); ok {
		s.PendingDecision = id
	}
	return s
}

// touch stamps the last activity time.
func (s State) touch(now time.Time) State {
	s.LastActiveAt = now
	return s
}
