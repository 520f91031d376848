package persistence

import (
	"fmt"
	"time"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/engine"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

// SchemaVersion is bumped on breaking changes to the envelope shape. Saves
// from a newer schema are discarded.
const SchemaVersion = 7

// DefaultKey is where the community is saved.
const DefaultKey = "commons_state"

// envelope is the persisted form. Field names and millisecond timestamps
// stay stable across releases; zero timestamps mean unset. Pointer fields
// distinguish "absent" from zero for migrations.
type envelope struct {
	SchemaVersion int    `json:"schemaVersion,omitempty"`
	AppVersion    string `json:"appVersion,omitempty"`

	// Supplies is the single shared pool used before schema 2.
	Supplies        *float64 `json:"supplies,omitempty"`
	SuppliesFood    *float64 `json:"suppliesFood,omitempty"`
	SuppliesShelter *float64 `json:"suppliesShelter,omitempty"`
	SuppliesCare    *float64 `json:"suppliesCare,omitempty"`

	VolunteerTime *float64           `json:"volunteerTime,omitempty"`
	Needs         *community.Amounts `json:"needs,omitempty"`
	Priority      *community.Amounts `json:"priority,omitempty"`

	CommunityScale      string   `json:"communityScale,omitempty"`
	CommunityInvestment *float64 `json:"communityInvestment,omitempty"`
	DowngradeCount      int      `json:"downgradeCount,omitempty"`
	LastUnsustainableAt int64    `json:"lastUnsustainableAt,omitempty"`
	PrestigeStars       int      `json:"prestigeStars,omitempty"`
	Status              string   `json:"status,omitempty"`

	LastActiveAt   int64 `json:"lastActiveAt,omitempty"`
	LastCheckInAt  int64 `json:"lastCheckInAt,omitempty"`
	HasSeenCheckIn bool  `json:"hasSeenCheckIn,omitempty"`

	CurrentEventID string          `json:"currentEventId,omitempty"`
	LastEventAt    int64           `json:"lastEventAt,omitempty"`
	EventLog       []eventLogEntry `json:"eventLog,omitempty"`

	SelfCareTimestamps map[string]int64 `json:"selfCareActionTimestamps,omitempty"`

	Selections      map[string]string `json:"growthDecisionSelections,omitempty"`
	PendingDecision string            `json:"pendingGrowthDecisionId,omitempty"`
	Values          map[string]bool   `json:"communityValues,omitempty"`

	LegacyRuns        []legacyRun `json:"legacyRuns,omitempty"`
	PinnedLegacyRunID string      `json:"pinnedLegacyRunId,omitempty"`
}

type eventLogEntry struct {
	ID     string `json:"id"`
	Choice string `json:"choice"`
	At     int64  `json:"at"`
}

type legacyDecision struct {
	ID      string `json:"id"`
	Tier    string `json:"tier"`
	Prompt  string `json:"prompt"`
	Choice  string `json:"choice"`
	Summary string `json:"summary"`
}

type legacyRun struct {
	ID              string           `json:"id"`
	StarEarned      int              `json:"starEarned"`
	HighestTier     string           `json:"highestTier"`
	IdentitySummary string           `json:"identitySummary"`
	Decisions       []legacyDecision `json:"decisions"`
	Label           string           `json:"label,omitempty"`
	LegacyNote      string           `json:"legacyNote,omitempty"`
	CreatedAt       int64            `json:"createdAt"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func ptr[T any](v T) *T { return &v }

// encode builds the allow-listed envelope for s. PendingPrestige and the
// rolling windows are deliberately left out.
func encode(s engine.State, appVersion string) envelope {
	env := envelope{
		SchemaVersion:       SchemaVersion,
		AppVersion:          appVersion,
		SuppliesFood:        ptr(s.Supplies.Food),
		SuppliesShelter:     ptr(s.Supplies.Shelter),
		SuppliesCare:        ptr(s.Supplies.Care),
		VolunteerTime:       ptr(s.VolunteerTime),
		Needs:               ptr(s.Needs),
		Priority:            ptr(s.Priority),
		CommunityScale:      s.Scale.String(),
		CommunityInvestment: ptr(s.Investment),
		DowngradeCount:      s.DowngradeCount,
		LastUnsustainableAt: toMillis(s.LastUnsustainableAt),
		PrestigeStars:       s.PrestigeStars,
		Status:              string(s.Status),
		LastActiveAt:        toMillis(s.LastActiveAt),
		LastCheckInAt:       toMillis(s.LastCheckInAt),
		HasSeenCheckIn:      s.HasSeenCheckIn,
		CurrentEventID:      string(s.CurrentEventID),
		LastEventAt:         toMillis(s.LastEventAt),
		PendingDecision:     string(s.PendingDecision),
		PinnedLegacyRunID:   s.PinnedLegacyRunID,
	}

	for _, e := range s.EventLog {
		env.EventLog = append(env.EventLog, eventLogEntry{ID: string(e.ID), Choice: string(e.Choice), At: toMillis(e.At)})
	}
	if len(s.SelfCare) > 0 {
		env.SelfCareTimestamps = make(map[string]int64, len(s.SelfCare))
		for id, at := range s.SelfCare {
			env.SelfCareTimestamps[string(id)] = toMillis(at)
		}
	}
	if len(s.Selections) > 0 {
		env.Selections = make(map[string]string, len(s.Selections))
		for id, key := range s.Selections {
			env.Selections[string(id)] = string(key)
		}
	}
	env.Values = make(map[string]bool, len(s.Values))
	for flag, on := range s.Values {
		env.Values[string(flag)] = on
	}
	for _, r := range s.LegacyRuns {
		run := legacyRun{
			ID:              r.ID,
			StarEarned:      r.StarEarned,
			HighestTier:     r.HighestTier.String(),
			IdentitySummary: r.IdentitySummary,
			Label:           r.Label,
			LegacyNote:      r.LegacyNote,
			CreatedAt:       toMillis(r.CreatedAt),
		}
		for _, d := range r.Decisions {
			run.Decisions = append(run.Decisions, legacyDecision{
				ID: string(d.ID), Tier: d.Tier, Prompt: d.Prompt, Choice: d.Choice, Summary: d.Summary,
			})
		}
		env.LegacyRuns = append(env.LegacyRuns, run)
	}
	return env
}

// version returns the schema version, treating a missing one as 1.
func (e envelope) version() int {
	if e.SchemaVersion <= 0 {
		return 1
	}
	return e.SchemaVersion
}

// decode lays the envelope over base. Unknown enum values fall back to the
// base value rather than failing the whole restore.
func decode(env envelope, base engine.State) engine.State {
	s := base.Clone()

	if env.version() < 2 && env.Supplies != nil && *env.Supplies > 0 {
		s.Supplies = community.Uniform(*env.Supplies / 3)
	}
	if env.SuppliesFood != nil {
		s.Supplies.Food = *env.SuppliesFood
	}
	if env.SuppliesShelter != nil {
		s.Supplies.Shelter = *env.SuppliesShelter
	}
	if env.SuppliesCare != nil {
		s.Supplies.Care = *env.SuppliesCare
	}
	s.Supplies = s.Supplies.NonNegative()

	if env.VolunteerTime != nil {
		s.VolunteerTime = *env.VolunteerTime
	}
	if env.Needs != nil {
		s.Needs = env.Needs.NonNegative()
	}
	if env.Priority != nil {
		s.Priority = *env.Priority
	}

	if scale, ok := community.ParseScale(env.CommunityScale); ok {
		s.Scale = scale
	}
	if env.CommunityInvestment != nil {
		s.Investment = max(0, *env.CommunityInvestment)
	}
	s.DowngradeCount = max(0, env.DowngradeCount)
	s.LastUnsustainableAt = fromMillis(env.LastUnsustainableAt)
	s.PrestigeStars = max(0, env.PrestigeStars)
	switch st := engine.Status(env.Status); st {
	case engine.StatusHolding, engine.StatusImproving, engine.StatusWellSupported:
		s.Status = st
	}

	s.LastActiveAt = fromMillis(env.LastActiveAt)
	s.LastCheckInAt = fromMillis(env.LastCheckInAt)
	s.HasSeenCheckIn = env.HasSeenCheckIn

	if _, ok := events.Find(events.ID(env.CurrentEventID)); ok {
		s.CurrentEventID = events.ID(env.CurrentEventID)
	}
	s.LastEventAt = fromMillis(env.LastEventAt)
	for _, e := range env.EventLog {
		s.EventLog = append(s.EventLog, engine.EventLogEntry{
			ID: events.ID(e.ID), Choice: events.ChoiceID(e.Choice), At: fromMillis(e.At),
		})
	}

	for id, at := range env.SelfCareTimestamps {
		s.SelfCare[community.SelfCareID(id)] = fromMillis(at)
	}
	for id, key := range env.Selections {
		if growth.Valid(growth.DecisionID(id), growth.ChoiceKey(key)) {
			s.Selections[growth.DecisionID(id)] = growth.ChoiceKey(key)
		}
	}

	for i, r := range env.LegacyRuns {
		run := engine.LegacyRun{
			ID:              r.ID,
			StarEarned:      r.StarEarned,
			IdentitySummary: r.IdentitySummary,
			Label:           r.Label,
			LegacyNote:      r.LegacyNote,
			CreatedAt:       fromMillis(r.CreatedAt),
		}
		if tier, ok := community.ParseScale(r.HighestTier); ok {
			run.HighestTier = tier
		}
		for _, d := range r.Decisions {
			run.Decisions = append(run.Decisions, growth.DecisionRecord{
				ID: growth.DecisionID(d.ID), Tier: d.Tier, Prompt: d.Prompt, Choice: d.Choice, Summary: d.Summary,
			})
		}
		if run.Label == "" {
			star := r.StarEarned
			if star <= 0 {
				star = i + 1
			}
			run.Label = fmt.Sprintf("Star %d", star)
		}
		if run.LegacyNote == "" {
			run.LegacyNote = run.IdentitySummary
		}
		s.LegacyRuns = append(s.LegacyRuns, run)
	}
	s.PinnedLegacyRunID = env.PinnedLegacyRunID

	// Flags and the pending decision are always derived, never trusted.
	return s.Rederive()
}
