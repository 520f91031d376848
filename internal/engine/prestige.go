package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/growth"
)

// CanPrestige reports whether the community is at the top tier with no
// unanswered growth decision.
func CanPrestige(s State) bool {
	return s.Scale == community.MaxScale && s.PendingDecision == ""
}

func buildPrestigeSummary(s State) PrestigeSummary {
	return PrestigeSummary{
		StarToEarn:      s.PrestigeStars + 1,
		HighestTier:     s.Scale,
		Decisions:       growth.Records(s.Selections),
		IdentitySummary: growth.IdentitySummary(s.Values),
	}
}

// PreviewPrestige stores a summary of the run without changing anything else.
func PreviewPrestige(s State, now time.Time) (State, bool) {
	if !CanPrestige(s) {
		return s, false
	}
	summary := buildPrestigeSummary(s)
	next := s.Clone()
	next.PendingPrestige = &summary
	return next.touch(now), true
}

// CancelPrestige drops a stored preview.
func CancelPrestige(s State, now time.Time) State {
	s.PendingPrestige = nil
	return s.touch(now)
}

// CommitPrestige archives the run and starts over at the bottom tier with
// one more star. Stars, legacy runs and the pinned run survive.
func CommitPrestige(s State, now time.Time) (State, bool) {
	if !CanPrestige(s) {
		return s, false
	}
	summary := buildPrestigeSummary(s)
	if s.PendingPrestige != nil {
		summary = *s.PendingPrestige
	}

	run := LegacyRun{
		ID:              uuid.NewString(),
		StarEarned:      summary.StarToEarn,
		HighestTier:     summary.HighestTier,
		IdentitySummary: summary.IdentitySummary,
		Decisions:       summary.Decisions,
		Label:           legacyLabel(summary.StarToEarn),
		LegacyNote:      summary.IdentitySummary,
		CreatedAt:       now,
	}

	next := DefaultState(now)
	next.PrestigeStars = summary.StarToEarn
	next.LegacyRuns = append(s.Clone().LegacyRuns, run)
	next.PinnedLegacyRunID = s.PinnedLegacyRunID

	slog.Info("prestige committed",
		"stars", next.PrestigeStars,
		"run", run.ID,
		"decisions", len(run.Decisions),
	)
	return next, true
}

func legacyLabel(star int) string {
	return fmt.Sprintf("Star %d", star)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func (s State) legacyIndex(id string) int {
	for i, r := range s.LegacyRuns {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// RenameLegacyRun sets a run's label. Labels are trimmed and cut to
// LegacyLabelMax runes; blank labels are rejected.
func RenameLegacyRun(s State, id, label string, now time.Time) (State, bool) {
	i := s.legacyIndex(id)
	if i < 0 {
		return s, false
	}
	label = truncateRunes(strings.TrimSpace(label), LegacyLabelMax)
	if label == "" {
		return s, false
	}
	next := s.Clone()
	next.LegacyRuns[i].Label = label
	return next.touch(now), true
}

// SetLegacyNote replaces a run's note, cut to LegacyNoteMax runes.
func SetLegacyNote(s State, id, note string, now time.Time) (State, bool) {
	i := s.legacyIndex(id)
	if i < 0 {
		return s, false
	}
	next := s.Clone()
	next.LegacyRuns[i].LegacyNote = truncateRunes(note, LegacyNoteMax)
	return next.touch(now), true
}

// PinLegacyRun toggles the pinned run.
func PinLegacyRun(s State, id string, now time.Time) (State, bool) {
	if s.legacyIndex(id) < 0 {
		return s, false
	}
	if s.PinnedLegacyRunID == id {
		s.PinnedLegacyRunID = ""
	} else {
		s.PinnedLegacyRunID = id
	}
	return s.touch(now), true
}
