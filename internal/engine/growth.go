package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/commons/internal/growth"
)

// ChooseGrowth records key for the pending decision id. Only the currently
// pending decision can be answered, and only with one of its own choices.
func ChooseGrowth(s State, id growth.DecisionID, key growth.ChoiceKey, now time.Time) (State, bool) {
	if s.PendingDecision == "" || s.PendingDecision != id {
		return s, false
	}
	if !growth.Valid(id, key) {
		return s, false
	}

	next := s.Clone()
	next.Selections[id] = key
	next = next.Rederive()

	slog.Info("growth decision made", "decision", string(id), "choice", string(key))
	return next.touch(now), true
}
