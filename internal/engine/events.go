package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/entropy"
	"github.com/talgya/commons/internal/events"
	"github.com/talgya/commons/internal/growth"
)

// EventEligible reports whether a new event may be raised at now.
func EventEligible(s State, now time.Time) bool {
	if s.CurrentEventID != "" {
		return false
	}
	if s.LastEventAt.IsZero() {
		return true
	}
	return now.Sub(s.LastEventAt) >= max(EventInterval, EventMinSpacing)
}

// MaybeTriggerEvent raises a random catalog event when eligible.
func MaybeTriggerEvent(s State, src entropy.Source, now time.Time) (State, bool) {
	if !EventEligible(s, now) {
		return s, false
	}
	return raiseEvent(s, events.Pick(src), now), true
}

// ForceEvent raises e regardless of spacing, but never over a pending one.
func ForceEvent(s State, e events.Event, now time.Time) (State, bool) {
	if s.CurrentEventID != "" {
		return s, false
	}
	return raiseEvent(s, e, now), true
}

func raiseEvent(s State, e events.Event, now time.Time) State {
	slog.Info("event raised", "event", string(e.ID), "title", e.Title)
	s.CurrentEventID = e.ID
	return s.touch(now)
}

// ScaleEventDelta applies the profile's event multiplier matching the sign
// of d.
func ScaleEventDelta(d float64, p growth.Profile) float64 {
	switch {
	case d > 0:
		return d * p.EventPositiveMultiplier
	case d < 0:
		return d * p.EventNegativeMultiplier
	}
	return 0
}

// CurrentEvent returns the pending event, if any.
func CurrentEvent(s State) (events.Event, bool) {
	if s.CurrentEventID == "" {
		return events.Event{}, false
	}
	return events.Find(s.CurrentEventID)
}

// ResolveEvent applies choice to the pending event. Supply deltas are
// scaled by the profile's positive or negative event multiplier, priority
// boosts go through the normalizer in BoostOrder, and the event is logged
// and cleared. It is a no-op without a pending event or for an unknown
// choice.
func ResolveEvent(s State, choice events.ChoiceID, now time.Time) (State, bool) {
	e, ok := CurrentEvent(s)
	if !ok {
		return s, false
	}
	c, ok := e.Choice(choice)
	if !ok {
		return s, false
	}

	profile := s.Profile()
	next := s.Clone()
	for _, cat := range events.BoostOrder {
		if b := c.Effect.Boost.Get(cat); b != 0 {
			next.Priority = community.BoostPriority(next.Priority, cat, b)
		}
	}
	for _, cat := range community.Categories {
		d := ScaleEventDelta(c.Effect.Supplies.Get(cat), profile)
		next.Supplies = next.Supplies.With(cat, max(0, next.Supplies.Get(cat)+d))
	}

	next.CurrentEventID = ""
	next.LastEventAt = now
	next.EventLog = append(next.EventLog, EventLogEntry{ID: e.ID, Choice: choice, At: now})

	slog.Info("event resolved", "event", string(e.ID), "choice", string(choice), "effect", events.Describe(c.Effect))
	return next.touch(now), true
}
