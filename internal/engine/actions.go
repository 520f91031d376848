package engine

import (
	"math"
	"time"

	"github.com/talgya/commons/internal/community"
)

// SetPriority moves one priority slider.
func SetPriority(s State, c community.Category, value float64, now time.Time) (State, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return s, false
	}
	s.Priority = community.SetPriority(s.Priority, c, value)
	return s.touch(now), true
}

// HelpMember spends up to HelpStep of c's supply to reduce c's need.
func HelpMember(s State, c community.Category, now time.Time) (State, bool) {
	have := s.Supplies.Get(c)
	if have <= 0 {
		return s, false
	}
	return help(s, c, min(HelpStep, have), now), true
}

// HelpMembersMax spends as much of c's supply as c's need can absorb.
func HelpMembersMax(s State, c community.Category, now time.Time) (State, bool) {
	spend := min(s.Supplies.Get(c), s.Needs.Get(c))
	if spend <= 0 {
		return s, false
	}
	return help(s, c, spend, now), true
}

func help(s State, c community.Category, spend float64, now time.Time) State {
	s.Supplies = s.Supplies.With(c, s.Supplies.Get(c)-spend)
	relief := min(spend, s.Needs.Get(c))
	s.Needs = s.Needs.With(c, s.Needs.Get(c)-relief)
	s.Rolling.NeedShift = s.Rolling.NeedShift.With(c, s.Rolling.NeedShift.Get(c)-relief)
	return s.touch(now)
}

// Trade exchanges supplies at one of the fixed rates.
func Trade(s State, opt community.TradeOption, now time.Time) (State, bool) {
	t, ok := opt.Trade()
	if !ok || s.Supplies.Get(t.From) < t.Cost {
		return s, false
	}
	s.Supplies = s.Supplies.
		With(t.From, s.Supplies.Get(t.From)-t.Cost).
		With(t.To, s.Supplies.Get(t.To)+t.Gain)
	return s.touch(now), true
}

// SelfCareRemaining is the cooldown left on an action; zero means ready.
func SelfCareRemaining(s State, id community.SelfCareID, now time.Time) time.Duration {
	last, ok := s.SelfCare[id]
	if !ok || last.IsZero() {
		return 0
	}
	return max(0, SelfCareCooldown-now.Sub(last))
}

// CompleteSelfCare credits an action's bonus to its category and starts its
// cooldown.
func CompleteSelfCare(s State, id community.SelfCareID, now time.Time) (State, bool) {
	a, ok := community.LookupSelfCare(id)
	if !ok || SelfCareRemaining(s, id, now) > 0 {
		return s, false
	}
	next := s.Clone()
	if next.SelfCare == nil {
		next.SelfCare = map[community.SelfCareID]time.Time{}
	}
	next.SelfCare[id] = now
	next.Supplies = next.Supplies.With(a.Category, next.Supplies.Get(a.Category)+a.Bonus)
	return next.touch(now), true
}

// CheckInEligible reports whether a weekly check-in may be submitted. A
// community that has never been restored from a save is not eligible.
func CheckInEligible(s State, now time.Time) bool {
	if !s.HasSeenCheckIn {
		return false
	}
	if s.LastCheckInAt.IsZero() {
		return true
	}
	return now.Sub(s.LastCheckInAt) >= CheckInInterval
}

// SubmitCheckIn adds CheckInBonus to every pool.
func SubmitCheckIn(s State, now time.Time) (State, bool) {
	if !CheckInEligible(s, now) {
		return s, false
	}
	s.Supplies = s.Supplies.Add(community.Uniform(CheckInBonus))
	s.LastCheckInAt = now
	return s.touch(now), true
}

// AddSupplies tops up every pool. Used by admin tooling.
func AddSupplies(s State, amount float64, now time.Time) (State, bool) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return s, false
	}
	s.Supplies = s.Supplies.Add(community.Uniform(amount))
	return s.touch(now), true
}
