package community

import "math"

// Priority weights always aim to sum to PriorityTotal with no weight under
// PriorityFloor. PriorityCeiling is the highest weight a single slider may
// request while both other weights can still sit on the floor.
const (
	PriorityTotal   = 3.0
	PriorityFloor   = 0.5
	PriorityCeiling = PriorityTotal - 2*PriorityFloor

	priorityEpsilon = 0.001
)

// DefaultPriority is the even split every new community starts with.
func DefaultPriority() Amounts {
	return Uniform(PriorityTotal / 3)
}

// NormalizePriority spreads the deviation from PriorityTotal evenly across the
// two categories the caller did not change, flooring each at PriorityFloor.
// When the floor stops a category from absorbing its half, the excess is left
// in place rather than pushed onto the third category.
func NormalizePriority(w Amounts, changed Category) Amounts {
	diff := w.Total() - PriorityTotal
	if math.Abs(diff) < priorityEpsilon {
		return w
	}

	share := diff / 2
	next := w
	for _, c := range Categories {
		if c == changed {
			continue
		}
		next = next.With(c, max(PriorityFloor, w.Get(c)-share))
	}
	return next
}

// SetPriority applies a slider change: value is clamped to
// [PriorityFloor, PriorityCeiling], the other weights are normalized, and any
// residual the floor left behind is settled onto the larger of the other two
// so the total lands exactly on PriorityTotal.
func SetPriority(w Amounts, c Category, value float64) Amounts {
	if math.IsNaN(value) {
		return w
	}
	value = min(PriorityCeiling, max(PriorityFloor, value))
	next := NormalizePriority(w.With(c, value), c)

	residual := PriorityTotal - next.Total()
	if math.Abs(residual) < 1e-12 {
		return next
	}

	a, b := others(c)
	if next.Get(b) > next.Get(a) {
		a, b = b, a
	}
	// a is the larger of the two; b is on or near the floor.
	next = next.With(a, max(PriorityFloor, next.Get(a)+residual))
	if r := PriorityTotal - next.Total(); math.Abs(r) > 1e-12 {
		next = next.With(b, max(PriorityFloor, next.Get(b)+r))
	}
	return next
}

// BoostPriority raises c by delta through the same path as a slider change.
func BoostPriority(w Amounts, c Category, delta float64) Amounts {
	return SetPriority(w, c, w.Get(c)+delta)
}

func others(c Category) (Category, Category) {
	switch c {
	case Food:
		return Shelter, Care
	case Shelter:
		return Food, Care
	default:
		return Food, Shelter
	}
}
