// Package community defines the resource categories, tier ladder and static
// catalogs shared by every simulation system.
package community

import "fmt"

// Category is one of the three resource/need buckets.
type Category uint8

const (
	Food Category = iota
	Shelter
	Care
)

// Categories lists every category in canonical order.
var Categories = [...]Category{Food, Shelter, Care}

var categoryNames = [...]string{"food", "shelter", "care"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", c)
}

// Label returns the capitalized display name.
func (c Category) Label() string {
	switch c {
	case Food:
		return "Food"
	case Shelter:
		return "Shelter"
	case Care:
		return "Care"
	}
	return c.String()
}

// ParseCategory maps a lowercase name to a Category.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return 0, false
}

func (c Category) MarshalText() ([]byte, error) {
	if int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("unknown category %d", c)
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown category %q", b)
	}
	*c = parsed
	return nil
}

// Amounts holds one value per category. It is used for supplies, needs and
// priority weights alike.
type Amounts struct {
	Food    float64 `json:"food"`
	Shelter float64 `json:"shelter"`
	Care    float64 `json:"care"`
}

// Uniform returns Amounts with v in every category.
func Uniform(v float64) Amounts {
	return Amounts{Food: v, Shelter: v, Care: v}
}

// Get returns the value for c.
func (a Amounts) Get(c Category) float64 {
	switch c {
	case Food:
		return a.Food
	case Shelter:
		return a.Shelter
	case Care:
		return a.Care
	}
	return 0
}

// With returns a copy of a with c set to v.
func (a Amounts) With(c Category, v float64) Amounts {
	switch c {
	case Food:
		a.Food = v
	case Shelter:
		a.Shelter = v
	case Care:
		a.Care = v
	}
	return a
}

// Total sums all three categories.
func (a Amounts) Total() float64 {
	return a.Food + a.Shelter + a.Care
}

// Share returns c's fraction of the total, or 0 when the total is 0.
func (a Amounts) Share(c Category) float64 {
	total := a.Total()
	if total == 0 {
		return 0
	}
	return a.Get(c) / total
}

// Add returns the element-wise sum.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{Food: a.Food + b.Food, Shelter: a.Shelter + b.Shelter, Care: a.Care + b.Care}
}

// Sub returns the element-wise difference.
func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{Food: a.Food - b.Food, Shelter: a.Shelter - b.Shelter, Care: a.Care - b.Care}
}

// NonNegative clamps every category at 0.
func (a Amounts) NonNegative() Amounts {
	return Amounts{Food: max(0, a.Food), Shelter: max(0, a.Shelter), Care: max(0, a.Care)}
}
