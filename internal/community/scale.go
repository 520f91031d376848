package community

import "fmt"

// Scale is a community size tier. Tiers are ordered; a higher value is a
// larger community.
type Scale uint8

const (
	House Scale = iota
	Block
	Village
	Town
	TownHall
	Apartment
	Neighborhood
	District
	Borough
	Municipal
	City
	Metropolis
	County
	Province
	Region
)

// MaxScale is the top of the ladder and the only tier that allows prestige.
const MaxScale = Region

// Tier holds the static numbers attached to one scale tier.
type Tier struct {
	Key   string
	Label string
	// Requirement is the cumulative investment needed to hold this tier
	// before prestige scaling.
	Requirement float64
	// Members is how many new dependents join each need bucket on upgrade.
	Members float64
	// NeedRate is needs generated per second at this tier.
	NeedRate float64
}

var tiers = [...]Tier{
	House:        {"house", "House", 0, 0, 0.03},
	Block:        {"block", "City Block", 120, 1, 0.039},
	Village:      {"village", "Village", 200, 1, 0.048},
	Town:         {"town", "Town", 300, 2, 0.057},
	TownHall:     {"townhall", "Town Hall", 450, 2, 0.066},
	Apartment:    {"apartment", "Apartment Complex", 650, 2, 0.075},
	Neighborhood: {"neighborhood", "Neighborhood", 900, 3, 0.084},
	District:     {"district", "District", 1200, 3, 0.093},
	Borough:      {"borough", "Borough", 1550, 4, 0.102},
	Municipal:    {"municipal", "Municipal", 1950, 4, 0.111},
	City:         {"city", "City", 2400, 5, 0.12},
	Metropolis:   {"metropolis", "Metropolis", 2900, 5, 0.129},
	County:       {"county", "County", 3500, 6, 0.138},
	Province:     {"province", "Province", 4200, 6, 0.147},
	Region:       {"region", "Region", 5000, 7, 0.156},
}

// Scales lists every tier in ascending order.
func Scales() []Scale {
	out := make([]Scale, len(tiers))
	for i := range tiers {
		out[i] = Scale(i)
	}
	return out
}

// Valid reports whether s is a known tier.
func (s Scale) Valid() bool {
	return int(s) < len(tiers)
}

// Tier returns the static tier data. Unknown tiers map to House.
func (s Scale) Tier() Tier {
	if !s.Valid() {
		return tiers[House]
	}
	return tiers[s]
}

func (s Scale) String() string {
	if !s.Valid() {
		return fmt.Sprintf("scale(%d)", s)
	}
	return tiers[s].Key
}

// Label is the display name of the tier.
func (s Scale) Label() string { return s.Tier().Label }

// Prev returns the tier below s. House has no lower tier.
func (s Scale) Prev() (Scale, bool) {
	if s == House || !s.Valid() {
		return House, false
	}
	return s - 1, true
}

// Next returns the tier above s.
func (s Scale) Next() (Scale, bool) {
	if s >= MaxScale {
		return MaxScale, false
	}
	return s + 1, true
}

// ParseScale maps a tier key such as "townhall" to its Scale.
func ParseScale(key string) (Scale, bool) {
	for i, t := range tiers {
		if t.Key == key {
			return Scale(i), true
		}
	}
	return House, false
}

func (s Scale) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown scale %d", s)
	}
	return []byte(tiers[s].Key), nil
}

func (s *Scale) UnmarshalText(b []byte) error {
	parsed, ok := ParseScale(string(b))
	if !ok {
		return fmt.Errorf("unknown scale %q", b)
	}
	*s = parsed
	return nil
}

// PrestigeRequirementStep is the fractional increase in every tier
// requirement per prestige star earned.
const PrestigeRequirementStep = 0.25

// RequiredInvestment returns the prestige-scaled investment for s.
func RequiredInvestment(s Scale, prestigeStars int) float64 {
	return s.Tier().Requirement * (1 + float64(prestigeStars)*PrestigeRequirementStep)
}
