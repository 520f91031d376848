package growth

// Profile scales supply gain, need generation and event outcomes, and
// biases the sustainability and status thresholds.
type Profile struct {
	SupplyGainMultiplier     float64 `json:"supply_gain_multiplier"`
	NeedGenerationMultiplier float64 `json:"need_generation_multiplier"`
	EventPositiveMultiplier  float64 `json:"event_positive_multiplier"`
	EventNegativeMultiplier  float64 `json:"event_negative_multiplier"`
	ResilienceBias           float64 `json:"resilience_bias"`
}

// Clamp bounds applied after every composition step.
const (
	MultiplierMin      = 0.85
	MultiplierMax      = 1.25
	EventMultiplierMax = 1.35
	BiasLimit          = 0.3
)

// BaseProfile is the neutral profile of a community with no decisions.
func BaseProfile() Profile {
	return Profile{
		SupplyGainMultiplier:     1,
		NeedGenerationMultiplier: 1,
		EventPositiveMultiplier:  1,
		EventNegativeMultiplier:  1,
	}
}

// modifier is a partial profile; zero multipliers mean "unchanged".
type modifier struct {
	supply, need, positive, negative, bias float64
}

var choiceModifiers = map[ChoiceKey]modifier{
	SharedLiving:           {supply: 0.97, need: 0.95, positive: 0.98, negative: 0.98, bias: 0.04},
	SkillSharing:           {supply: 1.06, need: 1.05, bias: -0.04},
	IndependentUnits:       {supply: 0.93, need: 0.94, positive: 0.97, negative: 0.97, bias: 0.02},
	CareFirst:              {supply: 0.94, need: 0.9, bias: 0.08},
	WorkFirst:              {supply: 1.07, need: 1.08, bias: -0.08},
	MixedFocus:             {},
	InformalNetworks:       {positive: 1.1, negative: 1.1, bias: 0.03},
	StructuredRoles:        {supply: 0.98, positive: 0.93, negative: 0.9},
	RotatingResponsibility: {supply: 0.99, need: 0.97, bias: 0.02},
	CentralCouncil:         {supply: 0.97, positive: 0.95, negative: 0.92},
	OpenAssemblies:         {supply: 0.95, negative: 0.97, bias: 0.1},
	DelegatedCircles:       {supply: 1.05, need: 1.03, positive: 1.02, negative: 1.03},
	DenseLiving:            {supply: 1.05, need: 1.06, negative: 1.1},
	DistributedLiving:      {supply: 0.95, need: 0.94, negative: 0.95},
	HybridLayout:           {supply: 1, need: 0.99},
	StrongLocalIdentity:    {supply: 0.96, need: 0.93, negative: 0.97, bias: 0.05},
	OpenGrowth:             {supply: 1.08, need: 1.08, negative: 1.05, bias: -0.04},
	Specialization:         {supply: 1.06, need: 1.03, positive: 1.04, negative: 1.02},
	FormalGovernance:       {supply: 0.97, need: 1.02, positive: 0.95, negative: 0.9, bias: 0.02},
	AdaptiveGovernance:     {supply: 1.06, need: 0.96, positive: 1.1, negative: 1.1, bias: 0.03},
	LayeredGovernance:      {supply: 0.94, need: 0.95, negative: 0.96, bias: 0.07},
	MutualAidAnchor:        {supply: 0.99, need: 1.06, positive: 1.3, negative: 1.15},
	SelfSustainingRegion:   {supply: 1.08, need: 0.97, positive: 0.9, negative: 0.95},
	KnowledgeTrainingHub:   {supply: 1.04, need: 0.98, positive: 1.05, negative: 0.98},
}

func factor(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// apply composes one choice onto p, clamping after the step.
func (p Profile) apply(m modifier) Profile {
	return Profile{
		SupplyGainMultiplier:     clamp(p.SupplyGainMultiplier*factor(m.supply), MultiplierMin, MultiplierMax),
		NeedGenerationMultiplier: clamp(p.NeedGenerationMultiplier*factor(m.need), MultiplierMin, MultiplierMax),
		EventPositiveMultiplier:  clamp(p.EventPositiveMultiplier*factor(m.positive), MultiplierMin, EventMultiplierMax),
		EventNegativeMultiplier:  clamp(p.EventNegativeMultiplier*factor(m.negative), MultiplierMin, EventMultiplierMax),
		ResilienceBias:           clamp(p.ResilienceBias+m.bias, -BiasLimit, BiasLimit),
	}
}

// BuildProfile folds the modifiers of every resolved choice, in decision
// order, onto the base profile. Unknown choices are ignored.
func BuildProfile(sel Selections) Profile {
	p := BaseProfile()
	for _, d := range decisions {
		key, ok := sel[d.ID]
		if !ok {
			continue
		}
		m, ok := choiceModifiers[key]
		if !ok {
			continue
		}
		p = p.apply(m)
	}
	return p
}
