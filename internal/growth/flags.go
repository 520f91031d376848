package growth

import "sort"

// ValueFlag is a cultural tag derived from resolved choices. Some choices
// share a tag; the rest are tagged by their own key.
type ValueFlag string

const (
	FlagTrustFocused            ValueFlag = "trustFocused"
	FlagCareFirst               ValueFlag = "careFirst"
	FlagInformalCoordination    ValueFlag = "informalCoordination"
	FlagParticipatoryGovernance ValueFlag = "participatoryGovernance"
	FlagDenseLiving             ValueFlag = "denseLiving"
	FlagIdentityStrong          ValueFlag = "identityStrong"
	FlagAdaptiveGovernance      ValueFlag = "adaptiveGovernance"
	FlagAidAnchor               ValueFlag = "aidAnchor"

	FlagIndependentUnits  ValueFlag = ValueFlag(IndependentUnits)
	FlagWorkFirst         ValueFlag = ValueFlag(WorkFirst)
	FlagMixedFocus        ValueFlag = ValueFlag(MixedFocus)
	FlagFormalGovernance  ValueFlag = ValueFlag(FormalGovernance)
	FlagDelegatedCircles  ValueFlag = ValueFlag(DelegatedCircles)
	FlagDistributedLiving ValueFlag = ValueFlag(DistributedLiving)
	FlagSpecialization    ValueFlag = ValueFlag(Specialization)
	FlagLayeredGovernance ValueFlag = ValueFlag(LayeredGovernance)
	FlagSkillSharing      ValueFlag = ValueFlag(SkillSharing)
)

var flagLabels = map[ValueFlag]string{
	FlagTrustFocused:            "Trust-first mutuality",
	FlagCareFirst:               "Care-first ethic",
	FlagInformalCoordination:    "Informal coordination",
	FlagParticipatoryGovernance: "Participatory governance",
	FlagDenseLiving:             "Dense shared living",
	FlagIdentityStrong:          "Identity-led culture",
	FlagAdaptiveGovernance:      "Adaptive governance",
	FlagAidAnchor:               "Mutual aid anchor",
	FlagIndependentUnits:        "Autonomy and independence",
	FlagWorkFirst:               "Output-first mindset",
	FlagMixedFocus:              "Balanced approach",
	FlagFormalGovernance:        "Formal governance",
	FlagDelegatedCircles:        "Delegated circles",
	FlagDistributedLiving:       "Distributed layout",
	FlagSpecialization:          "Focused specialization",
	FlagLayeredGovernance:       "Layered governance",
	FlagSkillSharing:            "Skill-sharing culture",
}

// Label returns the display name, or the raw key for untitled flags.
func (f ValueFlag) Label() string {
	if l, ok := flagLabels[f]; ok {
		return l
	}
	return string(f)
}

// ValueFlags holds every known flag and every choice key, false unless set.
type ValueFlags map[ValueFlag]bool

// EmptyValueFlags returns a map with every key present and false.
func EmptyValueFlags() ValueFlags {
	flags := make(ValueFlags)
	for _, d := range decisions {
		for _, c := range d.Choices {
			flags[c.Flag] = false
			flags[ValueFlag(c.Key)] = false
		}
	}
	return flags
}

// DeriveValueFlags marks the tag of every resolved choice.
func DeriveValueFlags(sel Selections) ValueFlags {
	flags := EmptyValueFlags()
	for _, d := range decisions {
		key, ok := sel[d.ID]
		if !ok {
			continue
		}
		if c, ok := d.Choice(key); ok {
			flags[c.Flag] = true
		}
	}
	return flags
}

// Active returns the set flags in sorted order.
func (f ValueFlags) Active() []ValueFlag {
	var out []ValueFlag
	for k, v := range f {
		if v {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
