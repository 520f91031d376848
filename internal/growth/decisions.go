// Package growth holds the permanent growth decisions offered at scale
// transitions and derives the modifier profile and value flags from them.
package growth

import (
	"fmt"

	"github.com/talgya/commons/internal/community"
)

// DecisionID identifies a decision point.
type DecisionID string

const (
	HouseBlock            DecisionID = "house_block"
	BlockVillage          DecisionID = "block_village"
	VillageTown           DecisionID = "village_town"
	TownTownHall          DecisionID = "town_townhall"
	ApartmentNeighborhood DecisionID = "apartment_neighborhood"
	DistrictBorough       DecisionID = "district_borough"
	MunicipalCity         DecisionID = "municipal_city"
	CountyRegion          DecisionID = "county_region"
)

// ChoiceKey identifies one option of one decision.
type ChoiceKey string

const (
	SharedLiving           ChoiceKey = "shared_living"
	SkillSharing           ChoiceKey = "skill_sharing"
	IndependentUnits       ChoiceKey = "independent_units"
	CareFirst              ChoiceKey = "care_first"
	WorkFirst              ChoiceKey = "work_first"
	MixedFocus             ChoiceKey = "mixed_focus"
	InformalNetworks       ChoiceKey = "informal_networks"
	StructuredRoles        ChoiceKey = "structured_roles"
	RotatingResponsibility ChoiceKey = "rotating_responsibility"
	CentralCouncil         ChoiceKey = "central_council"
	OpenAssemblies         ChoiceKey = "open_assemblies"
	DelegatedCircles       ChoiceKey = "delegated_circles"
	DenseLiving            ChoiceKey = "dense_living"
	DistributedLiving      ChoiceKey = "distributed_living"
	HybridLayout           ChoiceKey = "hybrid_layout"
	StrongLocalIdentity    ChoiceKey = "strong_local_identity"
	OpenGrowth             ChoiceKey = "open_growth"
	Specialization         ChoiceKey = "specialization"
	FormalGovernance       ChoiceKey = "formal_governance"
	AdaptiveGovernance     ChoiceKey = "adaptive_governance"
	LayeredGovernance      ChoiceKey = "layered_governance"
	MutualAidAnchor        ChoiceKey = "mutual_aid_anchor"
	SelfSustainingRegion   ChoiceKey = "self_sustaining_region"
	KnowledgeTrainingHub   ChoiceKey = "knowledge_training_hub"
)

// Choice is one option of a Decision.
type Choice struct {
	Key     ChoiceKey `json:"key"`
	Title   string    `json:"title"`
	Effects []string  `json:"effects"`
	Flag    ValueFlag `json:"value_flag"`
}

// Decision is a one-time choice unlocked when the community reaches To.
type Decision struct {
	ID              DecisionID      `json:"id"`
	From            community.Scale `json:"from"`
	To              community.Scale `json:"to"`
	Theme           string          `json:"theme"`
	Prompt          string          `json:"prompt"`
	Choices         []Choice        `json:"choices"`
	SystemsAffected []string        `json:"systems_affected"`
}

// Choice looks up key among d's options.
func (d Decision) Choice(key ChoiceKey) (Choice, bool) {
	for _, c := range d.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

// TierLabel renders the transition as "from -> to".
func (d Decision) TierLabel() string {
	return fmt.Sprintf("%s -> %s", d.From, d.To)
}

// decisions is ordered by target tier; Pending relies on that order.
var decisions = []Decision{
	{
		ID: HouseBlock, From: community.House, To: community.Block,
		Theme:  "Trust vs autonomy",
		Prompt: "How do we begin relying on each other?",
		Choices: []Choice{
			{SharedLiving, "Shared Living", []string{"Smoother resource distribution", "Less individual surplus"}, FlagTrustFocused},
			{SkillSharing, "Skill Sharing", []string{"Faster task completion", "Higher burnout risk"}, FlagTrustFocused},
			{IndependentUnits, "Independent Units", []string{"Strong personal resilience", "Weaker collective response"}, FlagIndependentUnits},
		},
		SystemsAffected: []string{"Resource variance", "Task speed", "Burnout pressure"},
	},
	{
		ID: BlockVillage, From: community.Block, To: community.Village,
		Theme:  "Care vs productivity",
		Prompt: "What matters when people depend on us?",
		Choices: []Choice{
			{CareFirst, "Care First", []string{"Faster wellbeing recovery", "Slower growth"}, FlagCareFirst},
			{WorkFirst, "Work First", []string{"Higher output", "Morale decays faster"}, FlagWorkFirst},
			{MixedFocus, "Mixed Focus", []string{"Balanced outcomes", "No strong bias"}, FlagMixedFocus},
		},
		SystemsAffected: []string{"Wellbeing regen", "Growth thresholds", "Morale stability"},
	},
	{
		ID: VillageTown, From: community.Village, To: community.Town,
		Theme:  "Informal vs organized coordination",
		Prompt: "How do we get things done together?",
		Choices: []Choice{
			{InformalNetworks, "Informal Networks", []string{"Fast crisis response", "Higher volatility"}, FlagInformalCoordination},
			{StructuredRoles, "Structured Roles", []string{"Predictable outcomes", "Slower adaptation"}, FlagFormalGovernance},
			{RotatingResponsibility, "Rotating Responsibility", []string{"Shared load", "Coordination overhead"}, FlagParticipatoryGovernance},
		},
		SystemsAffected: []string{"Event resolution variance", "Coordination cost", "Task overlap efficiency"},
	},
	{
		ID: TownTownHall, From: community.Town, To: community.TownHall,
		Theme:  "Centralization vs participation",
		Prompt: "Who makes decisions for the whole?",
		Choices: []Choice{
			{CentralCouncil, "Central Council", []string{"Stability and clarity", "Reduced flexibility"}, FlagFormalGovernance},
			{OpenAssemblies, "Open Assemblies", []string{"High morale resilience", "Slower decisions"}, FlagParticipatoryGovernance},
			{DelegatedCircles, "Delegated Circles", []string{"Parallel progress", "Communication friction"}, FlagDelegatedCircles},
		},
		SystemsAffected: []string{"Decision latency", "Morale floor", "Parallel task capacity"},
	},
	{
		ID: ApartmentNeighborhood, From: community.Apartment, To: community.Neighborhood,
		Theme:  "Density vs connection",
		Prompt: "How close do people live and work?",
		Choices: []Choice{
			{DenseLiving, "Dense Living", []string{"Efficient resource use", "Stress spikes during crises"}, FlagDenseLiving},
			{DistributedLiving, "Distributed Living", []string{"Higher resilience", "Slower logistics"}, FlagDistributedLiving},
			{HybridLayout, "Hybrid Layout", []string{"Moderate efficiency", "Moderate strain"}, FlagMixedFocus},
		},
		SystemsAffected: []string{"Resource efficiency", "Crisis amplification", "Logistics delay"},
	},
	{
		ID: DistrictBorough, From: community.District, To: community.Borough,
		Theme:  "Identity vs expansion",
		Prompt: "What defines us at scale?",
		Choices: []Choice{
			{StrongLocalIdentity, "Strong Local Identity", []string{"Morale stability", "Slower expansion"}, FlagIdentityStrong},
			{OpenGrowth, "Open Growth", []string{"Faster population growth", "Cultural drift"}, FlagWorkFirst},
			{Specialization, "Specialization", []string{"Strong bonuses in one area", "Weaker overall balance"}, FlagSpecialization},
		},
		SystemsAffected: []string{"Morale decay", "Expansion rate", "Specialization modifiers"},
	},
	{
		ID: MunicipalCity, From: community.Municipal, To: community.City,
		Theme:  "Governance vs adaptability",
		Prompt: "How do we govern complexity?",
		Choices: []Choice{
			{FormalGovernance, "Formal Governance", []string{"Predictable outcomes", "Slower crisis response"}, FlagFormalGovernance},
			{AdaptiveGovernance, "Adaptive Governance", []string{"Faster recovery", "Higher uncertainty"}, FlagAdaptiveGovernance},
			{LayeredGovernance, "Layered Governance", []string{"Redundancy and safety", "Maintenance cost"}, FlagLayeredGovernance},
		},
		SystemsAffected: []string{"Crisis resolution curves", "Variance bands", "Upkeep pressure"},
	},
	{
		ID: CountyRegion, From: community.County, To: community.Region,
		Theme:  "Influence vs sustainability",
		Prompt: "What is our role beyond ourselves?",
		Choices: []Choice{
			{MutualAidAnchor, "Mutual Aid Anchor", []string{"Strong external aid effects", "Internal strain increases"}, FlagAidAnchor},
			{SelfSustainingRegion, "Self-Sustaining Region", []string{"Internal efficiency high", "Limited external support"}, FlagIndependentUnits},
			{KnowledgeTrainingHub, "Knowledge & Training Hub", []string{"Permanent skill uplift", "Slower material growth"}, FlagSkillSharing},
		},
		SystemsAffected: []string{"External event modifiers", "Internal efficiency scaling", "Skill persistence"},
	},
}

var decisionIndex = func() map[DecisionID]int {
	m := make(map[DecisionID]int, len(decisions))
	for i, d := range decisions {
		m[d.ID] = i
	}
	return m
}()

// Decisions returns every decision point ordered by target tier.
func Decisions() []Decision {
	out := make([]Decision, len(decisions))
	copy(out, decisions)
	return out
}

// Find looks up a decision by id.
func Find(id DecisionID) (Decision, bool) {
	i, ok := decisionIndex[id]
	if !ok {
		return Decision{}, false
	}
	return decisions[i], true
}

// Selections maps each resolved decision to the chosen option.
type Selections map[DecisionID]ChoiceKey

// Clone returns an independent copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Valid reports whether key is an option of decision id.
func Valid(id DecisionID, key ChoiceKey) bool {
	d, ok := Find(id)
	if !ok {
		return false
	}
	_, ok = d.Choice(key)
	return ok
}

// Pending returns the earliest decision at or below current that has no
// selection yet.
func Pending(current community.Scale, sel Selections) (DecisionID, bool) {
	for _, d := range decisions {
		if d.To > current {
			break
		}
		if _, chosen := sel[d.ID]; !chosen {
			return d.ID, true
		}
	}
	return "", false
}
