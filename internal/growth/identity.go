package growth

import "strings"

// identityThemes is the fixed order in which leanings are listed.
var identityThemes = []struct {
	flag  ValueFlag
	theme string
}{
	{FlagCareFirst, "care over speed"},
	{FlagInformalCoordination, "informal coordination"},
	{FlagParticipatoryGovernance, "participatory governance"},
	{FlagDenseLiving, "living closely to share resources"},
	{FlagIdentityStrong, "strong local identity"},
	{FlagAdaptiveGovernance, "adaptive governance"},
	{FlagTrustFocused, "trust-first relations"},
	{FlagAidAnchor, "regional mutual aid"},
}

// IdentitySummary renders a one-sentence description of a finished run.
func IdentitySummary(flags ValueFlags) string {
	var themes []string
	for _, t := range identityThemes {
		if flags[t.flag] {
			themes = append(themes, t.theme)
		}
	}
	if len(themes) == 0 {
		return "This community was steady and pragmatic."
	}
	return "This community leaned toward " + strings.Join(themes, ", ") + "."
}

// DecisionRecord is the archived form of one resolved decision.
type DecisionRecord struct {
	ID      DecisionID `json:"id"`
	Tier    string     `json:"tier"`
	Prompt  string     `json:"prompt"`
	Choice  string     `json:"choice"`
	Summary string     `json:"summary"`
}

// Records lists the resolved decisions in catalog order.
func Records(sel Selections) []DecisionRecord {
	var out []DecisionRecord
	for _, d := range decisions {
		key, ok := sel[d.ID]
		if !ok {
			continue
		}
		c, ok := d.Choice(key)
		if !ok {
			continue
		}
		out = append(out, DecisionRecord{
			ID:      d.ID,
			Tier:    d.TierLabel(),
			Prompt:  d.Prompt,
			Choice:  c.Title,
			Summary: strings.Join(c.Effects, "; "),
		})
	}
	return out
}
