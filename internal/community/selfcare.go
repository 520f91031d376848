package community

// SelfCareID identifies one self-care action in the fixed catalog.
type SelfCareID string

// SelfCareAction credits Bonus to Category, at most once per cooldown.
type SelfCareAction struct {
	ID       SelfCareID `json:"id"`
	Label    string     `json:"label"`
	Category Category   `json:"category"`
	Bonus    float64    `json:"bonus"`
}

var selfCareCatalog = []SelfCareAction{
	{"food_simple_meal", "Eat a simple meal", Food, 3},
	{"food_drink_water", "Drink water", Food, 1},
	{"food_warm_beverage", "Have a warm beverage", Food, 2},
	{"food_prepare_later", "Prepare food for later", Food, 4},
	{"food_familiar", "Eat something familiar", Food, 2},
	{"food_regular_timing", "Keep regular meal timing", Food, 3},
	{"food_sit_down", "Sit down while eating", Food, 2},
	{"food_snack", "Snack when energy dips", Food, 1},
	{"food_reduce_decisions", "Reduce decision load around food", Food, 2},
	{"food_accept_from_others", "Accept food from others", Food, 3},

	{"shelter_rest", "Rest or nap", Shelter, 4},
	{"shelter_temperature", "Go somewhere warm or cool", Shelter, 2},
	{"shelter_tidy", "Tidy a small area", Shelter, 3},
	{"shelter_lighting", "Adjust lighting", Shelter, 2},
	{"shelter_comfortable_clothing", "Change into comfortable clothing", Shelter, 2},
	{"shelter_sit_lie_down", "Sit or lie down intentionally", Shelter, 3},
	{"shelter_quiet_space", "Create a quiet space", Shelter, 3},
	{"shelter_reduce_sensory", "Reduce sensory input", Shelter, 2},
	{"shelter_personal_space", "Maintain personal space", Shelter, 2},
	{"shelter_secure_belongings", "Secure belongings", Shelter, 1},

	{"care_check_in", "Check in with someone", Care, 3},
	{"care_ask_help", "Ask for help", Care, 4},
	{"care_offer_help", "Offer help", Care, 3},
	{"care_break_no_guilt", "Take a break without guilt", Care, 3},
	{"care_breathe", "Breathe slowly", Care, 2},
	{"care_write_reflect", "Write or reflect briefly", Care, 3},
	{"care_notice_body", "Notice body signals", Care, 2},
	{"care_say_no", "Say no to a request", Care, 2},
	{"care_maintain_routine", "Maintain a routine", Care, 3},
	{"care_acknowledge_effort", "Acknowledge effort without judgment", Care, 2},
}

var selfCareIndex = func() map[SelfCareID]SelfCareAction {
	m := make(map[SelfCareID]SelfCareAction, len(selfCareCatalog))
	for _, a := range selfCareCatalog {
		m[a.ID] = a
	}
	return m
}()

// SelfCareActions returns the catalog in display order.
func SelfCareActions() []SelfCareAction {
	out := make([]SelfCareAction, len(selfCareCatalog))
	copy(out, selfCareCatalog)
	return out
}

// LookupSelfCare finds an action by id.
func LookupSelfCare(id SelfCareID) (SelfCareAction, bool) {
	a, ok := selfCareIndex[id]
	return a, ok
}
