package events

import (
	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/entropy"
)

// ID identifies a catalog event.
type ID string

const (
	ExtraFood        ID = "extra_food"
	SupplyDelay      ID = "supply_delay"
	SharedStorage    ID = "shared_storage"
	ColdWeather      ID = "cold_weather"
	HeatWave         ID = "heat_wave"
	VolunteerFatigue ID = "volunteer_fatigue"
	NewVolunteer     ID = "new_volunteer"
	OverlapEffort    ID = "overlap_effort"
	Miscommunication ID = "miscommunication"
	CommunityGrant   ID = "community_grant"
	MutualAidOffer   ID = "mutual_aid_offer"
	QuietWeek        ID = "quiet_week"
	SteadyProgress   ID = "steady_progress"
)

// ChoiceID is "A" or "B".
type ChoiceID string

const (
	ChoiceA ChoiceID = "A"
	ChoiceB ChoiceID = "B"
)

// Choice is one way to respond to an event.
type Choice struct {
	ID     ChoiceID `json:"id"`
	Label  string   `json:"label"`
	Effect Effect   `json:"effect"`
}

// Event is a catalog entry.
type Event struct {
	ID      ID       `json:"id"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Choices []Choice `json:"choices"`
}

// Choice looks up a response by id.
func (e Event) Choice(id ChoiceID) (Choice, bool) {
	for _, c := range e.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

func supplies(food, shelter, care float64) Effect {
	return Effect{Supplies: community.Amounts{Food: food, Shelter: shelter, Care: care}}
}

func boost(food, shelter, care float64) Effect {
	return Effect{Boost: community.Amounts{Food: food, Shelter: shelter, Care: care}}
}

var catalog = []Event{
	// Material flow.
	{ExtraFood, "A neighbor brings extra food", "It helps for a while.", []Choice{
		{ChoiceA, "Distribute broadly", supplies(2, 0, 0)},
		{ChoiceB, "Hold for later", supplies(1, 0, 0)},
	}},
	{SupplyDelay, "A delivery arrives later than expected", "Plans adjust.", []Choice{
		{ChoiceA, "Stretch existing supplies", supplies(-0.34, -0.33, -0.33)},
		{ChoiceB, "Reprioritize needs", boost(0.1, 0, 0)},
	}},
	{SharedStorage, "Shared storage space becomes available", "Coordination reduces waste.", []Choice{
		{ChoiceA, "Use it for food", boost(0.1, 0, 0)},
		{ChoiceB, "Use it for shelter supplies", boost(0, 0.1, 0)},
	}},

	// Weather.
	{ColdWeather, "Colder weather arrives", "Shelter needs rise slightly.", []Choice{
		{ChoiceA, "Shift attention", boost(0, 0.1, 0)},
		{ChoiceB, "Use extra supplies", supplies(0, -1, 0)},
	}},
	{HeatWave, "A stretch of warm days", "People adjust routines.", []Choice{
		{ChoiceA, "Adapt schedules", boost(0, 0, 0.1)},
		{ChoiceB, "Use additional resources", supplies(0, 0, -1)},
	}},

	// Human capacity.
	{VolunteerFatigue, "A volunteer needs rest", "Pace matters for the long term.", []Choice{
		{ChoiceA, "Slow things down", boost(0, 0, 0.1)},
		{ChoiceB, "Redistribute effort", boost(0.05, 0.05, 0)},
	}},
	{NewVolunteer, "Someone new offers help", "Capacity increases gently.", []Choice{
		{ChoiceA, "Pair them with care work", boost(0, 0, 0.1)},
		{ChoiceB, "Support logistics", supplies(0.5, 0.5, 0)},
	}},

	// Coordination friction.
	{OverlapEffort, "Two efforts overlap unintentionally", "Communication clarifies things.", []Choice{
		{ChoiceA, "Align responsibilities", boost(0, 0.1, 0)},
		{ChoiceB, "Let it resolve naturally", boost(0, 0, 0.1)},
	}},
	{Miscommunication, "A small misunderstanding occurs", "Nothing serious, just noise.", []Choice{
		{ChoiceA, "Talk it through", boost(0, 0, 0.1)},
		{ChoiceB, "Refocus on tasks", boost(0.1, 0, 0)},
	}},

	// External support.
	{CommunityGrant, "A small community grant comes through", "It eases pressure briefly.", []Choice{
		{ChoiceA, "Replenish supplies", supplies(0.7, 0.7, 0.6)},
		{ChoiceB, "Invest in coordination", boost(0, 0, 0.1)},
	}},
	{MutualAidOffer, "Another group offers mutual aid", "Reciprocity builds resilience.", []Choice{
		{ChoiceA, "Accept support", supplies(0.35, 0.35, 0.3)},
		{ChoiceB, "Share knowledge instead", boost(0, 0, 0.1)},
	}},

	// Quiet periods.
	{QuietWeek, "A quiet week passes", "Nothing urgent comes up.", []Choice{
		{ChoiceA, "Maintain routines", supplies(0.35, 0.35, 0.3)},
		{ChoiceB, "Check in on people", boost(0, 0, 0.1)},
	}},
	{SteadyProgress, "Things feel steady for now", "Consistency has its own value.", []Choice{
		{ChoiceA, "Keep going", supplies(0.35, 0.35, 0.3)},
		{ChoiceB, "Refine priorities", boost(0.05, 0.05, 0)},
	}},
}

// Catalog returns every event in catalog order.
func Catalog() []Event {
	out := make([]Event, len(catalog))
	copy(out, catalog)
	return out
}

// Find looks up an event by id.
func Find(id ID) (Event, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Pick chooses an event uniformly at random.
func Pick(src entropy.Source) Event {
	i := int(src.Float() * float64(len(catalog)))
	if i >= len(catalog) {
		i = len(catalog) - 1
	}
	if i < 0 {
		i = 0
	}
	return catalog[i]
}
