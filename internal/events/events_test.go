package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/commons/internal/community"
	"github.com/talgya/commons/internal/entropy"
)

func TestCatalogShape(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 13)
	seen := map[ID]bool{}
	for _, e := range cat {
		assert.False(t, seen[e.ID], "duplicate %s", e.ID)
		seen[e.ID] = true
		require.Len(t, e.Choices, 2)
		_, okA := e.Choice(ChoiceA)
		_, okB := e.Choice(ChoiceB)
		assert.True(t, okA && okB, e.ID)
		assert.Nil(t, e.Choices[0].Effect.Wipe)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "No change", Describe(Effect{}))
	assert.Equal(t, "Food +2.00", Describe(supplies(2, 0, 0)))
	assert.Equal(t, "Food -0.34, Shelter -0.33, Care -0.33", Describe(supplies(-0.34, -0.33, -0.33)))
	assert.Equal(t, "Food priority +5%, Shelter priority +5%", Describe(boost(0.05, 0.05, 0)))
}

func TestPickCoversEndsOfRange(t *testing.T) {
	assert.Equal(t, ExtraFood, Pick(entropy.Fixed(0)).ID)
	assert.Equal(t, SteadyProgress, Pick(entropy.Fixed(0.9999)).ID)
	assert.Equal(t, SteadyProgress, Pick(entropy.Fixed(1)).ID)
}

func TestPickSeededIsDeterministic(t *testing.T) {
	a := entropy.NewSeeded(42)
	b := entropy.NewSeeded(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, Pick(a).ID, Pick(b).ID)
	}
}

func TestFind(t *testing.T) {
	e, ok := Find(ColdWeather)
	require.True(t, ok)
	c, ok := e.Choice(ChoiceB)
	require.True(t, ok)
	assert.Equal(t, -1.0, c.Effect.Supplies.Get(community.Shelter))

	_, ok = Find("meteor")
	assert.False(t, ok)
}
