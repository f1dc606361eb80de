package creature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
)

func intPtr(v int) *int { return &v }

func sample() *creature.State {
	return &creature.State{
		ID:                "c1",
		Name:              "Test Subject",
		BaseAbilityScores: map[string]int{"STR": 14, "DEX": 12},
		CurrentHP:         10,
		MaxHPCalculated:   10,
		Resources: []creature.TrackedResource{
			{DefinitionID: "SPELL_SLOT_L1", Current: 2, Max: 2},
		},
		ActiveConditions: []creature.ActiveCondition{
			{
				Definition:              &content.ConditionDefinition{ID: "POISONED"},
				RemainingDurationRounds: intPtr(3),
			},
		},
		ActiveEffects: []creature.ActiveEffect{
			{
				InstanceID:              "e1",
				Effect:                  content.ParsedEffect{Type: content.EffectGrantBonus, BonusTo: content.ScopeArmorClass},
				RemainingDurationRounds: intPtr(2),
			},
		},
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := sample()
	copied := orig.Clone()

	copied.BaseAbilityScores["STR"] = 20
	copied.Resources[0].Current = 0
	*copied.ActiveEffects[0].RemainingDurationRounds = 99
	*copied.ActiveConditions[0].RemainingDurationRounds = 99

	assert.Equal(t, 14, orig.BaseAbilityScores["STR"])
	assert.Equal(t, 2, orig.Resources[0].Current)
	assert.Equal(t, 2, *orig.ActiveEffects[0].RemainingDurationRounds)
	assert.Equal(t, 3, *orig.ActiveConditions[0].RemainingDurationRounds)
}

func TestConditionQueries(t *testing.T) {
	s := sample()
	assert.True(t, s.HasCondition("POISONED"))
	assert.False(t, s.HasCondition("PRONE"))
	assert.False(t, s.Incapacitated())

	s.ActiveConditions = append(s.ActiveConditions, creature.ActiveCondition{
		Definition: &content.ConditionDefinition{ID: "STUNNED"},
	})
	assert.True(t, s.Incapacitated())
}

func TestResourceLookup(t *testing.T) {
	s := sample()
	r := s.Resource("SPELL_SLOT_L1")
	require.NotNil(t, r)
	r.Current = 1
	assert.Equal(t, 1, s.Resources[0].Current, "Resource must return a pointer into the slice")
	assert.Nil(t, s.Resource("SPELL_SLOT_L9"))
}

func TestRemoveEffect(t *testing.T) {
	s := sample()
	assert.True(t, s.RemoveEffect("e1"))
	assert.Empty(t, s.ActiveEffects)
	assert.False(t, s.RemoveEffect("e1"))
}
