package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/effect"
	"github.com/arbiterhq/arbiter/internal/game/event"
)

func intPtr(v int) *int { return &v }

func executor(store *content.Store, values ...int) *effect.Executor {
	return effect.NewExecutor(store, dice.NewRoller(dice.NewSequenceSource(values...), nil), nil, nil)
}

func baseStore() *content.Store {
	store := content.NewStore()
	store.RegisterCondition(&content.ConditionDefinition{ID: "UNCONSCIOUS", Name: "Unconscious"})
	store.RegisterCondition(&content.ConditionDefinition{
		ID:   "POISONED",
		Name: "Poisoned",
		Effects: []content.ParsedEffect{
			{Type: content.EffectImposeDisadvantage, Target: content.ScopeSelf, RollScope: content.ScopeAttackRoll},
		},
	})
	return store
}

func fighter(id string) *creature.State {
	return &creature.State{
		ID:                id,
		Name:              id,
		BaseAbilityScores: map[string]int{"STR": 16, "DEX": 14, "CON": 12, "INT": 10, "WIS": 10, "CHA": 10},
		ProficiencyBonus:  2,
		CurrentHP:         20,
		MaxHPBase:         20,
		MaxHPCalculated:   20,
	}
}

func eventTypes(events []event.Event) []event.Type {
	out := make([]event.Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestDurationRounds(t *testing.T) {
	cases := map[string]*int{
		"":                              nil,
		"instantaneous":                 intPtr(0),
		"0":                             intPtr(0),
		"1 round":                       intPtr(1),
		"3 rounds":                      intPtr(3),
		"1 minute":                      intPtr(10),
		"10 minutes":                    intPtr(100),
		"1 hour":                        intPtr(600),
		"1 day":                         intPtr(14400),
		"Concentration":                 intPtr(10),
		"Concentration, up to 1 minute": intPtr(10),
		"Concentration, up to 1 hour":   intPtr(600),
		"until dispelled":               nil,
		"special":                       nil,
	}
	for in, want := range cases {
		got := effect.DurationRounds(in)
		if want == nil {
			assert.Nil(t, got, in)
		} else {
			require.NotNil(t, got, in)
			assert.Equal(t, *want, *got, in)
		}
	}
}

func TestApplyDamageEffect(t *testing.T) {
	store := baseStore()
	x := executor(store, 3) // 1d8 rolls a 4
	attacker := fighter("attacker")
	target := fighter("target")

	effects := []content.ParsedEffect{{
		Type:        content.EffectDealDamage,
		DamageRolls: []content.DamageRoll{{Dice: "1d8", Type: "SLASHING"}},
	}}
	res, err := x.Apply("LONGSWORD", effect.SourceItem, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Equal(t, 16, target.CurrentHP)
	require.Len(t, res.Events, 1)
	assert.Equal(t, event.DamageApplied, res.Events[0].Type)
	assert.Equal(t, 4, res.Events[0].Damage.TotalApplied)
	assert.Equal(t, []string{"target"}, res.ModifiedIDs())
}

func TestCriticalDoublesDiceNotBonuses(t *testing.T) {
	store := baseStore()
	// 2d8 on crit: faces 4 and 5; flat +3 applied once.
	x := executor(store, 3, 4)
	attacker := fighter("attacker")
	target := fighter("target")

	effects := []content.ParsedEffect{{
		Type:        content.EffectDealDamageOnAttackHit,
		DamageRolls: []content.DamageRoll{{Dice: "1d8+3", Type: "SLASHING"}},
	}}
	_, err := x.Apply("LONGSWORD", effect.SourceItem, effects, attacker, []*creature.State{target},
		&effect.ExecContext{Critical: true})
	require.NoError(t, err)
	assert.Equal(t, 20-(4+5+3), target.CurrentHP)
}

func TestDamageEffectSaveGating(t *testing.T) {
	store := baseStore()
	attacker := fighter("attacker")

	mk := func() []content.ParsedEffect {
		return []content.ParsedEffect{{
			Type:        content.EffectDealDamage,
			DamageRolls: []content.DamageRoll{{Dice: "2d6", Type: "FIRE"}},
			Save:        &content.SaveSpec{Ability: "DEX", DCValue: 15, OnSuccess: content.SaveOutcomeHalf},
		}}
	}

	// Dice: 2d6 -> 4+5=9; save d20 natural 20 -> 22 vs 15 succeeds -> half = 4.
	x := executor(store, 3, 4, 19)
	target := fighter("target")
	res, err := x.Apply("BURST", effect.SourceSpell, mk(), attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Equal(t, 16, target.CurrentHP)
	assert.Equal(t, []event.Type{event.SavingThrowMade, event.DamageApplied}, eventTypes(res.Events))

	// Failed save: natural 2 -> full 9 damage.
	x = executor(store, 3, 4, 1)
	target = fighter("target")
	_, err = x.Apply("BURST", effect.SourceSpell, mk(), attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Equal(t, 11, target.CurrentHP)

	// OnSuccess NONE: successful save deals nothing and emits no damage event.
	none := mk()
	none[0].Save.OnSuccess = content.SaveOutcomeNone
	x = executor(store, 3, 4, 19)
	target = fighter("target")
	res, err = x.Apply("BURST", effect.SourceSpell, none, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, target.CurrentHP)
	assert.Equal(t, []event.Type{event.SavingThrowMade}, eventTypes(res.Events))
}

func TestDamageTriggersUnconscious(t *testing.T) {
	store := baseStore()
	x := executor(store, 7) // 1d8 rolls 8
	attacker := fighter("attacker")
	target := fighter("target")
	target.CurrentHP = 5
	target.MaxHPBase = 5

	effects := []content.ParsedEffect{{
		Type:        content.EffectDealDamage,
		DamageRolls: []content.DamageRoll{{Dice: "1d8", Type: "SLASHING"}},
	}}
	res, err := x.Apply("CLAW", effect.SourceAction, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, target.CurrentHP)
	assert.True(t, target.HasCondition("UNCONSCIOUS"))
	assert.Contains(t, eventTypes(res.Events), event.ConditionGained)
}

func TestApplyConditionWithNestedEffectsAndDedup(t *testing.T) {
	store := baseStore()
	x := executor(store, 0)
	attacker := fighter("attacker")
	target := fighter("target")

	effects := []content.ParsedEffect{{
		Type:        content.EffectApplyCondition,
		ConditionID: "POISONED",
		Duration:    "3 rounds",
	}}
	res, err := x.Apply("POISON_DART", effect.SourceItem, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.True(t, target.HasCondition("POISONED"))
	require.Len(t, target.ActiveEffects, 1, "nested condition effect applied")
	assert.Equal(t, "POISONED", target.ActiveEffects[0].SourceDefinitionID)
	assert.Contains(t, eventTypes(res.Events), event.ConditionGained)

	// Re-application while active is a silent no-op.
	_, err = x.Apply("POISON_DART", effect.SourceItem, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Len(t, target.ActiveConditions, 1)
	assert.Len(t, target.ActiveEffects, 1)
}

func TestApplyConditionSaveGated(t *testing.T) {
	store := baseStore()
	attacker := fighter("attacker")
	effects := []content.ParsedEffect{{
		Type:        content.EffectApplyCondition,
		ConditionID: "POISONED",
		Save:        &content.SaveSpec{Ability: "CON", DCValue: 12},
	}}

	// natural 19 + CON 1 = 20 vs 12: resisted.
	x := executor(store, 18)
	target := fighter("target")
	_, err := x.Apply("VENOM", effect.SourceAction, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.False(t, target.HasCondition("POISONED"))

	// natural 2 + 1 = 3: afflicted.
	x = executor(store, 1)
	target = fighter("target")
	_, err = x.Apply("VENOM", effect.SourceAction, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.True(t, target.HasCondition("POISONED"))
}

func TestApplyConditionMissingDefinitionIsHardFailure(t *testing.T) {
	x := executor(content.NewStore(), 0)
	attacker := fighter("attacker")
	target := fighter("target")
	effects := []content.ParsedEffect{{Type: content.EffectApplyCondition, ConditionID: "NO_SUCH"}}
	_, err := x.Apply("BAD", effect.SourceSpell, effects, attacker, []*creature.State{target}, nil)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestFailedBatchLeavesTargetsUntouched(t *testing.T) {
	x := executor(content.NewStore(), 3)
	attacker := fighter("attacker")
	target := fighter("target")
	effects := []content.ParsedEffect{
		{Type: content.EffectDealDamage, DamageRolls: []content.DamageRoll{{Dice: "1d6", Type: "SLASHING"}}},
		{Type: content.EffectApplyCondition, ConditionID: "NO_SUCH"},
	}
	_, err := x.Apply("BAD", effect.SourceSpell, effects, attacker, []*creature.State{target}, nil)
	require.ErrorIs(t, err, content.ErrNotFound)

	// The damage landed before the batch failed; none of it may survive.
	assert.Equal(t, 20, target.CurrentHP)
	assert.Empty(t, target.ActiveConditions)
	assert.Empty(t, target.ActiveEffects)
}

func TestHealClampsToMax(t *testing.T) {
	store := baseStore()
	x := executor(store, 5) // 1d8 rolls 6
	healer := fighter("healer")
	target := fighter("target")
	target.CurrentHP = 16

	effects := []content.ParsedEffect{{
		Type:    content.EffectHeal,
		Healing: &content.HealingSpec{Dice: "1d8", BonusValue: 3},
	}}
	res, err := x.Apply("CURE", effect.SourceSpell, effects, healer, []*creature.State{target}, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, target.CurrentHP)
	require.Len(t, res.Events, 1)
	assert.Equal(t, 4, res.Events[0].Amount, "event records the realized healing")
}

func TestGrantBonusSelfScope(t *testing.T) {
	store := baseStore()
	x := executor(store, 0)
	actor := fighter("actor")
	other := fighter("other")

	effects := []content.ParsedEffect{{
		Type:       content.EffectGrantBonus,
		Target:     content.ScopeSelf,
		BonusTo:    content.ScopeArmorClass,
		BonusValue: intPtr(2),
		Duration:   "1 minute",
	}}
	_, err := x.Apply("SHIELD_WARD", effect.SourceSpell, effects, actor, []*creature.State{other}, nil)
	require.NoError(t, err)
	assert.Len(t, actor.ActiveEffects, 1, "SELF scope lands on the originator")
	assert.Empty(t, other.ActiveEffects)
	assert.Equal(t, 10, *actor.ActiveEffects[0].RemainingDurationRounds)
	assert.Equal(t, 14, actor.ArmorClass, "AC recomputed: 10 + 2 DEX + 2")
}

func TestInstantaneousEffectNeverStored(t *testing.T) {
	store := baseStore()
	x := executor(store, 0)
	actor := fighter("actor")

	effects := []content.ParsedEffect{{
		Type:       content.EffectGrantBonus,
		Target:     content.ScopeSelf,
		BonusTo:    content.ScopeAttackRoll,
		BonusValue: intPtr(1),
		Duration:   "instantaneous",
	}}
	_, err := x.Apply("FLASH", effect.SourceSpell, effects, actor, []*creature.State{actor}, nil)
	require.NoError(t, err)
	assert.Empty(t, actor.ActiveEffects)
}

func TestIncreaseMaxHPRaisesCurrentByRealizedDelta(t *testing.T) {
	store := baseStore()
	x := executor(store, 0)
	actor := fighter("actor")
	actor.CurrentHP = 12

	effects := []content.ParsedEffect{{
		Type:       content.EffectIncreaseMaxHP,
		Target:     content.ScopeSelf,
		BonusValue: intPtr(5),
		Duration:   "1 hour",
	}}
	_, err := x.Apply("VIGOR", effect.SourceSpell, effects, actor, []*creature.State{actor}, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, actor.MaxHPCalculated)
	assert.Equal(t, 17, actor.CurrentHP)
}

func TestProcessEndOfTurnExpiry(t *testing.T) {
	store := baseStore()
	x := executor(store, 0)
	actor := fighter("actor")
	actor.ActiveEffects = []creature.ActiveEffect{
		{
			InstanceID:              "short",
			Effect:                  content.ParsedEffect{Type: content.EffectGrantBonus, BonusTo: content.ScopeAttackRoll, BonusValue: intPtr(1)},
			RemainingDurationRounds: intPtr(1),
		},
		{
			InstanceID:              "long",
			Effect:                  content.ParsedEffect{Type: content.EffectGrantBonus, BonusTo: content.ScopeAttackRoll, BonusValue: intPtr(1)},
			RemainingDurationRounds: intPtr(3),
		},
		{
			InstanceID: "forever",
			Effect:     content.ParsedEffect{Type: content.EffectGrantResistance, DamageTypes: []string{"FIRE"}},
		},
	}

	res := x.ProcessEndOfTurn(actor)
	require.Len(t, actor.ActiveEffects, 2)
	assert.Equal(t, "long", actor.ActiveEffects[0].InstanceID)
	assert.Equal(t, 2, *actor.ActiveEffects[0].RemainingDurationRounds)
	assert.Equal(t, "forever", actor.ActiveEffects[1].InstanceID)
	assert.Equal(t, []event.Type{event.EffectRemoved}, eventTypes(res.Events))
}

func TestProcessEndOfTurnConditionSweepsItsEffects(t *testing.T) {
	store := baseStore()
	x := executor(store, 0)
	attacker := fighter("attacker")
	target := fighter("target")

	effects := []content.ParsedEffect{{
		Type:        content.EffectApplyCondition,
		ConditionID: "POISONED",
		Duration:    "1 round",
	}}
	_, err := x.Apply("POISON_DART", effect.SourceItem, effects, attacker, []*creature.State{target}, nil)
	require.NoError(t, err)
	require.True(t, target.HasCondition("POISONED"))
	require.Len(t, target.ActiveEffects, 1)

	res := x.ProcessEndOfTurn(target)
	assert.False(t, target.HasCondition("POISONED"))
	assert.Empty(t, target.ActiveEffects, "condition-granted effects removed with the condition")
	assert.Contains(t, eventTypes(res.Events), event.ConditionRemoved)
	assert.Contains(t, eventTypes(res.Events), event.EffectRemoved)
}
