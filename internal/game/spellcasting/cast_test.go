package spellcasting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/effect"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/spellcasting"
)

func store() *content.Store {
	s := content.NewStore()
	s.RegisterClass(&content.ClassDefinition{ID: "WIZARD", HitDieSides: 6, SpellcastingAbility: "INT"})
	s.RegisterSpell(&content.SpellDefinition{
		ID: "MAGIC_DART", Name: "Magic Dart", Level: 1, CastingTime: content.CastingTimeAction,
		Effects: []content.ParsedEffect{{
			Type:        content.EffectDealDamage,
			DamageRolls: []content.DamageRoll{{Dice: "1d4+1", Type: "FORCE"}},
		}},
	})
	s.RegisterSpell(&content.SpellDefinition{
		ID: "WARDING_BOND", Name: "Warding Bond", Level: 1, CastingTime: content.CastingTimeAction,
		Concentration: true, Duration: "Concentration, up to 1 minute",
		Effects: []content.ParsedEffect{{
			Type: content.EffectGrantBonus, Target: content.ScopeSelf,
			BonusTo: content.ScopeArmorClass, BonusValue: intPtr(1),
			Duration: "Concentration, up to 1 minute", Concentration: true,
		}},
	})
	s.RegisterSpell(&content.SpellDefinition{
		ID: "SEALED_RITE", Name: "Sealed Rite", Level: 1, CastingTime: content.CastingTimeAction,
		Components: content.SpellComponents{Material: "a pinch of silver dust"},
	})
	return s
}

func intPtr(v int) *int { return &v }

func caster() *creature.State {
	return &creature.State{
		ID: "caster", Name: "caster", IsPlayerCharacter: true,
		ClassLevels:       []creature.ClassLevel{{ClassID: "WIZARD", Level: 3}},
		BaseAbilityScores: map[string]int{"STR": 8, "DEX": 14, "CON": 12, "INT": 16, "WIS": 10, "CHA": 10},
		ProficiencyBonus:  2,
		CurrentHP:         15, MaxHPBase: 15, MaxHPCalculated: 15,
		Resources: []creature.TrackedResource{{DefinitionID: "SPELL_SLOT_L1", Current: 1, Max: 2}},
	}
}

func orchestrator(st *content.Store, values ...int) *spellcasting.Orchestrator {
	x := effect.NewExecutor(st, dice.NewRoller(dice.NewSequenceSource(values...), nil), nil, nil)
	return spellcasting.NewOrchestrator(st, x, nil)
}

func hasEvent(events []event.Event, t event.Type) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}

func TestCastSpendsExactSlotLevel(t *testing.T) {
	st := store()
	o := orchestrator(st, 2) // 1d4 rolls 3
	c := caster()
	target := caster()
	target.ID, target.Name = "target", "target"
	roster := map[string]*creature.State{"caster": c, "target": target}

	res := o.Cast(c, spellcasting.Request{SpellID: "MAGIC_DART", TargetIDs: []string{"target"}}, roster)
	require.True(t, res.Success, res.Reason)
	assert.Equal(t, 0, c.Resource("SPELL_SLOT_L1").Current)
	assert.Equal(t, 15-4, target.CurrentHP)
	assert.True(t, hasEvent(res.Events, event.ResourceSpent))
	assert.True(t, hasEvent(res.Events, event.SpellCast))

	// Second cast: no slot left, no events, no damage.
	before := target.CurrentHP
	res = o.Cast(c, spellcasting.Request{SpellID: "MAGIC_DART", TargetIDs: []string{"target"}}, roster)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "SPELL_SLOT_L1")
	assert.False(t, hasEvent(res.Events, event.DamageApplied))
	assert.Equal(t, before, target.CurrentHP)
}

func TestCastUnknownSpellFails(t *testing.T) {
	st := store()
	o := orchestrator(st, 0)
	c := caster()
	res := o.Cast(c, spellcasting.Request{SpellID: "NO_SUCH"}, map[string]*creature.State{"caster": c})
	assert.False(t, res.Success)
	assert.Equal(t, 1, c.Resource("SPELL_SLOT_L1").Current, "no cost on failure")
}

func TestCastMaterialComponentGate(t *testing.T) {
	st := store()
	o := orchestrator(st, 0)
	c := caster()
	roster := map[string]*creature.State{"caster": c}

	res := o.Cast(c, spellcasting.Request{SpellID: "SEALED_RITE"}, roster)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "material components")

	res = o.Cast(c, spellcasting.Request{SpellID: "SEALED_RITE", OverrideMaterialComponents: true}, roster)
	assert.True(t, res.Success, res.Reason)
}

func TestCastUnknownTargetDoesNotSpendSlot(t *testing.T) {
	st := store()
	o := orchestrator(st, 0)
	c := caster()
	res := o.Cast(c, spellcasting.Request{SpellID: "MAGIC_DART", TargetIDs: []string{"ghost"}},
		map[string]*creature.State{"caster": c})
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "ghost")
	assert.Equal(t, 1, c.Resource("SPELL_SLOT_L1").Current)
}

func TestConcentrationReplacement(t *testing.T) {
	st := store()
	o := orchestrator(st, 0)
	c := caster()
	c.Resources[0].Current = 2
	roster := map[string]*creature.State{"caster": c}

	res := o.Cast(c, spellcasting.Request{SpellID: "WARDING_BOND", SelfTarget: true}, roster)
	require.True(t, res.Success, res.Reason)
	require.NotNil(t, c.Concentration)
	assert.Equal(t, "WARDING_BOND", c.Concentration.SpellID)
	assert.True(t, hasEvent(res.Events, event.ConcentrationStarted))
	firstInstance := c.Concentration.EffectInstanceID
	require.Len(t, c.ActiveEffects, 1)

	// Casting a different concentration spell would replace; recasting the
	// same spell also ends up with exactly one sustained effect because the
	// old instance is the caster's own concentration pointer.
	st.RegisterSpell(&content.SpellDefinition{
		ID: "IRON_SKIN", Name: "Iron Skin", Level: 1, CastingTime: content.CastingTimeAction,
		Concentration: true,
		Effects: []content.ParsedEffect{{
			Type: content.EffectGrantBonus, Target: content.ScopeSelf,
			BonusTo: content.ScopeArmorClass, BonusValue: intPtr(2),
			Duration: "Concentration", Concentration: true,
		}},
	})
	res = o.Cast(c, spellcasting.Request{SpellID: "IRON_SKIN", SelfTarget: true}, roster)
	require.True(t, res.Success, res.Reason)
	assert.True(t, hasEvent(res.Events, event.ConcentrationEnded))
	require.NotNil(t, c.Concentration)
	assert.Equal(t, "IRON_SKIN", c.Concentration.SpellID)
	assert.NotEqual(t, firstInstance, c.Concentration.EffectInstanceID)
	require.Len(t, c.ActiveEffects, 1, "old concentration effect stripped")
	assert.Equal(t, "IRON_SKIN", c.ActiveEffects[0].SourceDefinitionID)
}
