// Package creature defines the mutable runtime state of a combat
// participant and the active-effect and active-condition records that hang
// off it.  State is exclusively owned by the combat snapshot; the engine
// components mutate it only during action processing.
package creature

import "github.com/arbiterhq/arbiter/internal/content"

// Ability abbreviations used throughout the engine as map keys.
var Abilities = []string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}

// AbilityModifier converts an ability score to its modifier,
// floor((score-10)/2).  Integer division truncates toward zero, so odd
// scores below 10 need the explicit floor.
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// ActiveEffect is a live instance of a content.ParsedEffect on a creature.
// RemainingDurationRounds counts down each end of turn; nil means indefinite
// (never auto-expired).
type ActiveEffect struct {
	InstanceID              string
	Effect                  content.ParsedEffect
	SourceDefinitionID      string
	SourceDefinitionType    string
	SourceCreatureID        string
	RemainingDurationRounds *int
	// BonusValue is resolved once at application time for formula bonuses so
	// the stat calculators never re-evaluate against a stale context.
	BonusValue    int
	Concentration bool
}

// ActiveCondition wraps a condition definition with provenance and an
// optional remaining duration.  The definition's own effects are applied as
// ActiveEffects when the condition lands and removed with it.
type ActiveCondition struct {
	Definition              *content.ConditionDefinition
	SourceCreatureID        string
	SourceDefinitionID      string
	RemainingDurationRounds *int
	SaveToEndAbility        string
	SaveToEndDC             int
}

// TrackedResource is a named current/max counter: spell slots, hit dice,
// per-rest ability uses.
type TrackedResource struct {
	DefinitionID string
	Current      int
	Max          int
}

// ActionEconomy is the per-turn budget of a combatant.
type ActionEconomy struct {
	ActionAvailable      bool
	BonusActionAvailable bool
	ReactionAvailable    bool
	MovementUsed         int
}

// Reset restores a fresh turn's budget.
func (a *ActionEconomy) Reset() {
	a.ActionAvailable = true
	a.BonusActionAvailable = true
	a.ReactionAvailable = true
	a.MovementUsed = 0
}

// Concentration records the at-most-one spell effect a caster is sustaining.
type Concentration struct {
	SpellID          string
	EffectInstanceID string
}

// ClassLevel is one class the creature has levels in.
type ClassLevel struct {
	ClassID string
	Level   int
}

// State is the full mutable record of one combat participant.
type State struct {
	ID                string
	Name              string
	IsPlayerCharacter bool
	TemplateID        string
	Template          *content.CreatureTemplate
	ClassLevels       []ClassLevel
	TotalLevel        int

	BaseAbilityScores      map[string]int
	EffectiveAbilityScores map[string]int

	CurrentHP       int
	TemporaryHP     int
	MaxHPBase       int
	MaxHPCalculated int

	ProficiencyBonus  int
	ArmorClass        int
	PassivePerception int

	Speeds map[string]int
	Senses map[string]int

	SaveProficiencies  []string
	SkillProficiencies []string
	SkillExpertise     []string

	Resistances     []string
	Immunities      []string
	Vulnerabilities []string

	Resources []TrackedResource

	// EquippedItems maps slot name ("armor", "shield", "main_hand", ...) to
	// item definition ID.
	EquippedItems map[string]string
	Inventory     []string
	Attunements   []string

	ActiveConditions []ActiveCondition
	ActiveEffects    []ActiveEffect

	InitiativeRoll int
	ActionEconomy  ActionEconomy
	Concentration  *Concentration
}

// FromTemplate instantiates a monster State from its immutable template.
// Derived stats are left zero; callers run the stats update (or start
// combat, which does) before reading them.
func FromTemplate(id, name string, tpl *content.CreatureTemplate) *State {
	if name == "" {
		name = tpl.Name
	}
	scores := make(map[string]int, len(tpl.AbilityScores))
	for k, v := range tpl.AbilityScores {
		scores[k] = v
	}
	speeds := make(map[string]int, len(tpl.Speeds))
	for k, v := range tpl.Speeds {
		speeds[k] = v
	}
	senses := make(map[string]int, len(tpl.Senses))
	for k, v := range tpl.Senses {
		senses[k] = v
	}
	return &State{
		ID:                 id,
		Name:               name,
		TemplateID:         tpl.ID,
		Template:           tpl,
		BaseAbilityScores:  scores,
		Speeds:             speeds,
		Senses:             senses,
		SaveProficiencies:  append([]string(nil), tpl.SaveProficiencies...),
		SkillProficiencies: append([]string(nil), tpl.SkillProficiencies...),
		Resistances:        append([]string(nil), tpl.Resistances...),
		Immunities:         append([]string(nil), tpl.Immunities...),
		Vulnerabilities:    append([]string(nil), tpl.Vulnerabilities...),
	}
}

// AbilityScore returns the effective score for the given ability, falling
// back to the base score when effective scores have not been computed yet.
func (s *State) AbilityScore(abbr string) (int, bool) {
	if v, ok := s.EffectiveAbilityScores[abbr]; ok {
		return v, true
	}
	v, ok := s.BaseAbilityScores[abbr]
	return v, ok
}

// AbilityMod returns the modifier for the given ability abbreviation.
func (s *State) AbilityMod(abbr string) (int, bool) {
	score, ok := s.AbilityScore(abbr)
	if !ok {
		return 0, false
	}
	return AbilityModifier(score), true
}

// HasCondition reports whether an instance of the given condition ID is
// active.
func (s *State) HasCondition(id string) bool {
	for i := range s.ActiveConditions {
		if s.ActiveConditions[i].Definition != nil && s.ActiveConditions[i].Definition.ID == id {
			return true
		}
	}
	return false
}

// Incapacitated reports whether any active condition denies the creature its
// turn.
func (s *State) Incapacitated() bool {
	for i := range s.ActiveConditions {
		if d := s.ActiveConditions[i].Definition; d != nil && content.Incapacitating(d.ID) {
			return true
		}
	}
	return false
}

// Resource returns the tracked resource with the given definition ID, or nil.
func (s *State) Resource(id string) *TrackedResource {
	for i := range s.Resources {
		if s.Resources[i].DefinitionID == id {
			return &s.Resources[i]
		}
	}
	return nil
}

// EffectsMatching returns the active effects of the given type.
func (s *State) EffectsMatching(t content.EffectType) []*ActiveEffect {
	var out []*ActiveEffect
	for i := range s.ActiveEffects {
		if s.ActiveEffects[i].Effect.Type == t {
			out = append(out, &s.ActiveEffects[i])
		}
	}
	return out
}

// RemoveEffect deletes the active effect with the given instance ID.
// Returns true if an effect was removed.
func (s *State) RemoveEffect(instanceID string) bool {
	for i := range s.ActiveEffects {
		if s.ActiveEffects[i].InstanceID == instanceID {
			s.ActiveEffects = append(s.ActiveEffects[:i], s.ActiveEffects[i+1:]...)
			return true
		}
	}
	return false
}
