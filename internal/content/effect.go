// Package content holds the data-authored definitions the engine consumes:
// creature templates, items, spells, features, conditions, classes, skills
// and resources, plus the parsed effect language they all share.  Definitions
// are immutable once loaded; the engine reads them through a Store.
package content

// EffectType discriminates the effect union.  The set is closed: the effect
// interpreter dispatches exhaustively over these constants.
type EffectType string

const (
	EffectDealDamage             EffectType = "DEAL_DAMAGE"
	EffectDealDamageOnAttackHit  EffectType = "DEAL_DAMAGE_ON_ATTACK_HIT"
	EffectApplyCondition         EffectType = "APPLY_CONDITION"
	EffectHeal                   EffectType = "HEAL"
	EffectGrantBonus             EffectType = "GRANT_BONUS"
	EffectGrantAdvantage         EffectType = "GRANT_ADVANTAGE_ON_ROLL"
	EffectImposeDisadvantage     EffectType = "IMPOSE_DISADVANTAGE_ON_ROLL"
	EffectAdvantageToAttackers   EffectType = "GRANT_ADVANTAGE_TO_ATTACKERS"
	EffectDisadvantageToAttacker EffectType = "GRANT_DISADVANTAGE_TO_ATTACKERS"
	EffectSetBaseAC              EffectType = "SET_BASE_AC"
	EffectGrantResistance        EffectType = "GRANT_RESISTANCE"
	EffectGrantImmunity          EffectType = "GRANT_IMMUNITY"
	EffectIncreaseMaxHP          EffectType = "INCREASE_MAX_HP"
	EffectDefineSaveDC           EffectType = "DEFINE_SAVE_DC"
)

// Target scopes for effect application.
const (
	ScopeSelf   = "SELF"
	ScopeTarget = "TARGET"
)

// Bonus scopes recognised by the stat calculators.
const (
	ScopeAttackRoll     = "ATTACK_ROLL"
	ScopeArmorClass     = "ARMOR_CLASS"
	ScopeSavingThrow    = "SAVING_THROW"
	ScopeInitiativeRoll = "INITIATIVE_ROLL"
	ScopeSpellSaveDC    = "SPELL_SAVE_DC"
	ScopeAbilityCheck   = "ABILITY_CHECK"
)

// Trigger values for effects that fire on a later event rather than at
// application time.
const (
	TriggerOnAttackHit = "ON_ATTACK_HIT"
)

// DamageRoll is one typed damage component of an effect or attack.
type DamageRoll struct {
	Dice           string `yaml:"dice"` // dice notation, e.g. "1d8" or "2d6+3"
	Type           string `yaml:"type"` // damage type ID, e.g. "SLASHING"
	BonusFormula   string `yaml:"bonus_formula,omitempty"`
	BypassImmunity bool   `yaml:"bypass_immunity,omitempty"`
}

// HealingSpec describes a HEAL effect's roll.
type HealingSpec struct {
	Dice         string `yaml:"dice,omitempty"`
	BonusValue   int    `yaml:"bonus_value,omitempty"`
	BonusFormula string `yaml:"bonus_formula,omitempty"`
}

// Save outcomes for damage-dealing effects gated by a saving throw.
const (
	SaveOutcomeHalf = "HALF"
	SaveOutcomeNone = "NONE"
)

// SaveSpec is the optional saving-throw gate on an effect.  Exactly one of
// DCFormula, DCValue or UseSpellSaveDC supplies the DC.
type SaveSpec struct {
	Ability        string `yaml:"ability"`
	DCFormula      string `yaml:"dc_formula,omitempty"`
	DCValue        int    `yaml:"dc_value,omitempty"`
	UseSpellSaveDC bool   `yaml:"use_spell_save_dc,omitempty"`
	OnSuccess      string `yaml:"on_success,omitempty"` // HALF or NONE
}

// ParsedEffect is one immutable, data-authored rules effect.  Type selects
// the variant; the remaining fields are variant-specific and optional.
type ParsedEffect struct {
	Type   EffectType `yaml:"type"`
	Target string     `yaml:"target,omitempty"` // SELF or TARGET; empty means TARGET

	DamageRolls []DamageRoll `yaml:"damage_rolls,omitempty"`
	Healing     *HealingSpec `yaml:"healing,omitempty"`
	Save        *SaveSpec    `yaml:"save,omitempty"`

	// GRANT_BONUS and the advantage family.
	BonusTo      string `yaml:"bonus_to,omitempty"` // ATTACK_ROLL, ARMOR_CLASS, ability ID, skill ID, ...
	BonusValue   *int   `yaml:"bonus_value,omitempty"`
	BonusFormula string `yaml:"bonus_formula,omitempty"`
	RollScope    string `yaml:"roll_scope,omitempty"` // which rolls an advantage effect covers

	ConditionID string   `yaml:"condition_id,omitempty"` // APPLY_CONDITION
	DamageTypes []string `yaml:"damage_types,omitempty"` // GRANT_RESISTANCE / GRANT_IMMUNITY scope
	ACFormula   string   `yaml:"ac_formula,omitempty"`   // SET_BASE_AC
	DCFormula   string   `yaml:"dc_formula,omitempty"`   // DEFINE_SAVE_DC

	Duration      string `yaml:"duration,omitempty"` // see effect duration parsing
	Concentration bool   `yaml:"concentration,omitempty"`
	Trigger       string `yaml:"trigger,omitempty"` // e.g. ON_ATTACK_HIT
}

// TargetScope returns the effect's scope, defaulting to TARGET.
func (e *ParsedEffect) TargetScope() string {
	if e.Target == ScopeSelf {
		return ScopeSelf
	}
	return ScopeTarget
}
