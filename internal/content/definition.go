package content

// ConditionDefinition is a named condition (PRONE, POISONED, UNCONSCIOUS, ...)
// carrying the effects applied while the condition is active and optional Lua
// lifecycle hook names resolved by the scripting manager.
type ConditionDefinition struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Effects     []ParsedEffect `yaml:"effects,omitempty"`
	LuaOnApply  string         `yaml:"lua_on_apply,omitempty"`
	LuaOnRemove string         `yaml:"lua_on_remove,omitempty"`
	LuaOnTick   string         `yaml:"lua_on_tick,omitempty"`
}

// Conditions with hardwired engine semantics.  Everything else about a
// condition is data-driven.
const (
	ConditionUnconscious = "UNCONSCIOUS"
	ConditionDead        = "DEAD"
)

// Incapacitating returns true for condition IDs that deny a creature its
// turn entirely.
func Incapacitating(id string) bool {
	switch id {
	case "INCAPACITATED", "STUNNED", "PARALYZED", ConditionUnconscious, "PETRIFIED":
		return true
	}
	return false
}

// WeaponSpec is the weapon facet of an item.
type WeaponSpec struct {
	Ability            string         `yaml:"ability,omitempty"` // association ability, e.g. "STR"
	AttackBonusFormula string         `yaml:"attack_bonus_formula,omitempty"`
	FixedAttackBonus   *int           `yaml:"fixed_attack_bonus,omitempty"`
	Range              string         `yaml:"range,omitempty"`
	Damage             []DamageRoll   `yaml:"damage,omitempty"`
	Properties         []string       `yaml:"properties,omitempty"`
	OnHitEffects       []ParsedEffect `yaml:"on_hit_effects,omitempty"`
}

// ArmorSpec is the armor facet of an item.  MaxDexBonus nil means the wearer
// adds their full DEX modifier.
type ArmorSpec struct {
	BaseAC      int    `yaml:"base_ac"`
	MaxDexBonus *int   `yaml:"max_dex_bonus,omitempty"`
	Category    string `yaml:"category,omitempty"` // LIGHT, MEDIUM, HEAVY
}

// ShieldSpec is the shield facet of an item.
type ShieldSpec struct {
	ACBonus int `yaml:"ac_bonus"`
}

// ItemDefinition describes an equippable or consumable item.
type ItemDefinition struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Weapon      *WeaponSpec    `yaml:"weapon,omitempty"`
	Armor       *ArmorSpec     `yaml:"armor,omitempty"`
	Shield      *ShieldSpec    `yaml:"shield,omitempty"`
	Effects     []ParsedEffect `yaml:"effects,omitempty"`
}

// Casting-time action types recognised by the turn manager's action-economy
// gate.
const (
	CastingTimeAction      = "ACTION"
	CastingTimeBonusAction = "BONUS_ACTION"
	CastingTimeReaction    = "REACTION"
)

// SpellComponents lists the components a cast requires.
type SpellComponents struct {
	Verbal   bool   `yaml:"verbal,omitempty"`
	Somatic  bool   `yaml:"somatic,omitempty"`
	Material string `yaml:"material,omitempty"` // empty means no material component
}

// SpellDefinition is a castable spell.
type SpellDefinition struct {
	ID            string          `yaml:"id"`
	Name          string          `yaml:"name"`
	Level         int             `yaml:"level"` // 0 for cantrips
	School        string          `yaml:"school,omitempty"`
	CastingTime   string          `yaml:"casting_time"` // ACTION, BONUS_ACTION, ...
	Components    SpellComponents `yaml:"components,omitempty"`
	Duration      string          `yaml:"duration,omitempty"`
	Concentration bool            `yaml:"concentration,omitempty"`
	Effects       []ParsedEffect  `yaml:"effects,omitempty"`
}

// FeatureDefinition is a class/species feature carrying its own effects and
// optionally its own save-DC formula via a DEFINE_SAVE_DC effect.
type FeatureDefinition struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Effects     []ParsedEffect `yaml:"effects,omitempty"`
}

// LevelProgression is one row of a class table.
type LevelProgression struct {
	Level      int         `yaml:"level"`
	SpellSlots map[int]int `yaml:"spell_slots,omitempty"` // slot level -> slots granted at this level
}

// ClassDefinition drives player-character derived stats and resources.
type ClassDefinition struct {
	ID                  string             `yaml:"id"`
	Name                string             `yaml:"name"`
	HitDieSides         int                `yaml:"hit_die_sides"`
	SaveProficiencies   []string           `yaml:"save_proficiencies,omitempty"`
	SpellcastingAbility string             `yaml:"spellcasting_ability,omitempty"`
	Levels              []LevelProgression `yaml:"levels,omitempty"`
}

// HitDiceSpec is a monster template's hit-dice line.
type HitDiceSpec struct {
	Count   int `yaml:"count"`
	Sides   int `yaml:"sides"`
	Average int `yaml:"average"` // stated average; max HP never falls below it
}

// CreatureAction is an attack or ability defined directly on a template.
type CreatureAction struct {
	Name               string         `yaml:"name"`
	Ability            string         `yaml:"ability,omitempty"`
	AttackBonusFormula string         `yaml:"attack_bonus_formula,omitempty"`
	FixedAttackBonus   *int           `yaml:"fixed_attack_bonus,omitempty"`
	Range              string         `yaml:"range,omitempty"`
	Damage             []DamageRoll   `yaml:"damage,omitempty"`
	OnHitEffects       []ParsedEffect `yaml:"on_hit_effects,omitempty"`
}

// CreatureTemplate is the immutable definition a monster instance is built
// from.
type CreatureTemplate struct {
	ID                 string           `yaml:"id"`
	Name               string           `yaml:"name"`
	Size               string           `yaml:"size,omitempty"`
	Type               string           `yaml:"type,omitempty"`
	AbilityScores      map[string]int   `yaml:"ability_scores"`
	HitDice            HitDiceSpec      `yaml:"hit_dice"`
	ProficiencyBonus   int              `yaml:"proficiency_bonus,omitempty"`
	Speeds             map[string]int   `yaml:"speeds,omitempty"`
	Senses             map[string]int   `yaml:"senses,omitempty"`
	SaveProficiencies  []string         `yaml:"save_proficiencies,omitempty"`
	SkillProficiencies []string         `yaml:"skill_proficiencies,omitempty"`
	Resistances        []string         `yaml:"resistances,omitempty"`
	Immunities         []string         `yaml:"immunities,omitempty"`
	Vulnerabilities    []string         `yaml:"vulnerabilities,omitempty"`
	Actions            []CreatureAction `yaml:"actions,omitempty"`
}

// Rest types that trigger resource recovery.
const (
	RestShort = "SHORT_REST"
	RestLong  = "LONG_REST"
)

// ResourceDefinition names a trackable resource and when it recharges.
type ResourceDefinition struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	IsHitDice  bool     `yaml:"is_hit_dice,omitempty"`
	RechargeOn []string `yaml:"recharge_on,omitempty"` // SHORT_REST and/or LONG_REST
}

// SkillDefinition maps a skill to its default ability.
type SkillDefinition struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Ability string `yaml:"ability"`
}

// DamageTypeDefinition names a damage type.
type DamageTypeDefinition struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}
