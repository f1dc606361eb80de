// Package stats computes every derived quantity of a creature: effective
// ability scores, proficiency, attack/save/skill bonuses, spell save DC,
// initiative modifier, max HP and armor class.  All functions are pure over
// the creature state except UpdateCalculatedStats, the single orchestration
// entry point that writes the recomputed values back.
package stats

import (
	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/formula"
)

// Attack is a normalized attack description, resolved from a weapon item or
// a creature-template action before resolution.
type Attack struct {
	Name         string
	Ability      string
	BonusFormula string
	FixedBonus   *int
	Range        string
	Damage       []content.DamageRoll
	OnHitEffects []content.ParsedEffect
}

// effectBonus returns the contribution of one active bonus effect: the
// static value when authored, otherwise the amount resolved at application
// time.
func effectBonus(e *creature.ActiveEffect) int {
	if e.Effect.BonusValue != nil {
		return *e.Effect.BonusValue
	}
	return e.BonusValue
}

// bonusEffectsFor sums every active GRANT_BONUS effect whose scope matches
// one of the given keys.
func bonusEffectsFor(s *creature.State, scopes ...string) int {
	total := 0
	for i := range s.ActiveEffects {
		e := &s.ActiveEffects[i]
		if e.Effect.Type != content.EffectGrantBonus {
			continue
		}
		for _, scope := range scopes {
			if e.Effect.BonusTo == scope {
				total += effectBonus(e)
				break
			}
		}
	}
	return total
}

// EffectiveAbilityScores returns base scores plus every active GRANT_BONUS
// effect targeting an ability ID.
func EffectiveAbilityScores(s *creature.State) map[string]int {
	out := make(map[string]int, len(s.BaseAbilityScores))
	for k, v := range s.BaseAbilityScores {
		out[k] = v
	}
	for i := range s.ActiveEffects {
		e := &s.ActiveEffects[i]
		if e.Effect.Type != content.EffectGrantBonus {
			continue
		}
		if _, isAbility := out[e.Effect.BonusTo]; isAbility {
			out[e.Effect.BonusTo] += effectBonus(e)
		}
	}
	return out
}

// ProficiencyBonus derives the proficiency bonus: player characters use the
// level breakpoint table, monsters the value stored on their template,
// anything else defaults to 2.
func ProficiencyBonus(s *creature.State) int {
	if s.IsPlayerCharacter {
		switch lvl := s.TotalLevel; {
		case lvl >= 17:
			return 6
		case lvl >= 13:
			return 5
		case lvl >= 9:
			return 4
		case lvl >= 5:
			return 3
		default:
			return 2
		}
	}
	if s.Template != nil && s.Template.ProficiencyBonus > 0 {
		return s.Template.ProficiencyBonus
	}
	return 2
}

// AttackBonus computes an attack's to-hit bonus.  An explicit formula wins;
// on formula failure the fallback is ability modifier plus proficiency when
// an association ability is defined, otherwise the fixed bonus.  Active
// ATTACK_ROLL bonus effects always add on top.
func AttackBonus(s *creature.State, atk *Attack, logger *zap.Logger) int {
	base := 0
	resolved := false
	if atk.BonusFormula != "" {
		v, err := formula.EvalInt(atk.BonusFormula, &formula.Context{Actor: s})
		if err == nil {
			base = v
			resolved = true
		} else if logger != nil {
			logger.Warn("attack bonus formula failed, falling back",
				zap.String("creature", s.ID),
				zap.String("formula", atk.BonusFormula),
				zap.Error(err),
			)
		}
	}
	if !resolved {
		if atk.Ability != "" {
			if mod, ok := s.AbilityMod(atk.Ability); ok {
				base = mod + s.ProficiencyBonus
				resolved = true
			}
		}
		if !resolved && atk.FixedBonus != nil {
			base = *atk.FixedBonus
		}
	}
	return base + bonusEffectsFor(s, content.ScopeAttackRoll)
}

// SaveBonus computes the saving-throw bonus for an ability: modifier, plus
// proficiency when the creature is proficient in that save, plus matching
// bonus effects (SAVING_THROW, the ability ID, or "<ability>_SAVE").
func SaveBonus(s *creature.State, ability string) int {
	mod, _ := s.AbilityMod(ability)
	bonus := mod
	for _, p := range s.SaveProficiencies {
		if p == ability {
			bonus += s.ProficiencyBonus
			break
		}
	}
	return bonus + bonusEffectsFor(s, content.ScopeSavingThrow, ability, ability+"_SAVE")
}

// SkillBonus computes a skill-check bonus from the skill's default ability,
// proficiency (doubled on expertise) and matching bonus effects.
func SkillBonus(s *creature.State, skill *content.SkillDefinition) int {
	mod, _ := s.AbilityMod(skill.Ability)
	bonus := mod
	proficient := false
	for _, p := range s.SkillProficiencies {
		if p == skill.ID {
			proficient = true
			break
		}
	}
	if proficient {
		prof := s.ProficiencyBonus
		for _, e := range s.SkillExpertise {
			if e == skill.ID {
				prof *= 2
				break
			}
		}
		bonus += prof
	}
	return bonus + bonusEffectsFor(s, skill.ID, content.ScopeAbilityCheck)
}

// SpellSaveDC computes the DC a target must beat against this creature's
// spells.  A feature may define its own DC via a DEFINE_SAVE_DC effect;
// otherwise 8 + proficiency + spellcasting ability modifier.
func SpellSaveDC(s *creature.State, ability string, feature *content.FeatureDefinition, logger *zap.Logger) int {
	dc := 0
	resolved := false
	if feature != nil {
		for i := range feature.Effects {
			e := &feature.Effects[i]
			if e.Type != content.EffectDefineSaveDC || e.DCFormula == "" {
				continue
			}
			v, err := formula.EvalInt(e.DCFormula, &formula.Context{Actor: s, SpellcastingAbility: ability})
			if err == nil {
				dc = v
				resolved = true
			} else if logger != nil {
				logger.Warn("save DC formula failed, using default",
					zap.String("creature", s.ID),
					zap.String("feature", feature.ID),
					zap.Error(err),
				)
			}
			break
		}
	}
	if !resolved {
		mod, _ := s.AbilityMod(ability)
		dc = 8 + s.ProficiencyBonus + mod
	}
	return dc + bonusEffectsFor(s, content.ScopeSpellSaveDC)
}

// InitiativeModifier is the DEX modifier plus INITIATIVE_ROLL bonus effects.
func InitiativeModifier(s *creature.State) int {
	mod, _ := s.AbilityMod("DEX")
	return mod + bonusEffectsFor(s, content.ScopeInitiativeRoll)
}

// PassiveScore is 10 plus the skill bonus.
func PassiveScore(s *creature.State, skill *content.SkillDefinition) int {
	return 10 + SkillBonus(s, skill)
}
