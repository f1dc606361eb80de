package stats

import (
	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/formula"
)

// MaxHP computes the calculated maximum hit points.
//
// Monsters use the hit-dice formula average (count * (sides+1)/2 plus CON
// modifier per die), never below the template's stated average.  Player
// characters sum per class level: max die plus CON at first level, half the
// die plus CON afterwards, never less than 1 per level.  The pre-effect base
// is never below 1; active INCREASE_MAX_HP effects add on top, and the final
// result never drops below 1 either.
func MaxHP(s *creature.State, store *content.Store, logger *zap.Logger) int {
	conMod, _ := s.AbilityMod("CON")
	hp := 0

	switch {
	case s.IsPlayerCharacter && len(s.ClassLevels) > 0:
		first := true
		for _, cl := range s.ClassLevels {
			def, err := store.Class(cl.ClassID)
			if err != nil {
				if logger != nil {
					logger.Warn("class definition missing for max HP",
						zap.String("creature", s.ID),
						zap.String("class", cl.ClassID),
					)
				}
				continue
			}
			for lvl := 0; lvl < cl.Level; lvl++ {
				var gained int
				if first {
					gained = def.HitDieSides + conMod
					first = false
				} else {
					gained = (def.HitDieSides+1)/2 + conMod
				}
				if gained < 1 {
					gained = 1
				}
				hp += gained
			}
		}
	case s.Template != nil:
		hd := s.Template.HitDice
		formulaHP := hd.Count*(hd.Sides+1)/2 + hd.Count*conMod
		hp = formulaHP
		if hd.Average > hp {
			hp = hd.Average
		}
	default:
		hp = s.MaxHPBase
	}
	if hp < 1 {
		hp = 1
	}

	for i := range s.ActiveEffects {
		e := &s.ActiveEffects[i]
		if e.Effect.Type == content.EffectIncreaseMaxHP {
			hp += effectBonus(e)
		}
	}
	if hp < 1 {
		hp = 1
	}
	return hp
}

// ResolveEffectAmount evaluates an effect's formula bonus against the given
// context, falling back to zero on failure with a warning.  Used when an
// effect is first applied so the resolved amount can be stored on the
// ActiveEffect.
func ResolveEffectAmount(e *content.ParsedEffect, ctx *formula.Context, logger *zap.Logger) int {
	if e.BonusValue != nil {
		return *e.BonusValue
	}
	if e.BonusFormula == "" {
		return 0
	}
	v, err := formula.EvalInt(e.BonusFormula, ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("effect bonus formula failed, using zero",
				zap.String("effect", string(e.Type)),
				zap.String("formula", e.BonusFormula),
				zap.Error(err),
			)
		}
		return 0
	}
	return v
}
