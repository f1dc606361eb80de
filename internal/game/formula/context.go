package formula

import (
	"fmt"
	"strings"

	"github.com/arbiterhq/arbiter/internal/game/creature"
)

// Context supplies the named variables an expression may reference.  Actor
// is required for most variables; Target, SpellSlotLevel and
// SpellcastingAbility are optional and produce ErrUnresolvedVariable when a
// variable needs them and they are absent.
type Context struct {
	Actor               *creature.State
	Target              *creature.State
	SpellSlotLevel      *int
	SpellcastingAbility string
	// TargetAC lets callers inject the target's computed AC without the
	// formula package depending on the AC calculator.
	TargetAC *int
}

// resolve maps a variable token to its value.
func (c *Context) resolve(name string) (float64, error) {
	fail := func() (float64, error) {
		return 0, fmt.Errorf("%w: %s", ErrUnresolvedVariable, name)
	}
	if c == nil {
		return fail()
	}

	if qual, ok := strings.CutPrefix(name, "ABILITY_MODIFIER:"); ok {
		if c.Actor == nil {
			return fail()
		}
		if mod, ok := c.Actor.AbilityMod(qual); ok {
			return float64(mod), nil
		}
		return fail()
	}
	if qual, ok := strings.CutPrefix(name, "TARGET_ABILITY_MODIFIER:"); ok {
		if c.Target == nil {
			return fail()
		}
		if mod, ok := c.Target.AbilityMod(qual); ok {
			return float64(mod), nil
		}
		return fail()
	}
	if qual, ok := strings.CutPrefix(name, "CLASS_LEVEL:"); ok {
		if c.Actor == nil {
			return fail()
		}
		for _, cl := range c.Actor.ClassLevels {
			if strings.EqualFold(cl.ClassID, qual) {
				return float64(cl.Level), nil
			}
		}
		return 0, nil // no levels in that class
	}

	switch name {
	case "PROFICIENCY_BONUS":
		if c.Actor == nil {
			return fail()
		}
		return float64(c.Actor.ProficiencyBonus), nil
	case "LEVEL", "CHARACTER_LEVEL":
		if c.Actor == nil {
			return fail()
		}
		return float64(c.Actor.TotalLevel), nil
	case "MAX_HP":
		if c.Actor == nil {
			return fail()
		}
		return float64(c.Actor.MaxHPCalculated), nil
	case "CURRENT_HP":
		if c.Actor == nil {
			return fail()
		}
		return float64(c.Actor.CurrentHP), nil
	case "SPELLCASTING_ABILITY_MODIFIER":
		if c.Actor == nil || c.SpellcastingAbility == "" {
			return fail()
		}
		if mod, ok := c.Actor.AbilityMod(c.SpellcastingAbility); ok {
			return float64(mod), nil
		}
		return fail()
	case "SPELL_SLOT_LEVEL":
		if c.SpellSlotLevel == nil {
			return fail()
		}
		return float64(*c.SpellSlotLevel), nil
	case "TARGET_MAX_HP":
		if c.Target == nil {
			return fail()
		}
		return float64(c.Target.MaxHPCalculated), nil
	case "TARGET_CURRENT_HP":
		if c.Target == nil {
			return fail()
		}
		return float64(c.Target.CurrentHP), nil
	case "TARGET_AC":
		if c.TargetAC == nil {
			return fail()
		}
		return float64(*c.TargetAC), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownToken, name)
}
