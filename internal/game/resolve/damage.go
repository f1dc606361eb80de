package resolve

import (
	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
)

// DamageInstance is one typed parcel of already-rolled, already-crit-doubled
// damage entering the pipeline.
type DamageInstance struct {
	Amount         int
	Type           string
	BypassImmunity bool
}

// InstanceBreakdown records how one damage instance was modified by the
// target's defenses.
type InstanceBreakdown struct {
	Type       string
	Raw        int
	Final      int
	Immune     bool
	Resisted   bool
	Vulnerable bool
}

// DamageResult is the outcome of applying a damage batch.  The pipeline is
// pure over the target: the caller applies the deltas.
type DamageResult struct {
	TotalRaw        int
	TotalApplied    int
	TempHPAbsorbed  int
	HPLost          int
	NewTempHP       int
	NewHP           int
	Overkill        int
	NewConditionIDs []string
	// ConcentrationDC is max(10, floor(damage/2)) when the target is
	// concentrating and took damage; zero otherwise.  The pipeline never
	// rolls the check itself.
	ConcentrationDC int
	Breakdown       []InstanceBreakdown
}

func hasDefense(list []string, s *creature.State, effectType content.EffectType, dmgType string) bool {
	for _, t := range list {
		if t == dmgType {
			return true
		}
	}
	for i := range s.ActiveEffects {
		e := &s.ActiveEffects[i]
		if e.Effect.Type != effectType {
			continue
		}
		for _, t := range e.Effect.DamageTypes {
			if t == dmgType {
				return true
			}
		}
	}
	return false
}

// ApplyDamage runs the defense pipeline for a batch of damage instances.
//
// Per instance: immunity zeroes it outright unless explicitly bypassed;
// vulnerability doubles; resistance halves (floor); resistance and
// vulnerability together cancel, reverting to the raw amount.  The summed
// total consumes temporary HP first, then current HP.  Overkill is the
// magnitude HP would fall below zero.  Crossing from above zero to zero or
// below yields UNCONSCIOUS unless the target already carries UNCONSCIOUS or
// DEAD.
func ApplyDamage(target *creature.State, instances []DamageInstance) DamageResult {
	result := DamageResult{NewTempHP: target.TemporaryHP, NewHP: target.CurrentHP}

	for _, inst := range instances {
		bd := InstanceBreakdown{Type: inst.Type, Raw: inst.Amount}
		amount := inst.Amount

		// Reserved hook for flat damage reduction; currently identity.

		immune := !inst.BypassImmunity && hasDefense(target.Immunities, target, content.EffectGrantImmunity, inst.Type)
		if immune {
			bd.Immune = true
			bd.Final = 0
			result.Breakdown = append(result.Breakdown, bd)
			result.TotalRaw += inst.Amount
			continue
		}

		vulnerable := false
		for _, t := range target.Vulnerabilities {
			if t == inst.Type {
				vulnerable = true
				break
			}
		}
		resistant := hasDefense(target.Resistances, target, content.EffectGrantResistance, inst.Type)
		switch {
		case vulnerable && resistant:
			// cancel: keep the raw amount
		case vulnerable:
			bd.Vulnerable = true
			amount *= 2
		case resistant:
			bd.Resisted = true
			amount /= 2
		}

		bd.Final = amount
		result.Breakdown = append(result.Breakdown, bd)
		result.TotalRaw += inst.Amount
		result.TotalApplied += amount
	}

	remaining := result.TotalApplied
	if target.TemporaryHP > 0 {
		absorbed := remaining
		if absorbed > target.TemporaryHP {
			absorbed = target.TemporaryHP
		}
		result.TempHPAbsorbed = absorbed
		result.NewTempHP = target.TemporaryHP - absorbed
		remaining -= absorbed
	}

	newHP := target.CurrentHP - remaining
	if newHP < 0 {
		result.Overkill = -newHP
		newHP = 0
	}
	result.HPLost = target.CurrentHP - newHP
	result.NewHP = newHP

	if target.CurrentHP > 0 && newHP <= 0 &&
		!target.HasCondition(content.ConditionUnconscious) &&
		!target.HasCondition(content.ConditionDead) {
		result.NewConditionIDs = append(result.NewConditionIDs, content.ConditionUnconscious)
	}

	if target.Concentration != nil && result.TotalApplied > 0 {
		dc := result.TotalApplied / 2
		if dc < 10 {
			dc = 10
		}
		result.ConcentrationDC = dc
	}
	return result
}
