package resolve

import (
	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// Situational carries per-call modifiers supplied by the orchestrator.
type Situational struct {
	Advantage    bool
	Disadvantage bool
	FlatBonus    int
}

// AttackResult is the full audit record of one attack roll.
type AttackResult struct {
	Outcome      Outcome
	Mode         dice.Mode
	NaturalRolls []int
	ChosenRoll   int
	AttackBonus  int
	Total        int
	TargetAC     int
}

// rollScopeActive reports whether the creature holds an active effect of
// the given type covering the given roll scope.  An effect with no explicit
// scope covers attack rolls.
func rollScopeActive(s *creature.State, t content.EffectType, scope string) bool {
	for i := range s.ActiveEffects {
		e := &s.ActiveEffects[i]
		if e.Effect.Type != t {
			continue
		}
		if e.Effect.RollScope == scope || e.Effect.RollScope == "" && scope == content.ScopeAttackRoll {
			return true
		}
	}
	return false
}

// attackMode aggregates advantage and disadvantage from situational flags,
// the attacker's own roll effects, and the target's attacker-facing effects.
func attackMode(attacker, target *creature.State, sit Situational) dice.Mode {
	adv := sit.Advantage
	dis := sit.Disadvantage
	if rollScopeActive(attacker, content.EffectGrantAdvantage, content.ScopeAttackRoll) {
		adv = true
	}
	if rollScopeActive(attacker, content.EffectImposeDisadvantage, content.ScopeAttackRoll) {
		dis = true
	}
	for i := range target.ActiveEffects {
		switch target.ActiveEffects[i].Effect.Type {
		case content.EffectAdvantageToAttackers:
			adv = true
		case content.EffectDisadvantageToAttacker:
			dis = true
		}
	}
	return dice.ResolveMode(adv, dis)
}

// Attack rolls one attack from attacker against target.
// Classification: natural 1 is a CriticalMiss and natural 20 a CriticalHit
// regardless of totals; otherwise total >= target AC hits.
func Attack(roller *dice.Roller, attacker, target *creature.State, atk *stats.Attack, sit Situational, targetAC int) AttackResult {
	bonus := stats.AttackBonus(attacker, atk, nil) + sit.FlatBonus
	roll := roller.RollD20(attackMode(attacker, target, sit))

	result := AttackResult{
		Mode:         roll.Mode,
		NaturalRolls: roll.Rolls,
		ChosenRoll:   roll.Value,
		AttackBonus:  bonus,
		Total:        roll.Value + bonus,
		TargetAC:     targetAC,
	}
	switch {
	case roll.Natural1():
		result.Outcome = CriticalMiss
	case roll.Natural20():
		result.Outcome = CriticalHit
	case result.Total >= targetAC:
		result.Outcome = Hit
	default:
		result.Outcome = Miss
	}
	return result
}
