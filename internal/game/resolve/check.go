package resolve

import (
	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// CheckResult is a resolved saving throw or skill check.  CriticalSuccess
// and CriticalFailure are informational only: natural rolls never auto-pass
// or auto-fail a save or check.
type CheckResult struct {
	Success         bool
	CriticalSuccess bool
	CriticalFailure bool
	Mode            dice.Mode
	NaturalRolls    []int
	ChosenRoll      int
	Bonus           int
	Total           int
	DC              int
}

func checkMode(s *creature.State, scope string, sit Situational) dice.Mode {
	adv := sit.Advantage
	dis := sit.Disadvantage
	if rollScopeActive(s, content.EffectGrantAdvantage, scope) {
		adv = true
	}
	if rollScopeActive(s, content.EffectImposeDisadvantage, scope) {
		dis = true
	}
	return dice.ResolveMode(adv, dis)
}

func rollCheck(roller *dice.Roller, mode dice.Mode, bonus, dc int) CheckResult {
	roll := roller.RollD20(mode)
	return CheckResult{
		Success:         roll.Value+bonus >= dc,
		CriticalSuccess: roll.Natural20(),
		CriticalFailure: roll.Natural1(),
		Mode:            roll.Mode,
		NaturalRolls:    roll.Rolls,
		ChosenRoll:      roll.Value,
		Bonus:           bonus,
		Total:           roll.Value + bonus,
		DC:              dc,
	}
}

// SavingThrow rolls the named ability save against dc.  Advantage effects
// scoped "<ABILITY>_SAVE" (or situational flags) shift the roll mode.
func SavingThrow(roller *dice.Roller, target *creature.State, ability string, dc int, sit Situational) CheckResult {
	bonus := stats.SaveBonus(target, ability) + sit.FlatBonus
	return rollCheck(roller, checkMode(target, ability+"_SAVE", sit), bonus, dc)
}

// SkillCheck rolls the given skill against dc.
func SkillCheck(roller *dice.Roller, actor *creature.State, skill *content.SkillDefinition, dc int, sit Situational) CheckResult {
	bonus := stats.SkillBonus(actor, skill) + sit.FlatBonus
	return rollCheck(roller, checkMode(actor, skill.ID, sit), bonus, dc)
}

// ContestedResult pairs both sides of a contested check.
type ContestedResult struct {
	Outcome   ContestOutcome // from the initiator's perspective
	Initiator CheckResult
	Opponent  CheckResult
}

// ContestedCheck rolls both parties independently; the higher final total
// wins and an exact tie is surfaced as ContestTie for the caller's
// tie-break policy.
func ContestedCheck(roller *dice.Roller, initiator *creature.State, initiatorSkill *content.SkillDefinition, opponent *creature.State, opponentSkill *content.SkillDefinition) ContestedResult {
	a := rollCheck(roller, checkMode(initiator, initiatorSkill.ID, Situational{}), stats.SkillBonus(initiator, initiatorSkill), 0)
	b := rollCheck(roller, checkMode(opponent, opponentSkill.ID, Situational{}), stats.SkillBonus(opponent, opponentSkill), 0)

	out := ContestedResult{Initiator: a, Opponent: b}
	switch {
	case a.Total > b.Total:
		out.Outcome = ContestWin
	case a.Total < b.Total:
		out.Outcome = ContestLoss
	default:
		out.Outcome = ContestTie
	}
	return out
}
