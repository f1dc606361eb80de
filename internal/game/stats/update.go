package stats

import (
	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
)

// PerceptionSkillID is the skill backing passive perception.
const PerceptionSkillID = "PERCEPTION"

// UpdateCalculatedStats is the single orchestration entry point for derived
// state.  It recomputes total level, effective ability scores, proficiency,
// max HP (clamping current HP down when it now exceeds max), armor class and
// passive perception.  Callers must invoke it after any mutation that could
// change stats: HP changes, effect add/remove, gear changes.
func UpdateCalculatedStats(s *creature.State, store *content.Store, logger *zap.Logger) {
	total := 0
	for _, cl := range s.ClassLevels {
		total += cl.Level
	}
	s.TotalLevel = total

	s.EffectiveAbilityScores = EffectiveAbilityScores(s)
	s.ProficiencyBonus = ProficiencyBonus(s)

	s.MaxHPCalculated = MaxHP(s, store, logger)
	if s.CurrentHP > s.MaxHPCalculated {
		s.CurrentHP = s.MaxHPCalculated
	}

	s.ArmorClass = ComputeAC(s, store, logger).Final

	if skill, err := store.Skill(PerceptionSkillID); err == nil {
		s.PassivePerception = PassiveScore(s, skill)
	} else {
		wisMod, _ := s.AbilityMod("WIS")
		s.PassivePerception = 10 + wisMod
	}
}
