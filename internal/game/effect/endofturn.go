package effect

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// ProcessEndOfTurn decrements every timed active effect and condition on the
// creature, removing any that expire.  When a condition expires, every
// active effect it introduced (matching its definition ID as source) is
// removed with it.  Stats are recomputed when anything was removed.
func (x *Executor) ProcessEndOfTurn(s *creature.State) *Result {
	res := &Result{}
	removedAny := false

	var keptEffects []creature.ActiveEffect
	for _, ae := range s.ActiveEffects {
		if ae.RemainingDurationRounds != nil {
			*ae.RemainingDurationRounds--
			if *ae.RemainingDurationRounds <= 0 {
				removedAny = true
				ev := event.New(event.EffectRemoved, fmt.Sprintf("%s effect from %s expires on %s",
					ae.Effect.Type, ae.SourceDefinitionID, s.Name))
				ev = ev.WithTarget(s.ID).WithDefinition(ae.SourceDefinitionID)
				res.Events = append(res.Events, ev)
				continue
			}
		}
		keptEffects = append(keptEffects, ae)
	}
	s.ActiveEffects = keptEffects

	var expiredConditionIDs []string
	var keptConditions []creature.ActiveCondition
	for _, ac := range s.ActiveConditions {
		if x.hooks != nil && ac.Definition != nil && ac.Definition.LuaOnTick != "" {
			x.hooks.RunConditionHook(ac.Definition.LuaOnTick, ac.Definition.ID, s)
		}
		if ac.RemainingDurationRounds != nil {
			*ac.RemainingDurationRounds--
			if *ac.RemainingDurationRounds <= 0 {
				removedAny = true
				if ac.Definition != nil {
					expiredConditionIDs = append(expiredConditionIDs, ac.Definition.ID)
					ev := event.New(event.ConditionRemoved, fmt.Sprintf("%s is no longer %s",
						s.Name, ac.Definition.Name))
					ev = ev.WithTarget(s.ID).WithDefinition(ac.Definition.ID)
					res.Events = append(res.Events, ev)
					if x.hooks != nil && ac.Definition.LuaOnRemove != "" {
						x.hooks.RunConditionHook(ac.Definition.LuaOnRemove, ac.Definition.ID, s)
					}
				}
				continue
			}
		}
		keptConditions = append(keptConditions, ac)
	}
	s.ActiveConditions = keptConditions

	// Condition-granted effects do not outlive their condition.
	for _, condID := range expiredConditionIDs {
		var kept []creature.ActiveEffect
		for _, ae := range s.ActiveEffects {
			if ae.SourceDefinitionID == condID {
				ev := event.New(event.EffectRemoved, fmt.Sprintf("%s effect from %s expires on %s",
					ae.Effect.Type, condID, s.Name))
				ev = ev.WithTarget(s.ID).WithDefinition(condID)
				res.Events = append(res.Events, ev)
				continue
			}
			kept = append(kept, ae)
		}
		s.ActiveEffects = kept
	}

	if removedAny {
		res.touch(s.ID)
		stats.UpdateCalculatedStats(s, x.store, x.logger)
		x.logger.Debug("end-of-turn expiry",
			zap.String("creature", s.ID),
			zap.Int("events", len(res.Events)),
		)
	}
	return res
}
