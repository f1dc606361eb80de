package effect

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/formula"
	"github.com/arbiterhq/arbiter/internal/game/resolve"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// HookRunner executes optional scripted lifecycle hooks declared on
// condition definitions.  A nil runner disables scripting.
type HookRunner interface {
	RunConditionHook(hookName, conditionID string, target *creature.State)
}

// Source definition types carried on active effects for provenance.
const (
	SourceSpell     = "SPELL"
	SourceItem      = "ITEM"
	SourceFeature   = "FEATURE"
	SourceCondition = "CONDITION"
	SourceAction    = "ACTION"
)

// ExecContext carries per-invocation state into effect application.
type ExecContext struct {
	SpellSlotLevel      *int
	SpellcastingAbility string
	// Critical doubles damage dice counts, never flat bonuses.
	Critical bool
	// CasterSpellSaveDC backs saves declared with use_spell_save_dc.
	CasterSpellSaveDC int
}

// Result accumulates the observable outcome of an effect batch.
type Result struct {
	Events   []event.Event
	modified map[string]bool
}

// ModifiedIDs lists the creatures mutated by the batch.
func (r *Result) ModifiedIDs() []string {
	out := make([]string, 0, len(r.modified))
	for id := range r.modified {
		out = append(out, id)
	}
	return out
}

func (r *Result) touch(id string) {
	if r.modified == nil {
		r.modified = make(map[string]bool)
	}
	r.modified[id] = true
}

// Executor applies effect batches to creatures.  It mutates the states it
// is handed; the turn manager owns those states and serializes calls.
type Executor struct {
	store  *content.Store
	roller *dice.Roller
	logger *zap.Logger
	hooks  HookRunner
}

// NewExecutor builds an Executor.  hooks may be nil.
func NewExecutor(store *content.Store, roller *dice.Roller, logger *zap.Logger, hooks HookRunner) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{store: store, roller: roller, logger: logger, hooks: hooks}
}

// Apply runs a batch of effects from one source definition against the
// resolved targets.  SELF-scoped effects land on the originator, TARGET
// scoped ones on each supplied target.  The batch is atomic: every mutation
// is staged on clones and folded back into the supplied states only when
// the whole batch succeeds.  A returned error means a structural failure
// (missing definition, malformed dice); the caller must treat the whole
// action as failed, and the supplied states are left untouched.
func (x *Executor) Apply(sourceDefID, sourceDefType string, effects []content.ParsedEffect, originator *creature.State, targets []*creature.State, ectx *ExecContext) (*Result, error) {
	if ectx == nil {
		ectx = &ExecContext{}
	}

	staged := make(map[*creature.State]*creature.State, len(targets)+1)
	stage := func(s *creature.State) *creature.State {
		if c, ok := staged[s]; ok {
			return c
		}
		c := s.Clone()
		staged[s] = c
		return c
	}
	stagedOriginator := stage(originator)
	stagedTargets := make([]*creature.State, len(targets))
	for i, t := range targets {
		stagedTargets[i] = stage(t)
	}

	res := &Result{}
	for i := range effects {
		e := &effects[i]
		var scoped []*creature.State
		if e.TargetScope() == content.ScopeSelf {
			scoped = []*creature.State{stagedOriginator}
		} else {
			scoped = stagedTargets
		}
		if len(scoped) == 0 {
			x.logger.Warn("effect has no resolvable targets",
				zap.String("source", sourceDefID),
				zap.String("type", string(e.Type)),
			)
			continue
		}
		for _, target := range scoped {
			if err := x.applyOne(res, sourceDefID, sourceDefType, e, stagedOriginator, target, ectx); err != nil {
				return res, err
			}
		}
	}

	for orig, c := range staged {
		*orig = *c
	}
	return res, nil
}

func (x *Executor) applyOne(res *Result, sourceDefID, sourceDefType string, e *content.ParsedEffect, originator, target *creature.State, ectx *ExecContext) error {
	fctx := &formula.Context{
		Actor:               originator,
		Target:              target,
		SpellSlotLevel:      ectx.SpellSlotLevel,
		SpellcastingAbility: ectx.SpellcastingAbility,
	}

	switch e.Type {
	case content.EffectDealDamage, content.EffectDealDamageOnAttackHit:
		return x.applyDamageEffect(res, sourceDefID, e, originator, target, ectx, fctx)

	case content.EffectApplyCondition:
		if e.Save != nil {
			sv, err := x.rollGatingSave(res, sourceDefID, e.Save, originator, target, ectx, fctx)
			if err != nil {
				return err
			}
			if sv.Success {
				return nil
			}
		}
		return x.ApplyConditionByID(res, target, e.ConditionID, sourceDefID, originator.ID, e.Duration, ectx)

	case content.EffectHeal:
		return x.applyHeal(res, sourceDefID, e, originator, target, fctx)

	case content.EffectGrantBonus:
		if x.pushActiveEffect(res, target, e, sourceDefID, sourceDefType, originator.ID, fctx) {
			if e.BonusTo == content.ScopeArmorClass || isAbilityID(e.BonusTo) {
				stats.UpdateCalculatedStats(target, x.store, x.logger)
			}
		}
		return nil

	case content.EffectGrantAdvantage, content.EffectImposeDisadvantage,
		content.EffectAdvantageToAttackers, content.EffectDisadvantageToAttacker:
		x.pushActiveEffect(res, target, e, sourceDefID, sourceDefType, originator.ID, fctx)
		return nil

	case content.EffectSetBaseAC:
		if x.pushActiveEffect(res, target, e, sourceDefID, sourceDefType, originator.ID, fctx) {
			stats.UpdateCalculatedStats(target, x.store, x.logger)
		}
		return nil

	case content.EffectGrantResistance, content.EffectGrantImmunity:
		x.pushActiveEffect(res, target, e, sourceDefID, sourceDefType, originator.ID, fctx)
		return nil

	case content.EffectIncreaseMaxHP:
		oldMax := target.MaxHPCalculated
		if x.pushActiveEffect(res, target, e, sourceDefID, sourceDefType, originator.ID, fctx) {
			stats.UpdateCalculatedStats(target, x.store, x.logger)
			// The realized increase also raises current HP so the grant is
			// not lost to the current-HP clamp.
			if delta := target.MaxHPCalculated - oldMax; delta > 0 {
				target.CurrentHP += delta
			}
		}
		return nil

	case content.EffectDefineSaveDC:
		// Consumed by the spell-save-DC calculator, nothing to apply.
		return nil

	default:
		rounds := DurationRounds(e.Duration)
		if sourceDefType == SourceCondition || rounds == nil && e.Duration != "" || rounds != nil && *rounds > 0 {
			x.pushActiveEffect(res, target, e, sourceDefID, sourceDefType, originator.ID, fctx)
			return nil
		}
		x.logger.Warn("unhandled effect type, skipping",
			zap.String("source", sourceDefID),
			zap.String("type", string(e.Type)),
		)
		return nil
	}
}

func isAbilityID(id string) bool {
	for _, a := range creature.Abilities {
		if a == id {
			return true
		}
	}
	return false
}

// rollGatingSave resolves the DC and rolls the target's saving throw,
// appending a SAVING_THROW_MADE event.
func (x *Executor) rollGatingSave(res *Result, sourceDefID string, spec *content.SaveSpec, originator, target *creature.State, ectx *ExecContext, fctx *formula.Context) (resolve.CheckResult, error) {
	dc := 0
	switch {
	case spec.UseSpellSaveDC && ectx.CasterSpellSaveDC > 0:
		dc = ectx.CasterSpellSaveDC
	case spec.DCFormula != "":
		v, err := formula.EvalInt(spec.DCFormula, fctx)
		if err != nil {
			x.logger.Warn("save DC formula failed, using fixed value",
				zap.String("source", sourceDefID),
				zap.String("formula", spec.DCFormula),
				zap.Error(err),
			)
			dc = spec.DCValue
		} else {
			dc = v
		}
	default:
		dc = spec.DCValue
	}
	if dc <= 0 {
		return resolve.CheckResult{}, fmt.Errorf("effect from %q: saving throw has no resolvable DC", sourceDefID)
	}

	sv := resolve.SavingThrow(x.roller, target, spec.Ability, dc, resolve.Situational{})
	ev := event.New(event.SavingThrowMade, fmt.Sprintf("%s rolls a DC %d %s save: %d (%s)",
		target.Name, dc, spec.Ability, sv.Total, successWord(sv.Success)))
	ev = ev.WithSource(originator.ID).WithTarget(target.ID).WithDefinition(sourceDefID)
	ev.Save = &event.SaveDetail{
		Ability:      spec.Ability,
		DC:           dc,
		NaturalRolls: sv.NaturalRolls,
		ChosenRoll:   sv.ChosenRoll,
		Total:        sv.Total,
		Success:      sv.Success,
	}
	res.Events = append(res.Events, ev)
	return sv, nil
}

func successWord(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (x *Executor) applyDamageEffect(res *Result, sourceDefID string, e *content.ParsedEffect, originator, target *creature.State, ectx *ExecContext, fctx *formula.Context) error {
	instances := make([]resolve.DamageInstance, 0, len(e.DamageRolls))
	for _, roll := range e.DamageRolls {
		n, err := dice.Parse(roll.Dice)
		if err != nil {
			return fmt.Errorf("effect from %q: %w", sourceDefID, err)
		}
		count := n.Count
		if ectx.Critical {
			count *= 2
		}
		amount := dice.Roll(x.roller.Source(), count, n.Sides, n.Modifier).Total()
		if roll.BonusFormula != "" {
			v, err := formula.EvalInt(roll.BonusFormula, fctx)
			if err != nil {
				x.logger.Warn("damage bonus formula failed, using zero",
					zap.String("source", sourceDefID),
					zap.String("formula", roll.BonusFormula),
					zap.Error(err),
				)
			} else {
				amount += v
			}
		}
		instances = append(instances, resolve.DamageInstance{
			Amount:         amount,
			Type:           roll.Type,
			BypassImmunity: roll.BypassImmunity,
		})
	}

	if e.Save != nil {
		sv, err := x.rollGatingSave(res, sourceDefID, e.Save, originator, target, ectx, fctx)
		if err != nil {
			return err
		}
		if sv.Success {
			switch e.Save.OnSuccess {
			case content.SaveOutcomeHalf:
				for i := range instances {
					instances[i].Amount /= 2
				}
			default: // NONE
				return nil
			}
		}
	}

	dmg := resolve.ApplyDamage(target, instances)
	target.TemporaryHP = dmg.NewTempHP
	target.CurrentHP = dmg.NewHP
	res.touch(target.ID)

	byType := make(map[string]int, len(dmg.Breakdown))
	for _, bd := range dmg.Breakdown {
		byType[bd.Type] += bd.Final
	}
	ev := event.New(event.DamageApplied, fmt.Sprintf("%s takes %d damage from %s",
		target.Name, dmg.TotalApplied, sourceDefID))
	ev = ev.WithSource(originator.ID).WithTarget(target.ID).WithDefinition(sourceDefID)
	ev.Damage = &event.DamageDetail{
		TotalApplied:    dmg.TotalApplied,
		TempHPAbsorbed:  dmg.TempHPAbsorbed,
		HPLost:          dmg.HPLost,
		Overkill:        dmg.Overkill,
		ConcentrationDC: dmg.ConcentrationDC,
		ByType:          byType,
	}
	res.Events = append(res.Events, ev)

	for _, condID := range dmg.NewConditionIDs {
		if err := x.ApplyConditionByID(res, target, condID, sourceDefID, originator.ID, "", ectx); err != nil {
			return err
		}
	}
	stats.UpdateCalculatedStats(target, x.store, x.logger)
	return nil
}

func (x *Executor) applyHeal(res *Result, sourceDefID string, e *content.ParsedEffect, originator, target *creature.State, fctx *formula.Context) error {
	amount := 0
	if h := e.Healing; h != nil {
		if h.Dice != "" {
			n, err := dice.Parse(h.Dice)
			if err != nil {
				return fmt.Errorf("effect from %q: %w", sourceDefID, err)
			}
			amount += n.Roll(x.roller.Source()).Total()
		}
		amount += h.BonusValue
		if h.BonusFormula != "" {
			v, err := formula.EvalInt(h.BonusFormula, fctx)
			if err != nil {
				x.logger.Warn("healing formula failed, using zero",
					zap.String("source", sourceDefID),
					zap.Error(err),
				)
			} else {
				amount += v
			}
		}
	}
	if amount < 0 {
		amount = 0
	}
	newHP := target.CurrentHP + amount
	if newHP > target.MaxHPCalculated {
		newHP = target.MaxHPCalculated
	}
	healed := newHP - target.CurrentHP
	target.CurrentHP = newHP
	res.touch(target.ID)

	ev := event.New(event.HealingApplied, fmt.Sprintf("%s regains %d hit points", target.Name, healed))
	ev = ev.WithSource(originator.ID).WithTarget(target.ID).WithDefinition(sourceDefID)
	ev.Amount = healed
	res.Events = append(res.Events, ev)

	stats.UpdateCalculatedStats(target, x.store, x.logger)
	return nil
}

// pushActiveEffect clones the parsed effect onto the target as an active
// instance.  Instantaneous durations are never stored.  Returns true when an
// effect was pushed.
func (x *Executor) pushActiveEffect(res *Result, target *creature.State, e *content.ParsedEffect, sourceDefID, sourceDefType, originatorID string, fctx *formula.Context) bool {
	rounds := DurationRounds(e.Duration)
	if rounds != nil && *rounds == 0 {
		return false
	}
	ae := creature.ActiveEffect{
		InstanceID:              uuid.NewString(),
		Effect:                  *e,
		SourceDefinitionID:      sourceDefID,
		SourceDefinitionType:    sourceDefType,
		SourceCreatureID:        originatorID,
		RemainingDurationRounds: rounds,
		BonusValue:              stats.ResolveEffectAmount(e, fctx, x.logger),
		Concentration:           e.Concentration,
	}
	target.ActiveEffects = append(target.ActiveEffects, ae)
	res.touch(target.ID)

	ev := event.New(event.EffectApplied, fmt.Sprintf("%s gains %s from %s", target.Name, e.Type, sourceDefID))
	ev = ev.WithSource(originatorID).WithTarget(target.ID).WithDefinition(sourceDefID)
	res.Events = append(res.Events, ev)
	return true
}

// ApplyConditionByID adds a condition to the target, applying the condition
// definition's own effects recursively.  Re-applying an already-active
// condition is a no-op; stacking and duration refresh are deliberately not
// performed.
func (x *Executor) ApplyConditionByID(res *Result, target *creature.State, conditionID, sourceDefID, sourceCreatureID, duration string, ectx *ExecContext) error {
	if target.HasCondition(conditionID) {
		x.logger.Debug("condition already active, ignoring re-application",
			zap.String("creature", target.ID),
			zap.String("condition", conditionID),
		)
		return nil
	}
	def, err := x.store.Condition(conditionID)
	if err != nil {
		return err
	}

	rounds := DurationRounds(duration)
	if rounds != nil && *rounds == 0 {
		rounds = nil
	}
	target.ActiveConditions = append(target.ActiveConditions, creature.ActiveCondition{
		Definition:              def,
		SourceCreatureID:        sourceCreatureID,
		SourceDefinitionID:      sourceDefID,
		RemainingDurationRounds: rounds,
	})
	res.touch(target.ID)

	ev := event.New(event.ConditionGained, fmt.Sprintf("%s is now %s", target.Name, def.Name))
	ev = ev.WithSource(sourceCreatureID).WithTarget(target.ID).WithDefinition(conditionID)
	res.Events = append(res.Events, ev)

	// Condition-granted effects apply to the afflicted creature and carry
	// the condition's ID so they are swept away with it.
	if len(def.Effects) > 0 {
		nested, err := x.Apply(def.ID, SourceCondition, def.Effects, target, []*creature.State{target}, ectx)
		if nested != nil {
			res.Events = append(res.Events, nested.Events...)
			for id := range nested.modified {
				res.touch(id)
			}
		}
		if err != nil {
			return err
		}
	}

	if x.hooks != nil && def.LuaOnApply != "" {
		x.hooks.RunConditionHook(def.LuaOnApply, def.ID, target)
	}
	stats.UpdateCalculatedStats(target, x.store, x.logger)
	return nil
}
