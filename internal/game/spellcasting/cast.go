// Package spellcasting validates and orchestrates spell casts: component
// and slot costs, concentration replacement, target resolution and
// delegation to the effect interpreter.
package spellcasting

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/effect"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/resource"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// Request describes one attempted cast.
type Request struct {
	SpellID    string
	SlotLevel  int // 0 means the spell's own level
	TargetIDs  []string
	SelfTarget bool
	Metamagic  []string

	// SkipCost casts without spending a slot (innate casting, item charges).
	SkipCost bool
	// OverrideMaterialComponents waives the material component gate.
	OverrideMaterialComponents bool
}

// Result is the user-facing outcome of a cast attempt.  Expected failures
// (missing slot, missing component, unknown spell) are reported via
// Success/Reason with no state mutated.
type Result struct {
	Success     bool
	Reason      string
	Events      []event.Event
	ModifiedIDs []string
}

// Orchestrator wires the collaborators a cast needs.
type Orchestrator struct {
	store    *content.Store
	executor *effect.Executor
	logger   *zap.Logger
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(store *content.Store, executor *effect.Executor, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: store, executor: executor, logger: logger}
}

func fail(reason string) *Result {
	return &Result{Success: false, Reason: reason}
}

// spellcastingAbility returns the caster's spellcasting ability from the
// first class that defines one.
func (o *Orchestrator) spellcastingAbility(caster *creature.State) string {
	for _, cl := range caster.ClassLevels {
		def, err := o.store.Class(cl.ClassID)
		if err == nil && def.SpellcastingAbility != "" {
			return def.SpellcastingAbility
		}
	}
	return ""
}

// Cast runs the full casting sequence.  The cast is atomic: cost spending
// and the effect batch are staged on clones, so on any failure the caster
// and targets are left exactly as they were.
func (o *Orchestrator) Cast(caster *creature.State, req Request, roster map[string]*creature.State) *Result {
	spell, err := o.store.Spell(req.SpellID)
	if err != nil {
		return fail(fmt.Sprintf("unknown spell %q", req.SpellID))
	}

	if spell.Components.Material != "" && !req.OverrideMaterialComponents {
		return fail(fmt.Sprintf("casting %s requires material components (%s)", spell.Name, spell.Components.Material))
	}

	slotLevel := req.SlotLevel
	if slotLevel == 0 {
		slotLevel = spell.Level
	}
	if slotLevel < spell.Level {
		return fail(fmt.Sprintf("%s cannot be cast with a level %d slot", spell.Name, slotLevel))
	}

	// Resolve targets before spending anything: a bad target must not cost
	// a slot.
	targets := make([]*creature.State, 0, len(req.TargetIDs)+1)
	seen := make(map[string]bool)
	addTarget := func(id string) error {
		if seen[id] {
			return nil
		}
		t, ok := roster[id]
		if !ok {
			return fmt.Errorf("target %q is not in the encounter", id)
		}
		seen[id] = true
		targets = append(targets, t)
		return nil
	}
	for _, id := range req.TargetIDs {
		if err := addTarget(id); err != nil {
			return fail(err.Error())
		}
	}
	if req.SelfTarget {
		if err := addTarget(caster.ID); err != nil {
			return fail(err.Error())
		}
	}

	// Validate the slot before any mutation so a failed cast never
	// partially commits (the concentration strip below is a mutation).
	if spell.Level > 0 && !req.SkipCost {
		r := caster.Resource(resource.SpellSlotID(slotLevel))
		if r == nil || r.Current < 1 {
			return fail(fmt.Sprintf("insufficient %q: no level %d slot available", resource.SpellSlotID(slotLevel), slotLevel))
		}
	}

	result := &Result{Success: true}

	// Stage the caster's own mutations on a clone: a failure inside the
	// effect batch must not leave a slot spent or concentration dropped.
	staged := caster.Clone()
	for i, t := range targets {
		if t == caster {
			targets[i] = staged
		}
	}

	// Concentration is replaced, never stacked: sustaining a new
	// concentration spell drops the old effect first.
	if spell.Concentration && staged.Concentration != nil && staged.Concentration.SpellID != spell.ID {
		old := staged.Concentration
		staged.RemoveEffect(old.EffectInstanceID)
		staged.Concentration = nil
		ev := event.New(event.ConcentrationEnded,
			fmt.Sprintf("%s stops concentrating on %s", staged.Name, old.SpellID))
		ev = ev.WithSource(staged.ID).WithDefinition(old.SpellID)
		result.Events = append(result.Events, ev)
		stats.UpdateCalculatedStats(staged, o.store, o.logger)
	}

	if spell.Level > 0 && !req.SkipCost {
		slotID := resource.SpellSlotID(slotLevel)
		ok, reason := resource.Spend(staged, slotID, 1)
		if !ok {
			return fail(reason)
		}
		ev := event.New(event.ResourceSpent, fmt.Sprintf("%s spends a level %d spell slot", staged.Name, slotLevel))
		ev = ev.WithSource(staged.ID).WithDefinition(slotID)
		ev.Amount = 1
		result.Events = append(result.Events, ev)
	}

	ability := o.spellcastingAbility(staged)
	ectx := &effect.ExecContext{
		SpellSlotLevel:      &slotLevel,
		SpellcastingAbility: ability,
	}
	if ability != "" {
		ectx.CasterSpellSaveDC = stats.SpellSaveDC(staged, ability, nil, o.logger)
	}

	applied, err := o.executor.Apply(spell.ID, effect.SourceSpell, spell.Effects, staged, targets, ectx)
	if err != nil {
		o.logger.Error("spell effects failed", zap.String("spell", spell.ID), zap.Error(err))
		return fail(err.Error())
	}
	result.Events = append(result.Events, applied.Events...)
	result.ModifiedIDs = applied.ModifiedIDs()
	*caster = *staged

	// Record new concentration from the caster's own flagged effects.
	if spell.Concentration {
		for i := range caster.ActiveEffects {
			ae := &caster.ActiveEffects[i]
			if ae.Concentration && ae.SourceDefinitionID == spell.ID {
				caster.Concentration = &creature.Concentration{
					SpellID:          spell.ID,
					EffectInstanceID: ae.InstanceID,
				}
				ev := event.New(event.ConcentrationStarted,
					fmt.Sprintf("%s concentrates on %s", caster.Name, spell.Name))
				ev = ev.WithSource(caster.ID).WithDefinition(spell.ID)
				result.Events = append(result.Events, ev)
				break
			}
		}
	}

	targetNames := make([]string, len(targets))
	for i, t := range targets {
		targetNames[i] = t.Name
	}
	ev := event.New(event.SpellCast, fmt.Sprintf("%s casts %s (level %d) on %v", caster.Name, spell.Name, slotLevel, targetNames))
	ev = ev.WithSource(caster.ID).WithDefinition(spell.ID)
	result.Events = append(result.Events, ev)
	return result
}
