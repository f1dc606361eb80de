package combat

import (
	"fmt"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/effect"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/resolve"
	"github.com/arbiterhq/arbiter/internal/game/spellcasting"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// ProcessAction dispatches a submitted action choice.  It rejects anything
// submitted out of turn; every failure leaves the snapshot exactly as it
// was.
func (m *Manager) ProcessAction(choice ActionChoice) *ActionResult {
	if !m.active {
		return failure("combat has not started")
	}
	actor, ok := m.combatants[choice.ActorID]
	if !ok {
		return failure(fmt.Sprintf("unknown combatant %q", choice.ActorID))
	}
	if m.currentID != choice.ActorID {
		return failure(fmt.Sprintf("it is not %s's turn", actor.Name))
	}

	var res *ActionResult
	switch choice.Type {
	case ActionAttack:
		res = m.processAttack(actor, choice)
	case ActionSpell:
		res = m.processSpell(actor, choice)
	case ActionDodge:
		res = m.processDodge(actor)
	case ActionMove:
		res = m.processMove(actor, choice)
	case ActionPassTurn:
		actor.ActionEconomy.ActionAvailable = false
		actor.ActionEconomy.BonusActionAvailable = false
		res = &ActionResult{Success: true}
	default:
		return failure(fmt.Sprintf("unsupported action type %q", choice.Type))
	}

	if res.Success {
		for _, ev := range res.Events {
			m.log(ev)
		}
	}
	return res
}

// resolveAttack normalizes the chosen attack from an explicit item, a named
// template action, or the equipped main-hand weapon, in that order.
func (m *Manager) resolveAttack(actor *creature.State, choice ActionChoice) (*stats.Attack, string) {
	if choice.ItemID != "" {
		item, err := m.store.Item(choice.ItemID)
		if err != nil || item.Weapon == nil {
			return nil, fmt.Sprintf("%q is not a usable weapon", choice.ItemID)
		}
		return weaponAttack(item), ""
	}
	if choice.ActionName != "" && actor.Template != nil {
		for i := range actor.Template.Actions {
			a := &actor.Template.Actions[i]
			if a.Name == choice.ActionName {
				return &stats.Attack{
					Name:         a.Name,
					Ability:      a.Ability,
					BonusFormula: a.AttackBonusFormula,
					FixedBonus:   a.FixedAttackBonus,
					Range:        a.Range,
					Damage:       a.Damage,
					OnHitEffects: a.OnHitEffects,
				}, ""
			}
		}
		return nil, fmt.Sprintf("%s has no action named %q", actor.Name, choice.ActionName)
	}
	if weaponID := actor.EquippedItems["main_hand"]; weaponID != "" {
		item, err := m.store.Item(weaponID)
		if err == nil && item.Weapon != nil {
			return weaponAttack(item), ""
		}
	}
	return nil, fmt.Sprintf("%s has no attack available", actor.Name)
}

func weaponAttack(item *content.ItemDefinition) *stats.Attack {
	return &stats.Attack{
		Name:         item.Name,
		Ability:      item.Weapon.Ability,
		BonusFormula: item.Weapon.AttackBonusFormula,
		FixedBonus:   item.Weapon.FixedAttackBonus,
		Range:        item.Weapon.Range,
		Damage:       item.Weapon.Damage,
		OnHitEffects: item.Weapon.OnHitEffects,
	}
}

func (m *Manager) processAttack(actor *creature.State, choice ActionChoice) *ActionResult {
	if !actor.ActionEconomy.ActionAvailable {
		return failure(fmt.Sprintf("%s has already used their action", actor.Name))
	}
	if len(choice.Targets.CreatureIDs) == 0 {
		return failure("attack requires a target")
	}
	target, ok := m.combatants[choice.Targets.CreatureIDs[0]]
	if !ok {
		return failure(fmt.Sprintf("target %q is not in the encounter", choice.Targets.CreatureIDs[0]))
	}

	atk, reason := m.resolveAttack(actor, choice)
	if atk == nil {
		return failure(reason)
	}

	targetAC := stats.ComputeAC(target, m.store, m.logger).Final
	rolled := resolve.Attack(m.roller, actor, target, atk, resolve.Situational{}, targetAC)

	res := &ActionResult{Success: true}
	ev := event.New(event.AttackMade, fmt.Sprintf("%s attacks %s with %s: %s (%d vs AC %d)",
		actor.Name, target.Name, atk.Name, rolled.Outcome, rolled.Total, targetAC))
	ev = ev.WithSource(actor.ID).WithTarget(target.ID)
	ev.Attack = &event.AttackDetail{
		Outcome:      rolled.Outcome.String(),
		NaturalRolls: rolled.NaturalRolls,
		ChosenRoll:   rolled.ChosenRoll,
		Total:        rolled.Total,
		TargetAC:     targetAC,
		AttackName:   atk.Name,
	}
	res.Events = append(res.Events, ev)

	if rolled.Outcome.IsHit() {
		ectx := &effect.ExecContext{Critical: rolled.Outcome == resolve.CriticalHit}
		targets := []*creature.State{target}

		hitEffects := []content.ParsedEffect{{
			Type:        content.EffectDealDamageOnAttackHit,
			DamageRolls: atk.Damage,
		}}
		hitEffects = append(hitEffects, atk.OnHitEffects...)
		// Active effects on the attacker that trigger on a landed hit
		// (smites, poisons applied to the blade).
		for i := range actor.ActiveEffects {
			ae := &actor.ActiveEffects[i]
			if ae.Effect.Trigger == content.TriggerOnAttackHit {
				hitEffects = append(hitEffects, ae.Effect)
			}
		}

		applied, err := m.executor.Apply(atk.Name, effect.SourceAction, hitEffects, actor, targets, ectx)
		if applied != nil {
			res.Events = append(res.Events, applied.Events...)
		}
		if err != nil {
			// Nothing is committed to the log on failure; the roll itself
			// had no state effect.
			return failure(err.Error())
		}
	}

	actor.ActionEconomy.ActionAvailable = false
	return res
}

func (m *Manager) processSpell(actor *creature.State, choice ActionChoice) *ActionResult {
	spell, err := m.store.Spell(choice.SpellID)
	if err != nil {
		return failure(fmt.Sprintf("unknown spell %q", choice.SpellID))
	}

	var flag *bool
	switch spell.CastingTime {
	case content.CastingTimeAction:
		flag = &actor.ActionEconomy.ActionAvailable
	case content.CastingTimeBonusAction:
		flag = &actor.ActionEconomy.BonusActionAvailable
	}
	if flag != nil && !*flag {
		return failure(fmt.Sprintf("%s has no %s left to cast %s", actor.Name, spell.CastingTime, spell.Name))
	}

	cast := m.caster.Cast(actor, spellcasting.Request{
		SpellID:    choice.SpellID,
		SlotLevel:  choice.SpellSlotLevel,
		TargetIDs:  choice.Targets.CreatureIDs,
		SelfTarget: choice.Targets.SelfTarget,
	}, m.combatants)
	if !cast.Success {
		return failure(cast.Reason)
	}
	if flag != nil {
		*flag = false
	}
	return &ActionResult{Success: true, Events: cast.Events}
}

// processDodge applies the two 1-round defensive effects of the dodge
// action: attackers roll at disadvantage and the dodger gains advantage on
// DEX saves.
func (m *Manager) processDodge(actor *creature.State) *ActionResult {
	if !actor.ActionEconomy.ActionAvailable {
		return failure(fmt.Sprintf("%s has already used their action", actor.Name))
	}
	dodgeEffects := []content.ParsedEffect{
		{
			Type:     content.EffectDisadvantageToAttacker,
			Target:   content.ScopeSelf,
			Duration: "1 round",
		},
		{
			Type:      content.EffectGrantAdvantage,
			Target:    content.ScopeSelf,
			RollScope: "DEX_SAVE",
			Duration:  "1 round",
		},
	}
	applied, err := m.executor.Apply("DODGE", effect.SourceAction, dodgeEffects, actor, nil, nil)
	if err != nil {
		return failure(err.Error())
	}
	actor.ActionEconomy.ActionAvailable = false
	return &ActionResult{Success: true, Events: applied.Events}
}

func (m *Manager) processMove(actor *creature.State, choice ActionChoice) *ActionResult {
	speed := actor.Speeds["walk"]
	distance := choice.MoveDistance
	if distance <= 0 {
		distance = speed - actor.ActionEconomy.MovementUsed
	}
	remaining := speed - actor.ActionEconomy.MovementUsed
	if distance > remaining {
		return failure(fmt.Sprintf("%s has only %d feet of movement left", actor.Name, remaining))
	}
	actor.ActionEconomy.MovementUsed += distance

	ev := event.New(event.MoveAction, fmt.Sprintf("%s moves %d feet", actor.Name, distance))
	ev = ev.WithSource(actor.ID)
	return &ActionResult{Success: true, Events: []event.Event{ev}}
}
