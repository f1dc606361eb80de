// Package resource manages named, countable, rechargeable capacities:
// spell slots, hit dice, per-rest ability uses.
package resource

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/event"
)

// SpellSlotID builds the tracked-resource ID for a slot level.
func SpellSlotID(level int) string {
	return fmt.Sprintf("SPELL_SLOT_L%d", level)
}

// HitDiceID builds the tracked-resource ID for a hit-die size.
func HitDiceID(sides int) string {
	return fmt.Sprintf("HIT_DICE_D%d", sides)
}

// Spend decrements a tracked resource.  Returns a failure reason (and no
// mutation) when the resource is absent or insufficient.
func Spend(s *creature.State, id string, amount int) (bool, string) {
	r := s.Resource(id)
	if r == nil {
		return false, fmt.Sprintf("no resource %q available", id)
	}
	if r.Current < amount {
		return false, fmt.Sprintf("insufficient %q: have %d, need %d", id, r.Current, amount)
	}
	r.Current -= amount
	return true, ""
}

// Recover restores a tracked resource.  A nil amount recovers to max (or by
// one when no max is defined).  The result clamps to max unless ignoreMax
// is set.  Returns the amount actually recovered, which near the cap may be
// less than requested.
func Recover(s *creature.State, id string, amount *int, ignoreMax bool) (int, string) {
	r := s.Resource(id)
	if r == nil {
		return 0, fmt.Sprintf("no resource %q available", id)
	}
	before := r.Current
	switch {
	case amount == nil && r.Max > 0:
		r.Current = r.Max
	case amount == nil:
		r.Current++
	default:
		r.Current += *amount
	}
	if !ignoreMax && r.Max > 0 && r.Current > r.Max {
		r.Current = r.Max
	}
	return r.Current - before, ""
}

// ApplyRest applies a short or long rest to the creature.
//
// A long rest restores full HP, zeroes temporary HP, and recovers half of
// each hit-dice pool (rounded down, minimum 1).  Any rest recovers every
// tracked resource whose definition lists that rest type as a recharge
// trigger, and resets the action economy.  Exhaustion-level reduction is
// not modeled.
func ApplyRest(s *creature.State, restType string, store *content.Store, logger *zap.Logger) []event.Event {
	var events []event.Event

	if restType == content.RestLong {
		s.CurrentHP = s.MaxHPCalculated
		s.TemporaryHP = 0
		for i := range s.Resources {
			r := &s.Resources[i]
			def, err := store.Resource(r.DefinitionID)
			if err != nil || !def.IsHitDice {
				continue
			}
			regained := r.Max / 2
			if regained < 1 {
				regained = 1
			}
			r.Current += regained
			if r.Current > r.Max {
				r.Current = r.Max
			}
		}
	}

	for i := range s.Resources {
		r := &s.Resources[i]
		def, err := store.Resource(r.DefinitionID)
		if err != nil {
			if logger != nil {
				logger.Warn("tracked resource has no definition",
					zap.String("creature", s.ID),
					zap.String("resource", r.DefinitionID),
				)
			}
			continue
		}
		for _, trigger := range def.RechargeOn {
			if trigger == restType {
				r.Current = r.Max
				break
			}
		}
	}

	s.ActionEconomy.Reset()

	ev := event.New(event.RestCompleted, fmt.Sprintf("%s completes a %s", s.Name, restType))
	ev = ev.WithTarget(s.ID)
	events = append(events, ev)
	return events
}

// Initialize seeds a creature's starting resources: hit-dice pools for
// monster templates and accumulated spell slots for player characters from
// their class progression tables.
func Initialize(s *creature.State, store *content.Store, logger *zap.Logger) {
	if s.IsPlayerCharacter {
		slots := make(map[int]int)
		for _, cl := range s.ClassLevels {
			def, err := store.Class(cl.ClassID)
			if err != nil {
				if logger != nil {
					logger.Warn("class definition missing for resources",
						zap.String("creature", s.ID),
						zap.String("class", cl.ClassID),
					)
				}
				continue
			}
			for _, row := range def.Levels {
				if row.Level > cl.Level {
					continue
				}
				for slotLevel, count := range row.SpellSlots {
					slots[slotLevel] += count
				}
			}
			if def.HitDieSides > 0 {
				addResource(s, HitDiceID(def.HitDieSides), cl.Level)
			}
		}
		for slotLevel, count := range slots {
			addResource(s, SpellSlotID(slotLevel), count)
		}
		return
	}
	if s.Template != nil && s.Template.HitDice.Count > 0 {
		addResource(s, HitDiceID(s.Template.HitDice.Sides), s.Template.HitDice.Count)
	}
}

// addResource creates or tops up a tracked resource with current = max.
func addResource(s *creature.State, id string, max int) {
	if r := s.Resource(id); r != nil {
		r.Max += max
		r.Current = r.Max
		return
	}
	s.Resources = append(s.Resources, creature.TrackedResource{
		DefinitionID: id,
		Current:      max,
		Max:          max,
	})
}
