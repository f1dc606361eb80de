package ai

import (
	"github.com/arbiterhq/arbiter/internal/game/combat"
)

// Combatant is the planner's view of one participant.
type Combatant struct {
	ID    string
	Team  string
	HP    int
	MaxHP int
}

// WorldState is the read-only snapshot the planner evaluates: every living
// participant with team membership, in initiative order.
type WorldState struct {
	ActorID    string
	Combatants []Combatant
}

// BuildWorldState projects a combat snapshot into planner terms.
//
// Precondition: teams maps every combatant ID to a team label.
func BuildWorldState(snap *combat.Snapshot, teams map[string]string, actorID string) *WorldState {
	ws := &WorldState{ActorID: actorID}
	for _, c := range snap.Combatants {
		ws.Combatants = append(ws.Combatants, Combatant{
			ID:    c.ID,
			Team:  teams[c.ID],
			HP:    c.CurrentHP,
			MaxHP: c.MaxHPCalculated,
		})
	}
	return ws
}

func (ws *WorldState) actor() *Combatant {
	for i := range ws.Combatants {
		if ws.Combatants[i].ID == ws.ActorID {
			return &ws.Combatants[i]
		}
	}
	return nil
}

// liveEnemies returns living combatants on a different team than the actor,
// in initiative order.
func (ws *WorldState) liveEnemies() []*Combatant {
	actor := ws.actor()
	if actor == nil {
		return nil
	}
	var out []*Combatant
	for i := range ws.Combatants {
		c := &ws.Combatants[i]
		if c.ID == actor.ID || c.HP <= 0 || c.Team == actor.Team {
			continue
		}
		out = append(out, c)
	}
	return out
}

// NearestEnemy returns the first living enemy in initiative order, or "".
// Position is not modeled; initiative order stands in for distance.
func (ws *WorldState) NearestEnemy() string {
	enemies := ws.liveEnemies()
	if len(enemies) == 0 {
		return ""
	}
	return enemies[0].ID
}

// WeakestEnemy returns the living enemy with the lowest current HP, or "".
func (ws *WorldState) WeakestEnemy() string {
	var weakest *Combatant
	for _, c := range ws.liveEnemies() {
		if weakest == nil || c.HP < weakest.HP {
			weakest = c
		}
	}
	if weakest == nil {
		return ""
	}
	return weakest.ID
}

// resolveTarget maps an operator target selector to a combatant ID.
// Unknown selectors are treated as literal combatant IDs.
func (ws *WorldState) resolveTarget(selector string) string {
	switch selector {
	case "":
		return ""
	case "self":
		return ws.ActorID
	case "nearest_enemy":
		return ws.NearestEnemy()
	case "weakest_enemy":
		return ws.WeakestEnemy()
	default:
		return selector
	}
}
