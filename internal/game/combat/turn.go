package combat

import (
	"fmt"

	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/event"
)

// canAct reports whether a combatant may take a turn: conscious and free of
// fully incapacitating conditions.
func canAct(s *creature.State) bool {
	return s.CurrentHP > 0 && !s.Incapacitated()
}

// ProgressToNextTurn expires the current actor's end-of-turn durations and
// advances to the next combatant able to act, wrapping the initiative order
// and incrementing the round as needed.  When nobody can act, combat ends
// and nil is returned.
func (m *Manager) ProgressToNextTurn() *Snapshot {
	if !m.active {
		return nil
	}

	current := m.combatants[m.currentID]
	if current != nil {
		expiry := m.executor.ProcessEndOfTurn(current)
		for _, ev := range expiry.Events {
			m.log(ev)
		}
		m.log(event.New(event.TurnEnded, fmt.Sprintf("%s's turn ends", current.Name)).WithSource(current.ID))
	}

	currentIdx := 0
	for i, entry := range m.order {
		if entry.CreatureID == m.currentID {
			currentIdx = i
			break
		}
	}

	n := len(m.order)
	for step := 1; step <= n; step++ {
		idx := (currentIdx + step) % n
		candidate := m.combatants[m.order[idx].CreatureID]
		if !canAct(candidate) {
			continue
		}
		if currentIdx+step >= n {
			m.log(event.New(event.RoundEnded, fmt.Sprintf("round %d ends", m.round)))
			m.round++
			m.log(event.New(event.RoundStarted, fmt.Sprintf("round %d begins", m.round)))
		}
		m.currentID = candidate.ID
		candidate.ActionEconomy.Reset()
		m.log(event.New(event.TurnStarted, fmt.Sprintf("%s's turn", candidate.Name)).WithSource(candidate.ID))
		return m.GetCombatState()
	}

	// No combatant can act.
	m.EndCombat()
	return nil
}
