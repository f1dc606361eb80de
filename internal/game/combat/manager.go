package combat

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/game/effect"
	"github.com/arbiterhq/arbiter/internal/game/event"
	"github.com/arbiterhq/arbiter/internal/game/resource"
	"github.com/arbiterhq/arbiter/internal/game/spellcasting"
	"github.com/arbiterhq/arbiter/internal/game/stats"
)

// InitiativeEntry is one slot of the rolled turn order.
type InitiativeEntry struct {
	CreatureID string
	Roll       int
}

// Snapshot is the externally visible combat state.  GetCombatState returns
// a deep copy; holders can never observe in-progress mutation.
type Snapshot struct {
	Round                 int
	CurrentTurnCreatureID string
	InitiativeOrder       []InitiativeEntry
	Combatants            []*creature.State
	Events                []event.Event
}

// Manager owns the canonical combatant list and sequences all mutation.
// Calls must be serialized by the caller; the engine performs no internal
// locking because the design is strictly turn-sequential.
type Manager struct {
	store    *content.Store
	roller   *dice.Roller
	executor *effect.Executor
	caster   *spellcasting.Orchestrator
	logger   *zap.Logger

	round      int
	currentID  string
	order      []InitiativeEntry
	combatants map[string]*creature.State
	events     []event.Event
	active     bool
}

// NewManager wires the engine components together.
func NewManager(store *content.Store, roller *dice.Roller, executor *effect.Executor, caster *spellcasting.Orchestrator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    store,
		roller:   roller,
		executor: executor,
		caster:   caster,
		logger:   logger,
	}
}

func (m *Manager) log(ev event.Event) event.Event {
	ev.Round = m.round
	m.events = append(m.events, ev)
	return ev
}

// initiativeMode aggregates advantage and disadvantage from effects scoped
// to initiative rolls.
func initiativeMode(s *creature.State) dice.Mode {
	adv, dis := false, false
	for i := range s.ActiveEffects {
		e := &s.ActiveEffects[i]
		if e.Effect.RollScope != content.ScopeInitiativeRoll {
			continue
		}
		switch e.Effect.Type {
		case content.EffectGrantAdvantage:
			adv = true
		case content.EffectImposeDisadvantage:
			dis = true
		}
	}
	return dice.ResolveMode(adv, dis)
}

// StartCombat deep-clones the submitted roster, initializes derived stats
// and starting resources, rolls initiative and opens round 1.
// Postcondition: the returned snapshot's current actor is the top of the
// initiative order with a fresh action economy.
func (m *Manager) StartCombat(states []*creature.State) (*Snapshot, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("combat: no combatants submitted")
	}

	m.combatants = make(map[string]*creature.State, len(states))
	m.events = nil

	type rolled struct {
		id         string
		roll       int
		dexMod     int
		submission int
	}
	entries := make([]rolled, 0, len(states))

	for i, submitted := range states {
		s := submitted.Clone()
		if _, exists := m.combatants[s.ID]; exists {
			return nil, fmt.Errorf("combat: duplicate combatant id %q", s.ID)
		}
		stats.UpdateCalculatedStats(s, m.store, m.logger)
		if s.CurrentHP <= 0 && !s.HasCondition(content.ConditionDead) && !s.HasCondition(content.ConditionUnconscious) {
			s.CurrentHP = s.MaxHPCalculated
		}
		if len(s.Resources) == 0 {
			resource.Initialize(s, m.store, m.logger)
		}
		m.combatants[s.ID] = s

		mod := stats.InitiativeModifier(s)
		roll := m.roller.RollD20(initiativeMode(s))
		s.InitiativeRoll = roll.Value + mod
		dexMod, _ := s.AbilityMod("DEX")
		entries = append(entries, rolled{id: s.ID, roll: s.InitiativeRoll, dexMod: dexMod, submission: i})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].roll != entries[b].roll {
			return entries[a].roll > entries[b].roll
		}
		if entries[a].dexMod != entries[b].dexMod {
			return entries[a].dexMod > entries[b].dexMod
		}
		return entries[a].submission < entries[b].submission
	})

	m.order = make([]InitiativeEntry, len(entries))
	for i, e := range entries {
		m.order[i] = InitiativeEntry{CreatureID: e.id, Roll: e.roll}
	}

	m.round = 1
	m.active = true
	m.currentID = m.order[0].CreatureID
	first := m.combatants[m.currentID]
	first.ActionEconomy.Reset()

	m.log(event.New(event.CombatStarted, fmt.Sprintf("combat begins with %d combatants", len(states))))
	m.log(event.New(event.RoundStarted, "round 1 begins"))
	m.log(event.New(event.TurnStarted, fmt.Sprintf("%s's turn", first.Name)).WithSource(first.ID))

	m.logger.Info("combat started",
		zap.Int("combatants", len(states)),
		zap.String("first", m.currentID),
	)
	return m.GetCombatState(), nil
}

// EndCombat logs the end of combat and clears all internal state.
func (m *Manager) EndCombat() {
	if !m.active {
		return
	}
	m.log(event.New(event.CombatEnded, "combat ends"))
	m.logger.Info("combat ended", zap.Int("rounds", m.round))
	m.active = false
	m.currentID = ""
	m.order = nil
	m.combatants = nil
	m.events = nil
	m.round = 0
}

// Combatant returns the canonical mutable state for id, or nil.  It exists
// for host-side adjudication (manual rulings, scripted scenarios); normal
// consumers should read through GetCombatState.
func (m *Manager) Combatant(id string) *creature.State {
	if !m.active {
		return nil
	}
	return m.combatants[id]
}

// GetCombatState returns a deep, externally safe copy of the snapshot, or
// nil when no combat is running.
func (m *Manager) GetCombatState() *Snapshot {
	if !m.active {
		return nil
	}
	snap := &Snapshot{
		Round:                 m.round,
		CurrentTurnCreatureID: m.currentID,
		InitiativeOrder:       append([]InitiativeEntry(nil), m.order...),
		Events:                append([]event.Event(nil), m.events...),
	}
	snap.Combatants = make([]*creature.State, 0, len(m.order))
	for _, entry := range m.order {
		snap.Combatants = append(snap.Combatants, m.combatants[entry.CreatureID].Clone())
	}
	return snap
}
