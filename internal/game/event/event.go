// Package event defines the append-only combat log records.  Events are the
// only externally observable trace of state changes besides the snapshot
// itself.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type tags the kind of a combat event.
type Type string

const (
	CombatStarted        Type = "COMBAT_STARTED"
	CombatEnded          Type = "COMBAT_ENDED"
	RoundStarted         Type = "ROUND_STARTED"
	RoundEnded           Type = "ROUND_ENDED"
	TurnStarted          Type = "TURN_STARTED"
	TurnEnded            Type = "TURN_ENDED"
	AttackMade           Type = "ATTACK_MADE"
	SavingThrowMade      Type = "SAVING_THROW_MADE"
	SkillCheckMade       Type = "SKILL_CHECK_MADE"
	DamageApplied        Type = "DAMAGE_APPLIED"
	HealingApplied       Type = "HEALING_APPLIED"
	ConditionGained      Type = "CONDITION_GAINED"
	ConditionRemoved     Type = "CONDITION_REMOVED"
	EffectApplied        Type = "EFFECT_APPLIED"
	EffectRemoved        Type = "EFFECT_REMOVED"
	ResourceSpent        Type = "RESOURCE_SPENT"
	ResourceRecovered    Type = "RESOURCE_RECOVERED"
	SpellCast            Type = "SPELL_CAST"
	ConcentrationStarted Type = "CONCENTRATION_STARTED"
	ConcentrationEnded   Type = "CONCENTRATION_ENDED"
	MoveAction           Type = "MOVE_ACTION"
	RestCompleted        Type = "REST_COMPLETED"
)

// AttackDetail records the audit trail of an attack roll.
type AttackDetail struct {
	Outcome      string
	NaturalRolls []int
	ChosenRoll   int
	Total        int
	TargetAC     int
	AttackName   string
}

// SaveDetail records a saving throw or skill check.
type SaveDetail struct {
	Ability      string
	DC           int
	NaturalRolls []int
	ChosenRoll   int
	Total        int
	Success      bool
}

// DamageDetail records the outcome of the damage pipeline.
type DamageDetail struct {
	TotalApplied    int
	TempHPAbsorbed  int
	HPLost          int
	Overkill        int
	ConcentrationDC int
	ByType          map[string]int
}

// Event is one immutable combat log record.
type Event struct {
	ID                 string
	Type               Type
	Timestamp          time.Time
	Round              int
	SourceCreatureID   string
	TargetCreatureID   string
	SourceDefinitionID string
	Description        string

	Attack *AttackDetail
	Save   *SaveDetail
	Damage *DamageDetail
	Amount int // healing amounts, resource deltas
}

// New builds an event with a fresh ID and timestamp.
func New(t Type, description string) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		Timestamp:   time.Now().UTC(),
		Description: description,
	}
}

// WithSource returns a copy with the source creature set.
func (e Event) WithSource(id string) Event {
	e.SourceCreatureID = id
	return e
}

// WithTarget returns a copy with the target creature set.
func (e Event) WithTarget(id string) Event {
	e.TargetCreatureID = id
	return e
}

// WithDefinition returns a copy with the source definition set.
func (e Event) WithDefinition(id string) Event {
	e.SourceDefinitionID = id
	return e
}
