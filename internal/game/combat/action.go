// Package combat owns the single combat snapshot: initiative ordering, the
// round and turn state machine, and the dispatcher that turns submitted
// action choices into resolver calls.
package combat

import "github.com/arbiterhq/arbiter/internal/game/event"

// ActionType identifies a submitted combat action.
type ActionType string

const (
	ActionAttack    ActionType = "ATTACK"
	ActionSpell     ActionType = "SPELL"
	ActionAbility   ActionType = "ABILITY"
	ActionItem      ActionType = "ITEM"
	ActionMove      ActionType = "MOVE"
	ActionDodge     ActionType = "DODGE"
	ActionDisengage ActionType = "DISENGAGE"
	ActionHide      ActionType = "HIDE"
	ActionHelp      ActionType = "HELP"
	ActionReady     ActionType = "READY"
	ActionOther     ActionType = "OTHER"
	ActionPassTurn  ActionType = "PASS_TURN"
)

// TargetInfo names the targets of an action.
type TargetInfo struct {
	CreatureIDs []string
	SelfTarget  bool
}

// ActionChoice is the submitted description of one action.
type ActionChoice struct {
	ActorID    string
	Type       ActionType
	ActionName string
	Targets    TargetInfo

	SpellID        string
	SpellSlotLevel int
	ItemID         string
	MoveDistance   int
}

// ActionResult reports the outcome of ProcessAction.  Expected failures
// (wrong turn, missing target, spent economy) surface here with no state
// mutated.
type ActionResult struct {
	Success bool
	Reason  string
	Events  []event.Event
}

func failure(reason string) *ActionResult {
	return &ActionResult{Success: false, Reason: reason}
}
