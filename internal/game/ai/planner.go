package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua
// preconditions. The scripting manager satisfies it.
type ScriptCaller interface {
	// CallHook calls a named Lua global function.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(hook string, args ...lua.LValue) (lua.LValue, error)
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Action string // operator action: "attack", "dodge", "move", "pass"
	Target string // resolved combatant ID; empty for untargeted actions
}

// Planner evaluates an HTN domain for a single combatant and produces an
// ordered action plan for the current turn.
//
// Invariant: domain is non-nil and validated; caller may be nil, in which
// case every precondition is treated as satisfied.
type Planner struct {
	domain *Domain
	caller ScriptCaller
}

// NewPlanner constructs a Planner.
//
// Precondition: domain must be non-nil and validated.
func NewPlanner(domain *Domain, caller ScriptCaller) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	return &Planner{domain: domain, caller: caller}
}

// maxDecompositions bounds the total task expansions per plan, guarding
// against mutually recursive methods.
const maxDecompositions = 256

// Plan decomposes the domain's root task against the world state.
//
// Postcondition: returns a possibly empty ordered list of primitive actions;
// an error only on runaway decomposition.
func (p *Planner) Plan(ws *WorldState) ([]PlannedAction, error) {
	var plan []PlannedAction
	budget := maxDecompositions
	if err := p.decompose(p.domain.Root, ws, &plan, &budget); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Planner) decompose(taskID string, ws *WorldState, plan *[]PlannedAction, budget *int) error {
	*budget--
	if *budget <= 0 {
		return fmt.Errorf("ai: decomposition budget exhausted in domain %q", p.domain.ID)
	}

	if op := p.domain.OperatorByID(taskID); op != nil {
		target := ws.resolveTarget(op.Target)
		if op.Target != "" && target == "" {
			// Target selector resolved to nobody; skip the operator.
			return nil
		}
		*plan = append(*plan, PlannedAction{Action: op.Action, Target: target})
		return nil
	}

	for _, m := range p.domain.MethodsFor(taskID) {
		if !p.preconditionHolds(m, ws) {
			continue
		}
		for _, st := range m.Subtasks {
			if err := p.decompose(st, ws, plan, budget); err != nil {
				return err
			}
		}
		return nil
	}
	// No applicable method: the task contributes nothing.
	return nil
}

// preconditionHolds evaluates a method's Lua precondition with the actor ID.
// A missing caller, undefined hook, or non-false return counts as satisfied;
// only an explicit false blocks the method.
func (p *Planner) preconditionHolds(m *Method, ws *WorldState) bool {
	if m.Precondition == "" || p.caller == nil {
		return true
	}
	ret, err := p.caller.CallHook(m.Precondition, lua.LString(ws.ActorID))
	if err != nil {
		return false
	}
	return ret != lua.LFalse
}
