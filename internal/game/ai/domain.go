// Package ai implements the Hierarchical Task Network (HTN) planner that
// drives automated combatants.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered
// methods. Method preconditions are evaluated as Lua hooks; operators map to
// combat actions.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition,omitempty"`
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive action that maps directly to a combat action.
//
// Precondition: ID and Action must be non-empty.
type Operator struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"`           // "attack", "dodge", "move", "pass"
	Target string `yaml:"target,omitempty"` // "nearest_enemy", "weakest_enemy", "self"
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description,omitempty"`
	Root        string      `yaml:"root"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators,omitempty"`
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty IDs throughout, no duplicate
// IDs within any slice, a root task that exists, and method subtasks that all
// resolve to a task or operator.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai.Domain %q: must have at least one task", d.ID)
	}

	tasks := make(map[string]bool, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("ai.Domain %q: task has empty ID", d.ID)
		}
		if tasks[t.ID] {
			return fmt.Errorf("ai.Domain %q: duplicate task ID %q", d.ID, t.ID)
		}
		tasks[t.ID] = true
	}
	if d.Root == "" {
		return fmt.Errorf("ai.Domain %q: root task must not be empty", d.ID)
	}
	if !tasks[d.Root] {
		return fmt.Errorf("ai.Domain %q: root task %q is not defined", d.ID, d.Root)
	}

	operators := make(map[string]bool, len(d.Operators))
	for _, op := range d.Operators {
		if op.ID == "" {
			return fmt.Errorf("ai.Domain %q: operator has empty ID", d.ID)
		}
		if op.Action == "" {
			return fmt.Errorf("ai.Domain %q: operator %q has empty action", d.ID, op.ID)
		}
		if operators[op.ID] {
			return fmt.Errorf("ai.Domain %q: duplicate operator ID %q", d.ID, op.ID)
		}
		if tasks[op.ID] {
			return fmt.Errorf("ai.Domain %q: operator ID %q collides with a task", d.ID, op.ID)
		}
		operators[op.ID] = true
	}

	methods := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if m.ID == "" || m.TaskID == "" {
			return fmt.Errorf("ai.Domain %q: method with empty ID or task", d.ID)
		}
		if methods[m.ID] {
			return fmt.Errorf("ai.Domain %q: duplicate method ID %q", d.ID, m.ID)
		}
		methods[m.ID] = true
		if !tasks[m.TaskID] {
			return fmt.Errorf("ai.Domain %q: method %q decomposes unknown task %q", d.ID, m.ID, m.TaskID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai.Domain %q: method %q has no subtasks", d.ID, m.ID)
		}
		for _, st := range m.Subtasks {
			if !tasks[st] && !operators[st] {
				return fmt.Errorf("ai.Domain %q: method %q references unknown subtask %q", d.ID, m.ID, st)
			}
		}
	}
	return nil
}

// MethodsFor returns the methods decomposing taskID, in declaration order.
func (d *Domain) MethodsFor(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// OperatorByID returns the operator with the given ID, or nil.
func (d *Domain) OperatorByID(id string) *Operator {
	for _, op := range d.Operators {
		if op.ID == id {
			return op
		}
	}
	return nil
}

// LoadDomain reads and validates an HTN domain from a YAML file.
//
// Postcondition: the returned domain has passed Validate.
func LoadDomain(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai: reading domain %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var d Domain
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("ai: parsing domain %q: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
