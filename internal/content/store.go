package content

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every failed Store lookup.
var ErrNotFound = errors.New("definition not found")

// Store is an in-memory registry of all loaded definitions, keyed by ID.
// Lookups are idempotent and side-effect-free; the Store is never mutated
// after loading, so it is safe for concurrent reads.
type Store struct {
	conditions  map[string]*ConditionDefinition
	items       map[string]*ItemDefinition
	spells      map[string]*SpellDefinition
	features    map[string]*FeatureDefinition
	classes     map[string]*ClassDefinition
	creatures   map[string]*CreatureTemplate
	resources   map[string]*ResourceDefinition
	skills      map[string]*SkillDefinition
	damageTypes map[string]*DamageTypeDefinition
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		conditions:  make(map[string]*ConditionDefinition),
		items:       make(map[string]*ItemDefinition),
		spells:      make(map[string]*SpellDefinition),
		features:    make(map[string]*FeatureDefinition),
		classes:     make(map[string]*ClassDefinition),
		creatures:   make(map[string]*CreatureTemplate),
		resources:   make(map[string]*ResourceDefinition),
		skills:      make(map[string]*SkillDefinition),
		damageTypes: make(map[string]*DamageTypeDefinition),
	}
}

// Register* add a definition, overwriting any existing entry with the same
// ID.  Precondition: non-nil definition with a non-empty ID.

func (s *Store) RegisterCondition(d *ConditionDefinition) { s.conditions[d.ID] = d }
func (s *Store) RegisterItem(d *ItemDefinition)           { s.items[d.ID] = d }
func (s *Store) RegisterSpell(d *SpellDefinition)         { s.spells[d.ID] = d }
func (s *Store) RegisterFeature(d *FeatureDefinition)     { s.features[d.ID] = d }
func (s *Store) RegisterClass(d *ClassDefinition)         { s.classes[d.ID] = d }
func (s *Store) RegisterCreature(d *CreatureTemplate)     { s.creatures[d.ID] = d }
func (s *Store) RegisterResource(d *ResourceDefinition)   { s.resources[d.ID] = d }
func (s *Store) RegisterSkill(d *SkillDefinition)         { s.skills[d.ID] = d }
func (s *Store) RegisterDamageType(d *DamageTypeDefinition) {
	s.damageTypes[d.ID] = d
}

func (s *Store) Condition(id string) (*ConditionDefinition, error) {
	if d, ok := s.conditions[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: condition %q", ErrNotFound, id)
}

func (s *Store) Item(id string) (*ItemDefinition, error) {
	if d, ok := s.items[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: item %q", ErrNotFound, id)
}

func (s *Store) Spell(id string) (*SpellDefinition, error) {
	if d, ok := s.spells[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: spell %q", ErrNotFound, id)
}

func (s *Store) Feature(id string) (*FeatureDefinition, error) {
	if d, ok := s.features[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: feature %q", ErrNotFound, id)
}

func (s *Store) Class(id string) (*ClassDefinition, error) {
	if d, ok := s.classes[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: class %q", ErrNotFound, id)
}

func (s *Store) Creature(id string) (*CreatureTemplate, error) {
	if d, ok := s.creatures[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: creature template %q", ErrNotFound, id)
}

func (s *Store) Resource(id string) (*ResourceDefinition, error) {
	if d, ok := s.resources[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: resource %q", ErrNotFound, id)
}

func (s *Store) Skill(id string) (*SkillDefinition, error) {
	if d, ok := s.skills[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: skill %q", ErrNotFound, id)
}

func (s *Store) DamageType(id string) (*DamageTypeDefinition, error) {
	if d, ok := s.damageTypes[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: damage type %q", ErrNotFound, id)
}

// Resources returns a snapshot slice of all registered resource definitions.
func (s *Store) Resources() []*ResourceDefinition {
	out := make([]*ResourceDefinition, 0, len(s.resources))
	for _, d := range s.resources {
		out = append(out, d)
	}
	return out
}
