package creature

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of the state.  Template and condition definition
// pointers are shared: definitions are immutable after loading.
// Postcondition: no mutable memory is shared between the receiver and the
// copy.
func (s *State) Clone() *State {
	out := *s

	out.ClassLevels = append([]ClassLevel(nil), s.ClassLevels...)
	out.BaseAbilityScores = cloneIntMap(s.BaseAbilityScores)
	out.EffectiveAbilityScores = cloneIntMap(s.EffectiveAbilityScores)
	out.Speeds = cloneIntMap(s.Speeds)
	out.Senses = cloneIntMap(s.Senses)
	out.SaveProficiencies = append([]string(nil), s.SaveProficiencies...)
	out.SkillProficiencies = append([]string(nil), s.SkillProficiencies...)
	out.SkillExpertise = append([]string(nil), s.SkillExpertise...)
	out.Resistances = append([]string(nil), s.Resistances...)
	out.Immunities = append([]string(nil), s.Immunities...)
	out.Vulnerabilities = append([]string(nil), s.Vulnerabilities...)
	out.Resources = append([]TrackedResource(nil), s.Resources...)
	out.EquippedItems = cloneStringMap(s.EquippedItems)
	out.Inventory = append([]string(nil), s.Inventory...)
	out.Attunements = append([]string(nil), s.Attunements...)

	out.ActiveConditions = make([]ActiveCondition, len(s.ActiveConditions))
	for i, c := range s.ActiveConditions {
		c.RemainingDurationRounds = cloneIntPtr(c.RemainingDurationRounds)
		out.ActiveConditions[i] = c
	}

	out.ActiveEffects = make([]ActiveEffect, len(s.ActiveEffects))
	for i, e := range s.ActiveEffects {
		e.RemainingDurationRounds = cloneIntPtr(e.RemainingDurationRounds)
		out.ActiveEffects[i] = e
	}

	if s.Concentration != nil {
		c := *s.Concentration
		out.Concentration = &c
	}
	return &out
}
