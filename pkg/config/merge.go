package config

import "dario.cat/mergo"

// mergeSeed merges the built-in seed catalog with the user-provided
// seed.yaml. Sources and entities are keyed by ID; a user-defined entry
// overrides the built-in entry with the same ID, and new IDs are appended.
func mergeSeed(builtin, user *SeedConfig) (*SeedConfig, error) {
	sources := make(map[string]SourceSeed, len(builtin.Sources))
	order := make([]string, 0, len(builtin.Sources))
	for _, s := range builtin.Sources {
		sources[s.ID] = s
		order = append(order, s.ID)
	}
	for _, s := range user.Sources {
		if _, exists := sources[s.ID]; !exists {
			order = append(order, s.ID)
		}
		sources[s.ID] = s
	}

	entities := make(map[string]EntitySeed, len(builtin.Entities))
	entityOrder := make([]string, 0, len(builtin.Entities))
	for _, e := range builtin.Entities {
		entities[e.ID] = e
		entityOrder = append(entityOrder, e.ID)
	}
	for _, e := range user.Entities {
		if _, exists := entities[e.ID]; !exists {
			entityOrder = append(entityOrder, e.ID)
		}
		entities[e.ID] = e
	}

	merged := &SeedConfig{
		Sources:  make([]SourceSeed, 0, len(order)),
		Entities: make([]EntitySeed, 0, len(entityOrder)),
	}
	for _, id := range order {
		merged.Sources = append(merged.Sources, sources[id])
	}
	for _, id := range entityOrder {
		merged.Entities = append(merged.Entities, entities[id])
	}
	return merged, nil
}

// mergeLLM merges the built-in LLM defaults with llm.yaml, with
// user-provided non-zero values overriding the defaults.
func mergeLLM(builtin, user *LLMConfig) (*LLMConfig, error) {
	merged := *user
	if err := mergo.Merge(&merged, *builtin); err != nil {
		return nil, err
	}
	return &merged, nil
}

// mergeTaxonomy merges the built-in taxonomy with taxonomy.yaml. A
// non-empty list in taxonomy.yaml replaces the built-in list for that
// enum entirely, rather than appending, since the taxonomy is meant to be
// a closed set the operator curates.
func mergeTaxonomy(builtin, user *TaxonomyConfig) (*TaxonomyConfig, error) {
	merged := *builtin
	if len(user.ConstraintLayers) > 0 {
		merged.ConstraintLayers = user.ConstraintLayers
	}
	if len(user.EventTypes) > 0 {
		merged.EventTypes = user.EventTypes
	}
	if len(user.Directions) > 0 {
		merged.Directions = user.Directions
	}
	if len(user.EntityTypes) > 0 {
		merged.EntityTypes = user.EntityTypes
	}
	if len(user.EntityRoles) > 0 {
		merged.EntityRoles = user.EntityRoles
	}
	if len(user.ObjectTypes) > 0 {
		merged.ObjectTypes = user.ObjectTypes
	}
	return &merged, nil
}
