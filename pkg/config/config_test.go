package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	cfg := &Config{
		configDir: "/etc/constraintwatch",
		Seed: &SeedConfig{
			Sources:  []SourceSeed{{ID: "S:a"}, {ID: "S:b"}},
			Entities: []EntitySeed{{ID: "E:a"}},
		},
		Taxonomy: defaultTaxonomyConfig(),
	}

	assert.Equal(t, "/etc/constraintwatch", cfg.ConfigDir())

	stats := cfg.Stats()
	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, 1, stats.SeedEntities)
	assert.Equal(t, len(defaultTaxonomyConfig().ConstraintLayers), stats.ConstraintLayers)
	assert.Equal(t, len(defaultTaxonomyConfig().EventTypes), stats.EventTypes)
}
