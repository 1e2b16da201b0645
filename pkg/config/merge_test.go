package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSeedOverridesByID(t *testing.T) {
	builtin := &SeedConfig{
		Sources: []SourceSeed{
			{ID: "S:a", DisplayName: "A", FetchMethod: "feed"},
		},
	}
	user := &SeedConfig{
		Sources: []SourceSeed{
			{ID: "S:a", DisplayName: "A Renamed", FetchMethod: "html"},
			{ID: "S:b", DisplayName: "B", FetchMethod: "feed"},
		},
	}

	merged, err := mergeSeed(builtin, user)
	require.NoError(t, err)
	require.Len(t, merged.Sources, 2)
	assert.Equal(t, "A Renamed", merged.Sources[0].DisplayName)
	assert.Equal(t, "html", merged.Sources[0].FetchMethod)
	assert.Equal(t, "S:b", merged.Sources[1].ID)
}

func TestMergeLLMKeepsDefaultsForUnsetFields(t *testing.T) {
	builtin := defaultLLMConfig()
	user := &LLMConfig{Address: "dialed.internal:50051"}

	merged, err := mergeLLM(builtin, user)
	require.NoError(t, err)
	assert.Equal(t, "dialed.internal:50051", merged.Address)
	assert.Equal(t, builtin.Model, merged.Model)
	assert.Equal(t, builtin.TimeoutSeconds, merged.TimeoutSeconds)
}

func TestMergeTaxonomyReplacesListWhenProvided(t *testing.T) {
	builtin := defaultTaxonomyConfig()
	user := &TaxonomyConfig{Directions: []string{"TIGHTENING"}}

	merged, err := mergeTaxonomy(builtin, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"TIGHTENING"}, merged.Directions)
	assert.Equal(t, builtin.ConstraintLayers, merged.ConstraintLayers)
}
