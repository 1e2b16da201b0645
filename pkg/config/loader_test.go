package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestInitializeLoadsAllThreeDocuments(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "seed.yaml", `
sources:
  - id: "S:feed:semiconductor-times"
    display_name: "Semiconductor Times"
    feed_url: "https://example.com/feed.xml"
    fetch_method: "feed"
entities:
  - id: "E:company:tsmc"
    canonical_name: "TSMC"
    type: "COMPANY"
`)
	writeConfigFile(t, dir, "llm.yaml", `
address: "llm.internal:50051"
model: "gpt-test"
`)
	writeConfigFile(t, dir, "taxonomy.yaml", `
directions:
  - TIGHTENING
  - EASING
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ConfigDir())
	require.Len(t, cfg.Seed.Sources, 1)
	assert.Equal(t, "S:feed:semiconductor-times", cfg.Seed.Sources[0].ID)
	require.Len(t, cfg.Seed.Entities, 1)
	assert.Equal(t, "E:company:tsmc", cfg.Seed.Entities[0].ID)

	assert.Equal(t, "llm.internal:50051", cfg.LLM.Address)
	assert.Equal(t, "gpt-test", cfg.LLM.Model)
	assert.NotZero(t, cfg.LLM.TimeoutSeconds, "unset fields should fall back to built-in defaults")

	assert.Equal(t, []string{"TIGHTENING", "EASING"}, cfg.Taxonomy.Directions)
	assert.NotEmpty(t, cfg.Taxonomy.ConstraintLayers, "omitted lists should fall back to the built-in taxonomy")
}

func TestInitializeMissingFileReturnsLoadError(t *testing.T) {
	dir := t.TempDir()
	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestInitializeRejectsSourceWithoutFetchMethod(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "seed.yaml", `
sources:
  - id: "S:feed:broken"
    display_name: "Broken"
`)
	writeConfigFile(t, dir, "llm.yaml", `address: "llm.internal:50051"`)
	writeConfigFile(t, dir, "taxonomy.yaml", `{}`)

	_, err := Initialize(context.Background(), dir)
	require.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestInitializeRejectsMissingLLMAddress(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "seed.yaml", `{}`)
	writeConfigFile(t, dir, "llm.yaml", `{}`)
	writeConfigFile(t, dir, "taxonomy.yaml", `{}`)

	_, err := Initialize(context.Background(), dir)
	require.ErrorIs(t, err, ErrMissingRequiredField)
}
