package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load seed.yaml, llm.yaml, taxonomy.yaml from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in defaults with user-provided documents
//  5. Validate required fields
//  6. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"sources", stats.Sources,
		"seed_entities", stats.SeedEntities,
		"constraint_layers", stats.ConstraintLayers,
		"event_types", stats.EventTypes)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	seed, err := loader.loadSeedYAML()
	if err != nil {
		return nil, NewLoadError("seed.yaml", err)
	}

	llmCfg, err := loader.loadLLMYAML()
	if err != nil {
		return nil, NewLoadError("llm.yaml", err)
	}

	taxonomy, err := loader.loadTaxonomyYAML()
	if err != nil {
		return nil, NewLoadError("taxonomy.yaml", err)
	}

	mergedSeed, err := mergeSeed(defaultSeedConfig(), seed)
	if err != nil {
		return nil, fmt.Errorf("failed to merge seed config: %w", err)
	}

	mergedLLM, err := mergeLLM(defaultLLMConfig(), llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge llm config: %w", err)
	}

	mergedTaxonomy, err := mergeTaxonomy(defaultTaxonomyConfig(), taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to merge taxonomy config: %w", err)
	}

	return &Config{
		configDir: configDir,
		Seed:      mergedSeed,
		LLM:       mergedLLM,
		Taxonomy:  mergedTaxonomy,
	}, nil
}

// validate performs required-field checks on loaded configuration.
func validate(cfg *Config) error {
	if cfg.LLM.Address == "" {
		return fmt.Errorf("%w: llm.address", ErrMissingRequiredField)
	}
	for _, s := range cfg.Seed.Sources {
		if s.ID == "" {
			return fmt.Errorf("%w: sources[].id", ErrMissingRequiredField)
		}
		if s.FetchMethod == "" {
			return fmt.Errorf("%w: source %s fetch_method", ErrMissingRequiredField, s.ID)
		}
	}
	for _, e := range cfg.Seed.Entities {
		if e.ID == "" {
			return fmt.Errorf("%w: entities[].id", ErrMissingRequiredField)
		}
	}
	return nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadSeedYAML() (*SeedConfig, error) {
	var cfg SeedConfig
	if err := l.loadYAML("seed.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *configLoader) loadLLMYAML() (*LLMConfig, error) {
	var cfg LLMConfig
	if err := l.loadYAML("llm.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *configLoader) loadTaxonomyYAML() (*TaxonomyConfig, error) {
	var cfg TaxonomyConfig
	if err := l.loadYAML("taxonomy.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
