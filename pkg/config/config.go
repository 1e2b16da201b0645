// Package config loads the three on-disk YAML documents that parameterize
// a run: the seed catalog (sources + entities), the LLM sidecar contract,
// and the extraction taxonomy. All three live under deploy/config/ and are
// merged with built-in defaults the same way tarsy.yaml merged built-in and
// user-defined agents/chains.
package config

// Config is the umbrella object returned by Initialize, bundling the three
// loaded documents for the rest of the service to consume.
type Config struct {
	configDir string

	Seed     *SeedConfig
	LLM      *LLMConfig
	Taxonomy *TaxonomyConfig
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Stats summarizes the loaded configuration for startup logging.
type Stats struct {
	Sources          int
	SeedEntities     int
	ConstraintLayers int
	EventTypes       int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() Stats {
	return Stats{
		Sources:          len(c.Seed.Sources),
		SeedEntities:     len(c.Seed.Entities),
		ConstraintLayers: len(c.Taxonomy.ConstraintLayers),
		EventTypes:       len(c.Taxonomy.EventTypes),
	}
}
