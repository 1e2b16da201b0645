package config

// SourceSeed is one entry of deploy/config/seed.yaml's sources list: the
// starting catalog a fresh deployment bootstraps with, before C4's
// discovery/promotion lifecycle takes over.
type SourceSeed struct {
	ID              string   `yaml:"id"`
	DisplayName     string   `yaml:"display_name"`
	URL             string   `yaml:"url,omitempty"`
	FeedURL         string   `yaml:"feed_url,omitempty"`
	FetchMethod     string   `yaml:"fetch_method"`
	Language        string   `yaml:"language,omitempty"`
	Tier            int      `yaml:"tier,omitempty"`
	Reliability     float64  `yaml:"reliability,omitempty"`
	Earliness       float64  `yaml:"earliness,omitempty"`
	ScheduleMinutes int      `yaml:"schedule_minutes,omitempty"`
	Layers          []string `yaml:"layers,omitempty"`
	SearchQueries   []string `yaml:"search_queries,omitempty"`
	Status          string   `yaml:"status,omitempty"`
}

// EntitySeed is one entry of seed.yaml's entities list: the well-known
// catalog (key suppliers, fabs, policy programs) the extractor's system
// prompt references by ID, pre-populated so first-run extraction has
// something to resolve against.
type EntitySeed struct {
	ID            string              `yaml:"id"`
	CanonicalName string              `yaml:"canonical_name"`
	Type          string              `yaml:"type"`
	Aliases       map[string][]string `yaml:"aliases,omitempty"`
	Roles         []string            `yaml:"roles,omitempty"`
	Layers        []string            `yaml:"layers,omitempty"`
	Status        string              `yaml:"status,omitempty"`
}

// SeedConfig is the parsed shape of deploy/config/seed.yaml.
type SeedConfig struct {
	Sources  []SourceSeed `yaml:"sources"`
	Entities []EntitySeed `yaml:"entities"`
}

// defaultSeedConfig is the built-in catalog merged underneath whatever
// seed.yaml provides. ConstraintWatch ships with an empty built-in catalog:
// unlike tarsy's built-in agents/chains, there is no universal starting
// source list that makes sense across deployments, so every source and
// entity comes from the operator's seed.yaml. The merge step still runs so
// a future built-in catalog (or a programmatic override) has somewhere to
// plug in without changing the loader.
func defaultSeedConfig() *SeedConfig {
	return &SeedConfig{}
}
