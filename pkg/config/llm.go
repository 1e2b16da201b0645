package config

import "github.com/constraintwatch/constraintwatch/pkg/llm"

// LLMConfig is the parsed shape of deploy/config/llm.yaml: the contract
// the Go process uses to reach the LLM sidecar over gRPC. The sidecar
// itself owns model selection and vendor credentials; this file only
// carries what the client needs to dial it and bound each call.
type LLMConfig struct {
	Address             string  `yaml:"address"`
	Model               string  `yaml:"model,omitempty"`
	Temperature         float64 `yaml:"temperature,omitempty"`
	MaxTokens           int     `yaml:"max_tokens,omitempty"`
	Retries             int     `yaml:"retries,omitempty"`
	RetryBackoffSeconds int     `yaml:"retry_backoff_seconds,omitempty"`
	TimeoutSeconds      int     `yaml:"timeout_seconds,omitempty"`
	Concurrency         int64   `yaml:"concurrency,omitempty"`
}

// ToClientConfig converts the loaded YAML document into pkg/llm's Config,
// filling in spec-mandated defaults for anything left unset.
func (c *LLMConfig) ToClientConfig() llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Address = c.Address
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.Temperature != 0 {
		cfg.Temperature = c.Temperature
	}
	if c.MaxTokens != 0 {
		cfg.MaxTokens = c.MaxTokens
	}
	if c.Retries != 0 {
		cfg.Retries = c.Retries
	}
	if c.RetryBackoffSeconds != 0 {
		cfg.RetryBackoffSeconds = c.RetryBackoffSeconds
	}
	if c.TimeoutSeconds != 0 {
		cfg.TimeoutSeconds = c.TimeoutSeconds
	}
	if c.Concurrency != 0 {
		cfg.Concurrency = c.Concurrency
	}
	return cfg
}

// defaultLLMConfig is applied for any field left unset in llm.yaml.
func defaultLLMConfig() *LLMConfig {
	d := llm.DefaultConfig()
	return &LLMConfig{
		Address:             "localhost:50051",
		Model:               d.Model,
		Temperature:         d.Temperature,
		MaxTokens:           d.MaxTokens,
		Retries:             d.Retries,
		RetryBackoffSeconds: d.RetryBackoffSeconds,
		TimeoutSeconds:      d.TimeoutSeconds,
		Concurrency:         d.Concurrency,
	}
}
