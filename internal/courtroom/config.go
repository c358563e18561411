package courtroom

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a debate run. Credentials
// are never stored in the file itself; each model block names the
// environment variable its API key is read from, and a missing
// variable halts startup.
type Config struct {
	// Rounds is the number of debate rounds to drive.
	Rounds int `yaml:"rounds" validate:"required,min=1,max=3"`

	// Search configures the shared evidence provider.
	Search SearchConfig `yaml:"search" validate:"required"`

	// Agents configures the five model-backed roles.
	Agents AgentsConfig `yaml:"agents" validate:"required"`

	// Clerk optionally configures the case summarizer. When absent the
	// raw case description is argued over.
	Clerk *ModelConfig `yaml:"clerk,omitempty" validate:"omitempty"`
}

// SearchConfig configures the evidence-lookup boundary. One credential
// serves every agent in the session.
type SearchConfig struct {
	// APIKeyEnv names the environment variable holding the search key.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`

	// MaxResults caps snippets per arguing-agent query.
	MaxResults int `yaml:"max_results" validate:"required,min=1,max=3"`

	// Depth selects the provider search depth mode.
	Depth string `yaml:"depth" validate:"required,oneof=basic advanced"`
}

// ModelConfig selects the provider, model, and credential for one
// model-backed role.
type ModelConfig struct {
	// Provider names a registered LLM provider.
	Provider string `yaml:"provider" validate:"required,oneof=openai groq anthropic google"`

	// Model is the provider-specific model identifier.
	Model string `yaml:"model" validate:"required"`

	// APIKeyEnv names the environment variable holding this role's
	// API key. Roles carry distinct credentials.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`
}

// APIKey resolves the role's credential from the environment.
func (m ModelConfig) APIKey() (string, error) {
	key := os.Getenv(m.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("missing API key: environment variable %s is not set", m.APIKeyEnv)
	}
	return key, nil
}

// RoleConfig is a ModelConfig plus the persona knobs an operator may
// override per arguing role.
type RoleConfig struct {
	ModelConfig `yaml:",inline"`

	// EvidenceTopic overrides the persona's stock search topic.
	// The stock topics are fixed placeholder phrases unrelated to the
	// case content; they are kept configurable pending review of that
	// behavior.
	EvidenceTopic string `yaml:"evidence_topic,omitempty"`

	// Temperature overrides the persona's stock temperature.
	Temperature *float64 `yaml:"temperature,omitempty" validate:"omitempty,min=0,max=1"`
}

// AgentsConfig holds per-role model selections.
type AgentsConfig struct {
	ProsecutionAdvocate   RoleConfig  `yaml:"prosecution_advocate" validate:"required"`
	ProsecutionStrategist RoleConfig  `yaml:"prosecution_strategist" validate:"required"`
	DefenseAdvocate       RoleConfig  `yaml:"defense_advocate" validate:"required"`
	DefenseStrategist     RoleConfig  `yaml:"defense_strategist" validate:"required"`
	Judge                 ModelConfig `yaml:"judge" validate:"required"`
}

// DefaultConfig returns the stock deployment: Gemini for the
// advocates, Groq-hosted Llama for the strategists and the judge,
// Tavily as the shared evidence provider.
func DefaultConfig() Config {
	return Config{
		Rounds: 1,
		Search: SearchConfig{
			APIKeyEnv:  "TAVILY_API_KEY",
			MaxResults: 3,
			Depth:      "advanced",
		},
		Agents: AgentsConfig{
			DefenseAdvocate: RoleConfig{
				ModelConfig: ModelConfig{Provider: "google", Model: "gemini-2.5-flash-lite", APIKeyEnv: "GEMINI_API_KEY1"},
			},
			ProsecutionAdvocate: RoleConfig{
				ModelConfig: ModelConfig{Provider: "google", Model: "gemini-2.5-flash-lite", APIKeyEnv: "GEMINI_API_KEY2"},
			},
			DefenseStrategist: RoleConfig{
				ModelConfig: ModelConfig{Provider: "groq", Model: "llama-3.3-70b-versatile", APIKeyEnv: "GROQ_API_KEY1"},
			},
			ProsecutionStrategist: RoleConfig{
				ModelConfig: ModelConfig{Provider: "groq", Model: "llama-3.3-70b-versatile", APIKeyEnv: "GROQ_API_KEY2"},
			},
			Judge: ModelConfig{Provider: "groq", Model: "llama-3.3-70b-versatile", APIKeyEnv: "GROQ_API_KEY3"},
		},
		Clerk: &ModelConfig{Provider: "google", Model: "gemini-2.5-flash-lite", APIKeyEnv: "GEMINI_API_KEY1"},
	}
}

// LoadConfig reads and validates a YAML configuration file. Unknown
// fields are rejected to catch typos in role names.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration bytes.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration's structural constraints.
// Credential presence is checked separately at client construction, so
// a config file can be validated without the secrets in place.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
