package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration that fails validation. Load errors wrapping
// it are fatal at startup.
var ErrInvalid = errors.New("invalid configuration")

// Config is the gitguard configuration.
type Config struct {
	Format      string         `json:"format" yaml:"format"`
	Checks      ChecksConfig   `json:"checks" yaml:"checks"`
	Security    SecurityConfig `json:"security" yaml:"security"`
	Cohesion    CohesionConfig `json:"cohesion" yaml:"cohesion"`
	Split       SplitConfig    `json:"split" yaml:"split"`
	AI          AIConfig       `json:"ai" yaml:"ai"`
	Cache       CacheConfig    `json:"cache" yaml:"cache"`
	MaxInFlight int            `json:"maxInFlight" yaml:"maxInFlight"`
	AutoApply   bool           `json:"autoApply" yaml:"autoApply"`
	Debug       bool           `json:"debug" yaml:"debug"`
}

// ChecksConfig toggles the individual analysis passes.
type ChecksConfig struct {
	Security bool `json:"security" yaml:"security"`
	Message  bool `json:"message" yaml:"message"`
	Cohesion bool `json:"cohesion" yaml:"cohesion"`
}

// SecurityConfig controls the security scanner.
type SecurityConfig struct {
	MinSeverity      string          `json:"minSeverity" yaml:"minSeverity"`
	EntropyThreshold float64         `json:"entropyThreshold" yaml:"entropyThreshold"`
	MinTokenLength   int             `json:"minTokenLength" yaml:"minTokenLength"`
	CustomRules      []RuleConfig    `json:"customRules,omitempty" yaml:"customRules,omitempty"`
	Allowlist        AllowlistConfig `json:"allowlist" yaml:"allowlist"`
}

// RuleConfig is a user-supplied security scan rule.
type RuleConfig struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Severity    string  `json:"severity" yaml:"severity"`
	Pattern     string  `json:"pattern" yaml:"pattern"`
	Confidence  float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// AllowlistConfig suppresses findings by path glob or matched-text pattern.
type AllowlistConfig struct {
	Paths    []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// CohesionConfig controls the change-cohesion axis.
type CohesionConfig struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// SplitConfig controls the split advisor.
type SplitConfig struct {
	MinSimilarity float64 `json:"minSimilarity" yaml:"minSimilarity"`
}

// CacheConfig controls the per-commit verdict cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds"`
}

// AIConfig controls the suggestion provider.
type AIConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	Provider       string `json:"provider" yaml:"provider"`
	Model          string `json:"model" yaml:"model"`
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Deployment     string `json:"deployment,omitempty" yaml:"deployment,omitempty"`
	APIVersion     string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	MaxSuggestions int    `json:"maxSuggestions" yaml:"maxSuggestions"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	MaxRetries     int    `json:"maxRetries" yaml:"maxRetries"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format: "text",
		Checks: ChecksConfig{
			Security: true,
			Message:  true,
			Cohesion: true,
		},
		Security: SecurityConfig{
			MinSeverity:      "low",
			EntropyThreshold: 4.0,
			MinTokenLength:   20,
		},
		Cohesion: CohesionConfig{Threshold: 0.5},
		Split:    SplitConfig{MinSimilarity: 0.5},
		AI: AIConfig{
			Provider:       "azure",
			Model:          "gpt-4o",
			APIVersion:     "2024-02-15-preview",
			MaxSuggestions: 3,
			TimeoutSeconds: 30,
			MaxRetries:     2,
		},
		Cache:       CacheConfig{TTLSeconds: 604800},
		MaxInFlight: 4,
	}
}

// GlobalDir returns the user-level config directory (~/.gitguard).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".gitguard"), nil
}

// GlobalPath returns the path where `config init` writes the global file.
func GlobalPath() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// findConfigFile returns the first existing config file in dir, or "".
func findConfigFile(dir string) string {
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the effective config for a repository rooted at root.
// If explicitPath is non-empty it replaces the global and local files.
// The overrides map comes from CLI flags (only set values should be present).
func Load(root, explicitPath string, overrides map[string]string) (Config, error) {
	cfg := Default()

	if explicitPath != "" {
		if err := decodeFile(explicitPath, &cfg); err != nil {
			return Config{}, err
		}
	} else {
		if dir, err := GlobalDir(); err == nil {
			if path := findConfigFile(dir); path != "" {
				if err := decodeFile(path, &cfg); err != nil {
					return Config{}, err
				}
			}
		}
		if root != "" {
			if path := findConfigFile(filepath.Join(root, ".gitguard")); path != "" {
				if err := decodeFile(path, &cfg); err != nil {
					return Config{}, err
				}
			}
		}
	}

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a single config file over defaults, with no env or
// flag layers. `config set` uses it to edit one file in place.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeFile parses a JSON or YAML config file over the current config, so
// keys absent from the file keep their lower-precedence values.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
		}
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GITGUARD_AUTO"); v != "" {
		cfg.AutoApply = envBool(v)
	}
	if v := os.Getenv("GITGUARD_USE_AI"); v != "" {
		cfg.AI.Enabled = envBool(v)
	}
	if v := os.Getenv("GITGUARD_DEBUG"); v != "" {
		cfg.Debug = envBool(v)
	}
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); v != "" {
		cfg.AI.Deployment = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		cfg.AI.APIVersion = v
	}
}

func envBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["maxInFlight"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxInFlight = n
		}
	}
	if _, ok := overrides["debug"]; ok {
		cfg.Debug = true
	}
	if _, ok := overrides["noAI"]; ok {
		cfg.AI.Enabled = false
	}
}

var validSeverities = map[string]bool{
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
}

// Validate checks the config for values that would make a run meaningless or
// fail later. All errors wrap ErrInvalid.
func Validate(cfg Config) error {
	if cfg.Format != "text" && cfg.Format != "json" {
		return fmt.Errorf("%w: format must be text or json, got %q", ErrInvalid, cfg.Format)
	}
	if !validSeverities[cfg.Security.MinSeverity] {
		return fmt.Errorf("%w: security.minSeverity must be one of low, medium, high, critical; got %q", ErrInvalid, cfg.Security.MinSeverity)
	}
	if cfg.Security.EntropyThreshold <= 0 || cfg.Security.EntropyThreshold > 8 {
		return fmt.Errorf("%w: security.entropyThreshold must be in (0, 8], got %v", ErrInvalid, cfg.Security.EntropyThreshold)
	}
	if cfg.Security.MinTokenLength < 4 {
		return fmt.Errorf("%w: security.minTokenLength must be at least 4, got %d", ErrInvalid, cfg.Security.MinTokenLength)
	}
	for _, r := range cfg.Security.CustomRules {
		if r.ID == "" {
			return fmt.Errorf("%w: custom rule missing id", ErrInvalid)
		}
		if !validSeverities[r.Severity] {
			return fmt.Errorf("%w: custom rule %q: severity %q is not valid", ErrInvalid, r.ID, r.Severity)
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("%w: custom rule %q: bad pattern: %v", ErrInvalid, r.ID, err)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return fmt.Errorf("%w: custom rule %q: confidence must be in [0, 1], got %v", ErrInvalid, r.ID, r.Confidence)
		}
	}
	for _, p := range cfg.Security.Allowlist.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: allowlist pattern %q: %v", ErrInvalid, p, err)
		}
	}
	if cfg.Cohesion.Threshold < 0 || cfg.Cohesion.Threshold > 1 {
		return fmt.Errorf("%w: cohesion.threshold must be in [0, 1], got %v", ErrInvalid, cfg.Cohesion.Threshold)
	}
	if cfg.Split.MinSimilarity < 0 || cfg.Split.MinSimilarity > 1 {
		return fmt.Errorf("%w: split.minSimilarity must be in [0, 1], got %v", ErrInvalid, cfg.Split.MinSimilarity)
	}
	if cfg.MaxInFlight < 1 {
		return fmt.Errorf("%w: maxInFlight must be at least 1, got %d", ErrInvalid, cfg.MaxInFlight)
	}
	if cfg.Cache.TTLSeconds < 0 {
		return fmt.Errorf("%w: cache.ttlSeconds must not be negative, got %d", ErrInvalid, cfg.Cache.TTLSeconds)
	}
	if cfg.AI.Enabled {
		switch cfg.AI.Provider {
		case "azure", "openai", "anthropic":
		default:
			return fmt.Errorf("%w: ai.provider must be azure, openai, or anthropic; got %q", ErrInvalid, cfg.AI.Provider)
		}
		if cfg.AI.Provider == "azure" && (cfg.AI.Endpoint == "" || cfg.AI.Deployment == "") {
			return fmt.Errorf("%w: azure provider requires ai.endpoint and ai.deployment (or AZURE_OPENAI_ENDPOINT / AZURE_OPENAI_DEPLOYMENT)", ErrInvalid)
		}
		if cfg.AI.TimeoutSeconds <= 0 {
			return fmt.Errorf("%w: ai.timeoutSeconds must be positive, got %d", ErrInvalid, cfg.AI.TimeoutSeconds)
		}
		if cfg.AI.MaxRetries < 0 {
			return fmt.Errorf("%w: ai.maxRetries must not be negative, got %d", ErrInvalid, cfg.AI.MaxRetries)
		}
		if cfg.AI.MaxSuggestions < 1 || cfg.AI.MaxSuggestions > 10 {
			return fmt.Errorf("%w: ai.maxSuggestions must be in [1, 10], got %d", ErrInvalid, cfg.AI.MaxSuggestions)
		}
	}
	return nil
}

// Save writes the config as JSON to the given path.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SetField sets a single config field by dotted key name. Returns an error if
// the key is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "format":
		cfg.Format = value
	case "checks.security":
		cfg.Checks.Security = envBool(value)
	case "checks.message":
		cfg.Checks.Message = envBool(value)
	case "checks.cohesion":
		cfg.Checks.Cohesion = envBool(value)
	case "security.minSeverity":
		cfg.Security.MinSeverity = value
	case "security.entropyThreshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("security.entropyThreshold must be a number: %w", err)
		}
		cfg.Security.EntropyThreshold = f
	case "security.minTokenLength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("security.minTokenLength must be an integer: %w", err)
		}
		cfg.Security.MinTokenLength = n
	case "cohesion.threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("cohesion.threshold must be a number: %w", err)
		}
		cfg.Cohesion.Threshold = f
	case "split.minSimilarity":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("split.minSimilarity must be a number: %w", err)
		}
		cfg.Split.MinSimilarity = f
	case "ai.enabled":
		cfg.AI.Enabled = envBool(value)
	case "ai.provider":
		cfg.AI.Provider = value
	case "ai.model":
		cfg.AI.Model = value
	case "ai.endpoint":
		cfg.AI.Endpoint = value
	case "ai.deployment":
		cfg.AI.Deployment = value
	case "ai.apiVersion":
		cfg.AI.APIVersion = value
	case "ai.timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ai.timeoutSeconds must be an integer: %w", err)
		}
		cfg.AI.TimeoutSeconds = n
	case "ai.maxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ai.maxRetries must be an integer: %w", err)
		}
		cfg.AI.MaxRetries = n
	case "cache.enabled":
		cfg.Cache.Enabled = envBool(value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "maxInFlight":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxInFlight must be an integer: %w", err)
		}
		cfg.MaxInFlight = n
	case "autoApply":
		cfg.AutoApply = envBool(value)
	case "debug":
		cfg.Debug = envBool(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
