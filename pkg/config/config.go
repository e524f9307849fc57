// Package config loads and validates codelens configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigurationError indicates an invalid configuration. It is fatal: the run
// is rejected before any file is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Config holds all configuration options for codelens.
type Config struct {
	Thresholds ThresholdConfig `koanf:"thresholds"`
	Penalties  PenaltyConfig   `koanf:"penalties"`

	// MagicNumberAllowList exempts these literal values from the
	// magic-number rule.
	MagicNumberAllowList []float64 `koanf:"magic_number_allow_list"`

	Files  FileConfig   `koanf:"files"`
	Cache  CacheConfig  `koanf:"cache"`
	Output OutputConfig `koanf:"output"`

	// Workers bounds the analysis pool; 0 means 2x NumCPU.
	Workers int `koanf:"workers"`
}

// ThresholdConfig defines the limits above which quality rules fire.
type ThresholdConfig struct {
	MaxFunctionLines        int `koanf:"max_function_lines"`
	MaxNestingDepth         int `koanf:"max_nesting_depth"`
	MaxCyclomaticComplexity int `koanf:"max_cyclomatic_complexity"`
	MaxCognitiveComplexity  int `koanf:"max_cognitive_complexity"`
}

// PenaltyConfig defines the score deduction per rule occurrence.
type PenaltyConfig struct {
	LongFunction       float64 `koanf:"long_function"`
	DeepNesting        float64 `koanf:"deep_nesting"`
	HighCyclomatic     float64 `koanf:"high_cyclomatic"`
	HighCognitive      float64 `koanf:"high_cognitive"`
	MagicNumber        float64 `koanf:"magic_number"`
	DuplicateStructure float64 `koanf:"duplicate_structure"`
}

// FileConfig controls file enumeration.
type FileConfig struct {
	Include   []string `koanf:"include"`
	Exclude   []string `koanf:"exclude"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"` // empty: in-memory only
	MaxEntries int    `koanf:"max_entries"`
}

// OutputConfig controls report output.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, markdown, json, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// Default returns the documented default configuration. The defaults are
// stable across runs so that scores are reproducible.
func Default() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			MaxFunctionLines:        50,
			MaxNestingDepth:         4,
			MaxCyclomaticComplexity: 10,
			MaxCognitiveComplexity:  15,
		},
		Penalties: PenaltyConfig{
			LongFunction:       3,
			DeepNesting:        5,
			HighCyclomatic:     7,
			HighCognitive:      7,
			MagicNumber:        1,
			DuplicateStructure: 4,
		},
		MagicNumberAllowList: []float64{-1, 0, 1, 2, 10, 100},
		Files: FileConfig{
			Include: []string{"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs", "**/*.ts", "**/*.tsx"},
			Exclude: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/*.min.js",
				"**/*.test.js", "**/*.spec.js",
				"**/*.test.ts", "**/*.spec.ts",
				"**/*.test.tsx", "**/*.spec.tsx",
				"**/*.d.ts",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Path:       "",
			MaxEntries: 4096,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// ValidFormats is the closed set of report formats.
var ValidFormats = []string{"text", "markdown", "json", "toon"}

// Validate checks the configuration eagerly, before any file is processed.
func (c *Config) Validate() error {
	if c.Thresholds.MaxFunctionLines < 1 {
		return &ConfigurationError{Field: "thresholds.max_function_lines", Reason: "must be >= 1"}
	}
	if c.Thresholds.MaxNestingDepth < 1 {
		return &ConfigurationError{Field: "thresholds.max_nesting_depth", Reason: "must be >= 1"}
	}
	if c.Thresholds.MaxCyclomaticComplexity < 1 {
		return &ConfigurationError{Field: "thresholds.max_cyclomatic_complexity", Reason: "must be >= 1"}
	}
	if c.Thresholds.MaxCognitiveComplexity < 1 {
		return &ConfigurationError{Field: "thresholds.max_cognitive_complexity", Reason: "must be >= 1"}
	}

	for field, p := range map[string]float64{
		"penalties.long_function":       c.Penalties.LongFunction,
		"penalties.deep_nesting":        c.Penalties.DeepNesting,
		"penalties.high_cyclomatic":     c.Penalties.HighCyclomatic,
		"penalties.high_cognitive":      c.Penalties.HighCognitive,
		"penalties.magic_number":        c.Penalties.MagicNumber,
		"penalties.duplicate_structure": c.Penalties.DuplicateStructure,
	} {
		if p < 0 {
			return &ConfigurationError{Field: field, Reason: "must be >= 0"}
		}
	}

	if !validFormat(c.Output.Format) {
		return &ConfigurationError{
			Field:  "output.format",
			Reason: fmt.Sprintf("unknown format %q (valid: %s)", c.Output.Format, strings.Join(ValidFormats, ", ")),
		}
	}

	if c.Cache.MaxEntries < 1 {
		return &ConfigurationError{Field: "cache.max_entries", Reason: "must be >= 1"}
	}
	if c.Workers < 0 {
		return &ConfigurationError{Field: "workers", Reason: "must be >= 0"}
	}
	if len(c.Files.Include) == 0 {
		return &ConfigurationError{Field: "files.include", Reason: "at least one include pattern is required"}
	}

	return nil
}

func validFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Load loads configuration from a file, layered over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are the standard config file names, in search order.
var configNames = []string{
	"codelens.toml",
	"codelens.yaml",
	"codelens.yml",
	"codelens.json",
	".codelens.toml",
	".codelens.yaml",
	".codelens.yml",
	".codelens.json",
}

// LoadOrDefault tries standard locations under root, falling back to defaults.
func LoadOrDefault(root string) *Config {
	for _, name := range configNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			if cfg, err := Load(path); err == nil {
				return cfg
			}
		}
	}
	return Default()
}
