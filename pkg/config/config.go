// Package config loads pylens configuration from TOML, YAML, or JSON
// files with sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jspahr/pylens/pkg/models"
)

// Config holds all configuration options for pylens.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Complexity thresholds for risk classification
	Thresholds models.Thresholds `koanf:"thresholds" toml:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Migration planner settings
	Planner PlannerConfig `koanf:"planner" toml:"planner"`
}

// AnalysisConfig controls which analyzers run.
type AnalysisConfig struct {
	Structure   bool `koanf:"structure" toml:"structure"`
	Complexity  bool `koanf:"complexity" toml:"complexity"`
	ConfigItems bool `koanf:"config_items" toml:"config_items"`
	Cycles      bool `koanf:"cycles" toml:"cycles"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, toon, markdown
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// PlannerConfig points at the migration mapping rules.
type PlannerConfig struct {
	MappingFile string `koanf:"mapping_file" toml:"mapping_file"`
	MaxFileSize int64  `koanf:"max_file_size" toml:"max_file_size"` // bytes; 0 disables the check
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Structure:   true,
			Complexity:  true,
			ConfigItems: true,
			Cycles:      true,
		},
		Thresholds: models.DefaultThresholds(),
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.py",
				"test_*.py",
				"conftest.py",
			},
			Extensions: []string{
				".pyc",
				".pyo",
			},
			Dirs: []string{
				".git",
				".pylens",
				"__pycache__",
				".venv",
				"venv",
				"node_modules",
				"dist",
				"build",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".pylens/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
		Planner: PlannerConfig{
			MappingFile: "mapping.yaml",
			MaxFileSize: 1024 * 1024,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	// Standard config file names to search for
	configNames := []string{
		"pylens.toml",
		"pylens.yaml",
		"pylens.yml",
		"pylens.json",
		".pylens.toml",
		".pylens.yaml",
		".pylens.yml",
		".pylens.json",
	}

	// Search in current directory and .pylens directory
	searchDirs := []string{".", ".pylens"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
