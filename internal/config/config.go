package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/crosslint/crosslint/internal/constants"
)

// Config represents the main configuration structure
type Config struct {
	// Analysis holds execution configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Rules holds ruleset configuration
	Rules RulesConfig `json:"rules" mapstructure:"rules" yaml:"rules"`

	// Files holds file collection configuration
	Files FilesConfig `json:"files" mapstructure:"files" yaml:"files"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// AnalysisConfig holds execution tuning for the orchestrator
type AnalysisConfig struct {
	// Concurrency caps the worker pool; 0 means use every CPU
	Concurrency int `json:"concurrency" mapstructure:"concurrency" yaml:"concurrency"`

	// UnitTimeoutSeconds bounds one (file, rule) evaluation
	UnitTimeoutSeconds int `json:"unitTimeoutSeconds" mapstructure:"unit_timeout_seconds" yaml:"unit_timeout_seconds"`

	// TotalTimeoutSeconds bounds the whole run; 0 means no limit
	TotalTimeoutSeconds int `json:"totalTimeoutSeconds" mapstructure:"total_timeout_seconds" yaml:"total_timeout_seconds"`

	// StepBudget bounds pattern evaluation steps per (file, rule)
	StepBudget int `json:"stepBudget" mapstructure:"step_budget" yaml:"step_budget"`
}

// RulesConfig holds ruleset sources and filters
type RulesConfig struct {
	// Paths are ruleset files or directories loaded in addition to the
	// builtin rules
	Paths []string `json:"paths" mapstructure:"paths" yaml:"paths"`

	// Only restricts the run to the listed rule ids
	Only []string `json:"only,omitempty" mapstructure:"only" yaml:"only,omitempty"`

	// NoBuiltin disables the embedded default ruleset
	NoBuiltin bool `json:"noBuiltin,omitempty" mapstructure:"no_builtin" yaml:"no_builtin,omitempty"`
}

// FilesConfig holds file collection settings
type FilesConfig struct {
	IncludePatterns  []string `json:"includePatterns,omitempty" mapstructure:"include_patterns" yaml:"include_patterns,omitempty"`
	ExcludePatterns  []string `json:"excludePatterns,omitempty" mapstructure:"exclude_patterns" yaml:"exclude_patterns,omitempty"`
	RespectGitignore bool     `json:"respectGitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
	Recursive        bool     `json:"recursive" mapstructure:"recursive" yaml:"recursive"`
}

// OutputConfig holds output formatting configuration
type OutputConfig struct {
	// Format is "text" or "json"
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Path writes the report to a file instead of stdout
	Path string `json:"path,omitempty" mapstructure:"path" yaml:"path,omitempty"`

	// FailOn exits non-zero when a violation at or above this severity
	// is found ("error", "warning", "notice"; empty disables the gate)
	FailOn string `json:"failOn,omitempty" mapstructure:"fail_on" yaml:"fail_on,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Concurrency:         0,
			UnitTimeoutSeconds:  constants.DefaultUnitTimeoutSeconds,
			TotalTimeoutSeconds: constants.DefaultTotalTimeoutSeconds,
			StepBudget:          constants.DefaultStepBudget,
		},
		Files: FilesConfig{
			ExcludePatterns:  []string{"node_modules", "vendor", ".git", "dist", "build"},
			RespectGitignore: true,
			Recursive:        true,
		},
		Output: OutputConfig{
			Format: constants.OutputFormatText,
		},
	}
}

// LoadConfig loads configuration from the given path; an empty path
// searches for a default config file from the working directory upwards.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.AutomaticEnv()

	if path == "" {
		path = FindDefaultConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// FindDefaultConfigFile searches for a config file in the current directory
// and its parents up to the filesystem root.
func FindDefaultConfigFile() string {
	candidates := []string{
		constants.ConfigFileName,
		".crosslint.yml",
		"crosslint.yaml",
		"crosslint.yml",
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		for _, name := range candidates {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
