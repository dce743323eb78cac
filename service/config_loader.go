package service

import (
	"time"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/config"
)

// ConfigurationLoaderImpl loads and merges configuration for analysis runs
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads config from a discovered file, falling back to
// the hardcoded defaults.
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *config.Config {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// ApplyToRequest fills request fields not already set by the caller from
// the configuration. Caller-provided (CLI flag) values always win.
func (c *ConfigurationLoaderImpl) ApplyToRequest(cfg *config.Config, req *domain.AnalyzeRequest) {
	if len(req.RulesetPaths) == 0 {
		req.RulesetPaths = cfg.Rules.Paths
	}
	if len(req.RuleFilter) == 0 {
		req.RuleFilter = cfg.Rules.Only
	}
	if !req.NoBuiltinRules {
		req.NoBuiltinRules = cfg.Rules.NoBuiltin
	}

	if len(req.IncludePatterns) == 0 {
		req.IncludePatterns = cfg.Files.IncludePatterns
	}
	if len(req.ExcludePatterns) == 0 {
		req.ExcludePatterns = cfg.Files.ExcludePatterns
	}
	if !req.RespectGitignore {
		req.RespectGitignore = cfg.Files.RespectGitignore
	}
	if !req.Recursive {
		req.Recursive = cfg.Files.Recursive
	}

	if req.Concurrency == 0 {
		req.Concurrency = cfg.Analysis.Concurrency
	}
	if req.UnitTimeout == 0 && cfg.Analysis.UnitTimeoutSeconds > 0 {
		req.UnitTimeout = time.Duration(cfg.Analysis.UnitTimeoutSeconds) * time.Second
	}
	if req.TotalTimeout == 0 && cfg.Analysis.TotalTimeoutSeconds > 0 {
		req.TotalTimeout = time.Duration(cfg.Analysis.TotalTimeoutSeconds) * time.Second
	}
	if req.StepBudget == 0 {
		req.StepBudget = cfg.Analysis.StepBudget
	}
}
