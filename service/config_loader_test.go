package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/config"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crosslint.yaml")
	content := `
analysis:
  concurrency: 3
  step_budget: 12345
rules:
  paths:
    - rules/
  only:
    - no-debugger
files:
  exclude_patterns:
    - generated
output:
  format: json
  fail_on: warning
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigurationLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Analysis.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Analysis.Concurrency)
	}
	if cfg.Analysis.StepBudget != 12345 {
		t.Errorf("step budget = %d, want 12345", cfg.Analysis.StepBudget)
	}
	if len(cfg.Rules.Paths) != 1 || cfg.Rules.Paths[0] != "rules/" {
		t.Errorf("rule paths = %v", cfg.Rules.Paths)
	}
	if cfg.Output.Format != "json" || cfg.Output.FailOn != "warning" {
		t.Errorf("output config = %+v", cfg.Output)
	}
	// Unset keys keep their defaults
	if cfg.Analysis.UnitTimeoutSeconds == 0 {
		t.Error("unit timeout default was lost")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := NewConfigurationLoader().LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestApplyToRequestFlagsWin(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Concurrency = 8
	cfg.Analysis.StepBudget = 999
	cfg.Rules.Paths = []string{"team-rules/"}
	cfg.Rules.Only = []string{"no-var"}

	req := domain.AnalyzeRequest{
		Concurrency: 2,
		RuleFilter:  []string{"no-debugger"},
	}
	NewConfigurationLoader().ApplyToRequest(cfg, &req)

	// Caller-set fields are untouched
	if req.Concurrency != 2 {
		t.Errorf("concurrency = %d, caller value should win", req.Concurrency)
	}
	if len(req.RuleFilter) != 1 || req.RuleFilter[0] != "no-debugger" {
		t.Errorf("rule filter = %v, caller value should win", req.RuleFilter)
	}

	// Unset fields are filled from config
	if req.StepBudget != 999 {
		t.Errorf("step budget = %d, want 999 from config", req.StepBudget)
	}
	if len(req.RulesetPaths) != 1 || req.RulesetPaths[0] != "team-rules/" {
		t.Errorf("ruleset paths = %v, want config value", req.RulesetPaths)
	}
	if req.UnitTimeout != time.Duration(cfg.Analysis.UnitTimeoutSeconds)*time.Second {
		t.Errorf("unit timeout = %v", req.UnitTimeout)
	}
	if !req.RespectGitignore || !req.Recursive {
		t.Error("file collection defaults not applied")
	}
}

func TestLoadDefaultConfigFallsBack(t *testing.T) {
	// Run from an empty directory so no config file is discovered
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfigurationLoader().LoadDefaultConfig()
	if cfg == nil {
		t.Fatal("nil config")
	}
	if cfg.Analysis.StepBudget == 0 {
		t.Error("defaults not populated")
	}
}
