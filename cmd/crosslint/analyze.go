package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/crosslint/crosslint/app"
	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/service"
)

var (
	analyzeRulesets   []string
	analyzeRuleFilter []string
	analyzeNoBuiltin  bool
	analyzeFormat     string
	analyzeJSON       bool
	analyzeOutput     string
	analyzeConfig     string
	analyzeFailOn     string
	analyzeJobs       int
	analyzeTimeout    int
	analyzeMaxTime    int
	analyzeStepBudget int
	analyzeNoIgnore   bool
	analyzeInclude    []string
	analyzeExclude    []string
	analyzeSort       string
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze source files against a ruleset",
		Long: `Analyze source files against the builtin and configured rulesets.

Examples:
  crosslint analyze src/
  crosslint analyze --ruleset rules/ src/
  crosslint analyze --rule no-empty-catch --json src/
  crosslint analyze --fail-on warning src/`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringSliceVarP(&analyzeRulesets, "ruleset", "r", nil,
		"Ruleset files or directories (repeatable)")
	cmd.Flags().StringSliceVar(&analyzeRuleFilter, "rule", nil,
		"Restrict the run to the given rule ids")
	cmd.Flags().BoolVar(&analyzeNoBuiltin, "no-builtin", false,
		"Disable the embedded default ruleset")
	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text",
		"Output format: text, json, sarif")
	cmd.Flags().BoolVar(&analyzeJSON, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&analyzeConfig, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&analyzeFailOn, "fail-on", "",
		"Exit non-zero on violations at or above this severity: error, warning, notice")
	cmd.Flags().IntVarP(&analyzeJobs, "jobs", "j", 0,
		"Worker pool size (default: all CPUs)")
	cmd.Flags().IntVar(&analyzeTimeout, "timeout", 0,
		"Per (file, rule) evaluation timeout in seconds")
	cmd.Flags().IntVar(&analyzeMaxTime, "max-time", 0,
		"Total wall-clock budget for the run in seconds")
	cmd.Flags().IntVar(&analyzeStepBudget, "step-budget", 0,
		"Pattern evaluation step budget per (file, rule)")
	cmd.Flags().BoolVar(&analyzeNoIgnore, "no-gitignore", false,
		"Do not honor .gitignore when scanning")
	cmd.Flags().StringSliceVar(&analyzeInclude, "include", nil,
		"Only analyze files matching these glob patterns")
	cmd.Flags().StringSliceVar(&analyzeExclude, "exclude", nil,
		"Skip files or directories matching these glob patterns")
	cmd.Flags().StringVar(&analyzeSort, "sort", "",
		"Violation ordering: deterministic (default), arrival")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	format := domain.OutputFormatText
	switch {
	case analyzeJSON || analyzeFormat == "json":
		format = domain.OutputFormatJSON
	case analyzeFormat == "sarif":
		format = domain.OutputFormatSARIF
	}

	loader := service.NewConfigurationLoader()
	cfg := loader.LoadDefaultConfig()
	if analyzeConfig != "" {
		var err error
		cfg, err = loader.LoadConfig(analyzeConfig)
		if err != nil {
			return err
		}
	}

	req := domain.AnalyzeRequest{
		Paths:            args,
		RulesetPaths:     analyzeRulesets,
		RuleFilter:       analyzeRuleFilter,
		NoBuiltinRules:   analyzeNoBuiltin,
		Recursive:        true,
		IncludePatterns:  analyzeInclude,
		ExcludePatterns:  analyzeExclude,
		RespectGitignore: !analyzeNoIgnore,
		Concurrency:      analyzeJobs,
		UnitTimeout:      time.Duration(analyzeTimeout) * time.Second,
		TotalTimeout:     time.Duration(analyzeMaxTime) * time.Second,
		StepBudget:       analyzeStepBudget,
		SortMode:         domain.SortMode(analyzeSort),
	}
	loader.ApplyToRequest(cfg, &req)
	if analyzeNoIgnore {
		req.RespectGitignore = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pm := service.NewProgressManager(format == domain.OutputFormatText)
	defer pm.Close()

	useCase := app.NewAnalyzeUseCase()
	useCase.SetProgress(pm)

	response, err := useCase.Execute(ctx, req)
	if err != nil {
		return err
	}

	var writer io.Writer = os.Stdout
	outputPath := analyzeOutput
	if outputPath == "" {
		outputPath = cfg.Output.Path
	}
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	formatter := service.NewOutputFormatter()
	if err := formatter.Write(response, format, writer); err != nil {
		return err
	}

	failOn := analyzeFailOn
	if failOn == "" {
		failOn = cfg.Output.FailOn
	}
	return applyFailOnGate(response.Report, failOn)
}

// applyFailOnGate maps violations at or above the threshold severity to a
// non-zero exit code after the report has been printed.
func applyFailOnGate(report *domain.AnalysisReport, failOn string) error {
	if failOn == "" {
		return nil
	}
	threshold, ok := domain.ParseSeverity(failOn)
	if !ok {
		return fmt.Errorf("invalid --fail-on severity: %s", failOn)
	}
	for _, v := range report.Violations {
		if v.Severity.Rank() >= threshold.Rank() {
			return &ExitError{Code: 1}
		}
	}
	return nil
}
