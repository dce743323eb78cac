package app

import (
	"context"
	"time"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/rule"
	"github.com/crosslint/crosslint/internal/version"
	"github.com/crosslint/crosslint/service"
)

// AnalyzeUseCase is the kernel's analyze() entry point. The CLI, the
// server, and the rule test harness all go through here; they differ only
// in how they obtain inputs and render output.
type AnalyzeUseCase struct {
	fileHelper *FileHelper
	progress   domain.ProgressManager
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase() *AnalyzeUseCase {
	return &AnalyzeUseCase{fileHelper: NewFileHelper()}
}

// SetProgress attaches a progress manager for interactive runs
func (uc *AnalyzeUseCase) SetProgress(pm domain.ProgressManager) {
	uc.progress = pm
}

// Execute performs one analysis run. Recoverable failures land in the
// report; the returned error is fatal (no files resolvable, no rules
// loaded, unreadable ruleset source).
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	startTime := time.Now()

	rules, loadErrs, err := uc.loadRules(req)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, domain.NewFatalError("no rules loaded", nil)
	}

	files, err := uc.resolveFiles(req)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewFatalError("no analyzable files found in the specified paths", nil)
	}

	executor := uc.buildExecutor(req)
	report, err := executor.Execute(ctx, files, rules)
	if err != nil {
		return nil, err
	}

	// Ruleset load problems are part of the report, not run failures
	if len(loadErrs) > 0 {
		entries := make([]domain.AnalysisError, 0, len(loadErrs))
		for _, le := range loadErrs {
			entries = append(entries, domain.AnalysisError{
				Kind:    domain.ErrorKindLoad,
				Path:    le.Source,
				RuleID:  le.RuleID,
				Message: le.Message,
			})
		}
		report.Errors = append(entries, report.Errors...)
	}

	return &domain.AnalyzeResponse{
		Report:      report,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		DurationMs:  time.Since(startTime).Milliseconds(),
		Version:     version.GetVersion(),
	}, nil
}

func (uc *AnalyzeUseCase) loadRules(req domain.AnalyzeRequest) ([]*rule.Rule, []rule.LoadError, error) {
	var rules []*rule.Rule
	if !req.NoBuiltinRules {
		builtin, err := rule.LoadBuiltinRules()
		if err != nil {
			return nil, nil, domain.NewFatalError("builtin ruleset is invalid", err)
		}
		rules = builtin
	}

	loaded, loadErrs, err := rule.LoadRuleset(req.RulesetPaths)
	if err != nil {
		return nil, nil, err
	}
	rules = append(rules, loaded...)
	rules = rule.Filter(rules, req.RuleFilter)
	return rules, loadErrs, nil
}

func (uc *AnalyzeUseCase) resolveFiles(req domain.AnalyzeRequest) ([]domain.FileContent, error) {
	files := make([]domain.FileContent, 0, len(req.Files))
	files = append(files, req.Files...)

	if len(req.Paths) > 0 {
		paths, err := uc.fileHelper.CollectFiles(
			req.WorkspaceRoot,
			req.Paths,
			req.Recursive,
			req.IncludePatterns,
			req.ExcludePatterns,
			req.RespectGitignore,
		)
		if err != nil {
			return nil, domain.NewFatalError("failed to collect workspace files", err)
		}
		for _, p := range paths {
			files = append(files, domain.FileContent{Path: p})
		}
	}
	return files, nil
}

func (uc *AnalyzeUseCase) buildExecutor(req domain.AnalyzeRequest) *service.AnalysisExecutor {
	executor := service.NewAnalysisExecutor()
	executor.SetConcurrency(req.Concurrency)
	executor.SetUnitTimeout(req.UnitTimeout)
	executor.SetTotalTimeout(req.TotalTimeout)
	executor.SetStepBudget(req.StepBudget)
	executor.SetSortMode(req.SortMode)
	if uc.progress != nil {
		executor.SetProgress(uc.progress)
	}
	return executor
}
