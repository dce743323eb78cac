package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/collector"
	"github.com/crosslint/crosslint/internal/config"
	"github.com/crosslint/crosslint/internal/constants"
	"github.com/crosslint/crosslint/internal/lang"
	"github.com/crosslint/crosslint/internal/matcher"
	"github.com/crosslint/crosslint/internal/parser"
	"github.com/crosslint/crosslint/internal/rule"
)

// Default values for the analysis executor
const (
	DefaultUnitTimeout = constants.DefaultUnitTimeoutSeconds * time.Second
)

// AnalysisExecutor is the analysis orchestrator: it fans (file, rule
// subset) units out across a bounded worker pool, isolates per-unit
// failures, and aggregates a deterministic report.
type AnalysisExecutor struct {
	concurrency  int
	unitTimeout  time.Duration
	totalTimeout time.Duration
	stepBudget   int
	sortMode     domain.SortMode
	progress     domain.ProgressManager
}

// NewAnalysisExecutor creates an executor with defaults: one worker per
// CPU, the default unit timeout and step budget, deterministic ordering.
func NewAnalysisExecutor() *AnalysisExecutor {
	return &AnalysisExecutor{
		concurrency: runtime.NumCPU(),
		unitTimeout: DefaultUnitTimeout,
		stepBudget:  constants.DefaultStepBudget,
		sortMode:    domain.SortDeterministic,
	}
}

// NewAnalysisExecutorFromConfig creates an executor from configuration
func NewAnalysisExecutorFromConfig(cfg *config.AnalysisConfig) *AnalysisExecutor {
	e := NewAnalysisExecutor()
	if cfg.Concurrency > 0 {
		e.concurrency = cfg.Concurrency
	}
	if cfg.UnitTimeoutSeconds > 0 {
		e.unitTimeout = time.Duration(cfg.UnitTimeoutSeconds) * time.Second
	}
	if cfg.TotalTimeoutSeconds > 0 {
		e.totalTimeout = time.Duration(cfg.TotalTimeoutSeconds) * time.Second
	}
	if cfg.StepBudget > 0 {
		e.stepBudget = cfg.StepBudget
	}
	return e
}

// SetProgress attaches a progress manager for interactive runs
func (e *AnalysisExecutor) SetProgress(pm domain.ProgressManager) {
	e.progress = pm
}

// SetSortMode selects deterministic or arrival-order violation output
func (e *AnalysisExecutor) SetSortMode(mode domain.SortMode) {
	if mode != "" {
		e.sortMode = mode
	}
}

// SetConcurrency caps the worker pool
func (e *AnalysisExecutor) SetConcurrency(n int) {
	if n > 0 {
		e.concurrency = n
	}
}

// SetUnitTimeout bounds one (file, rule) evaluation
func (e *AnalysisExecutor) SetUnitTimeout(d time.Duration) {
	if d > 0 {
		e.unitTimeout = d
	}
}

// SetTotalTimeout bounds the whole run
func (e *AnalysisExecutor) SetTotalTimeout(d time.Duration) {
	if d > 0 {
		e.totalTimeout = d
	}
}

// SetStepBudget bounds pattern evaluation steps per (file, rule)
func (e *AnalysisExecutor) SetStepBudget(n int) {
	if n > 0 {
		e.stepBudget = n
	}
}

// unitResult is the outcome of one file unit. Units never abort siblings;
// everything they produce lands here and is aggregated after Wait.
type unitResult struct {
	violations []domain.Violation
	errors     []domain.AnalysisError
	summary    domain.FileSummary
	analyzed   bool
}

// Execute runs the analysis over all files. Recoverable failures become
// report entries; the returned error is reserved for fatal conditions.
func (e *AnalysisExecutor) Execute(ctx context.Context, files []domain.FileContent, rules []*rule.Rule) (*domain.AnalysisReport, error) {
	if e.totalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.totalTimeout)
		defer cancel()
	}

	// One engine, one regex cache, shared read-mostly by all workers
	engine := matcher.NewEngine(e.stepBudget)

	var task domain.TaskProgress = noOpTask{}
	if e.progress != nil {
		task = e.progress.StartTask("Analyzing files", len(files))
	}
	defer task.Complete()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	var mu sync.Mutex
	results := make([]unitResult, 0, len(files))

	for _, fc := range files {
		fc := fc
		// Observe cancellation before dispatching new units
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
			}

			res := e.analyzeFile(gCtx, engine, fc, rules)
			task.Increment(1)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			// Always nil: per-unit failures are data, not control flow
			return nil
		})
	}
	_ = g.Wait()

	report := &domain.AnalysisReport{
		Violations: []domain.Violation{},
		Cancelled:  ctx.Err() != nil,
	}
	report.Summary.TotalFiles = len(files)
	report.Summary.RulesLoaded = len(rules)
	report.Rules = make([]domain.RuleInfo, 0, len(rules))
	for _, r := range rules {
		report.Rules = append(report.Rules, domain.RuleInfo{
			ID:          r.ID,
			Description: r.Description,
			Category:    r.Category,
			Severity:    r.Severity,
		})
	}

	for _, res := range results {
		report.Violations = append(report.Violations, res.violations...)
		report.Errors = append(report.Errors, res.errors...)
		report.Files = append(report.Files, res.summary)
		if res.analyzed {
			report.Summary.AnalyzedFiles++
		} else {
			report.Summary.FailedFiles++
		}
	}

	if e.sortMode == domain.SortDeterministic {
		collector.Sort(report.Violations)
		sort.Slice(report.Files, func(i, j int) bool {
			return report.Files[i].Path < report.Files[j].Path
		})
		sort.Slice(report.Errors, func(i, j int) bool {
			a, b := report.Errors[i], report.Errors[j]
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			if a.RuleID != b.RuleID {
				return a.RuleID < b.RuleID
			}
			return a.Kind < b.Kind
		})
	}

	report.Summary.TotalViolations = len(report.Violations)
	for _, v := range report.Violations {
		switch v.Severity {
		case domain.SeverityError:
			report.Summary.ErrorCount++
		case domain.SeverityWarning:
			report.Summary.WarningCount++
		case domain.SeverityNotice:
			report.Summary.NoticeCount++
		}
	}

	return report, nil
}

// analyzeFile runs one file unit: read, parse once, evaluate every
// applicable rule independently under its own timeout.
func (e *AnalysisExecutor) analyzeFile(ctx context.Context, engine *matcher.Engine, fc domain.FileContent, rules []*rule.Rule) unitResult {
	res := unitResult{summary: domain.FileSummary{Path: fc.Path}}

	language, ok := resolveLanguage(fc)
	if !ok {
		res.errors = append(res.errors, domain.AnalysisError{
			Kind: domain.ErrorKindParse, Path: fc.Path,
			Message: fmt.Sprintf("cannot determine language for %s", fc.Path),
		})
		return res
	}
	res.summary.Language = language.String()

	source := fc.Source
	if source == nil {
		var err error
		source, err = os.ReadFile(fc.Path)
		if err != nil {
			res.errors = append(res.errors, domain.AnalysisError{
				Kind: domain.ErrorKindParse, Path: fc.Path,
				Message: fmt.Sprintf("failed to read file: %v", err),
			})
			return res
		}
	}
	sum := sha256.Sum256(source)
	res.summary.SHA256 = hex.EncodeToString(sum[:])

	tree, err := parser.Parse(ctx, fc.Path, source, language)
	if err != nil {
		// A file that fails to parse contributes zero violations plus
		// exactly one parse error record
		res.errors = append(res.errors, domain.AnalysisError{
			Kind: domain.ErrorKindParse, Path: fc.Path, Message: err.Error(),
		})
		return res
	}

	res.analyzed = true
	for _, r := range rules {
		if !r.AppliesTo(language) {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		evalCtx, cancel := context.WithTimeout(ctx, e.unitTimeout)
		matches, err := engine.Evaluate(evalCtx, tree, r)
		cancel()

		if err != nil {
			switch {
			case errors.Is(err, matcher.ErrBudgetExceeded), errors.Is(err, context.DeadlineExceeded):
				res.errors = append(res.errors, domain.AnalysisError{
					Kind: domain.ErrorKindTimeout, Path: fc.Path, RuleID: r.ID,
					Message: fmt.Sprintf("evaluation cut off: %v", err),
				})
			case errors.Is(err, context.Canceled):
				// Run-level cancellation; the unit aborts quietly
				return res
			default:
				res.errors = append(res.errors, domain.AnalysisError{
					Kind: domain.ErrorKindEvaluation, Path: fc.Path, RuleID: r.ID,
					Message: err.Error(),
				})
			}
			continue
		}

		violations := collector.Collect(r, tree, matches)
		res.violations = append(res.violations, violations...)
	}
	res.summary.Violations = len(res.violations)
	return res
}

func resolveLanguage(fc domain.FileContent) (lang.Language, bool) {
	if fc.Language != "" {
		return lang.FromTag(fc.Language)
	}
	return lang.FromExtension(fc.Path)
}
