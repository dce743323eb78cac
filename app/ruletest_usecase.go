package app

import (
	"context"
	"fmt"
	"time"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/rule"
	"github.com/crosslint/crosslint/internal/version"
	"github.com/crosslint/crosslint/service"
)

// RuleTestUseCase validates rules against fixtures with known expected
// violations. It runs fixtures through the same executor and engine as a
// production analysis, so test results always reflect production behavior.
type RuleTestUseCase struct{}

// NewRuleTestUseCase creates a new rule test use case
func NewRuleTestUseCase() *RuleTestUseCase {
	return &RuleTestUseCase{}
}

// Execute runs every fixture for one rule and diffs actual violations
// against the expected set, by position.
func (uc *RuleTestUseCase) Execute(ctx context.Context, r *rule.Rule, fixtures []domain.FixtureCase) (*domain.TestReport, error) {
	report := &domain.TestReport{
		RuleID:      r.ID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}

	executor := service.NewAnalysisExecutor()
	for _, fixture := range fixtures {
		result := uc.runFixture(ctx, executor, r, fixture)
		report.Results = append(report.Results, result)
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// ExecuteAll groups fixtures by rule id and tests each rule that has any
func (uc *RuleTestUseCase) ExecuteAll(ctx context.Context, rules []*rule.Rule, fixtures []domain.FixtureCase) ([]*domain.TestReport, error) {
	byRule := make(map[string][]domain.FixtureCase)
	for _, f := range fixtures {
		byRule[f.Rule] = append(byRule[f.Rule], f)
	}

	var reports []*domain.TestReport
	for _, r := range rules {
		cases, ok := byRule[r.ID]
		if !ok {
			continue
		}
		report, err := uc.Execute(ctx, r, cases)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
		delete(byRule, r.ID)
	}

	for id := range byRule {
		return nil, domain.NewConfigError(
			fmt.Sprintf("fixtures reference unknown rule %q", id), nil)
	}
	return reports, nil
}

func (uc *RuleTestUseCase) runFixture(ctx context.Context, executor *service.AnalysisExecutor, r *rule.Rule, fixture domain.FixtureCase) domain.FixtureResult {
	result := domain.FixtureResult{Name: fixture.Name}

	file := domain.FileContent{
		Path:     fmt.Sprintf("fixture/%s", fixture.Name),
		Language: fixture.Language,
		Source:   []byte(fixture.Source),
	}

	report, err := executor.Execute(ctx, []domain.FileContent{file}, []*rule.Rule{r})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(report.Errors) > 0 {
		result.Error = report.Errors[0].Message
		return result
	}

	matched := make([]bool, len(report.Violations))
	for _, expected := range fixture.Expect {
		found := false
		for i, v := range report.Violations {
			if matched[i] {
				continue
			}
			if violationMatches(v, expected) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			result.Missing = append(result.Missing, expected)
		}
	}
	for i, v := range report.Violations {
		if !matched[i] {
			result.Unexpected = append(result.Unexpected, v)
		}
	}

	result.Passed = len(result.Missing) == 0 && len(result.Unexpected) == 0
	return result
}

// violationMatches compares by start position; end position only when the
// fixture specifies one.
func violationMatches(v domain.Violation, e domain.ExpectedViolation) bool {
	if v.Span.StartLine != e.Line || v.Span.StartCol != e.Column {
		return false
	}
	if e.EndLine != 0 && v.Span.EndLine != e.EndLine {
		return false
	}
	if e.EndCol != 0 && v.Span.EndCol != e.EndCol {
		return false
	}
	return true
}
