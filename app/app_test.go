package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
	"github.com/crosslint/crosslint/internal/parser"
	"github.com/crosslint/crosslint/internal/rule"
	"github.com/crosslint/crosslint/internal/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const testRuleset = `
rules:
  - id: flag-debugger
    languages: [javascript]
    severity: error
    message: remove debugger statement
    patterns:
      - kind: debugger_statement
  - id: flag-print
    languages: [python]
    severity: warning
    message: use logging instead of print
    patterns:
      - kind: call
        child:
          kind: identifier
          text: '^print$'
`

func TestAnalyzeWorkspaceEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules.yaml"), testRuleset)
	writeFile(t, filepath.Join(dir, "src", "app.js"), "debugger;\nconst x = 1;\n")
	writeFile(t, filepath.Join(dir, "src", "script.py"), "print(1)\n")
	writeFile(t, filepath.Join(dir, "src", "clean.js"), "const y = 2;\n")
	writeFile(t, filepath.Join(dir, "README.md"), "not analyzable\n")

	req := domain.AnalyzeRequest{
		Paths:          []string{filepath.Join(dir, "src")},
		RulesetPaths:   []string{filepath.Join(dir, "rules.yaml")},
		NoBuiltinRules: true,
		Recursive:      true,
	}

	response, err := NewAnalyzeUseCase().Execute(context.Background(), req)
	testutil.AssertNoError(t, err)

	report := response.Report
	if report.Summary.TotalFiles != 3 {
		t.Errorf("total files = %d, want 3", report.Summary.TotalFiles)
	}
	if len(report.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(report.Violations), report.Violations)
	}
	// Deterministic order: app.js before script.py
	if report.Violations[0].RuleID != "flag-debugger" {
		t.Errorf("first violation rule = %s", report.Violations[0].RuleID)
	}
	if report.Violations[1].RuleID != "flag-print" {
		t.Errorf("second violation rule = %s", report.Violations[1].RuleID)
	}
	if response.Version == "" || response.GeneratedAt == "" {
		t.Error("response metadata not populated")
	}
}

func TestAnalyzeReportsRuleLoadErrors(t *testing.T) {
	dir := t.TempDir()
	// One valid rule, one with a broken regex
	writeFile(t, filepath.Join(dir, "rules.yaml"), `
rules:
  - id: good-rule
    languages: [javascript]
    severity: error
    message: m
    patterns: [{kind: debugger_statement}]
  - id: bad-rule
    languages: [javascript]
    severity: error
    message: m
    patterns: [{text: '[broken'}]
`)
	writeFile(t, filepath.Join(dir, "app.js"), "debugger;\n")

	req := domain.AnalyzeRequest{
		Paths:          []string{dir},
		RulesetPaths:   []string{filepath.Join(dir, "rules.yaml")},
		NoBuiltinRules: true,
		Recursive:      true,
	}

	response, err := NewAnalyzeUseCase().Execute(context.Background(), req)
	testutil.AssertNoError(t, err)

	// The valid rule still ran
	if len(response.Report.Violations) != 1 {
		t.Errorf("expected 1 violation from the valid rule, got %d", len(response.Report.Violations))
	}
	// The broken rule surfaced as a load error entry
	found := false
	for _, e := range response.Report.Errors {
		if e.Kind == domain.ErrorKindLoad && e.RuleID == "bad-rule" {
			found = true
		}
	}
	if !found {
		t.Errorf("load error for bad-rule not in report: %v", response.Report.Errors)
	}
}

func TestAnalyzeNoFilesIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "nothing analyzable here")

	req := domain.AnalyzeRequest{
		Paths:     []string{dir},
		Recursive: true,
	}

	_, err := NewAnalyzeUseCase().Execute(context.Background(), req)
	if !domain.IsFatal(err) {
		t.Fatalf("expected a fatal error for an empty workspace, got %v", err)
	}
}

func TestAnalyzeNoRulesIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "debugger;\n")

	req := domain.AnalyzeRequest{
		Paths:          []string{dir},
		NoBuiltinRules: true,
		Recursive:      true,
	}

	_, err := NewAnalyzeUseCase().Execute(context.Background(), req)
	if !domain.IsFatal(err) {
		t.Fatalf("expected a fatal error when no rules are loaded, got %v", err)
	}
}

func TestAnalyzeRuleFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rules.yaml"), testRuleset)
	writeFile(t, filepath.Join(dir, "app.js"), "debugger;\n")
	writeFile(t, filepath.Join(dir, "script.py"), "print(1)\n")

	req := domain.AnalyzeRequest{
		Paths:          []string{dir},
		RulesetPaths:   []string{filepath.Join(dir, "rules.yaml")},
		RuleFilter:     []string{"flag-print"},
		NoBuiltinRules: true,
		Recursive:      true,
	}

	response, err := NewAnalyzeUseCase().Execute(context.Background(), req)
	testutil.AssertNoError(t, err)

	if len(response.Report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(response.Report.Violations))
	}
	if response.Report.Violations[0].RuleID != "flag-print" {
		t.Errorf("rule filter not applied: %s", response.Report.Violations[0].RuleID)
	}
}

func TestCollectFilesRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "generated.js\n")
	writeFile(t, filepath.Join(dir, "kept.js"), "const x = 1;\n")
	writeFile(t, filepath.Join(dir, "generated.js"), "const y = 2;\n")
	writeFile(t, filepath.Join(dir, "node_modules", "dep.js"), "module.exports = {};\n")

	files, err := NewFileHelper().CollectFiles(dir, []string{dir}, true,
		nil, []string{"node_modules"}, true)
	testutil.AssertNoError(t, err)

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %v", files)
	}
	if filepath.Base(files[0]) != "kept.js" {
		t.Errorf("kept the wrong file: %s", files[0])
	}
}

func TestCollectFilesIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.js"), "1\n")
	writeFile(t, filepath.Join(dir, "a.test.js"), "1\n")
	writeFile(t, filepath.Join(dir, "b.py"), "1\n")

	files, err := NewFileHelper().CollectFiles(dir, []string{dir}, true,
		[]string{"*.js"}, []string{"*.test.js"}, false)
	testutil.AssertNoError(t, err)

	if len(files) != 1 || filepath.Base(files[0]) != "a.js" {
		t.Errorf("include/exclude filtering wrong: %v", files)
	}
}

func TestFixRoundTrip(t *testing.T) {
	source := "function f() {\n  debugger;\n  return 1;\n}\n"
	req := domain.AnalyzeRequest{
		Files:      []domain.FileContent{{Path: "app.js", Language: "javascript", Source: []byte(source)}},
		RuleFilter: []string{"no-debugger"},
	}

	response, err := NewAnalyzeUseCase().Execute(context.Background(), req)
	testutil.AssertNoError(t, err)

	if len(response.Report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(response.Report.Violations))
	}
	fix := response.Report.Violations[0].Fix
	if fix == nil {
		t.Fatal("no-debugger violation carries no fix")
	}

	// Apply the suggested fix and check the result is still valid source
	fixed := source[:fix.Span.StartByte] + fix.Replacement + source[fix.Span.EndByte:]
	tree, err := parser.Parse(context.Background(), "app.js", []byte(fixed), lang.JavaScript)
	testutil.AssertNoError(t, err)
	if tree.HasErrors {
		t.Fatalf("fixed source does not parse cleanly:\n%s", fixed)
	}

	// The fixed source no longer violates the rule
	req.Files = []domain.FileContent{{Path: "app.js", Language: "javascript", Source: []byte(fixed)}}
	response, err = NewAnalyzeUseCase().Execute(context.Background(), req)
	testutil.AssertNoError(t, err)
	if len(response.Report.Violations) != 0 {
		t.Errorf("fixed source still violates: %v", response.Report.Violations)
	}
}

func TestRuleTestHarnessPassAndFail(t *testing.T) {
	rules := testutil.LoadTestRules(t, `
rules:
  - id: flag-debugger
    languages: [javascript]
    severity: error
    message: remove debugger statement
    patterns:
      - kind: debugger_statement
`)

	fixtures := []domain.FixtureCase{
		{
			Name:     "flags-debugger",
			Rule:     "flag-debugger",
			Language: "javascript",
			Source:   "debugger;\n",
			Expect:   []domain.ExpectedViolation{{Line: 1, Column: 1}},
		},
		{
			Name:     "clean-source",
			Rule:     "flag-debugger",
			Language: "javascript",
			Source:   "const x = 1;\n",
		},
		{
			Name:     "wrong-expectation",
			Rule:     "flag-debugger",
			Language: "javascript",
			Source:   "debugger;\n",
			Expect:   []domain.ExpectedViolation{{Line: 9, Column: 9}},
		},
	}

	reports, err := NewRuleTestUseCase().ExecuteAll(context.Background(), rules, fixtures)
	testutil.AssertNoError(t, err)

	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	report := reports[0]
	if report.Passed != 2 || report.Failed != 1 {
		t.Fatalf("passed=%d failed=%d, want 2/1", report.Passed, report.Failed)
	}

	byName := make(map[string]domain.FixtureResult)
	for _, r := range report.Results {
		byName[r.Name] = r
	}
	if !byName["flags-debugger"].Passed {
		t.Error("matching fixture should pass")
	}
	if !byName["clean-source"].Passed {
		t.Error("fixture with no expectations and no violations should pass")
	}
	failed := byName["wrong-expectation"]
	if failed.Passed {
		t.Fatal("fixture with a wrong expectation should fail")
	}
	if len(failed.Missing) != 1 || failed.Missing[0].Line != 9 {
		t.Errorf("missing = %v", failed.Missing)
	}
	if len(failed.Unexpected) != 1 || failed.Unexpected[0].Span.StartLine != 1 {
		t.Errorf("unexpected = %v", failed.Unexpected)
	}
}

func TestRuleTestUnknownRuleFixture(t *testing.T) {
	rules := []*rule.Rule{}
	fixtures := []domain.FixtureCase{
		{Name: "orphan", Rule: "no-such-rule", Language: "javascript", Source: "x"},
	}

	_, err := NewRuleTestUseCase().ExecuteAll(context.Background(), rules, fixtures)
	testutil.AssertError(t, err)
}

func TestRuleTestEndPositionComparison(t *testing.T) {
	rules := testutil.LoadTestRules(t, `
rules:
  - id: flag-debugger
    languages: [javascript]
    severity: error
    message: m
    patterns:
      - kind: debugger_statement
`)

	report, err := NewRuleTestUseCase().Execute(context.Background(), rules[0], []domain.FixtureCase{
		{
			Name:     "with-end-position",
			Rule:     "flag-debugger",
			Language: "javascript",
			Source:   "debugger;\n",
			Expect: []domain.ExpectedViolation{
				{Line: 1, Column: 1, EndLine: 1, EndCol: 10},
			},
		},
		{
			Name:     "wrong-end-position",
			Rule:     "flag-debugger",
			Language: "javascript",
			Source:   "debugger;\n",
			Expect: []domain.ExpectedViolation{
				{Line: 1, Column: 1, EndLine: 1, EndCol: 4},
			},
		},
	})
	testutil.AssertNoError(t, err)

	if report.Passed != 1 || report.Failed != 1 {
		t.Errorf("passed=%d failed=%d, want 1/1", report.Passed, report.Failed)
	}
}
