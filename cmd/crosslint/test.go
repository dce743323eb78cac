package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/crosslint/crosslint/app"
	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/rule"
	"github.com/crosslint/crosslint/service"
)

var (
	testRulesets  []string
	testNoBuiltin bool
	testRuleID    string
	testJSON      bool
)

func testCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [fixture-file...]",
		Short: "Test rules against fixtures with expected violations",
		Long: `Run rule fixtures through the production analysis path and diff the
produced violations against each fixture's expected set.

Examples:
  crosslint test fixtures/
  crosslint test --ruleset rules/ fixtures/no_empty_catch.yaml
  crosslint test --rule no-empty-catch fixtures/`,
		RunE: runTest,
	}

	cmd.Flags().StringSliceVarP(&testRulesets, "ruleset", "r", nil,
		"Ruleset files or directories (repeatable)")
	cmd.Flags().BoolVar(&testNoBuiltin, "no-builtin", false,
		"Disable the embedded default ruleset")
	cmd.Flags().StringVar(&testRuleID, "rule", "",
		"Only test the given rule id")
	cmd.Flags().BoolVar(&testJSON, "json", false,
		"Output results as JSON")

	return cmd
}

func runTest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no fixture files specified")
	}

	var rules []*rule.Rule
	if !testNoBuiltin {
		builtin, err := rule.LoadBuiltinRules()
		if err != nil {
			return err
		}
		rules = builtin
	}
	loaded, loadErrs, err := rule.LoadRuleset(testRulesets)
	if err != nil {
		return err
	}
	for _, le := range loadErrs {
		fmt.Fprintf(os.Stderr, "warning: skipping invalid rule: %s\n", le.Error())
	}
	rules = append(rules, loaded...)
	if testRuleID != "" {
		rules = rule.Filter(rules, []string{testRuleID})
		if len(rules) == 0 {
			return fmt.Errorf("rule %q not found", testRuleID)
		}
	}

	var fixtures []domain.FixtureCase
	for _, arg := range args {
		cases, err := rule.LoadFixtures(arg)
		if err != nil {
			return err
		}
		fixtures = append(fixtures, cases...)
	}
	if testRuleID != "" {
		kept := fixtures[:0]
		for _, f := range fixtures {
			if f.Rule == testRuleID {
				kept = append(kept, f)
			}
		}
		fixtures = kept
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	useCase := app.NewRuleTestUseCase()
	reports, err := useCase.ExecuteAll(ctx, rules, fixtures)
	if err != nil {
		return err
	}

	format := domain.OutputFormatText
	if testJSON {
		format = domain.OutputFormatJSON
	}
	formatter := service.NewOutputFormatter()
	failed := 0
	for _, report := range reports {
		if err := formatter.WriteTestReport(report, format, os.Stdout); err != nil {
			return err
		}
		failed += report.Failed
	}

	if failed > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
