package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
	"github.com/crosslint/crosslint/internal/rule"
	"github.com/crosslint/crosslint/service"
)

var (
	rulesRulesets  []string
	rulesNoBuiltin bool
	rulesFormat    string
	rulesOutput    string
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and export loaded rulesets",
	}

	cmd.PersistentFlags().StringSliceVarP(&rulesRulesets, "ruleset", "r", nil,
		"Ruleset files or directories (repeatable)")
	cmd.PersistentFlags().BoolVar(&rulesNoBuiltin, "no-builtin", false,
		"Disable the embedded default ruleset")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded rules",
		RunE:  runRulesList,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the loaded ruleset as YAML or JSON",
		RunE:  runRulesExport,
	}
	exportCmd.Flags().StringVarP(&rulesFormat, "format", "f", "yaml",
		"Export format: yaml, json")
	exportCmd.Flags().StringVarP(&rulesOutput, "output", "o", "",
		"Write the export to a file instead of stdout")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(exportCmd)
	return cmd
}

func loadAllRules() ([]*rule.Rule, error) {
	var rules []*rule.Rule
	if !rulesNoBuiltin {
		builtin, err := rule.LoadBuiltinRules()
		if err != nil {
			return nil, err
		}
		rules = builtin
	}
	loaded, loadErrs, err := rule.LoadRuleset(rulesRulesets)
	if err != nil {
		return nil, err
	}
	for _, le := range loadErrs {
		fmt.Fprintf(os.Stderr, "warning: skipping invalid rule: %s\n", le.Error())
	}
	return append(rules, loaded...), nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	rules, err := loadAllRules()
	if err != nil {
		return err
	}
	for _, r := range rules {
		langs := make([]string, len(r.Languages))
		for i, l := range r.Languages {
			langs[i] = l.String()
		}
		fmt.Printf("%-24s %-8s %-32s %s\n", r.ID, r.Severity,
			strings.Join(langs, ","), r.Description)
	}
	fmt.Printf("\n%d rule(s) across %d supported language(s)\n", len(rules), len(lang.All()))
	return nil
}

func runRulesExport(cmd *cobra.Command, args []string) error {
	rules, err := loadAllRules()
	if err != nil {
		return err
	}

	format := domain.OutputFormatText
	if rulesFormat == "json" {
		format = domain.OutputFormatJSON
	}

	var writer io.Writer = os.Stdout
	if rulesOutput != "" {
		file, err := os.Create(rulesOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	return service.NewRulesetExporter().Export(rules, format, writer)
}
