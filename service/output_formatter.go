package service

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/crosslint/crosslint/domain"
)

// OutputFormatterImpl renders analysis and test reports as text or JSON
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	noticeColor  = color.New(color.FgCyan)
	pathColor    = color.New(color.Bold)
)

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityError:
		return errorColor
	case domain.SeverityWarning:
		return warningColor
	default:
		return noticeColor
	}
}

// Write renders the analysis response in the given format
func (f *OutputFormatterImpl) Write(response *domain.AnalyzeResponse, format domain.OutputFormat, w io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(w, response)
	case domain.OutputFormatSARIF:
		return f.writeSARIF(response, w)
	case domain.OutputFormatText:
		return f.writeText(response, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (f *OutputFormatterImpl) writeText(response *domain.AnalyzeResponse, w io.Writer) error {
	report := response.Report

	lastPath := ""
	for _, v := range report.Violations {
		if v.Path != lastPath {
			if lastPath != "" {
				fmt.Fprintln(w)
			}
			pathColor.Fprintln(w, v.Path)
			lastPath = v.Path
		}
		fmt.Fprintf(w, "  %d:%d  %s  %s  %s\n",
			v.Span.StartLine, v.Span.StartCol,
			severityColor(v.Severity).Sprint(v.Severity),
			v.Message, v.RuleID)
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d error(s) during analysis:\n", len(report.Errors))
		for _, e := range report.Errors {
			target := e.Path
			if e.RuleID != "" {
				target = fmt.Sprintf("%s (rule %s)", target, e.RuleID)
			}
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Kind, target, e.Message)
		}
	}

	fmt.Fprintln(w)
	s := report.Summary
	fmt.Fprintf(w, "%d file(s) analyzed, %d failed, %d violation(s) (%d error, %d warning, %d notice) in %dms\n",
		s.AnalyzedFiles, s.FailedFiles, s.TotalViolations,
		s.ErrorCount, s.WarningCount, s.NoticeCount, response.DurationMs)
	if report.Cancelled {
		fmt.Fprintln(w, "run was cancelled before completion; results are partial")
	}
	return nil
}

// WriteTestReport renders a rule test report in the given format
func (f *OutputFormatterImpl) WriteTestReport(report *domain.TestReport, format domain.OutputFormat, w io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(w, report)
	case domain.OutputFormatText:
		return f.writeTestText(report, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (f *OutputFormatterImpl) writeTestText(report *domain.TestReport, w io.Writer) error {
	pathColor.Fprintf(w, "rule %s\n", report.RuleID)
	for _, r := range report.Results {
		if r.Passed {
			fmt.Fprintf(w, "  PASS %s\n", r.Name)
			continue
		}
		errorColor.Fprintf(w, "  FAIL %s\n", r.Name)
		if r.Error != "" {
			fmt.Fprintf(w, "       error: %s\n", r.Error)
		}
		for _, m := range r.Missing {
			fmt.Fprintf(w, "       missing expected violation at %d:%d\n", m.Line, m.Column)
		}
		for _, u := range r.Unexpected {
			fmt.Fprintf(w, "       unexpected violation at %d:%d: %s\n",
				u.Span.StartLine, u.Span.StartCol, u.Message)
		}
	}
	fmt.Fprintf(w, "%d/%d fixtures passed\n", report.Passed, report.Passed+report.Failed)
	return nil
}
