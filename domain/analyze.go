package domain

import (
	"io"
	"time"
)

// OutputFormat represents the output format for reports
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatSARIF OutputFormat = "sarif"
)

// SortMode controls the ordering of violations in the final report
type SortMode string

const (
	// SortDeterministic orders by (path, span start, rule id). Default;
	// required for reproducible CI output and fixture comparison.
	SortDeterministic SortMode = "deterministic"

	// SortArrival keeps unit completion order
	SortArrival SortMode = "arrival"
)

// ErrorKind classifies a recoverable per-unit failure
type ErrorKind string

const (
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindLoad       ErrorKind = "load"
	ErrorKindEvaluation ErrorKind = "evaluation"
	ErrorKindTimeout    ErrorKind = "timeout"
)

// AnalysisError is a structured per-file or per-(file, rule) error record.
// Errors never abort sibling units; they accumulate here.
type AnalysisError struct {
	Kind    ErrorKind `json:"kind"`
	Path    string    `json:"path,omitempty"`
	RuleID  string    `json:"rule_id,omitempty"`
	Message string    `json:"message"`
}

// FileContent is an input file, either read from disk or supplied in-memory
// (server requests and rule fixtures use the in-memory form).
type FileContent struct {
	// Path is the workspace-relative path
	Path string `json:"path"`

	// Language is the language tag; empty means detect from extension
	Language string `json:"language,omitempty"`

	// Source is the raw content; nil means read Path from disk
	Source []byte `json:"source,omitempty"`
}

// RuleInfo describes one rule that participated in a run, for report
// consumers that need rule metadata (SARIF reporting descriptors)
type RuleInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Severity    Severity `json:"severity"`
}

// FileSummary records per-file facts in the report
type FileSummary struct {
	Path       string `json:"path"`
	Language   string `json:"language"`
	SHA256     string `json:"sha256"`
	Violations int    `json:"violations"`
}

// AnalysisSummary provides aggregate statistics for one run
type AnalysisSummary struct {
	TotalFiles      int `json:"total_files"`
	AnalyzedFiles   int `json:"analyzed_files"`
	FailedFiles     int `json:"failed_files"`
	RulesLoaded     int `json:"rules_loaded"`
	TotalViolations int `json:"total_violations"`
	ErrorCount      int `json:"error_count"`
	WarningCount    int `json:"warning_count"`
	NoticeCount     int `json:"notice_count"`
}

// AnalysisReport is the aggregated result of one analysis run. Built once
// by the orchestrator; read-only thereafter.
type AnalysisReport struct {
	Violations []Violation     `json:"violations"`
	Errors     []AnalysisError `json:"errors,omitempty"`
	Files      []FileSummary   `json:"files"`
	Rules      []RuleInfo      `json:"rules,omitempty"`
	Summary    AnalysisSummary `json:"summary"`

	// Cancelled marks a run cut short by the caller; the report reflects
	// only completed units.
	Cancelled bool `json:"cancelled,omitempty"`
}

// AnalyzeRequest represents a request for an analysis run
type AnalyzeRequest struct {
	// WorkspaceRoot anchors relative paths in the report
	WorkspaceRoot string `json:"workspace_root,omitempty"`

	// Paths are files or directories to analyze from disk
	Paths []string `json:"paths,omitempty"`

	// Files are in-memory inputs, analyzed alongside Paths
	Files []FileContent `json:"files,omitempty"`

	// RulesetPaths are rule files or directories to load
	RulesetPaths []string `json:"ruleset_paths,omitempty"`

	// RuleFilter restricts the run to the named rule ids (empty = all)
	RuleFilter []string `json:"rule_filter,omitempty"`

	// NoBuiltinRules disables the embedded default ruleset
	NoBuiltinRules bool `json:"no_builtin_rules,omitempty"`

	// File collection options
	Recursive        bool     `json:"recursive,omitempty"`
	IncludePatterns  []string `json:"include_patterns,omitempty"`
	ExcludePatterns  []string `json:"exclude_patterns,omitempty"`
	RespectGitignore bool     `json:"respect_gitignore,omitempty"`

	// Execution options
	Concurrency  int           `json:"concurrency,omitempty"`
	UnitTimeout  time.Duration `json:"-"`
	TotalTimeout time.Duration `json:"-"`
	StepBudget   int           `json:"step_budget,omitempty"`
	SortMode     SortMode      `json:"sort_mode,omitempty"`
}

// AnalyzeResponse wraps the report with run metadata for serialization
type AnalyzeResponse struct {
	Report      *AnalysisReport `json:"report"`
	GeneratedAt string          `json:"generated_at"`
	DurationMs  int64           `json:"duration_ms"`
	Version     string          `json:"version"`
}

// ReportWriter destinations are owned by callers (CLI, server)
type ReportWriter interface {
	Write(response *AnalyzeResponse, format OutputFormat, w io.Writer) error
}
