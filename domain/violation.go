package domain

import "fmt"

// Severity represents how serious a rule violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
)

// ParseSeverity converts a string to a Severity
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityNotice:
		return Severity(s), true
	}
	return "", false
}

// Rank returns a numeric order for severity comparison (error is highest)
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityNotice:
		return 1
	}
	return 0
}

// Span locates a source region. Lines and columns are 1-based; byte
// offsets are 0-based and half-open.
type Span struct {
	StartByte uint32 `json:"start_byte" yaml:"start_byte"`
	EndByte   uint32 `json:"end_byte" yaml:"end_byte"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	StartCol  int    `json:"start_col" yaml:"start_col"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	EndCol    int    `json:"end_col" yaml:"end_col"`
}

// String returns a compact line:col representation
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// FixSuggestion is a suggested replacement for a violating region.
// Applying it is the caller's responsibility.
type FixSuggestion struct {
	Span        Span   `json:"span"`
	Replacement string `json:"replacement"`
}

// Violation is one located, rule-attributed finding in analyzed source
type Violation struct {
	// RuleID is the id of the rule that produced this finding
	RuleID string `json:"rule_id"`

	// Path is the workspace-relative path of the analyzed file
	Path string `json:"path"`

	// Span is the primary source region of the finding
	Span Span `json:"span"`

	// Severity comes verbatim from the rule definition
	Severity Severity `json:"severity"`

	// Message is the rule's message template rendered with captures
	Message string `json:"message"`

	// Fix is an optional suggested replacement
	Fix *FixSuggestion `json:"fix,omitempty"`

	// Fingerprint is a stable identity over (rule, path, span, matched text),
	// used for deduplication and cross-run diffing
	Fingerprint string `json:"fingerprint"`
}

// String returns a human-readable one-line representation
func (v Violation) String() string {
	return fmt.Sprintf("%s:%d:%d [%s] %s (%s)",
		v.Path, v.Span.StartLine, v.Span.StartCol, v.Severity, v.Message, v.RuleID)
}
