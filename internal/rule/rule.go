// Package rule defines the rule model and the ruleset loader. Rules are
// pure data interpreted by the matching engine; nothing here executes
// per-rule logic.
package rule

import (
	"regexp"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
)

// Pattern is one node-level condition in a rule clause. Conditions on the
// node itself (Kind, Text) combine with relational conditions (Has, Child,
// Inside), the Not guard, and the All/Any composites. All populated fields
// must hold for the pattern to match a node.
type Pattern struct {
	// Kind matches the node's grammar tag; empty matches any node
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Text is a regular expression applied to the node's source text
	Text string `yaml:"text,omitempty" json:"text,omitempty"`

	// Capture names the matched node for message/fix rendering
	Capture string `yaml:"capture,omitempty" json:"capture,omitempty"`

	// Has requires some descendant to match
	Has *Pattern `yaml:"has,omitempty" json:"has,omitempty"`

	// Child requires a direct child to match
	Child *Pattern `yaml:"child,omitempty" json:"child,omitempty"`

	// Inside requires some ancestor to match
	Inside *Pattern `yaml:"inside,omitempty" json:"inside,omitempty"`

	// Not is a guard: no descendant may match
	Not *Pattern `yaml:"not,omitempty" json:"not,omitempty"`

	// All requires every sub-pattern to hold at this node
	All []*Pattern `yaml:"all,omitempty" json:"all,omitempty"`

	// Any requires at least one sub-pattern to hold at this node
	Any []*Pattern `yaml:"any,omitempty" json:"any,omitempty"`
}

// Fix is a suggested-replacement template. The captured node's span is
// replaced by the rendered template.
type Fix struct {
	Capture  string `yaml:"capture" json:"capture"`
	Template string `yaml:"template" json:"template"`
}

// Rule is one validated, immutable rule definition
type Rule struct {
	// ID is unique and stable within a loaded ruleset
	ID string `yaml:"id" json:"id"`

	// Languages the rule applies to
	Languages []lang.Language `yaml:"languages" json:"languages"`

	// Severity comes verbatim from the definition, never inferred
	Severity domain.Severity `yaml:"severity" json:"severity"`

	// Category groups rules for reporting (e.g. "best-practices")
	Category string `yaml:"category,omitempty" json:"category,omitempty"`

	// Description documents the rule for listings and exports
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Message is the violation message template; {{name}} placeholders
	// are filled from capture bindings
	Message string `yaml:"message" json:"message"`

	// Patterns are the match clauses; a rule's matches are the union of
	// every clause's matches
	Patterns []*Pattern `yaml:"patterns" json:"patterns"`

	// Fix is an optional suggested-fix template
	Fix *Fix `yaml:"fix,omitempty" json:"fix,omitempty"`
}

// AppliesTo reports whether the rule targets the given language
func (r *Rule) AppliesTo(l lang.Language) bool {
	for _, rl := range r.Languages {
		if rl == l {
			return true
		}
	}
	return false
}

// Captures returns every capture name declared in the rule's patterns.
// Names under Not guards are excluded: guards never bind.
func (r *Rule) Captures() map[string]bool {
	names := make(map[string]bool)
	for _, p := range r.Patterns {
		collectCaptures(p, names)
	}
	return names
}

func collectCaptures(p *Pattern, names map[string]bool) {
	if p == nil {
		return
	}
	if p.Capture != "" {
		names[p.Capture] = true
	}
	collectCaptures(p.Has, names)
	collectCaptures(p.Child, names)
	collectCaptures(p.Inside, names)
	for _, sub := range p.All {
		collectCaptures(sub, names)
	}
	for _, sub := range p.Any {
		collectCaptures(sub, names)
	}
}

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_-]*)\}\}`)

// placeholders extracts {{name}} references from a template string
func placeholders(template string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}
