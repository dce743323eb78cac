package service

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/rule"
	"github.com/crosslint/crosslint/internal/version"
)

// RulesetExport is the serialized form of a loaded ruleset. Field names
// are stable across minor versions.
type RulesetExport struct {
	Version string       `json:"version" yaml:"version"`
	Rules   []*rule.Rule `json:"rules" yaml:"rules"`
}

// RulesetExporter serializes validated rule definitions for packaging
type RulesetExporter struct{}

// NewRulesetExporter creates a new ruleset exporter
func NewRulesetExporter() *RulesetExporter {
	return &RulesetExporter{}
}

// Export writes the ruleset in the given format. Only rules that passed
// loader validation reach this point, so the output is always loadable.
func (e *RulesetExporter) Export(rules []*rule.Rule, format domain.OutputFormat, w io.Writer) error {
	doc := RulesetExport{
		Version: version.GetVersion(),
		Rules:   rules,
	}
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(w, doc)
	case domain.OutputFormatText:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}
