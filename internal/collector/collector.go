// Package collector converts pattern matches into Violation records:
// message rendering, fix synthesis, fingerprint deduplication, and the
// deterministic ordering the report contract requires.
package collector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/matcher"
	"github.com/crosslint/crosslint/internal/parser"
	"github.com/crosslint/crosslint/internal/rule"
)

// Collect converts the matches of one (file, rule) evaluation into
// violations. Identical fingerprints within the file collapse to a single
// violation, so overlapping clauses cannot double-report.
func Collect(r *rule.Rule, tree *parser.Tree, matches []matcher.Match) []domain.Violation {
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	violations := make([]domain.Violation, 0, len(matches))
	for _, m := range matches {
		matched := tree.NodeText(m.Node)
		fp := Fingerprint(r.ID, tree.Path, m.Node.Span, matched)
		if seen[fp] {
			continue
		}
		seen[fp] = true

		v := domain.Violation{
			RuleID:      r.ID,
			Path:        tree.Path,
			Span:        m.Node.Span,
			Severity:    r.Severity,
			Message:     render(r.Message, m.Bindings, tree),
			Fingerprint: fp,
		}
		if r.Fix != nil {
			if target, ok := m.Bindings[r.Fix.Capture]; ok {
				v.Fix = &domain.FixSuggestion{
					Span:        target.Span,
					Replacement: render(r.Fix.Template, m.Bindings, tree),
				}
			}
		}
		violations = append(violations, v)
	}

	Sort(violations)
	return violations
}

// Fingerprint computes the stable identity of a finding from rule id,
// file path, span, and matched text. Stable across runs and builds.
func Fingerprint(ruleID, path string, span domain.Span, matched string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d:%d|", ruleID, path, span.StartByte, span.EndByte)
	h.Write([]byte(matched))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Sort orders violations by file path, then span start, then rule id.
// Every run of the same inputs yields the same sequence.
func Sort(violations []domain.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Span.StartByte != b.Span.StartByte {
			return a.Span.StartByte < b.Span.StartByte
		}
		return a.RuleID < b.RuleID
	})
}

// render substitutes {{name}} placeholders with the captured node text.
// Placeholders without a binding (a capture under an unmatched Any branch)
// are left as written.
func render(template string, bindings map[string]*parser.Node, tree *parser.Tree) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	out := template
	for name, node := range bindings {
		out = strings.ReplaceAll(out, "{{"+name+"}}", tree.NodeText(node))
	}
	return out
}
