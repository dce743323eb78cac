package rule

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
)

// LoadError reports one rule that failed validation. A malformed rule never
// blocks loading of its siblings.
type LoadError struct {
	// Source is the ruleset file the rule came from
	Source string `json:"source"`

	// Index is the rule's position within the file (0-based)
	Index int `json:"index"`

	// RuleID is the offending rule's id, if it had one
	RuleID string `json:"rule_id,omitempty"`

	// Message describes what was wrong
	Message string `json:"message"`
}

// Error implements the error interface
func (e LoadError) Error() string {
	id := e.RuleID
	if id == "" {
		id = fmt.Sprintf("rule #%d", e.Index)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, id, e.Message)
}

// rulesetFile is the YAML document shape of a ruleset file
type rulesetFile struct {
	Rules []yaml.Node `yaml:"rules"`
}

// LoadRuleset loads rule definitions from the given sources. A source is
// a local file or directory, or a registry reference ("org/name") fetched
// over HTTP when no such path exists. Valid rules are returned alongside
// one LoadError per malformed rule. The returned error is fatal (an
// unresolvable source), not a rule problem.
func LoadRuleset(sources []string) ([]*Rule, []LoadError, error) {
	var rules []*Rule
	var loadErrs []LoadError
	seen := make(map[string]string) // id -> source file

	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			// A local path always wins; the registry is only consulted
			// for references that cannot be a file on disk
			if os.IsNotExist(err) && isRegistryRef(source) {
				data, fetchErr := fetchRegistryRuleset(source)
				if fetchErr != nil {
					return nil, nil, domain.NewDomainError(domain.ErrCodeLoad,
						fmt.Sprintf("failed to resolve ruleset %s from the registry", source), fetchErr)
				}
				refRules, refErrs := ParseRuleset(source, data, seen)
				rules = append(rules, refRules...)
				loadErrs = append(loadErrs, refErrs...)
				continue
			}
			return nil, nil, domain.NewDomainError(domain.ErrCodeLoad,
				fmt.Sprintf("ruleset source %s is not readable", source), err)
		}

		var files []string
		if info.IsDir() {
			entries, err := os.ReadDir(source)
			if err != nil {
				return nil, nil, domain.NewDomainError(domain.ErrCodeLoad,
					fmt.Sprintf("ruleset directory %s is not readable", source), err)
			}
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || !isRulesetFile(name) {
					continue
				}
				files = append(files, filepath.Join(source, name))
			}
			// Deterministic load order
			sort.Strings(files)
		} else {
			files = []string{source}
		}

		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, nil, domain.NewDomainError(domain.ErrCodeLoad,
					fmt.Sprintf("failed to read ruleset file %s", file), err)
			}
			fileRules, fileErrs := ParseRuleset(file, data, seen)
			rules = append(rules, fileRules...)
			loadErrs = append(loadErrs, fileErrs...)
		}
	}

	return rules, loadErrs, nil
}

// ParseRuleset parses one ruleset document. seen tracks rule ids across
// files for cross-file uniqueness; pass nil for a standalone document.
func ParseRuleset(source string, data []byte, seen map[string]string) ([]*Rule, []LoadError) {
	if seen == nil {
		seen = make(map[string]string)
	}

	var doc rulesetFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []LoadError{{Source: source, Index: 0, Message: fmt.Sprintf("invalid YAML: %v", err)}}
	}

	var rules []*Rule
	var loadErrs []LoadError
	for i, raw := range doc.Rules {
		var r Rule
		if err := raw.Decode(&r); err != nil {
			loadErrs = append(loadErrs, LoadError{
				Source: source, Index: i,
				Message: fmt.Sprintf("invalid rule definition: %v", err),
			})
			continue
		}
		if err := validate(&r); err != nil {
			loadErrs = append(loadErrs, LoadError{
				Source: source, Index: i, RuleID: r.ID, Message: err.Error(),
			})
			continue
		}
		if prev, dup := seen[r.ID]; dup {
			loadErrs = append(loadErrs, LoadError{
				Source: source, Index: i, RuleID: r.ID,
				Message: fmt.Sprintf("duplicate rule id (first defined in %s)", prev),
			})
			continue
		}
		seen[r.ID] = source
		rules = append(rules, &r)
	}
	return rules, loadErrs
}

// validate enforces the rule invariants: non-empty id, at least one clause,
// a recognized non-empty language set, compilable regexes, and template
// capture references that exist in the patterns.
func validate(r *Rule) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("missing id")
	}
	if len(r.Patterns) == 0 {
		return fmt.Errorf("rule must declare at least one pattern clause")
	}
	if len(r.Languages) == 0 {
		return fmt.Errorf("rule must declare at least one language")
	}
	for _, l := range r.Languages {
		if _, ok := lang.FromTag(string(l)); !ok {
			return fmt.Errorf("unknown language %q", l)
		}
	}
	if _, ok := domain.ParseSeverity(string(r.Severity)); !ok {
		return fmt.Errorf("unknown severity %q", r.Severity)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("missing message")
	}

	for i, p := range r.Patterns {
		if err := validatePattern(p); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
	}

	captures := r.Captures()
	for _, name := range placeholders(r.Message) {
		if !captures[name] {
			return fmt.Errorf("message references undeclared capture %q", name)
		}
	}
	if r.Fix != nil {
		if r.Fix.Capture == "" {
			return fmt.Errorf("fix must name a capture")
		}
		if !captures[r.Fix.Capture] {
			return fmt.Errorf("fix references undeclared capture %q", r.Fix.Capture)
		}
		for _, name := range placeholders(r.Fix.Template) {
			if !captures[name] {
				return fmt.Errorf("fix template references undeclared capture %q", name)
			}
		}
	}
	return nil
}

func validatePattern(p *Pattern) error {
	if p == nil {
		return fmt.Errorf("empty pattern")
	}
	if p.Kind == "" && p.Text == "" && p.Has == nil && p.Child == nil &&
		p.Inside == nil && p.Not == nil && len(p.All) == 0 && len(p.Any) == 0 {
		return fmt.Errorf("pattern has no conditions")
	}
	if p.Text != "" {
		if _, err := regexp.Compile(p.Text); err != nil {
			return fmt.Errorf("invalid text regex %q: %v", p.Text, err)
		}
	}
	for _, sub := range []*Pattern{p.Has, p.Child, p.Inside, p.Not} {
		if sub != nil {
			if err := validatePattern(sub); err != nil {
				return err
			}
		}
	}
	for _, sub := range append(append([]*Pattern{}, p.All...), p.Any...) {
		if err := validatePattern(sub); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns the rules whose ids are in keep; an empty keep returns
// everything unchanged.
func Filter(rules []*Rule, keep []string) []*Rule {
	if len(keep) == 0 {
		return rules
	}
	want := make(map[string]bool, len(keep))
	for _, id := range keep {
		want[id] = true
	}
	filtered := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if want[r.ID] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func isRulesetFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
