package rule

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadBuiltinRules loads the ruleset embedded in the binary. The embedded
// definitions are validated at startup like any other ruleset; a defect in
// them is a build problem, so validation failures are returned as an error.
func LoadBuiltinRules() ([]*Rule, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin rules: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var rules []*Rule
	seen := make(map[string]string)
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin rules: %w", err)
		}
		fileRules, loadErrs := ParseRuleset("builtin/"+entry.Name(), data, seen)
		if len(loadErrs) > 0 {
			return nil, fmt.Errorf("invalid builtin rule: %s", loadErrs[0].Error())
		}
		rules = append(rules, fileRules...)
	}
	return rules, nil
}
