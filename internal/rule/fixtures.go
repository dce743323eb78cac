package rule

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crosslint/crosslint/domain"
)

// fixtureFile is the YAML document shape of a fixture file
type fixtureFile struct {
	Fixtures []domain.FixtureCase `yaml:"fixtures"`
}

// LoadFixtures loads fixture cases from a YAML file or a directory of
// YAML files.
func LoadFixtures(source string) ([]domain.FixtureCase, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, domain.NewConfigError(
			fmt.Sprintf("fixture source %s is not readable", source), err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(source)
		if err != nil {
			return nil, domain.NewConfigError(
				fmt.Sprintf("fixture directory %s is not readable", source), err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isRulesetFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(source, entry.Name()))
		}
		sort.Strings(files)
	} else {
		files = []string{source}
	}

	var fixtures []domain.FixtureCase
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, domain.NewConfigError(
				fmt.Sprintf("failed to read fixture file %s", file), err)
		}
		var doc fixtureFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, domain.NewConfigError(
				fmt.Sprintf("invalid fixture YAML in %s", file), err)
		}
		for i, f := range doc.Fixtures {
			if strings.TrimSpace(f.Rule) == "" {
				return nil, domain.NewConfigError(
					fmt.Sprintf("%s: fixture #%d is missing a rule id", file, i), nil)
			}
			if f.Name == "" {
				f.Name = fmt.Sprintf("%s-%d", f.Rule, i)
			}
			fixtures = append(fixtures, f)
		}
	}
	return fixtures, nil
}
