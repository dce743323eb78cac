package rule

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// DefaultRegistryBaseURL is the ruleset registry endpoint. A registry
// reference "org/name" resolves to <base>/org/name, which serves the
// ruleset as a YAML document.
const DefaultRegistryBaseURL = "https://api.crosslint.dev/v1/rulesets"

const (
	registryEnvVar      = "CROSSLINT_REGISTRY"
	registryTokenEnvVar = "CROSSLINT_REGISTRY_TOKEN"
)

// registryRefRe matches registry reference slugs like "python-security"
// or "team/python-security". Anything with a path separator beyond one
// level, an extension, or uppercase is treated as a local path instead.
var registryRefRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*(/[a-z0-9][a-z0-9._-]*)?$`)

// isRegistryRef reports whether a ruleset source that does not exist on
// disk should be resolved against the registry.
func isRegistryRef(source string) bool {
	return !isRulesetFile(source) && registryRefRe.MatchString(source)
}

func registryBaseURL() string {
	if v := os.Getenv(registryEnvVar); v != "" {
		return strings.TrimSuffix(v, "/")
	}
	return DefaultRegistryBaseURL
}

var registryClient = &http.Client{Timeout: 30 * time.Second}

// fetchRegistryRuleset downloads one ruleset document by reference. The
// response body is a regular ruleset YAML document and goes through the
// same ParseRuleset validation as a local file.
func fetchRegistryRuleset(ref string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", registryBaseURL(), ref)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml")
	// Anonymous access works for public rulesets; a token is only
	// attached when configured
	if token := os.Getenv(registryTokenEnvVar); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := registryClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error querying ruleset registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %s for ruleset %q", resp.Status, ref)
	}
	return io.ReadAll(resp.Body)
}
