package config

// GetMinimalConfigTemplate returns a config template with the options most
// projects touch.
func GetMinimalConfigTemplate() string {
	return `# crosslint configuration
rules:
  paths: []        # extra ruleset files or directories

files:
  respect_gitignore: true
  recursive: true
  exclude_patterns:
    - node_modules
    - vendor
    - dist

output:
  format: text
  fail_on: error   # exit non-zero on violations at or above this severity
`
}

// GetFullConfigTemplate returns a fully documented config template
func GetFullConfigTemplate() string {
	return `# crosslint configuration
# Values shown are the defaults.

analysis:
  # Worker pool size; 0 uses every available CPU.
  concurrency: 0
  # Upper bound for one (file, rule) evaluation, in seconds.
  unit_timeout_seconds: 10
  # Upper bound for the whole run, in seconds; 0 disables the limit.
  total_timeout_seconds: 0
  # Pattern evaluation step budget per (file, rule).
  step_budget: 500000

rules:
  # Ruleset files or directories loaded in addition to the builtin rules.
  paths: []
  # Restrict the run to specific rule ids.
  only: []
  # Disable the embedded default ruleset.
  no_builtin: false

files:
  # Glob patterns applied to collected file paths.
  include_patterns: []
  exclude_patterns:
    - node_modules
    - vendor
    - .git
    - dist
    - build
  # Honor .gitignore entries when scanning the workspace.
  respect_gitignore: true
  recursive: true

output:
  # text or json
  format: text
  # Write the report to a file instead of stdout.
  path: ""
  # Exit non-zero when a violation at or above this severity is found.
  fail_on: ""
`
}
