package domain

// ExpectedViolation identifies an expected finding by position. EndLine and
// EndCol are optional; zero values mean "do not compare".
type ExpectedViolation struct {
	Line    int `json:"line" yaml:"line"`
	Column  int `json:"column" yaml:"column"`
	EndLine int `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol  int `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}

// FixtureCase is a test input paired with its expected violations, used to
// validate a rule's correctness against the production analysis path.
type FixtureCase struct {
	// Name identifies the fixture in reports
	Name string `json:"name" yaml:"name"`

	// Rule is the rule id under test
	Rule string `json:"rule" yaml:"rule"`

	// Language is the language tag of the snippet
	Language string `json:"language" yaml:"language"`

	// Source is the code snippet to analyze
	Source string `json:"source" yaml:"source"`

	// Expect is the expected violation set, by position
	Expect []ExpectedViolation `json:"expect" yaml:"expect"`
}

// FixtureResult is the outcome of running one fixture
type FixtureResult struct {
	Name string `json:"name"`

	Passed bool `json:"passed"`

	// Missing are expected violations the engine did not produce
	Missing []ExpectedViolation `json:"missing,omitempty"`

	// Unexpected are produced violations the fixture did not expect
	Unexpected []Violation `json:"unexpected,omitempty"`

	// Error records a fixture that failed to run at all
	Error string `json:"error,omitempty"`
}

// TestReport aggregates fixture results for one rule
type TestReport struct {
	RuleID      string          `json:"rule_id"`
	Results     []FixtureResult `json:"results"`
	Passed      int             `json:"passed"`
	Failed      int             `json:"failed"`
	GeneratedAt string          `json:"generated_at"`
	Version     string          `json:"version"`
}
