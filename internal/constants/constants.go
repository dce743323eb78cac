package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "crosslint"

	// ConfigFileName is the default config file name
	ConfigFileName = ".crosslint.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "CROSSLINT"
)

// Output format constants
const (
	OutputFormatText  = "text"
	OutputFormatJSON  = "json"
	OutputFormatSARIF = "sarif"
)

// Analysis defaults
const (
	// DefaultStepBudget bounds the number of node/pattern tests one
	// (file, rule) evaluation may perform before it is cut off.
	DefaultStepBudget = 500000

	// DefaultUnitTimeoutSeconds bounds a single (file, rule) evaluation.
	DefaultUnitTimeoutSeconds = 10

	// DefaultTotalTimeoutSeconds bounds the whole run. Zero means no limit.
	DefaultTotalTimeoutSeconds = 0
)
