package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crosslint/crosslint/internal/version"
)

// ExitError carries a specific process exit code out of a command
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "crosslint",
		Short: "crosslint - multi-language static analyzer",
		Long: `crosslint is a rule-based static analyzer for many languages.
It parses source files with tree-sitter grammars, evaluates declarative
YAML rules against the syntax trees, and reports located violations.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			// Output was already printed; only the exit code matters here
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("crosslint version %s\n", version.GetVersion())
			}
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
