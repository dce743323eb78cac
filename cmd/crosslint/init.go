package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/crosslint/crosslint/internal/config"
	"github.com/crosslint/crosslint/internal/constants"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a crosslint configuration file",
		Long: `Generate a documented crosslint configuration file with sensible defaults.

Examples:
  # Create .crosslint.yaml in the current directory
  crosslint init

  # Custom output path
  crosslint init --config custom.yaml

  # Generate smaller config with essential options only
  crosslint init --minimal

  # Interactive setup wizard
  crosslint init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if interactive {
		var err error
		configPath, minimal, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate()
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}

func runInteractiveSetup(defaultPath string) (string, bool, error) {
	pathPrompt := promptui.Prompt{
		Label:   "Config file path",
		Default: defaultPath,
	}
	configPath, err := pathPrompt.Run()
	if err != nil {
		return "", false, fmt.Errorf("setup cancelled: %w", err)
	}

	templatePrompt := promptui.Select{
		Label: "Config template",
		Items: []string{
			"full (all options, documented)",
			"minimal (essential options only)",
		},
	}
	idx, _, err := templatePrompt.Run()
	if err != nil {
		return "", false, fmt.Errorf("setup cancelled: %w", err)
	}

	return configPath, idx == 1, nil
}
