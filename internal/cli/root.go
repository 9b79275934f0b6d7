// Package cli implements the playbook command surface: file validation,
// inheritance resolution, pre-creation cycle checks, and listing. The
// engine itself lives under internal/inherit and internal/playbook; the
// CLI is a thin collaborator around it.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kestrelworks/playbook/internal/config"
	"github.com/kestrelworks/playbook/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "playbook",
	Short: "Compose and resolve reusable workflow playbooks",
	Long: `playbook validates workflow playbook definitions, resolves their
inheritance graphs into merged views, and checks proposed extends lists
for cycles before anything is persisted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.NoColor {
			color.NoColor = true
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a project config file")
	rootCmd.PersistentFlags().String("dir", "", "directory of playbook files (overrides config)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

// Execute runs the root command. Errors are printed here so main stays a
// one-liner; the returned error only signals the exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		errors.PrintErrorStderr(err)
	}
	return err
}

// loadConfig loads the layered configuration and applies flag overrides,
// which outrank every other source.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithOptions(config.LoadOptions{ProjectConfigPath: configPath})
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Dir = dir
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.NoColor = true
	}
	return cfg, nil
}
