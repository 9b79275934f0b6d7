package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List playbooks visible to the configured loader",
	Example: `  # List playbooks in the configured directory
  playbook list

  # List playbooks committed to a git revision
  PLAYBOOK_GIT_REPO=. PLAYBOOK_GIT_REF=main playbook list`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	loader, closer, err := buildLoader(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	names, err := loader.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
