package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrelworks/playbook/internal/inherit"
	"github.com/kestrelworks/playbook/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Check a proposed extends list for inheritance cycles",
	Long: `Check whether creating or updating a playbook with the given extends
list would introduce an inheritance cycle, without the playbook needing to
exist yet. This is the same guard a persistence layer must run before
committing a create or update.

Parents missing from the loader are not errors here; existence is a
separate concern.

Exit codes:
  0 - No cycle would be created
  1 - The extends list would create a cycle`,
	Example: `  # Would "incident-response extends [base, escalation]" stay acyclic?
  playbook check incident-response --extends base,escalation`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSlice("extends", nil, "comma-separated parent playbook names")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	name := args[0]
	extends, _ := cmd.Flags().GetStringSlice("extends")

	check, err := inherit.CheckNoCycle(cmd.Context(), name, extends, loader)
	if err != nil {
		return err
	}
	if !check.Valid {
		return fmt.Errorf("%s (cycle: %s)", check.Reason, strings.Join(check.Cycle, " -> "))
	}

	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s may extend [%s] without creating a cycle", name, strings.Join(extends, ", ")))
	return nil
}
