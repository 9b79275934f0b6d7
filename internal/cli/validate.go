package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kestrelworks/playbook/internal/errors"
	"github.com/kestrelworks/playbook/internal/output"
	"github.com/kestrelworks/playbook/internal/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate playbook definition files",
	Long: `Validate playbook definition files for structural correctness.

Checks for:
- Well-formed YAML or JSON
- Name, title, and version constraints
- Unique step ids and variable names
- In-playbook depends_on references and no self-dependencies
- Typed variable defaults and enums
- Well-formed extends lists (no duplicates, no self-extension)

Inheritance is not resolved here; use 'playbook resolve' to check a full
chain including cross-playbook dependencies.

Exit codes:
  0 - All files valid
  1 - One or more files invalid`,
	Example: `  # Validate a single playbook file
  playbook validate .playbooks/incident-response.yaml

  # Validate every playbook in a directory
  playbook validate .playbooks/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	type result struct {
		path string
		err  error
	}
	results := make([]result, len(args))

	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			_, err := store.ParseFile(path)
			results[i] = result{path: path, err: err}
			return nil
		})
	}
	// Parse errors are collected per file, never returned from the group.
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.err == nil {
			output.PrintSuccess(cmd.OutOrStdout(), r.path)
			continue
		}
		failed++
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), r.path)
		if e := errors.As(r.err); e != nil {
			fmt.Fprint(os.Stderr, errors.FormatError(e))
		} else {
			fmt.Fprintf(os.Stderr, "  %v\n", r.err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d playbook files failed validation", failed, len(args))
	}
	return nil
}
